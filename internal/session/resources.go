// Copyright 2026 The Paperbridge Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package session

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/paperbridge/paperbridge/internal/log"
	"github.com/paperbridge/paperbridge/pkg/errors"
)

// ListResources fetches the server's resource listing. Unlike the tool
// catalog the listing is not cached: resources change as the server downloads
// articles, so every call goes to the wire.
//
// A server that does not implement resources answers with a protocol error;
// that comes back as a plain error, not a transport fault.
func (s *Session) ListResources(ctx context.Context) ([]ResourceDescriptor, error) {
	if s.transportDown() {
		return nil, &errors.TransportError{Op: "resources/list", Cause: errors.New("session closed")}
	}

	cctx, cancel := context.WithTimeout(ctx, s.callTimeout())
	defer cancel()

	res, err := s.conn.ListResources(cctx, &mcp.ListResourcesParams{})
	if err != nil {
		if terr := s.classifyWireError("resources/list", err); terr != nil {
			return nil, terr
		}
		return nil, errors.Wrap(err, "listing resources")
	}

	out := make([]ResourceDescriptor, 0, len(res.Resources))
	for _, r := range res.Resources {
		if r == nil {
			continue
		}
		out = append(out, ResourceDescriptor{
			URI:         r.URI,
			Name:        r.Name,
			Description: r.Description,
			MIMEType:    r.MIMEType,
		})
	}

	s.logger.Debug("listed resources", slog.Int("count", len(out)))
	return out, nil
}

// ReadResource fetches the content of one resource by URI. Text and binary
// entries both come back; entries with neither are dropped.
func (s *Session) ReadResource(ctx context.Context, uri string) ([]ResourceContent, error) {
	if uri == "" {
		return nil, errors.New("resource uri is required")
	}
	if s.transportDown() {
		return nil, &errors.TransportError{Op: "resources/read", Cause: errors.New("session closed")}
	}

	cctx, cancel := context.WithTimeout(ctx, s.callTimeout())
	defer cancel()

	log.Trace(s.logger, "reading resource", slog.String("uri", uri))

	res, err := s.conn.ReadResource(cctx, &mcp.ReadResourceParams{URI: uri})
	if err != nil {
		if terr := s.classifyWireError("resources/read", err); terr != nil {
			return nil, terr
		}
		return nil, errors.Wrapf(err, "reading resource %s", uri)
	}

	var out []ResourceContent
	for _, c := range res.Contents {
		if c == nil || (c.Text == "" && len(c.Blob) == 0) {
			continue
		}
		out = append(out, ResourceContent{
			URI:      c.URI,
			MIMEType: c.MIMEType,
			Text:     c.Text,
			Blob:     c.Blob,
		})
	}
	return out, nil
}
