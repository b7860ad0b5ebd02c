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
	"encoding/json"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/paperbridge/paperbridge/pkg/errors"
)

// catalogSnapshot is an immutable view of the remote tool catalog. Refresh
// replaces the whole snapshot atomically; callbacks running concurrently keep
// reading the snapshot they started with.
type catalogSnapshot struct {
	tools  []ToolDescriptor
	byName map[string]int
}

func newCatalogSnapshot(tools []ToolDescriptor) *catalogSnapshot {
	byName := make(map[string]int, len(tools))
	for i, t := range tools {
		byName[t.Name] = i
	}
	return &catalogSnapshot{tools: tools, byName: byName}
}

func (c *catalogSnapshot) has(name string) bool {
	_, ok := c.byName[name]
	return ok
}

func (c *catalogSnapshot) names() []string {
	out := make([]string, len(c.tools))
	for i, t := range c.tools {
		out[i] = t.Name
	}
	return out
}

// list returns a caller-owned copy of the descriptors.
func (c *catalogSnapshot) list() []ToolDescriptor {
	out := make([]ToolDescriptor, len(c.tools))
	copy(out, c.tools)
	return out
}

// ListTools returns the tool catalog. The first call (or force) fetches from
// the server and replaces the cached set atomically; later calls return the
// cached snapshot with no network activity. An empty catalog is valid.
func (s *Session) ListTools(ctx context.Context, force bool) ([]ToolDescriptor, error) {
	if !force {
		if snap := s.catalog.Load(); snap != nil {
			return snap.list(), nil
		}
	}

	if s.transportDown() {
		return nil, &errors.TransportError{Op: "tools/list", Cause: errors.New("session closed")}
	}

	cctx, cancel := context.WithTimeout(ctx, s.callTimeout())
	defer cancel()

	res, err := s.conn.ListTools(cctx, &mcp.ListToolsParams{})
	if err != nil {
		if terr := s.classifyWireError("tools/list", err); terr != nil {
			return nil, terr
		}
		return nil, errors.Wrap(err, "listing tools")
	}

	tools := make([]ToolDescriptor, 0, len(res.Tools))
	for _, t := range res.Tools {
		desc := ToolDescriptor{Name: t.Name, Description: t.Description}
		if t.InputSchema != nil {
			if b, merr := json.Marshal(t.InputSchema); merr == nil {
				desc.InputSchema = b
			}
		}
		tools = append(tools, desc)
	}

	snap := newCatalogSnapshot(tools)
	s.catalog.Store(snap)
	s.logger.Debug("tool catalog refreshed", slog.Int("tools", len(tools)))
	return snap.list(), nil
}
