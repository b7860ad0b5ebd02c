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
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/paperbridge/paperbridge/internal/log"
	"github.com/paperbridge/paperbridge/pkg/errors"
)

// CallTool invokes a cataloged tool on the server.
//
// The name must exist in the cached catalog (fetched on first use); an absent
// name fails with *errors.UnknownToolError before anything touches the wire.
// Remote execution failures come back inside the ToolResult. Transport-level
// faults (channel lost, session closed) return a *errors.TransportError; a
// call that exceeds the per-call deadline on a healthy channel returns a
// *errors.CallTimeoutError and leaves the session usable.
//
// The call is reentrant with respect to the callback handlers: the server may
// issue nested sampling or elicitation requests while fulfilling it.
func (s *Session) CallTool(ctx context.Context, name string, args map[string]any) (*ToolResult, error) {
	snap := s.catalog.Load()
	if snap == nil {
		if _, err := s.ListTools(ctx, false); err != nil {
			return nil, err
		}
		snap = s.catalog.Load()
	}
	if !snap.has(name) {
		return nil, &errors.UnknownToolError{Tool: name, Known: snap.names()}
	}

	if s.transportDown() {
		return nil, &errors.TransportError{Op: "tools/call", Cause: errors.New("session closed")}
	}

	cctx, cancel := context.WithTimeout(ctx, s.callTimeout())
	defer cancel()

	start := time.Now()
	log.Trace(s.logger, "calling tool",
		slog.String(log.ToolKey, name),
		slog.Any("arguments", args))

	res, err := s.conn.CallTool(cctx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		if terr := s.classifyWireError("tools/call", err); terr != nil {
			return nil, terr
		}
		// A protocol-level refusal from the peer (invalid params and the
		// like) is an execution failure, not a local fault.
		return &ToolResult{OK: false, Err: err.Error()}, nil
	}

	result := decodeResult(res)
	s.logger.Debug("tool call finished",
		slog.String(log.ToolKey, name),
		slog.Bool("ok", result.OK),
		slog.Int64(log.DurationKey, time.Since(start).Milliseconds()))
	return result, nil
}

// classifyWireError maps a failed remote call to a local fault: a
// TransportError when the channel itself is gone, a CallTimeoutError when the
// per-call deadline elapsed on an otherwise healthy channel. Returns nil for
// errors that are the peer's answer rather than a channel fault.
func (s *Session) classifyWireError(op string, err error) error {
	switch {
	case s.transportDown(),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrClosedPipe),
		errors.Is(err, context.Canceled):
		return &errors.TransportError{Op: op, Cause: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &errors.CallTimeoutError{Op: op, Timeout: s.callTimeout(), Cause: err}
	}
	return nil
}

// decodeResult unwraps a tool response: first text content verbatim, decoded
// as JSON into structured data when it parses; the server's structured
// content passes through as-is.
func decodeResult(res *mcp.CallToolResult) *ToolResult {
	out := &ToolResult{OK: !res.IsError}

	for _, c := range res.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			out.Text = tc.Text
			break
		}
	}

	if res.StructuredContent != nil {
		out.Data = res.StructuredContent
	} else if looksLikeJSON(out.Text) {
		var data any
		if err := json.Unmarshal([]byte(out.Text), &data); err == nil {
			out.Data = data
		}
	}

	if res.IsError {
		out.Err = out.Text
		if out.Err == "" {
			out.Err = "tool execution failed"
		}
	}
	return out
}

func looksLikeJSON(s string) bool {
	t := strings.TrimSpace(s)
	return strings.HasPrefix(t, "{") || strings.HasPrefix(t, "[")
}
