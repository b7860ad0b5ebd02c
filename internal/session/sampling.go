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
	"github.com/paperbridge/paperbridge/pkg/llm"
)

// handleCreateMessage services the server's sampling requests: the peer's
// prompt is forwarded to the configured model backend and the completion is
// returned as an assistant message. Backend failures go back to the peer as
// an error response; they never crash the session.
func (s *Session) handleCreateMessage(ctx context.Context, req *mcp.CreateMessageRequest) (*mcp.CreateMessageResult, error) {
	if s.cfg.Sampler == nil {
		return nil, &errors.UpstreamModelError{
			Backend: "none",
			Cause:   errors.New("no model backend configured for sampling"),
		}
	}

	creq := samplingToCompletion(req.Params)
	log.Trace(s.logger, "sampling request from server",
		slog.Int("messages", len(creq.Messages)))

	resp, err := s.cfg.Sampler.Complete(ctx, creq)
	if err != nil {
		s.logger.Warn("sampling request failed", log.Error(err))
		var upstream *errors.UpstreamModelError
		if errors.As(err, &upstream) {
			return nil, err
		}
		return nil, &errors.UpstreamModelError{Backend: s.cfg.Sampler.Name(), Cause: err}
	}

	return &mcp.CreateMessageResult{
		Role:       "assistant",
		Content:    &mcp.TextContent{Text: resp.Content},
		Model:      resp.Model,
		StopReason: "endTurn",
	}, nil
}

// samplingToCompletion maps the peer's sampling parameters onto a completion
// request, keeping only the text parts (this client does not forward images).
func samplingToCompletion(params *mcp.CreateMessageParams) llm.CompletionRequest {
	var req llm.CompletionRequest
	if params == nil {
		return req
	}

	if params.SystemPrompt != "" {
		req.Messages = append(req.Messages, llm.Message{
			Role:    llm.MessageRoleSystem,
			Content: params.SystemPrompt,
		})
	}
	for _, m := range params.Messages {
		tc, ok := m.Content.(*mcp.TextContent)
		if !ok {
			continue
		}
		role := llm.MessageRoleUser
		if m.Role == "assistant" {
			role = llm.MessageRoleAssistant
		}
		req.Messages = append(req.Messages, llm.Message{Role: role, Content: tc.Text})
	}

	if params.MaxTokens > 0 {
		max := int(params.MaxTokens)
		req.MaxTokens = &max
	}
	if params.Temperature > 0 {
		temp := params.Temperature
		req.Temperature = &temp
	}
	req.StopSequences = params.StopSequences
	return req
}
