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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/paperbridge/paperbridge/pkg/errors"
	"github.com/paperbridge/paperbridge/pkg/llm"
)

func createMessageRequest(system string, userText string) *mcp.CreateMessageRequest {
	return &mcp.CreateMessageRequest{
		Params: &mcp.CreateMessageParams{
			SystemPrompt: system,
			Messages: []*mcp.SamplingMessage{
				{Role: "user", Content: &mcp.TextContent{Text: userText}},
			},
			MaxTokens:   256,
			Temperature: 0.3,
		},
	}
}

func TestHandleCreateMessageForwardsToBackend(t *testing.T) {
	provider := &fakeProvider{
		response: &llm.CompletionResponse{Content: "summarized", Model: "fake-model"},
	}
	s := newTestSession(&fakeConn{}, func(c *Config) {
		c.Sampler = provider
	})

	res, err := s.handleCreateMessage(context.Background(), createMessageRequest("be brief", "summarize this"))
	require.NoError(t, err)

	assert.EqualValues(t, "assistant", res.Role)
	tc, ok := res.Content.(*mcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, "summarized", tc.Text)
	assert.Equal(t, "fake-model", res.Model)

	require.Len(t, provider.requests, 1)
	req := provider.requests[0]
	require.Len(t, req.Messages, 2)
	assert.Equal(t, llm.MessageRoleSystem, req.Messages[0].Role)
	assert.Equal(t, "be brief", req.Messages[0].Content)
	assert.Equal(t, llm.MessageRoleUser, req.Messages[1].Role)
	require.NotNil(t, req.MaxTokens)
	assert.Equal(t, 256, *req.MaxTokens)
	require.NotNil(t, req.Temperature)
	assert.InDelta(t, 0.3, *req.Temperature, 1e-9)
}

func TestHandleCreateMessageBackendFailure(t *testing.T) {
	provider := &fakeProvider{err: errors.New("throttled")}
	s := newTestSession(&fakeConn{}, func(c *Config) {
		c.Sampler = provider
	})

	_, err := s.handleCreateMessage(context.Background(), createMessageRequest("", "hello"))
	var upstream *errors.UpstreamModelError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "fake", upstream.Backend)
}

func TestHandleCreateMessageUpstreamErrorPassesThrough(t *testing.T) {
	orig := &errors.UpstreamModelError{Backend: "bedrock", Model: "haiku", Cause: errors.New("down")}
	provider := &fakeProvider{err: orig}
	s := newTestSession(&fakeConn{}, func(c *Config) {
		c.Sampler = provider
	})

	_, err := s.handleCreateMessage(context.Background(), createMessageRequest("", "hello"))
	var upstream *errors.UpstreamModelError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "bedrock", upstream.Backend)
}

func TestHandleCreateMessageNoSampler(t *testing.T) {
	s := newTestSession(&fakeConn{})

	_, err := s.handleCreateMessage(context.Background(), createMessageRequest("", "hello"))
	var upstream *errors.UpstreamModelError
	require.ErrorAs(t, err, &upstream)
}

func TestSamplingToCompletionSkipsNonText(t *testing.T) {
	params := &mcp.CreateMessageParams{
		Messages: []*mcp.SamplingMessage{
			{Role: "user", Content: &mcp.ImageContent{}},
			{Role: "assistant", Content: &mcp.TextContent{Text: "prior answer"}},
		},
	}

	req := samplingToCompletion(params)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, llm.MessageRoleAssistant, req.Messages[0].Role)
}

func TestSamplingToCompletionNilParams(t *testing.T) {
	req := samplingToCompletion(nil)
	assert.Empty(t, req.Messages)
}
