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

package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperbridge/paperbridge/internal/session"
	"github.com/paperbridge/paperbridge/pkg/errors"
	"github.com/paperbridge/paperbridge/pkg/llm"
)

// scriptedProvider returns canned completions in order. A nil entry means
// "fail this call".
type scriptedProvider struct {
	responses []*llm.CompletionResponse
	calls     []llm.CompletionRequest
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.calls = append(p.calls, req)
	if len(p.responses) == 0 {
		return nil, &errors.UpstreamModelError{Backend: "scripted", Cause: errors.New("script exhausted")}
	}
	next := p.responses[0]
	p.responses = p.responses[1:]
	if next == nil {
		return nil, &errors.UpstreamModelError{Backend: "scripted", Cause: errors.New("scripted failure")}
	}
	return next, nil
}

func text(s string) *llm.CompletionResponse {
	return &llm.CompletionResponse{Content: s, Model: "scripted"}
}

// fakeCaller is a canned ToolCaller.
type fakeCaller struct {
	tools  []session.ToolDescriptor
	result *session.ToolResult
	err    error

	calls []string
}

func (f *fakeCaller) ListTools(ctx context.Context, force bool) ([]session.ToolDescriptor, error) {
	return f.tools, nil
}

func (f *fakeCaller) CallTool(ctx context.Context, name string, args map[string]any) (*session.ToolResult, error) {
	f.calls = append(f.calls, name)
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &session.ToolResult{OK: true, Text: "done"}, nil
}

func catalogForTest() []session.ToolDescriptor {
	return []session.ToolDescriptor{
		{Name: "search_arxiv", Description: "Search the arXiv catalog"},
		{Name: "get_details", Description: "Fetch article metadata"},
	}
}

func TestDispatchSuccess(t *testing.T) {
	caller := &fakeCaller{
		tools:  catalogForTest(),
		result: &session.ToolResult{OK: true, Text: `{"Attention Is All You Need": {"year": "2017"}}`},
	}
	provider := &scriptedProvider{responses: []*llm.CompletionResponse{
		text(`{"tool_name": "search_arxiv", "arguments": {"all_fields": "transformers"}}`),
		text("I found one foundational paper on transformers from 2017."),
	}}
	ag := New(caller, provider, nil)

	res, err := ag.Dispatch(context.Background(), "find papers about transformers")
	require.NoError(t, err)

	assert.Equal(t, "search_arxiv", res.Tool)
	assert.Equal(t, map[string]any{"all_fields": "transformers"}, res.Arguments)
	assert.True(t, res.Narrated)
	assert.Contains(t, res.Narration, "foundational paper")
	assert.Equal(t, []string{"search_arxiv"}, caller.calls)
	assert.Equal(t, StateIdle, ag.State())

	// The narration call saw the tool output.
	require.Len(t, provider.calls, 2)
	narration := provider.calls[1]
	assert.Contains(t, llmUserContent(narration), "Attention Is All You Need")
}

func TestDispatchParseFailureInvokesNothing(t *testing.T) {
	caller := &fakeCaller{tools: catalogForTest()}
	provider := &scriptedProvider{responses: []*llm.CompletionResponse{
		text("I would probably use the search tool for that."),
	}}
	ag := New(caller, provider, nil)

	_, err := ag.Dispatch(context.Background(), "find papers")
	var perr *errors.ToolSelectionParseError
	require.ErrorAs(t, err, &perr)
	assert.Empty(t, caller.calls, "no tool may run on a parse failure")
	assert.Equal(t, StateFailed, ag.State())
}

func TestDispatchInvalidToolInvokesNothing(t *testing.T) {
	caller := &fakeCaller{tools: catalogForTest()}
	provider := &scriptedProvider{responses: []*llm.CompletionResponse{
		text(`{"tool_name": "teleport", "arguments": {}}`),
	}}
	ag := New(caller, provider, nil)

	_, err := ag.Dispatch(context.Background(), "find papers")
	var verr *errors.ToolSelectionInvalidError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "teleport", verr.Tool)
	assert.Contains(t, verr.Known, "search_arxiv")
	assert.Empty(t, caller.calls)
}

func TestDispatchToolFailureSurfacesInResult(t *testing.T) {
	caller := &fakeCaller{
		tools:  catalogForTest(),
		result: &session.ToolResult{OK: false, Err: "article not found"},
	}
	provider := &scriptedProvider{responses: []*llm.CompletionResponse{
		text(`{"tool_name": "get_details", "arguments": {"title": "nope"}}`),
		text("The server could not find that article."),
	}}
	ag := New(caller, provider, nil)

	res, err := ag.Dispatch(context.Background(), "details for nope")
	require.NoError(t, err)
	assert.False(t, res.Raw.OK)
	assert.True(t, res.Narrated)
}

func TestDispatchTransportFaultIsTerminal(t *testing.T) {
	caller := &fakeCaller{
		tools: catalogForTest(),
		err:   &errors.TransportError{Op: "tools/call"},
	}
	provider := &scriptedProvider{responses: []*llm.CompletionResponse{
		text(`{"tool_name": "search_arxiv", "arguments": {}}`),
	}}
	ag := New(caller, provider, nil)

	_, err := ag.Dispatch(context.Background(), "find papers")
	var terr *errors.TransportError
	require.ErrorAs(t, err, &terr)
}

func TestDispatchNarrationFallback(t *testing.T) {
	caller := &fakeCaller{
		tools:  catalogForTest(),
		result: &session.ToolResult{OK: true, Text: "raw tool output"},
	}
	provider := &scriptedProvider{responses: []*llm.CompletionResponse{
		text(`{"tool_name": "search_arxiv", "arguments": {}}`),
		nil, // narration call fails
	}}
	ag := New(caller, provider, nil)

	res, err := ag.Dispatch(context.Background(), "find papers")
	require.NoError(t, err, "narration failure must not fail the dispatch")
	assert.False(t, res.Narrated)
	assert.Equal(t, "raw tool output", res.Narration)
}

func TestDispatchEmptyNarrationFallsBack(t *testing.T) {
	caller := &fakeCaller{
		tools:  catalogForTest(),
		result: &session.ToolResult{OK: true, Text: "raw tool output"},
	}
	provider := &scriptedProvider{responses: []*llm.CompletionResponse{
		text(`{"tool_name": "search_arxiv", "arguments": {}}`),
		text(""),
	}}
	ag := New(caller, provider, nil)

	res, err := ag.Dispatch(context.Background(), "find papers")
	require.NoError(t, err)
	assert.False(t, res.Narrated)
	assert.Equal(t, "raw tool output", res.Narration)
}

// llmUserContent concatenates the user-role content of a request.
func llmUserContent(req llm.CompletionRequest) string {
	var out string
	for _, m := range req.Messages {
		if m.Role == llm.MessageRoleUser {
			out += m.Content
		}
	}
	return out
}
