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
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/paperbridge/paperbridge/pkg/llm"
)

// fakeConn is a recording stand-in for the SDK client session.
type fakeConn struct {
	mu sync.Mutex

	listToolsCalls int
	callToolCalls  []*mcp.CallToolParams
	closed         bool

	tools        []*mcp.Tool
	listToolsErr error

	callResult *mcp.CallToolResult
	callErr    error
	callFn     func(params *mcp.CallToolParams) (*mcp.CallToolResult, error)

	listResourcesCalls int
	readResourceCalls  []*mcp.ReadResourceParams

	resources        []*mcp.Resource
	listResourcesErr error
	readResult       *mcp.ReadResourceResult
	readErr          error
}

func (f *fakeConn) ListTools(ctx context.Context, params *mcp.ListToolsParams) (*mcp.ListToolsResult, error) {
	f.mu.Lock()
	f.listToolsCalls++
	f.mu.Unlock()

	if f.listToolsErr != nil {
		return nil, f.listToolsErr
	}
	return &mcp.ListToolsResult{Tools: f.tools}, nil
}

func (f *fakeConn) CallTool(ctx context.Context, params *mcp.CallToolParams) (*mcp.CallToolResult, error) {
	f.mu.Lock()
	f.callToolCalls = append(f.callToolCalls, params)
	f.mu.Unlock()

	if f.callFn != nil {
		return f.callFn(params)
	}
	if f.callErr != nil {
		return nil, f.callErr
	}
	if f.callResult != nil {
		return f.callResult, nil
	}
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: "ok"}}}, nil
}

func (f *fakeConn) ListResources(ctx context.Context, params *mcp.ListResourcesParams) (*mcp.ListResourcesResult, error) {
	f.mu.Lock()
	f.listResourcesCalls++
	f.mu.Unlock()

	if f.listResourcesErr != nil {
		return nil, f.listResourcesErr
	}
	return &mcp.ListResourcesResult{Resources: f.resources}, nil
}

func (f *fakeConn) ReadResource(ctx context.Context, params *mcp.ReadResourceParams) (*mcp.ReadResourceResult, error) {
	f.mu.Lock()
	f.readResourceCalls = append(f.readResourceCalls, params)
	f.mu.Unlock()

	if f.readErr != nil {
		return nil, f.readErr
	}
	if f.readResult != nil {
		return f.readResult, nil
	}
	return &mcp.ReadResourceResult{}, nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) sends() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listToolsCalls + len(f.callToolCalls)
}

// fakeProvider is a canned llm.Provider for sampling tests.
type fakeProvider struct {
	response *llm.CompletionResponse
	err      error

	mu       sync.Mutex
	requests []llm.CompletionRequest
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	p.requests = append(p.requests, req)
	p.mu.Unlock()

	if p.err != nil {
		return nil, p.err
	}
	if p.response != nil {
		return p.response, nil
	}
	return &llm.CompletionResponse{Content: "canned", Model: "fake-model"}, nil
}

func testTools() []*mcp.Tool {
	return []*mcp.Tool{
		{
			Name:        "search_arxiv",
			Description: "Search the arXiv catalog",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"all_fields": {Type: "string"},
					"author":     {Type: "string"},
					"start":      {Type: "integer"},
				},
			},
		},
		{
			Name:        "get_details",
			Description: "Fetch article metadata",
			InputSchema: &jsonschema.Schema{
				Type:       "object",
				Properties: map[string]*jsonschema.Schema{"title": {Type: "string"}},
				Required:   []string{"title"},
			},
		},
		{Name: "download_article", Description: "Save an article PDF"},
	}
}

func newTestSession(c conn, opts ...func(*Config)) *Session {
	cfg := Config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return newSession(c, cfg)
}
