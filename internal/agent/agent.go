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

// Package agent implements the natural-language dispatch loop: it asks the
// model backend to select one cataloged tool for the user's free-text intent,
// invokes it, and narrates the result.
package agent

import (
	"context"
	"log/slog"
	"sync"

	"github.com/paperbridge/paperbridge/internal/log"
	"github.com/paperbridge/paperbridge/internal/session"
	"github.com/paperbridge/paperbridge/pkg/errors"
	"github.com/paperbridge/paperbridge/pkg/llm"
)

// State identifies where a dispatch request is in its lifecycle.
type State string

const (
	// StateIdle means no request is in flight.
	StateIdle State = "idle"
	// StateSelectingTool means the model is choosing a tool.
	StateSelectingTool State = "selecting_tool"
	// StateInvoking means the selected tool call is on the wire.
	StateInvoking State = "invoking"
	// StateExplaining means the model is narrating the result.
	StateExplaining State = "explaining"
	// StateFailed is the terminal state of an unsuccessful request.
	StateFailed State = "failed"
)

// ToolCaller is the session surface the agent drives.
type ToolCaller interface {
	ListTools(ctx context.Context, force bool) ([]session.ToolDescriptor, error)
	CallTool(ctx context.Context, name string, args map[string]any) (*session.ToolResult, error)
}

// Agent drives one dispatch request at a time.
type Agent struct {
	tools  ToolCaller
	model  llm.Provider
	logger *slog.Logger

	mu    sync.Mutex
	state State
}

// New creates an Agent over the given session surface and model backend.
func New(tools ToolCaller, model llm.Provider, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		tools:  tools,
		model:  model,
		logger: log.WithComponent(logger, "agent"),
		state:  StateIdle,
	}
}

// State returns the agent's current dispatch state.
func (a *Agent) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *Agent) setState(s State) {
	a.mu.Lock()
	a.state = s
	a.mu.Unlock()
	a.logger.Debug("dispatch state", slog.String("state", string(s)))
}

// Selection is the model's tool-selection decision.
type Selection struct {
	ToolName  string         `json:"tool_name"`
	Arguments map[string]any `json:"arguments"`
}

// Result is the outcome of one dispatch request.
type Result struct {
	// Tool is the selected tool name.
	Tool string

	// Arguments are the arguments the model produced.
	Arguments map[string]any

	// Raw is the unprocessed tool result.
	Raw *session.ToolResult

	// Narration is the user-facing text. When Narrated is false it falls
	// back to the raw result text.
	Narration string

	// Narrated reports whether the model produced the narration, as opposed
	// to the raw-result fallback.
	Narrated bool
}

// Dispatch runs the full loop for one piece of user intent: select a tool,
// invoke it, narrate the result. Selection failures
// (*errors.ToolSelectionParseError, *errors.ToolSelectionInvalidError) and
// invocation failures are terminal for the request and are not retried.
// Narration is best-effort: on backend failure the raw result is returned
// unnarrated.
func (a *Agent) Dispatch(ctx context.Context, userText string) (*Result, error) {
	sel, err := a.selectTool(ctx, userText)
	if err != nil {
		a.setState(StateFailed)
		return nil, err
	}

	a.setState(StateInvoking)
	raw, err := a.tools.CallTool(ctx, sel.ToolName, sel.Arguments)
	if err != nil {
		a.setState(StateFailed)
		return nil, err
	}

	res := &Result{
		Tool:      sel.ToolName,
		Arguments: sel.Arguments,
		Raw:       raw,
	}

	a.setState(StateExplaining)
	narration, err := a.explain(ctx, userText, sel.ToolName, raw)
	if err != nil {
		// Narration is best-effort; the tool already ran.
		a.logger.Warn("narration failed, returning raw result", log.Error(err))
		res.Narration = raw.String()
	} else {
		res.Narration = narration
		res.Narrated = true
	}

	a.setState(StateIdle)
	return res, nil
}

// selectTool asks the model to pick one cataloged tool and produce arguments.
func (a *Agent) selectTool(ctx context.Context, userText string) (*Selection, error) {
	a.setState(StateSelectingTool)

	tools, err := a.tools.ListTools(ctx, false)
	if err != nil {
		return nil, err
	}

	resp, err := a.model.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: llm.MessageRoleSystem, Content: selectionSystemPrompt},
			{Role: llm.MessageRoleUser, Content: buildSelectionPrompt(tools, userText)},
		},
	})
	if err != nil {
		return nil, err
	}
	log.Trace(a.logger, "tool selection output", slog.String("output", resp.Content))

	sel, err := parseSelection(resp.Content)
	if err != nil {
		return nil, err
	}

	known := make([]string, len(tools))
	found := false
	for i, t := range tools {
		known[i] = t.Name
		if t.Name == sel.ToolName {
			found = true
		}
	}
	if !found {
		return nil, &errors.ToolSelectionInvalidError{Tool: sel.ToolName, Known: known}
	}
	return sel, nil
}

// explain asks the model to narrate the tool result for the end user.
func (a *Agent) explain(ctx context.Context, userText, tool string, raw *session.ToolResult) (string, error) {
	resp, err := a.model.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: llm.MessageRoleSystem, Content: narrationSystemPrompt},
			{Role: llm.MessageRoleUser, Content: buildNarrationPrompt(userText, tool, raw)},
		},
	})
	if err != nil {
		return "", err
	}
	if resp.Content == "" {
		return "", errors.New("model returned an empty narration")
	}
	return resp.Content, nil
}
