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
	"fmt"
	"strings"

	"github.com/paperbridge/paperbridge/internal/session"
)

const selectionSystemPrompt = `You are a tool dispatcher. Given a user request and a list of available tools, pick the single best tool and produce its arguments.

Respond with ONLY a JSON object of this exact shape, no prose before or after:
{"tool_name": "<name>", "arguments": {<arguments matching the tool's schema>}}`

const narrationSystemPrompt = `You are a research assistant. Summarize the tool output for the user in plain language. Be concise and do not invent information that is not in the output.`

// buildSelectionPrompt renders the catalog and the user's request for the
// selection call.
func buildSelectionPrompt(tools []session.ToolDescriptor, userText string) string {
	var b strings.Builder
	b.WriteString("Available tools:\n\n")
	for _, t := range tools {
		fmt.Fprintf(&b, "- %s: %s\n", t.Name, t.Description)
		if len(t.InputSchema) > 0 {
			fmt.Fprintf(&b, "  input schema: %s\n", string(t.InputSchema))
		}
	}
	b.WriteString("\nUser request:\n")
	b.WriteString(userText)
	return b.String()
}

// buildNarrationPrompt renders the tool outcome for the narration call. Output
// is truncated so a large result cannot blow the model's context.
func buildNarrationPrompt(userText, tool string, raw *session.ToolResult) string {
	const maxOutput = 8000

	out := raw.String()
	if len(out) > maxOutput {
		out = out[:maxOutput] + "\n[output truncated]"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "The user asked:\n%s\n\n", userText)
	fmt.Fprintf(&b, "The tool %q was invoked and ", tool)
	if raw.OK {
		b.WriteString("succeeded. Its output:\n")
	} else {
		b.WriteString("reported a failure. Its output:\n")
	}
	b.WriteString(out)
	b.WriteString("\n\nExplain this result to the user.")
	return b.String()
}
