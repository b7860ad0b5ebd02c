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
	"encoding/json"
	"strings"

	"github.com/paperbridge/paperbridge/pkg/errors"
)

// parseSelection extracts the tool-selection decision from raw model output.
// The model is asked for bare JSON but routinely wraps it in prose or code
// fences, so extraction is defensive. Unusable output fails with
// *errors.ToolSelectionParseError; no guessing.
func parseSelection(output string) (*Selection, error) {
	obj, ok := extractJSONObject(output)
	if !ok {
		return nil, &errors.ToolSelectionParseError{Output: output}
	}

	var sel Selection
	if err := json.Unmarshal([]byte(obj), &sel); err != nil {
		return nil, &errors.ToolSelectionParseError{Output: output}
	}
	if sel.ToolName == "" {
		return nil, &errors.ToolSelectionParseError{Output: output}
	}
	if sel.Arguments == nil {
		sel.Arguments = map[string]any{}
	}
	return &sel, nil
}

// extractJSONObject finds the first well-formed JSON object in s, tolerating
// surrounding prose and markdown code fences. A fragment that is brace
// balanced but not valid JSON (pseudo-JSON in the model's commentary) is
// skipped in favor of later candidates.
func extractJSONObject(s string) (string, bool) {
	s = stripFences(strings.TrimSpace(s))

	for start := strings.IndexByte(s, '{'); start >= 0; {
		if end := matchBrace(s, start); end > start {
			if frag := s[start : end+1]; json.Valid([]byte(frag)) {
				return frag, true
			}
		}
		next := strings.IndexByte(s[start+1:], '{')
		if next < 0 {
			break
		}
		start += 1 + next
	}
	return "", false
}

// stripFences removes a markdown code fence wrapper, with or without a
// language tag, when the whole string is fenced.
func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	rest := s[3:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[nl+1:]
	}
	if i := strings.LastIndex(rest, "```"); i >= 0 {
		rest = rest[:i]
	}
	return strings.TrimSpace(rest)
}

// matchBrace returns the index of the brace closing the object opened at
// start, or -1 when the object never closes. String literals and escapes are
// honored so braces inside argument values do not confuse the scan.
func matchBrace(s string, start int) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
