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
	"os"
)

// Roots returns the filesystem boundaries declared to the tool server.
// The result equals the configured list on every invocation; mutating it
// does not affect the session. Never fails.
func (s *Session) Roots() []Root {
	out := make([]Root, len(s.roots))
	copy(out, s.roots)
	return out
}

// defaultRoots declares the current working directory when no roots are
// configured.
func defaultRoots() []Root {
	cwd, err := os.Getwd()
	if err != nil {
		return nil
	}
	return []Root{{URI: "file://" + cwd, Name: "Current Working Directory"}}
}
