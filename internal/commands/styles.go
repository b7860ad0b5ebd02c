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

package commands

import "github.com/charmbracelet/lipgloss"

// Shared terminal styles.
var (
	// styleOK renders success output.
	styleOK = lipgloss.NewStyle().Foreground(lipgloss.Color("42")) // green

	// styleWarn renders warnings and degraded results.
	styleWarn = lipgloss.NewStyle().Foreground(lipgloss.Color("214")) // orange

	// styleError renders failures.
	styleError = lipgloss.NewStyle().Foreground(lipgloss.Color("196")) // red

	// styleMuted renders secondary detail.
	styleMuted = lipgloss.NewStyle().Foreground(lipgloss.Color("245")) // gray

	// styleHeader renders section headings.
	styleHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")) // blue bold

	// stylePrompt renders the elicitation banner.
	stylePrompt = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
)
