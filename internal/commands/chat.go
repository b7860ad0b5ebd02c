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

import (
	"context"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/paperbridge/paperbridge/internal/agent"
	"github.com/paperbridge/paperbridge/internal/session"
	"github.com/paperbridge/paperbridge/pkg/errors"
)

func newChatCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive natural-language loop against the tool server",
		Long: `Start the tool server and enter an interactive loop. Each line you type
is dispatched to the best-matching server tool; the result is explained
back in plain language. Server requests for input (elicitations) are
prompted inline.

Type 'exit' or press Ctrl-D to leave.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, flags)
		},
	}
}

func runChat(cmd *cobra.Command, flags *rootFlags) error {
	ctx := cmd.Context()

	sess, model, _, logger, err := setup(ctx, flags)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), styleError.Render(errors.UserMessage(err)))
		return err
	}
	defer sess.Close()

	ag := agent.New(sess, model, logger)

	tools, err := sess.ListTools(ctx, false)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), styleError.Render(errors.UserMessage(err)))
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), styleHeader.Render("paperbridge chat"))
	fmt.Fprintln(cmd.OutOrStdout(), styleMuted.Render(fmt.Sprintf("%d tools available. Type a request, or 'exit' to quit.", len(tools))))

	for {
		var line string
		prompt := &survey.Input{Message: ">"}
		if err := survey.AskOne(prompt, &line); err != nil {
			// Ctrl-C / Ctrl-D ends the loop.
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		}

		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		res, err := dispatchWithElicitations(ctx, ag, sess, line)
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), styleError.Render(errors.UserMessage(err)))
			if errors.IsSessionFatal(err) {
				return err
			}
			continue
		}

		fmt.Fprintln(cmd.OutOrStdout(), styleMuted.Render(fmt.Sprintf("[%s]", res.Tool)))
		if res.Narrated {
			fmt.Fprintln(cmd.OutOrStdout(), res.Narration)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), styleWarn.Render("(raw tool output; narration unavailable)"))
			fmt.Fprintln(cmd.OutOrStdout(), res.Narration)
		}
	}
}

// dispatchWithElicitations runs one dispatch and services any elicitation
// requests the server raises while the call is in flight.
func dispatchWithElicitations(ctx context.Context, ag *agent.Agent, sess *session.Session, line string) (*agent.Result, error) {
	type outcome struct {
		res *agent.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := ag.Dispatch(ctx, line)
		done <- outcome{res, err}
	}()

	for {
		select {
		case out := <-done:
			return out.res, out.err
		case p := <-sess.Elicitations():
			serviceElicitation(sess, p)
		}
	}
}

// serviceElicitation prompts the operator for the server's requested input
// and resumes the suspended request. An empty answer cancels it.
func serviceElicitation(sess *session.Session, p *session.PendingElicitation) {
	fmt.Println(stylePrompt.Render("The server needs input:"))

	var answer string
	prompt := &survey.Input{Message: p.Prompt}
	if err := survey.AskOne(prompt, &answer); err != nil || strings.TrimSpace(answer) == "" {
		_ = sess.CancelElicitation(p.ID)
		return
	}
	if err := sess.RespondElicitation(p.ID, answer); err != nil {
		// The request may have been dropped while we prompted.
		fmt.Println(styleWarn.Render(errors.UserMessage(err)))
	}
}
