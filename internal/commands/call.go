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
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paperbridge/paperbridge/pkg/errors"
)

func newCallCommand(flags *rootFlags) *cobra.Command {
	var argsJSON string

	cmd := &cobra.Command{
		Use:   "call <tool>",
		Short: "Invoke one server tool directly",
		Long: `Invoke a tool by name, bypassing the language model. Arguments are
passed as a JSON object via --args.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			toolArgs := map[string]any{}
			if argsJSON != "" {
				if err := json.Unmarshal([]byte(argsJSON), &toolArgs); err != nil {
					return fmt.Errorf("parsing --args: %w", err)
				}
			}

			sess, _, _, _, err := setup(ctx, flags)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), styleError.Render(errors.UserMessage(err)))
				return err
			}
			defer sess.Close()

			res, err := sess.CallTool(ctx, args[0], toolArgs)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), styleError.Render(errors.UserMessage(err)))
				return err
			}

			if !res.OK {
				fmt.Fprintln(cmd.ErrOrStderr(), styleError.Render("tool failed: "+res.Err))
				return nil
			}
			if res.Data != nil {
				pretty, err := json.MarshalIndent(res.Data, "", "  ")
				if err == nil {
					fmt.Fprintln(cmd.OutOrStdout(), string(pretty))
					return nil
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Text)
			return nil
		},
	}

	cmd.Flags().StringVar(&argsJSON, "args", "", "Tool arguments as a JSON object")
	return cmd
}
