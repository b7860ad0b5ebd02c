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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paperbridge/paperbridge/pkg/errors"
)

func newToolsCommand(flags *rootFlags) *cobra.Command {
	var refresh bool
	var showSchema bool

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tools the server offers",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			sess, _, _, _, err := setup(ctx, flags)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), styleError.Render(errors.UserMessage(err)))
				return err
			}
			defer sess.Close()

			tools, err := sess.ListTools(ctx, refresh)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), styleError.Render(errors.UserMessage(err)))
				return err
			}

			if len(tools) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), styleMuted.Render("The server offers no tools."))
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), styleHeader.Render(fmt.Sprintf("%d tools", len(tools))))
			for _, t := range tools {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s  %s\n", styleOK.Render(t.Name), t.Description)
				if showSchema && len(t.InputSchema) > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "    %s\n", styleMuted.Render(string(t.InputSchema)))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Bypass the cached catalog and fetch from the server")
	cmd.Flags().BoolVar(&showSchema, "schema", false, "Show each tool's input schema")
	return cmd
}
