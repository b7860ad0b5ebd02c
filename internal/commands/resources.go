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

	"github.com/paperbridge/paperbridge/internal/session"
	"github.com/paperbridge/paperbridge/pkg/errors"
)

func newResourcesCommand(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resources [uri]",
		Short: "List the server's resources, or read one by URI",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			sess, _, _, _, err := setup(ctx, flags)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), styleError.Render(errors.UserMessage(err)))
				return err
			}
			defer sess.Close()

			if len(args) == 1 {
				return readResource(cmd, sess, args[0])
			}

			resources, err := sess.ListResources(ctx)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), styleError.Render(errors.UserMessage(err)))
				return err
			}
			if len(resources) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), styleMuted.Render("The server offers no resources."))
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), styleHeader.Render(fmt.Sprintf("%d resources", len(resources))))
			for _, r := range resources {
				label := r.Name
				if label == "" {
					label = r.URI
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  %s  %s\n", styleOK.Render(label), styleMuted.Render(r.URI))
				if r.Description != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "    %s\n", r.Description)
				}
			}
			return nil
		},
	}
	return cmd
}

func readResource(cmd *cobra.Command, sess *session.Session, uri string) error {
	contents, err := sess.ReadResource(cmd.Context(), uri)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), styleError.Render(errors.UserMessage(err)))
		return err
	}
	if len(contents) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), styleMuted.Render("The resource is empty."))
		return nil
	}

	for _, c := range contents {
		if c.Text != "" {
			fmt.Fprintln(cmd.OutOrStdout(), c.Text)
			continue
		}
		fmt.Fprintln(cmd.OutOrStdout(),
			styleMuted.Render(fmt.Sprintf("[binary content, %d bytes, %s]", len(c.Blob), c.MIMEType)))
	}
	return nil
}
