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

	"github.com/paperbridge/paperbridge/pkg/arxiv"
	"github.com/paperbridge/paperbridge/pkg/errors"
)

func newSearchCommand(flags *rootFlags) *cobra.Command {
	var params arxiv.SearchParams

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search the arXiv catalog",
		Long: `Search arXiv through the tool server. A bare query searches all fields;
the flags narrow to specific ones.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if len(args) == 1 {
				params.AllFields = args[0]
			}
			if params == (arxiv.SearchParams{}) {
				return fmt.Errorf("provide a query or at least one of --title, --author, --abstract")
			}

			sess, _, _, _, err := setup(ctx, flags)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), styleError.Render(errors.UserMessage(err)))
				return err
			}
			defer sess.Close()

			entries, err := arxiv.NewClient(sess).Search(ctx, params)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), styleError.Render(errors.UserMessage(err)))
				return err
			}

			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), styleMuted.Render("No results."))
				return nil
			}
			for _, e := range entries {
				if msg := e.Err(); msg != "" {
					fmt.Fprintln(cmd.ErrOrStderr(), styleError.Render(msg))
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), styleOK.Render(e.Title()))
				if authors, ok := e["authors"]; ok {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", styleMuted.Render(fmt.Sprint(authors)))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&params.Title, "title", "", "Match the title field")
	cmd.Flags().StringVar(&params.Author, "author", "", "Match the author field")
	cmd.Flags().StringVar(&params.Abstract, "abstract", "", "Match the abstract field")
	cmd.Flags().IntVar(&params.Start, "start", 0, "Result offset for paging")
	return cmd
}
