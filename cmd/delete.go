package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tweetsweep/internal/application"
	"tweetsweep/internal/domain"
)

func newDeleteCmd(app *app) *cobra.Command {
	var profileID string
	var pages int
	var rawIDs []string
	var all bool
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete selected posts",
		Long:  "Fetches your posts, selects the ones named by --ids (or all of them with --all), and deletes them one by one after confirmation. Deletes are paced and failures on single posts do not stop the run.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(rawIDs) == 0 && !all {
				return fmt.Errorf("nothing to delete: pass --ids or --all")
			}

			session, err := openSweepSession(cmd, app, profileID)
			if err != nil {
				return err
			}

			if err := session.fetchPages(cmd, pages); err != nil {
				return err
			}

			if all {
				session.sweeper.SelectAll()
			} else {
				ids := make([]domain.PostID, 0, len(rawIDs))
				for _, raw := range rawIDs {
					for _, part := range strings.Split(raw, ",") {
						part = strings.TrimSpace(part)
						if part != "" {
							ids = append(ids, domain.PostID(part))
						}
					}
				}
				if err := session.sweeper.Select(ids...); err != nil {
					return err
				}
			}

			batch, err := session.sweeper.BeginBatch()
			if err != nil {
				return err
			}

			if !yes && !confirmDeletion(cmd, batch) {
				session.sweeper.AbandonBatch()
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
			batch.Confirm()

			out := cmd.OutOrStdout()
			failed := 0
			err = session.sweeper.Run(cmd.Context(), batch, func(outcome application.Outcome) {
				if outcome.Err != nil {
					failed++
					_, _ = fmt.Fprintf(out, "failed  %s: %v\n", outcome.ID, outcome.Err)
					return
				}
				_, _ = fmt.Fprintf(out, "deleted %s\n", outcome.ID)
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(out, "Done: %d deleted, %d failed.\n", batch.Size()-failed, failed)
			return nil
		},
	}

	cmd.Flags().StringVar(&profileID, "profile", "1", "Profile ID")
	cmd.Flags().IntVar(&pages, "pages", 1, "Number of timeline pages to fetch")
	cmd.Flags().StringSliceVar(&rawIDs, "ids", nil, "Post IDs to delete (comma separated, repeatable)")
	cmd.Flags().BoolVar(&all, "all", false, "Delete every fetched post")
	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")

	return cmd
}

func confirmDeletion(cmd *cobra.Command, batch *application.Batch) bool {
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "About to delete %d post(s):\n", batch.Size())
	for _, id := range batch.IDs() {
		_, _ = fmt.Fprintf(out, "  %s\n", id)
	}
	_, _ = fmt.Fprint(out, "Proceed? [y/N]: ")

	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return false
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
