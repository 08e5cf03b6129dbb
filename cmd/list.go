package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	postsrender "tweetsweep/internal/adapters/render/posts"
	"tweetsweep/internal/domain"
)

func newListCmd(app *app) *cobra.Command {
	var profileID string
	var pages int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Fetch and display your posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := openSweepSession(cmd, app, profileID)
			if err != nil {
				return err
			}

			if err := session.fetchPages(cmd, pages); err != nil {
				return err
			}

			records := session.sweeper.Posts()
			if asJSON {
				return printPostsJSON(cmd, records)
			}

			rendered, err := app.postRenderer(records, session.sweeper.Counts(), postsrender.RenderOptions{
				Handle: session.sweeper.Credentials().Handle,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return nil
		},
	}

	cmd.Flags().StringVar(&profileID, "profile", "1", "Profile ID")
	cmd.Flags().IntVar(&pages, "pages", 1, "Number of timeline pages to fetch")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

type postJSON struct {
	ID        string `json:"id"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at,omitempty"`
	URL       string `json:"url"`
}

func printPostsJSON(cmd *cobra.Command, records []domain.Post) error {
	out := make([]postJSON, 0, len(records))
	for _, record := range records {
		out = append(out, postJSON{
			ID:        string(record.ID),
			Body:      record.BodyText,
			CreatedAt: record.CreatedAt,
			URL:       record.LiveURL(),
		})
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
