package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	discoveryadapter "tweetsweep/internal/adapters/discovery"
	"tweetsweep/internal/domain"
)

func newDiscoverCmd(app *app) *cobra.Command {
	var profileID string

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Discover the platform's private API endpoints",
		Long:  "Fetches the platform's client scripts and scans them for GraphQL operation ids and the public bearer credential. Useful to check whether the scan patterns still match.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cookieHeader := ""
			if profileID != "" {
				_, header, _, err := loadProfileSession(ctx, app, domain.ProfileID(profileID))
				if err != nil {
					return err
				}
				cookieHeader = header
			}

			var result discoveryadapter.Result
			discover := func(ctx context.Context) error {
				resolver := discoveryadapter.NewResolver(app.httpClient, app.baseURL, cookieHeader, app.requiredOps, app.logger)
				result = resolver.Discover(ctx)
				return nil
			}
			if err := runFetchSpinner(ctx, cmd.OutOrStdout(), "Discovering API endpoints...", discover); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if result.Bearer != "" {
				_, _ = fmt.Fprintln(out, "bearer: found")
			} else {
				_, _ = fmt.Fprintln(out, "bearer: missing")
			}

			for _, endpoint := range result.Endpoints.Operations() {
				_, _ = fmt.Fprintf(out, "%s\t%s\t%s\n", endpoint.OperationName, endpoint.OperationID, endpoint.Path)
			}

			if missing := result.Missing(app.requiredOps); len(missing) > 0 {
				return fmt.Errorf("%w: missing %s", errDiscoveryIncomplete, strings.Join(missing, ", "))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&profileID, "profile", "", "Profile whose cookies accompany the page fetch (default: anonymous)")

	return cmd
}
