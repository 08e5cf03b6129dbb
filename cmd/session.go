package cmd

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	sessionadapter "tweetsweep/internal/adapters/session"
	"tweetsweep/internal/domain"
)

func newSessionCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage stored session profiles",
	}

	cmd.AddCommand(
		newSessionSetCmd(app),
		newSessionCaptureCmd(app),
		newSessionShowCmd(app),
		newSessionRemoveCmd(app),
	)

	return cmd
}

func newSessionSetCmd(app *app) *cobra.Command {
	var profileID string
	var cookies string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store session cookies for a profile",
		Long:  "Store the browser's cookie string (document.cookie from a logged-in tab) for a profile. Reads from stdin when --cookies is not given.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw := cookies
			if raw == "" {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Paste the cookie string and press enter:")
				reader := bufio.NewReader(cmd.InOrStdin())
				line, err := reader.ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read cookie string: %w", err)
				}
				raw = line
			}

			return storeProfileSession(cmd, app, profileID, raw)
		},
	}

	cmd.Flags().StringVar(&profileID, "profile", "0", "Profile ID (0 or empty auto-assigns next: 1,2,...)")
	cmd.Flags().StringVar(&cookies, "cookies", "", "Cookie string (default: read from stdin)")

	return cmd
}

func newSessionCaptureCmd(app *app) *cobra.Command {
	var profileID string

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Capture session cookies from a logged-in browser tab",
		Long:  "Starts a localhost server and prints a snippet to paste into the devtools console of a logged-in tab. The snippet posts document.cookie back to the server.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := sessionadapter.NewHandoffToken()
			if err != nil {
				return fmt.Errorf("create handoff token: %w", err)
			}

			server, err := sessionadapter.StartHandoffServer(app.captureListenAddr, token)
			if err != nil {
				return err
			}
			defer func() { _ = server.Close() }()

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, "Open the platform in a logged-in tab, then paste this into the devtools console:")
			_, _ = fmt.Fprintln(out)
			_, _ = fmt.Fprintln(out, "  "+server.Snippet())
			_, _ = fmt.Fprintln(out)
			_, _ = fmt.Fprintln(out, "Waiting for the browser...")

			raw, err := server.WaitForCookies(app.captureTimeout)
			if err != nil {
				return err
			}

			return storeProfileSession(cmd, app, profileID, raw)
		},
	}

	cmd.Flags().StringVar(&profileID, "profile", "0", "Profile ID (0 or empty auto-assigns next: 1,2,...)")

	return cmd
}

func storeProfileSession(cmd *cobra.Command, app *app, rawProfileID string, rawCookies string) error {
	ctx := cmd.Context()

	creds, err := validateCookieHeader(rawCookies)
	if err != nil {
		return err
	}

	resolvedID, err := resolveProfileID(ctx, app, rawProfileID)
	if err != nil {
		return err
	}

	secretRef := secretKeyForProfile(resolvedID)
	if err := app.secretStore.Put(ctx, secretRef, strings.TrimSpace(rawCookies)); err != nil {
		return fmt.Errorf("store session cookies: %w", err)
	}

	profile := domain.Profile{
		ID:        resolvedID,
		UserID:    creds.UserID,
		SecretRef: secretRef,
	}
	if existing, getErr := app.profiles.GetByID(ctx, resolvedID); getErr == nil {
		profile.Handle = existing.Handle
	}

	if err := app.profiles.Save(ctx, profile); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Stored session for profile %s (user id %s)\n", resolvedID, creds.UserID)
	return nil
}

func newSessionShowCmd(app *app) *cobra.Command {
	var profileID string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show stored profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			profiles, err := listProfiles(ctx, app, profileID)
			if err != nil {
				return err
			}

			if len(profiles) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No profiles stored. Run `tws session set` first.")
				return nil
			}

			for _, profile := range profiles {
				handle := profile.Handle
				if handle == "" {
					handle = "-"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t@%s\tuser id %s\n", profile.ID, handle, profile.UserID)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&profileID, "profile", "", "Profile ID (default: all profiles)")

	return cmd
}

func listProfiles(ctx context.Context, app *app, profileID string) ([]domain.Profile, error) {
	if profileID != "" {
		profile, err := app.profiles.GetByID(ctx, domain.ProfileID(profileID))
		if err != nil {
			return nil, err
		}
		return []domain.Profile{profile}, nil
	}

	return app.profiles.List(ctx)
}

func newSessionRemoveCmd(app *app) *cobra.Command {
	var profileID string

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove a profile and its stored cookies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if profileID == "" {
				return fmt.Errorf("--profile is required")
			}

			ctx := cmd.Context()
			id := domain.ProfileID(profileID)

			profile, err := app.profiles.GetByID(ctx, id)
			if err != nil {
				return err
			}

			if err := app.secretStore.Delete(ctx, profile.SecretRef); err != nil {
				return fmt.Errorf("delete session cookies: %w", err)
			}
			if err := app.profiles.Delete(ctx, id); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed profile %s\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&profileID, "profile", "", "Profile ID to remove")

	return cmd
}
