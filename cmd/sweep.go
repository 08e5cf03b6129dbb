package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	discoveryadapter "tweetsweep/internal/adapters/discovery"
	extractadapter "tweetsweep/internal/adapters/extract"
	identityadapter "tweetsweep/internal/adapters/identity"
	xapiadapter "tweetsweep/internal/adapters/xapi"
	"tweetsweep/internal/application"
	"tweetsweep/internal/domain"
)

var errDiscoveryIncomplete = errors.New("endpoint discovery incomplete")

// sweepSession bundles the per-invocation state every sweep command needs: a
// discovered gateway and a sweeper seeded with the profile's credentials.
type sweepSession struct {
	profile domain.Profile
	sweeper *application.Sweeper
}

func openSweepSession(cmd *cobra.Command, app *app, profileID string) (*sweepSession, error) {
	ctx := cmd.Context()

	if profileID == "" {
		profileID = "1"
	}

	profile, cookieHeader, creds, err := loadProfileSession(ctx, app, domain.ProfileID(profileID))
	if err != nil {
		return nil, err
	}

	var result discoveryadapter.Result
	discover := func(ctx context.Context) error {
		resolver := discoveryadapter.NewResolver(app.httpClient, app.baseURL, cookieHeader, app.requiredOps, app.logger)
		result = resolver.Discover(ctx)
		if !result.Complete(app.requiredOps) {
			return fmt.Errorf("%w: missing %s", errDiscoveryIncomplete, strings.Join(result.Missing(app.requiredOps), ", "))
		}
		return nil
	}

	if err := runFetchSpinner(ctx, cmd.OutOrStdout(), "Discovering API endpoints...", discover); err != nil {
		return nil, err
	}

	creds.Bearer = result.Bearer
	if creds.Handle == "" {
		if handle := identityadapter.Handle(result.Page, creds.UserID); handle != "" {
			creds.Handle = handle
			profile.Handle = handle
			if saveErr := app.profiles.Save(ctx, profile); saveErr != nil {
				app.logger.Warn("persist resolved handle", "profile", profile.ID, "err", saveErr)
			}
		}
	}

	gateway := xapiadapter.NewClient(app.httpClient, xapiadapter.Config{
		BaseURL:         app.baseURL,
		CookieHeader:    cookieHeader,
		Features:        app.features,
		FieldToggles:    app.fieldToggles,
		ListOperation:   app.listOperation,
		DeleteOperation: app.deleteOperation,
	}, creds, result.Endpoints)

	pacer := application.NewPacer(app.deleteInterval, app.clock)
	sweeper := application.NewSweeper(gateway, extractadapter.Posts, pacer, app.logger, creds, app.pageCount)

	return &sweepSession{profile: profile, sweeper: sweeper}, nil
}

func (s *sweepSession) fetchPages(cmd *cobra.Command, pages int) error {
	if pages <= 0 {
		pages = 1
	}

	fetch := func(ctx context.Context) error {
		for i := 0; i < pages; i++ {
			added, err := s.sweeper.FetchPage(ctx)
			if err != nil {
				return err
			}
			// An empty page means the timeline is exhausted.
			if added == 0 {
				return nil
			}
		}
		return nil
	}

	return runFetchSpinner(cmd.Context(), cmd.OutOrStdout(), "Fetching posts...", fetch)
}
