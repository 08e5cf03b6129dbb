package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	identityadapter "tweetsweep/internal/adapters/identity"
	"tweetsweep/internal/domain"
)

var errSessionMissingCookies = errors.New("session cookies are missing required values")

func secretKeyForProfile(id domain.ProfileID) string {
	return fmt.Sprintf("x://%s/cookies", id)
}

// loadProfileSession fetches the stored cookie material for a profile and
// derives the session identity from it. The bearer is left empty; it comes
// from endpoint discovery at call time.
func loadProfileSession(ctx context.Context, app *app, id domain.ProfileID) (domain.Profile, string, domain.Credentials, error) {
	profile, err := app.profiles.GetByID(ctx, id)
	if err != nil {
		return domain.Profile{}, "", domain.Credentials{}, err
	}

	cookieHeader, err := app.secretStore.Get(ctx, profile.SecretRef)
	if err != nil {
		return domain.Profile{}, "", domain.Credentials{}, fmt.Errorf("load session cookies for profile %s: %w", id, err)
	}

	creds := identityadapter.Credentials(cookieHeader)
	creds.Handle = profile.Handle
	if creds.UserID == "" {
		creds.UserID = profile.UserID
	}

	return profile, cookieHeader, creds, nil
}

func validateCookieHeader(cookieHeader string) (domain.Credentials, error) {
	trimmed := strings.TrimSpace(cookieHeader)
	if trimmed == "" {
		return domain.Credentials{}, fmt.Errorf("%w: empty cookie string", errSessionMissingCookies)
	}

	creds := identityadapter.Credentials(trimmed)
	if creds.CSRF == "" {
		return domain.Credentials{}, fmt.Errorf("%w: ct0 cookie not found", errSessionMissingCookies)
	}
	if creds.UserID == "" {
		return domain.Credentials{}, fmt.Errorf("%w: twid cookie not found (is the tab logged in?)", errSessionMissingCookies)
	}

	return creds, nil
}
