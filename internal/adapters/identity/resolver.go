// Package identity derives session identity from cookie material and in-page
// state, independent of any network call.
package identity

import (
	"regexp"
	"strings"

	"tweetsweep/internal/domain"
)

var (
	// The auth-session cookie encodes the numeric user id as twid=u%3D<id>.
	userIDCookiePattern = regexp.MustCompile(`twid=u%3D(\d+)`)
	csrfCookiePattern   = regexp.MustCompile(`ct0=([^;\s]+)`)

	screenNamePattern  = regexp.MustCompile(`"screen_name"\s*:\s*"([A-Za-z0-9_]+)"`)
	profileLinkPattern = regexp.MustCompile(`data-testid="AppTabBar_Profile_Link"[^>]*href="/([A-Za-z0-9_]+)"`)
)

// Credentials parses a raw Cookie-header-style string into session
// credentials. Absent cookies leave the corresponding field empty; the bearer
// is never derived here, it comes from endpoint discovery.
func Credentials(cookieHeader string) domain.Credentials {
	creds := domain.Credentials{}

	if m := userIDCookiePattern.FindStringSubmatch(cookieHeader); m != nil {
		creds.UserID = m[1]
	}
	if m := csrfCookiePattern.FindStringSubmatch(cookieHeader); m != nil {
		creds.CSRF = m[1]
	}

	return creds
}

// Handle resolves the human-readable handle for userID from the fetched page:
// first from the bootstrap state blob (a screen_name near the user's id
// record), then from the profile tab link. Returns "" when neither works.
func Handle(page []byte, userID string) string {
	if len(page) == 0 {
		return ""
	}
	text := string(page)

	if userID != "" {
		if idx := strings.Index(text, `"id_str":"`+userID+`"`); idx >= 0 {
			window := text[idx:]
			if len(window) > 4096 {
				window = window[:4096]
			}
			if m := screenNamePattern.FindStringSubmatch(window); m != nil {
				return m[1]
			}
		}
	}

	if m := profileLinkPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}

	return ""
}
