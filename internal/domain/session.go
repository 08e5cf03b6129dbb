package domain

// Credentials is the session identity resolved once at startup. Empty fields
// signal degraded capability, not an error: commands check the Can* helpers
// and stay inert instead of attempting requests that cannot succeed.
type Credentials struct {
	Bearer string
	CSRF   string
	UserID string
	Handle string
}

func (c Credentials) CanList() bool {
	return c.Bearer != "" && c.CSRF != "" && c.UserID != ""
}

func (c Credentials) CanDelete() bool {
	return c.CanList()
}

type ProfileID string

// Profile is the stored reference to a browser session: who it belongs to and
// where the cookie material lives in the secret store. Post data is never
// persisted; only the session reference survives between invocations.
type Profile struct {
	ID        ProfileID
	Handle    string
	UserID    string
	SecretRef string
}
