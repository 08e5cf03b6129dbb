package domain

type PostID string

// Post is an owned timeline post captured from a list query response.
// Records are immutable once built; re-extraction replaces the whole record
// rather than merging fields.
type Post struct {
	ID              PostID
	BodyText        string
	CreatedAt       string
	CreatedAtMillis int64
}

func (p Post) LiveURL() string {
	return "https://x.com/i/status/" + string(p.ID)
}
