package ports

import (
	"context"

	"tweetsweep/internal/domain"
)

// PlatformGateway issues the two remote operations the sweeper needs. The
// timeline response is returned raw because its shape is undocumented and
// versioned; extraction happens elsewhere.
type PlatformGateway interface {
	UserTimeline(ctx context.Context, userID string, count int) ([]byte, error)
	DeletePost(ctx context.Context, id domain.PostID) error
}
