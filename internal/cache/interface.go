package cache

import (
	"context"
	"time"
)

// PresenceStore tracks which users currently hold a live connection.
// Presence is ephemeral state, never the authority for message delivery.
type PresenceStore interface {
	// SetOnline marks the user online with a TTL. Callers refresh the TTL
	// while the connection lives.
	SetOnline(ctx context.Context, userID string, ttl time.Duration) error

	// SetOffline removes the user's online marker.
	SetOffline(ctx context.Context, userID string) error

	// RefreshTTL extends the online marker for a connected user.
	RefreshTTL(ctx context.Context, userID string, ttl time.Duration) error

	// IsOnline reports whether the user has a live marker.
	IsOnline(ctx context.Context, userID string) (bool, error)

	// OnlineAmong filters the given user IDs down to those currently online.
	OnlineAmong(ctx context.Context, userIDs []string) ([]string, error)

	// Close releases the underlying connection.
	Close() error
}
