package evaluation

import "context"

// DefaultKeyPrefix prefixes the user ID in marker keys.
const DefaultKeyPrefix = "mental_health_eval:"

// MarkerStore keeps one expiring Marker per user.
type MarkerStore interface {
	// Get returns the user's marker, or nil when none is live.
	Get(ctx context.Context, userID int64) (*Marker, error)
	// Set writes the user's marker, restarting its expiry.
	Set(ctx context.Context, userID int64, m Marker) error
}
