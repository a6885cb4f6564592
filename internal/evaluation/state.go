// Package evaluation produces the periodic mental-health assessment and decides when the
// persisted record is created, left alone, or refreshed.
package evaluation

import "time"

// State is the cache state of a user's evaluation at a point in time.
type State int

const (
	// NoCache means no live marker exists: a new record is inserted.
	NoCache State = iota
	// Fresh means the record was written within the throttle window: nothing is written.
	Fresh
	// Stale means the throttle window has passed: the record is updated in place.
	Stale
)

func (s State) String() string {
	switch s {
	case NoCache:
		return "no_cache"
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	default:
		return "unknown"
	}
}

// Policy holds the two time constants of the evaluation cache.
type Policy struct {
	// ThrottleWindow is the minimum time between relational writes for a user.
	ThrottleWindow time.Duration
	// Horizon is how long a marker lives; after it the next evaluation inserts a new record.
	Horizon time.Duration
}

// DefaultPolicy throttles writes to one per two hours and forgets markers after a day.
var DefaultPolicy = Policy{ThrottleWindow: 2 * time.Hour, Horizon: 24 * time.Hour}

// Marker records which record holds a user's current evaluation and when it was last written.
type Marker struct {
	EvaluationID int64
	LastUpdated  time.Time
}

// Decision is the outcome of Decide. Marker is set for Fresh and Stale.
type Decision struct {
	State  State
	Marker *Marker
}

// Decide classifies a user's marker at now. A marker older than the horizon counts as absent
// even if the store has not expired it yet.
func Decide(m *Marker, now time.Time, p Policy) Decision {
	if m == nil {
		return Decision{State: NoCache}
	}
	age := now.Sub(m.LastUpdated)
	if p.Horizon > 0 && age >= p.Horizon {
		return Decision{State: NoCache}
	}
	if age < p.ThrottleWindow {
		return Decision{State: Fresh, Marker: m}
	}
	return Decision{State: Stale, Marker: m}
}
