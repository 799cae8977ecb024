package repositories

import "errors"

// Both stores return these sentinels so services can map them onto HTTP kinds without knowing
// which backend answered.
var (
	// ErrNotFound means no row matched the id or key, or a write referenced a missing user or
	// video. Malformed ids also end here.
	ErrNotFound = errors.New("repositories: not found")
	// ErrConflict means a write would duplicate a username, email, like, subscription or
	// playlist entry.
	ErrConflict = errors.New("repositories: conflict")
)
