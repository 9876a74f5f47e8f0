package repo

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrDirectoryUnavailable wraps a failed remote directory call.
	// Non-fatal: the caller may retry or keep its stale view.
	ErrDirectoryUnavailable = errors.New("directory unavailable")

	// ErrStorageUnavailable wraps a failed storage read during startup.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// RateLimited is the platform's slow-down signal. It is the only
// retried failure class: the caller sleeps RetryAfter and repeats the
// same call without advancing any pagination state.
type RateLimited struct {
	RetryAfter time.Duration
}

func (e *RateLimited) Error() string {
	return fmt.Sprintf("rate limited, retry after %v", e.RetryAfter)
}

// AsRateLimited extracts a rate-limit condition from an error chain.
func AsRateLimited(err error) (*RateLimited, bool) {
	var rl *RateLimited
	if errors.As(err, &rl) {
		return rl, true
	}
	return nil, false
}
