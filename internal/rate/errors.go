package rate

import "errors"

var (
	// ErrRateLimited means the identifier or IP exhausted its failure budget
	// for the current window.
	ErrRateLimited      = errors.New("rate limited")
	ErrRedisUnavailable = errors.New("redis unavailable")
)
