package session

import "errors"

var (
	// ErrStoreUnavailable wraps any failure of the underlying key-value store.
	ErrStoreUnavailable = errors.New("session store unavailable")
	// ErrStoreCorrupt is returned when a store's backing data cannot be parsed.
	ErrStoreCorrupt = errors.New("session store corrupt")
	// ErrMalformedUserData is returned when persisted userData cannot be decoded.
	ErrMalformedUserData = errors.New("malformed user data")
)
