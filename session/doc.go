// Package session persists the current user and auth token into a key-value
// store and restores them at startup.
//
// # Storage layout
//
// A session occupies two keys, authToken and userData by default. userData
// is the user record as compact JSON; decoding is strict enough that a
// truncated or foreign value is reported as [ErrMalformedUserData].
//
// # Stores
//
//   - [MemoryStore]: in-process map.
//   - [FileStore]: one JSON object on disk, rewritten atomically.
//   - [RedisStore]: namespaced Redis string keys; implements [BatchStore].
//
// # What this package must NOT do
//
//   - Resolve permissions or make authorization decisions.
//   - Verify credentials or interpret the auth token.
//   - Import goGate or middleware.
package session
