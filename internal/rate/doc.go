// Package rate throttles failed logins with Redis fixed-window counters.
//
// # Window semantics
//
// INCR plus EXPIRE on the first hit of a window. Keys, under the configured
// prefix:
//   - login:u:<email> counts failures per identifier
//   - login:ip:<ip>   counts failures per client IP (optional)
//
// A success clears both counters.
//
// # What this package must NOT do
//
//   - Decide credentials. It only counts failures reported by a verifier.
package rate
