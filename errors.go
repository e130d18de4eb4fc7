package goGate

import "errors"

var (
	// ErrInvalidCredentials is returned by Login when the verifier rejects the
	// credentials or returns an identity the policy cannot accept.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNoActiveSession is returned by UpdateUser when nobody is logged in.
	ErrNoActiveSession = errors.New("no active session")
	// ErrMalformedPersistedState marks persisted session data that could not be
	// restored. Restore treats it as a cold start.
	ErrMalformedPersistedState = errors.New("malformed persisted state")
	// ErrPersistenceWriteFailure is returned alongside a successful in-memory
	// mutation whose write to the store failed.
	ErrPersistenceWriteFailure = errors.New("persistence write failure")
	// ErrUnknownRole is returned when a user carries a role the policy does not
	// define.
	ErrUnknownRole = errors.New("unknown role")
	// ErrInvalidUserUpdate is returned when a patch would leave the user
	// without an email or name.
	ErrInvalidUserUpdate = errors.New("invalid user update")
	// ErrVerifierUnavailable wraps verifier failures other than rejected
	// credentials.
	ErrVerifierUnavailable = errors.New("credential verifier unavailable")
	// ErrEngineNotReady is returned by methods called on a nil or unbuilt Engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
