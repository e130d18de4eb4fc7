package goGate

import (
	"context"

	"github.com/MrEthical07/goGate/session"
)

// Status is the coarse lifecycle state of an [Engine].
type Status int

const (
	// StatusLoading is reported until Restore (or a first mutation) completes
	// and while a login is waiting on the verifier.
	StatusLoading Status = iota
	// StatusUnauthenticated means no user is present.
	StatusUnauthenticated
	// StatusAuthenticated means a user is present.
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Credentials is the input to [Engine.Login].
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Identity is what a [Verifier] returns for accepted credentials: the user
// record and an opaque token persisted under the token key.
type Identity struct {
	User  session.User
	Token string
}

// Verifier checks credentials. Implementations return an error wrapping
// [ErrInvalidCredentials] for rejected credentials; any other error is
// treated as the verifier being unavailable.
type Verifier interface {
	Verify(ctx context.Context, email, password string) (Identity, error)
}

// VerifierFunc adapts a function to [Verifier].
type VerifierFunc func(ctx context.Context, email, password string) (Identity, error)

func (f VerifierFunc) Verify(ctx context.Context, email, password string) (Identity, error) {
	return f(ctx, email, password)
}

// RestoreOutcome classifies a [Engine.Restore] call.
type RestoreOutcome int

const (
	// RestoreCold means nothing usable was persisted.
	RestoreCold RestoreOutcome = iota
	// RestoreHit means a session was hydrated from the store.
	RestoreHit
	// RestoreMalformed means persisted data existed but could not be decoded
	// or named an unknown role. The session is left empty.
	RestoreMalformed
)

func (o RestoreOutcome) String() string {
	switch o {
	case RestoreHit:
		return "hit"
	case RestoreMalformed:
		return "malformed"
	default:
		return "cold"
	}
}

// RestoreResult reports what Restore found. Err is set for malformed data
// (wrapping [ErrMalformedPersistedState]) and for an unreachable store on a
// cold start; it is informational and never fatal.
type RestoreResult struct {
	Outcome RestoreOutcome
	User    session.User
	Err     error
}
