package goGate

import (
	"github.com/MrEthical07/goGate/permission"
	"github.com/MrEthical07/goGate/session"
)

// SessionState is an immutable snapshot of the session. The Engine swaps
// whole snapshots, so a value obtained from [Engine.Session] never changes
// underneath its holder. A nil *SessionState is the unauthenticated session.
type SessionState struct {
	user          session.User
	token         string
	permissions   permission.Set
	authenticated bool
}

var anonymousState = &SessionState{}

func newSessionState(user session.User, token string, perms permission.Set) *SessionState {
	return &SessionState{
		user:          user,
		token:         token,
		permissions:   perms,
		authenticated: true,
	}
}

// User returns the current user and whether one is present.
func (s *SessionState) User() (session.User, bool) {
	if s == nil || !s.authenticated {
		return session.User{}, false
	}
	return s.user, true
}

func (s *SessionState) IsAuthenticated() bool {
	return s != nil && s.authenticated
}

// Permissions returns the derived permission set; empty when
// unauthenticated.
func (s *SessionState) Permissions() permission.Set {
	if s == nil || !s.authenticated {
		return permission.Set{}
	}
	return s.permissions
}

// Token returns the opaque auth token issued at login.
func (s *SessionState) Token() string {
	if s == nil {
		return ""
	}
	return s.token
}

func (s *SessionState) record() session.Record {
	return session.Record{Token: s.token, User: s.user}
}
