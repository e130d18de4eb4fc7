package goGate

import (
	"github.com/MrEthical07/goGate/permission"
)

// Requirement is a declarative access requirement; see [permission.Requirement].
type Requirement = permission.Requirement

// Evaluator answers authorization queries against one session snapshot.
// Evaluators are values: they are cheap to copy and safe for concurrent use.
// The zero Evaluator denies everything except the empty requirement.
type Evaluator struct {
	session *SessionState
}

// NewEvaluator returns an evaluator bound to state. A nil state evaluates
// as unauthenticated.
func NewEvaluator(state *SessionState) Evaluator {
	return Evaluator{session: state}
}

// Session returns the snapshot the evaluator is bound to.
func (ev Evaluator) Session() *SessionState {
	if ev.session == nil {
		return anonymousState
	}
	return ev.session
}

func (ev Evaluator) IsAuthenticated() bool {
	return ev.session.IsAuthenticated()
}

// HasPermission reports whether the session holds p.
func (ev Evaluator) HasPermission(p permission.Permission) bool {
	if !ev.session.IsAuthenticated() {
		return false
	}
	return ev.session.permissions.Has(p)
}

// HasRole reports whether the session user has exactly role r.
func (ev Evaluator) HasRole(r permission.Role) bool {
	u, ok := ev.session.User()
	return ok && r != "" && u.Role == r
}

// HasAnyRole reports whether the session user has one of roles. No roles
// yields false.
func (ev Evaluator) HasAnyRole(roles ...permission.Role) bool {
	u, ok := ev.session.User()
	if !ok {
		return false
	}
	for _, r := range roles {
		if r != "" && u.Role == r {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether the session holds every one of perms.
// An authenticated session trivially holds an empty list.
func (ev Evaluator) HasAllPermissions(perms ...permission.Permission) bool {
	if !ev.session.IsAuthenticated() {
		return false
	}
	return ev.session.permissions.HasAll(perms...)
}

// HasAnyPermission reports whether the session holds at least one of perms.
func (ev Evaluator) HasAnyPermission(perms ...permission.Permission) bool {
	if !ev.session.IsAuthenticated() {
		return false
	}
	return ev.session.permissions.HasAny(perms...)
}

// IsAllowed evaluates req. Every clause that is set must hold:
//
//  1. Permission must be held.
//  2. Permissions must be held all-of when RequireAll, otherwise any-of.
//  3. Role must match.
//  4. Roles must contain the user's role.
//
// An empty requirement is always allowed, even without a session.
func (ev Evaluator) IsAllowed(req Requirement) bool {
	if req.Permission != "" && !ev.HasPermission(req.Permission) {
		return false
	}
	if len(req.Permissions) > 0 {
		if req.RequireAll {
			if !ev.HasAllPermissions(req.Permissions...) {
				return false
			}
		} else if !ev.HasAnyPermission(req.Permissions...) {
			return false
		}
	}
	if req.Role != "" && !ev.HasRole(req.Role) {
		return false
	}
	if len(req.Roles) > 0 && !ev.HasAnyRole(req.Roles...) {
		return false
	}
	return true
}

// Gate returns content when ev allows req and the fallback otherwise. With
// no fallback the zero value of T is returned.
func Gate[T any](ev Evaluator, req Requirement, content T, fallback ...T) T {
	if ev.IsAllowed(req) {
		return content
	}
	if len(fallback) > 0 {
		return fallback[0]
	}
	var zero T
	return zero
}
