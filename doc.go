// Package goGate is a role-based access-control core for a single client
// session: who is logged in, which permissions their role grants, and
// whether a route or piece of content may be shown to them.
//
// An [Engine] owns the session. It is built with a [Builder], hydrated once
// with [Engine.Restore], and mutated only through Login, Logout and
// UpdateUser. Every mutation is written through to a key-value
// [session.Store] under the authToken and userData keys.
//
// Authorization is answered by an [Evaluator] bound to an immutable
// [SessionState] snapshot. [Evaluator.IsAllowed] combines the clauses of a
// [Requirement] with AND semantics; route guards (package middleware) and
// render gates ([Gate]) call the same function.
//
// # Architecture boundaries
//
// goGate is the public surface. It exposes [Engine], [Builder], [Config],
// [Evaluator] and value types. Role and permission definitions live in
// package permission, user records and storage in package session, and
// audit dispatch under internal/.
//
// # What this package must NOT do
//
//   - Grant access on missing data: no session, an unknown role or an
//     unknown permission always evaluates to denied.
//   - Fail Restore fatally. Unreadable or malformed persisted state is a
//     cold start.
//   - Import package middleware, verifier or any other package that
//     imports goGate.
package goGate
