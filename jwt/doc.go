// Package jwt issues and verifies the signed tokens handed out at login.
//
// Tokens carry the user ID (subject), email and role, plus a random token ID.
// The session core treats them as opaque strings; parsing exists for
// callers that want to introspect the token a session holds.
package jwt
