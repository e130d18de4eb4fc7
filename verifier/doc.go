// Package verifier provides credential verifiers for goGate engines.
//
// [Static] checks an in-memory account table with Argon2id password hashes
// and hands out either signed tokens (package jwt) or mock tokens.
// [NewDemo] seeds it with one account per default role. It stands in for a
// real authentication backend and is not a security boundary.
package verifier
