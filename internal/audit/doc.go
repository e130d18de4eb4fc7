// Package audit relays session lifecycle events (login, logout, user
// updates, restores and persistence failures) to pluggable sinks.
//
// # Components
//
//   - [Sink] is the consumer interface (channel, JSON lines, zap, no-op).
//   - [Dispatcher] is a buffered async relay that either drops or blocks when full.
//   - [Event] is the structured record: timestamp, type, user, role, IP, metadata.
//
// # Architecture boundaries
//
// This package owns buffering and delivery. The Engine decides which events
// to emit and what they carry.
//
// # What this package must NOT do
//
//   - Filter or suppress events based on authorization decisions.
//   - Import goGate or any sibling internal package.
//   - Perform I/O beyond what a caller-supplied Sink does.
package audit
