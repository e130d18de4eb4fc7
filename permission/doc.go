// Package permission holds the static authorization policy: the permission
// registry, the role-to-permission map, declarative requirements and the
// protected route table.
//
// # Model
//
// Permissions are registered once and assigned stable bit positions in a
// [Mask64]. A [Policy] maps each role to a mask; [Policy.PermissionsFor]
// resolves a role to an immutable [Set] in O(1). Unknown roles resolve to the
// empty set, and unknown permissions are never members of any set.
//
// # Lifecycle
//
// [Build], [Default] and [ParsePolicy] return frozen policies. Nothing may
// add or remove roles or permissions after that point.
//
// # What this package must NOT do
//
//   - Hold session state or know who the current user is.
//   - Perform I/O beyond reading a policy file on request.
//   - Import goGate, session or middleware.
package permission
