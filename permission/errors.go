package permission

import "errors"

var (
	// ErrRegistryFrozen is returned when registering after Freeze.
	ErrRegistryFrozen = errors.New("registry frozen")
	// ErrEmptyPermission is returned for an empty permission name.
	ErrEmptyPermission = errors.New("permission name cannot be empty")
	// ErrPermissionExists is returned when a permission is registered twice.
	ErrPermissionExists = errors.New("permission already registered")
	// ErrPermissionLimit is returned when the registry is full.
	ErrPermissionLimit = errors.New("permission limit exceeded")
	// ErrPermissionNotRegistered is returned when a role or requirement names
	// a permission the registry does not know.
	ErrPermissionNotRegistered = errors.New("permission not registered")

	// ErrPolicyFrozen is returned when registering a role after Freeze.
	ErrPolicyFrozen = errors.New("policy frozen")
	// ErrEmptyRole is returned for an empty role name.
	ErrEmptyRole = errors.New("role name empty")
	// ErrRoleExists is returned when a role is registered twice.
	ErrRoleExists = errors.New("role already registered")
	// ErrRoleNotRegistered is returned when a requirement names an unknown role.
	ErrRoleNotRegistered = errors.New("role not registered")

	// ErrInvalidPolicyFile is returned when a policy document cannot be used.
	ErrInvalidPolicyFile = errors.New("invalid policy file")
	// ErrInvalidRoute is returned for a route entry without a usable path.
	ErrInvalidRoute = errors.New("invalid route")
)
