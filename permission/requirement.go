package permission

import (
	"errors"
	"fmt"
)

// Requirement is a declarative access requirement. Every clause that is set
// must hold; an empty Requirement is always satisfied. RequireAll switches
// the Permissions clause from any-of to all-of.
type Requirement struct {
	Permission  Permission   `yaml:"permission,omitempty" json:"permission,omitempty"`
	Permissions []Permission `yaml:"permissions,omitempty" json:"permissions,omitempty"`
	RequireAll  bool         `yaml:"require_all,omitempty" json:"require_all,omitempty"`
	Role        Role         `yaml:"role,omitempty" json:"role,omitempty"`
	Roles       []Role       `yaml:"roles,omitempty" json:"roles,omitempty"`
}

// IsEmpty reports whether no clause is set.
func (r Requirement) IsEmpty() bool {
	return r.Permission == "" && len(r.Permissions) == 0 && r.Role == "" && len(r.Roles) == 0
}

// Validate checks every named permission and role against policy. An
// unvalidated requirement still evaluates safely; unknown names simply deny.
func (r Requirement) Validate(policy *Policy) error {
	var errs []error

	checkPerm := func(p Permission) {
		if p == "" {
			errs = append(errs, ErrEmptyPermission)
			return
		}
		if policy == nil || !policy.Registry().Has(p) {
			errs = append(errs, fmt.Errorf("%w: %s", ErrPermissionNotRegistered, p))
		}
	}
	checkRole := func(role Role) {
		if role == "" {
			errs = append(errs, ErrEmptyRole)
			return
		}
		if !policy.HasRole(role) {
			errs = append(errs, fmt.Errorf("%w: %s", ErrRoleNotRegistered, role))
		}
	}

	if r.Permission != "" {
		checkPerm(r.Permission)
	}
	for _, p := range r.Permissions {
		checkPerm(p)
	}
	if r.Role != "" {
		checkRole(r.Role)
	}
	for _, role := range r.Roles {
		checkRole(role)
	}

	return errors.Join(errs...)
}

// RequirePermission is shorthand for a single-permission requirement.
func RequirePermission(p Permission) Requirement {
	return Requirement{Permission: p}
}

// RequireAnyRole is shorthand for an any-of roles requirement.
func RequireAnyRole(roles ...Role) Requirement {
	return Requirement{Roles: roles}
}

// RequireAllPermissions is shorthand for an all-of permissions requirement.
func RequireAllPermissions(perms ...Permission) Requirement {
	return Requirement{Permissions: perms, RequireAll: true}
}
