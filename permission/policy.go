package permission

import (
	"fmt"
	"sort"
	"sync"
)

// Policy is the role-to-permission map. Roles are registered during
// initialization; after [Policy.Freeze] the map is read-only and
// [Policy.PermissionsFor] is a pure lookup.
type Policy struct {
	registry *Registry

	mu     sync.RWMutex
	roles  map[Role]Mask64
	frozen bool
}

// NewPolicy creates an empty policy over registry.
func NewPolicy(registry *Registry) *Policy {
	return &Policy{
		registry: registry,
		roles:    make(map[Role]Mask64),
	}
}

// RegisterRole maps role to the given permissions. Every permission must
// already be registered. A role with no permissions is valid and resolves
// to the empty set.
func (p *Policy) RegisterRole(role Role, perms []Permission) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.frozen {
		return ErrPolicyFrozen
	}

	if role == "" {
		return ErrEmptyRole
	}

	if _, exists := p.roles[role]; exists {
		return fmt.Errorf("%w: %s", ErrRoleExists, role)
	}

	var mask Mask64
	for _, perm := range perms {
		bit, ok := p.registry.Bit(perm)
		if !ok {
			return fmt.Errorf("%w: %s", ErrPermissionNotRegistered, perm)
		}
		mask.Set(bit)
	}

	p.roles[role] = mask
	return nil
}

// PermissionsFor returns the permission set granted to role. Unknown roles
// and a nil policy resolve to the empty set.
func (p *Policy) PermissionsFor(role Role) Set {
	if p == nil {
		return Set{}
	}
	p.mu.RLock()
	mask, ok := p.roles[role]
	p.mu.RUnlock()
	if !ok {
		return Set{}
	}
	return Set{mask: mask, registry: p.registry}
}

// HasRole reports whether role has an entry in the map.
func (p *Policy) HasRole(role Role) bool {
	if p == nil {
		return false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.roles[role]
	return ok
}

// Roles returns the registered roles sorted by name.
func (p *Policy) Roles() []Role {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]Role, 0, len(p.roles))
	for role := range p.roles {
		out = append(out, role)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Registry returns the permission registry the policy resolves against.
func (p *Policy) Registry() *Registry {
	return p.registry
}

// Freeze prevents further role registrations and freezes the registry.
func (p *Policy) Freeze() {
	p.mu.Lock()
	p.frozen = true
	p.mu.Unlock()
	p.registry.Freeze()
}

// Count returns the number of registered roles.
func (p *Policy) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.roles)
}

// Build registers perms in order, then every role in roles, and freezes
// the result.
func Build(perms []Permission, roles map[Role][]Permission) (*Policy, error) {
	registry := NewRegistry()
	for _, perm := range perms {
		if _, err := registry.Register(perm); err != nil {
			return nil, fmt.Errorf("register permission %q: %w", perm, err)
		}
	}

	policy := NewPolicy(registry)
	names := make([]Role, 0, len(roles))
	for role := range roles {
		names = append(names, role)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	for _, role := range names {
		if err := policy.RegisterRole(role, roles[role]); err != nil {
			return nil, err
		}
	}

	policy.Freeze()
	return policy, nil
}

// Default returns a frozen policy holding the built-in roles and permissions.
func Default() *Policy {
	policy, err := Build(AllPermissions(), DefaultRolePermissions())
	if err != nil {
		panic(fmt.Sprintf("permission: default policy: %v", err))
	}
	return policy
}
