package permission

import (
	"sync"
)

// MaxPermissions is the number of distinct permissions a [Registry] can hold.
// It matches the width of [Mask64].
const MaxPermissions = 64

// Registry maps permission names to bit positions within a [Mask64].
type Registry struct {
	mu        sync.RWMutex
	nameToBit map[Permission]int
	bitToName map[int]Permission
	frozen    bool
}

// NewRegistry creates an empty, unfrozen [Registry].
func NewRegistry() *Registry {
	return &Registry{
		nameToBit: make(map[Permission]int),
		bitToName: make(map[int]Permission),
	}
}

// Register assigns the next available bit to the named permission.
// Returns the assigned bit index. Must be called before [Registry.Freeze].
func (r *Registry) Register(name Permission) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return -1, ErrRegistryFrozen
	}

	if name == "" {
		return -1, ErrEmptyPermission
	}

	if _, exists := r.nameToBit[name]; exists {
		return -1, ErrPermissionExists
	}

	nextBit := len(r.nameToBit)
	if nextBit >= MaxPermissions {
		return -1, ErrPermissionLimit
	}

	r.nameToBit[name] = nextBit
	r.bitToName[nextBit] = name

	return nextBit, nil
}

// Bit returns the bit index for the named permission, or false if not registered.
func (r *Registry) Bit(name Permission) (int, bool) {
	if r == nil {
		return -1, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	bit, ok := r.nameToBit[name]
	return bit, ok
}

// Name returns the permission name for the given bit index, or false if unassigned.
func (r *Registry) Name(bit int) (Permission, bool) {
	if r == nil {
		return "", false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.bitToName[bit]
	return name, ok
}

// Has reports whether the permission is registered.
func (r *Registry) Has(name Permission) bool {
	_, ok := r.Bit(name)
	return ok
}

// Freeze prevents further registrations.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Frozen reports whether [Registry.Freeze] has been called.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Count returns the number of registered permissions.
func (r *Registry) Count() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.nameToBit)
}

// Permissions returns every registered permission in bit order.
func (r *Registry) Permissions() []Permission {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Permission, 0, len(r.bitToName))
	for bit := 0; bit < len(r.bitToName); bit++ {
		out = append(out, r.bitToName[bit])
	}
	return out
}
