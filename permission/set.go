package permission

// Set is an immutable set of permissions resolved against a [Registry].
// The zero value is the empty set and denies every membership check.
type Set struct {
	mask     Mask64
	registry *Registry
}

// NewSet builds a set from named permissions. Names the registry does not
// know are ignored.
func NewSet(registry *Registry, perms ...Permission) Set {
	s := Set{registry: registry}
	for _, p := range perms {
		if bit, ok := registry.Bit(p); ok {
			s.mask.Set(bit)
		}
	}
	return s
}

// Has reports whether p is a member. Unknown permissions are never members.
func (s Set) Has(p Permission) bool {
	if s.mask == 0 {
		return false
	}
	bit, ok := s.registry.Bit(p)
	if !ok {
		return false
	}
	return s.mask.Has(bit)
}

// HasAll reports whether every permission in ps is a member. An empty ps
// is vacuously satisfied.
func (s Set) HasAll(ps ...Permission) bool {
	for _, p := range ps {
		if !s.Has(p) {
			return false
		}
	}
	return true
}

// HasAny reports whether at least one permission in ps is a member.
func (s Set) HasAny(ps ...Permission) bool {
	for _, p := range ps {
		if s.Has(p) {
			return true
		}
	}
	return false
}

func (s Set) Len() int {
	return s.mask.Count()
}

func (s Set) IsEmpty() bool {
	return s.mask == 0
}

// Mask exposes the underlying bitmask.
func (s Set) Mask() Mask64 {
	return s.mask
}

// Equal compares membership. Sets from different registries are only equal
// when both are empty.
func (s Set) Equal(other Set) bool {
	if s.mask == 0 || other.mask == 0 {
		return s.mask == other.mask
	}
	return s.registry == other.registry && s.mask == other.mask
}

// Permissions returns the members in registry bit order.
func (s Set) Permissions() []Permission {
	out := make([]Permission, 0, s.mask.Count())
	if s.mask == 0 {
		return out
	}
	for bit := 0; bit < MaxPermissions; bit++ {
		if !s.mask.Has(bit) {
			continue
		}
		if name, ok := s.registry.Name(bit); ok {
			out = append(out, name)
		}
	}
	return out
}

// Strings returns the members as plain strings, in registry bit order.
func (s Set) Strings() []string {
	perms := s.Permissions()
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}
