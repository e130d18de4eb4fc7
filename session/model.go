package session

import (
	"strings"
	"unicode/utf8"

	"github.com/MrEthical07/goGate/permission"
)

// User is the identity record owned by the session. Field order fixes the
// serialized userData layout.
type User struct {
	ID    int64           `json:"id"`
	Email string          `json:"email"`
	Name  string          `json:"name"`
	Role  permission.Role `json:"role"`

	Bio      string `json:"bio,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
}

// ValidUTF8 reports whether every text field is valid UTF-8. Invalid bytes
// would be replaced with U+FFFD by the userData encoding, so such a user
// does not survive a save and restore unchanged.
func (u User) ValidUTF8() bool {
	for _, s := range []string{u.Email, u.Name, string(u.Role), u.Bio, u.Phone, u.Location} {
		if !utf8.ValidString(s) {
			return false
		}
	}
	return true
}

// UserPatch carries a partial update. Nil fields are left unchanged; the ID
// is immutable and cannot be patched.
type UserPatch struct {
	Email    *string          `json:"email,omitempty"`
	Name     *string          `json:"name,omitempty"`
	Role     *permission.Role `json:"role,omitempty"`
	Bio      *string          `json:"bio,omitempty"`
	Phone    *string          `json:"phone,omitempty"`
	Location *string          `json:"location,omitempty"`
}

// Apply returns u with every non-nil patch field merged in.
func (p UserPatch) Apply(u User) User {
	if p.Email != nil {
		u.Email = strings.TrimSpace(*p.Email)
	}
	if p.Name != nil {
		u.Name = strings.TrimSpace(*p.Name)
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Location != nil {
		u.Location = *p.Location
	}
	return u
}

// ChangesRole reports whether the patch names a role.
func (p UserPatch) ChangesRole() bool {
	return p.Role != nil
}

// IsEmpty reports whether the patch changes nothing.
func (p UserPatch) IsEmpty() bool {
	return p.Email == nil && p.Name == nil && p.Role == nil &&
		p.Bio == nil && p.Phone == nil && p.Location == nil
}

// Record is what a [Persistence] saves and restores: the opaque auth token
// and the user it belongs to.
type Record struct {
	Token string
	User  User
}
