package verifier

import (
	"github.com/MrEthical07/goGate/password"
	"github.com/MrEthical07/goGate/permission"
	"github.com/MrEthical07/goGate/session"
)

// DemoAccount is one built-in demo login.
type DemoAccount struct {
	User     session.User
	Password string
}

// DemoAccounts returns the three built-in accounts, one per default role.
func DemoAccounts() []DemoAccount {
	return []DemoAccount{
		{
			User:     session.User{ID: 1, Email: "admin@example.com", Name: "Admin User", Role: permission.RoleAdmin},
			Password: "admin123",
		},
		{
			User:     session.User{ID: 2, Email: "user@example.com", Name: "Regular User", Role: permission.RoleUser},
			Password: "user123",
		},
		{
			User:     session.User{ID: 3, Email: "guest@example.com", Name: "Guest User", Role: permission.RoleGuest},
			Password: "guest123",
		},
	}
}

// DemoHashConfig is a cheap Argon2id profile for the demo table. The demo
// passwords are shorter than the production minimum.
func DemoHashConfig() password.Config {
	return password.Config{
		Memory:           8 * 1024,
		Time:             1,
		Parallelism:      1,
		SaltLength:       16,
		KeyLength:        32,
		MinPasswordBytes: 6,
	}
}

// NewDemo returns a verifier seeded with [DemoAccounts].
func NewDemo(opts ...Option) (*Static, error) {
	hasher, err := password.NewArgon2(DemoHashConfig())
	if err != nil {
		return nil, err
	}
	s, err := New(hasher, opts...)
	if err != nil {
		return nil, err
	}
	for _, acct := range DemoAccounts() {
		if err := s.Add(acct.User, acct.Password); err != nil {
			return nil, err
		}
	}
	return s, nil
}
