package session

import (
	"context"
	"errors"
	"fmt"
)

const (
	// DefaultTokenKey holds the opaque auth token.
	DefaultTokenKey = "authToken"
	// DefaultUserKey holds the JSON-encoded [User].
	DefaultUserKey = "userData"
)

// Keys names the two store entries a session occupies.
type Keys struct {
	Token string
	User  string
}

// DefaultKeys returns the authToken/userData key pair.
func DefaultKeys() Keys {
	return Keys{Token: DefaultTokenKey, User: DefaultUserKey}
}

// BatchStore is implemented by stores that can write or delete several keys
// atomically. [Persistence] prefers it when available.
type BatchStore interface {
	SetMany(ctx context.Context, values map[string]string) error
	RemoveMany(ctx context.Context, keys ...string) error
}

// Persistence saves and restores a [Record] through a [Store].
type Persistence struct {
	store Store
	keys  Keys
}

// NewPersistence binds store to keys. Empty key names fall back to the
// defaults.
func NewPersistence(store Store, keys Keys) *Persistence {
	if keys.Token == "" {
		keys.Token = DefaultTokenKey
	}
	if keys.User == "" {
		keys.User = DefaultUserKey
	}
	return &Persistence{store: store, keys: keys}
}

// Keys returns the key pair in use.
func (p *Persistence) Keys() Keys {
	return p.keys
}

// Save writes the token and the encoded user.
func (p *Persistence) Save(ctx context.Context, rec Record) error {
	userData, err := EncodeUser(rec.User)
	if err != nil {
		return err
	}

	if batch, ok := p.store.(BatchStore); ok {
		return batch.SetMany(ctx, map[string]string{
			p.keys.Token: rec.Token,
			p.keys.User:  userData,
		})
	}

	if err := p.store.Set(ctx, p.keys.User, userData); err != nil {
		return err
	}
	return p.store.Set(ctx, p.keys.Token, rec.Token)
}

// Load reads the persisted record. It returns (nil, nil) when either key is
// absent, and wraps [ErrMalformedUserData] when userData cannot be decoded.
func (p *Persistence) Load(ctx context.Context) (*Record, error) {
	token, okToken, err := p.store.Get(ctx, p.keys.Token)
	if err != nil {
		return nil, err
	}
	userData, okUser, err := p.store.Get(ctx, p.keys.User)
	if err != nil {
		return nil, err
	}
	if !okToken || !okUser || token == "" || userData == "" {
		return nil, nil
	}

	user, err := DecodeUser(userData)
	if err != nil {
		return nil, err
	}

	return &Record{Token: token, User: user}, nil
}

// Clear removes both keys. Removing absent keys is not an error.
func (p *Persistence) Clear(ctx context.Context) error {
	if batch, ok := p.store.(BatchStore); ok {
		return batch.RemoveMany(ctx, p.keys.Token, p.keys.User)
	}

	errToken := p.store.Remove(ctx, p.keys.Token)
	errUser := p.store.Remove(ctx, p.keys.User)
	if err := errors.Join(errToken, errUser); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
