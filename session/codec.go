package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// EncodeUser serializes u as compact JSON text. Encoding is deterministic:
// equal users always produce identical bytes.
func EncodeUser(u User) (string, error) {
	data, err := json.Marshal(u)
	if err != nil {
		return "", fmt.Errorf("encode user: %w", err)
	}
	return string(data), nil
}

// DecodeUser parses userData text. It returns [ErrMalformedUserData] when the
// text is not a single JSON object or lacks a positive id, an email, a name
// or a role.
func DecodeUser(data string) (User, error) {
	dec := json.NewDecoder(strings.NewReader(data))

	var u User
	if err := dec.Decode(&u); err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrMalformedUserData, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return User{}, fmt.Errorf("%w: trailing data", ErrMalformedUserData)
	}

	switch {
	case u.ID <= 0:
		return User{}, fmt.Errorf("%w: missing id", ErrMalformedUserData)
	case strings.TrimSpace(u.Email) == "":
		return User{}, fmt.Errorf("%w: missing email", ErrMalformedUserData)
	case strings.TrimSpace(u.Name) == "":
		return User{}, fmt.Errorf("%w: missing name", ErrMalformedUserData)
	case u.Role == "":
		return User{}, fmt.Errorf("%w: missing role", ErrMalformedUserData)
	}

	return u, nil
}
