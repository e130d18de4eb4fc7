package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	floorMemoryKB uint32 = 8 * 1024
	floorBytes    uint32 = 16

	defaultMinPasswordBytes = 10
	phcAlgorithm            = "argon2id"
)

var (
	// ErrPasswordTooShort is returned by Hash for passwords below the
	// configured minimum length.
	ErrPasswordTooShort = errors.New("password too short")
	// ErrMalformedHash is returned when a stored hash cannot be decoded.
	ErrMalformedHash = errors.New("malformed password hash")
	// ErrUnsupportedHash is returned for well-formed hashes of another
	// algorithm or Argon2 version.
	ErrUnsupportedHash = errors.New("unsupported password hash")
)

// Config holds Argon2id cost parameters. Memory is in KiB. MinPasswordBytes
// defaults to 10 when zero.
type Config struct {
	Memory           uint32
	Time             uint32
	Parallelism      uint8
	SaltLength       uint32
	KeyLength        uint32
	MinPasswordBytes int
}

// DefaultConfig returns the parameters used for stored credentials.
func DefaultConfig() Config {
	return Config{
		Memory:      64 * 1024,
		Time:        3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Validate reports every parameter below its floor.
func (c Config) Validate() error {
	var errs []error
	if c.Memory < floorMemoryKB {
		errs = append(errs, fmt.Errorf("memory must be at least %d KiB", floorMemoryKB))
	}
	if c.Time == 0 {
		errs = append(errs, errors.New("time must be positive"))
	}
	if c.Parallelism == 0 {
		errs = append(errs, errors.New("parallelism must be positive"))
	}
	if c.SaltLength < floorBytes {
		errs = append(errs, fmt.Errorf("salt length must be at least %d bytes", floorBytes))
	}
	if c.KeyLength < floorBytes {
		errs = append(errs, fmt.Errorf("key length must be at least %d bytes", floorBytes))
	}
	if c.MinPasswordBytes < 0 {
		errs = append(errs, errors.New("minimum password length must not be negative"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("password config: %w", err)
	}
	return nil
}

func (c Config) cost() cost {
	return cost{memory: c.Memory, time: c.Time, threads: c.Parallelism}
}

// cost is the parameter section of an encoded hash.
type cost struct {
	memory  uint32
	time    uint32
	threads uint8
}

func (c cost) String() string {
	return fmt.Sprintf("m=%d,t=%d,p=%d", c.memory, c.time, c.threads)
}

func (c cost) weakerThan(o cost) bool {
	return c.memory < o.memory || c.time < o.time || c.threads < o.threads
}

// digest is a decoded PHC string.
type digest struct {
	cost
	salt []byte
	key  []byte
}

func (d digest) derive(plaintext string) []byte {
	return argon2.IDKey([]byte(plaintext), d.salt, d.time, d.memory, d.threads, uint32(len(d.key)))
}

func (d digest) String() string {
	b64 := base64.RawStdEncoding
	return fmt.Sprintf("$%s$v=%d$%s$%s$%s",
		phcAlgorithm, argon2.Version, d.cost, b64.EncodeToString(d.salt), b64.EncodeToString(d.key))
}

func parseDigest(encoded string) (digest, error) {
	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[0] != "" {
		return digest{}, fmt.Errorf("%w: want 5 $-separated fields", ErrMalformedHash)
	}
	if fields[1] != phcAlgorithm {
		return digest{}, fmt.Errorf("%w: algorithm %q", ErrUnsupportedHash, fields[1])
	}

	var version int
	if _, err := fmt.Sscanf(fields[2], "v=%d", &version); err != nil {
		return digest{}, fmt.Errorf("%w: version field", ErrMalformedHash)
	}
	if version != argon2.Version {
		return digest{}, fmt.Errorf("%w: argon2 version %d", ErrUnsupportedHash, version)
	}

	var d digest
	if _, err := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d", &d.memory, &d.time, &d.threads); err != nil {
		return digest{}, fmt.Errorf("%w: parameters: %v", ErrMalformedHash, err)
	}
	// Sscanf stops at the last verb; reject anything it did not consume.
	if d.cost.String() != fields[3] {
		return digest{}, fmt.Errorf("%w: parameters %q", ErrMalformedHash, fields[3])
	}
	if d.memory < floorMemoryKB || d.time == 0 || d.threads == 0 {
		return digest{}, fmt.Errorf("%w: parameters below floor", ErrMalformedHash)
	}

	var err error
	if d.salt, err = decodeB64(fields[4]); err != nil || len(d.salt) < int(floorBytes) {
		return digest{}, fmt.Errorf("%w: salt", ErrMalformedHash)
	}
	if d.key, err = decodeB64(fields[5]); err != nil || len(d.key) == 0 {
		return digest{}, fmt.Errorf("%w: key", ErrMalformedHash)
	}
	return d, nil
}

// decodeB64 accepts both the unpadded PHC alphabet and padded standard
// base64.
func decodeB64(s string) ([]byte, error) {
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}

// Argon2 hashes and verifies passwords in PHC string format.
type Argon2 struct {
	cfg Config
}

// NewArgon2 validates cfg and returns a hasher for it.
func NewArgon2(cfg Config) (*Argon2, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.MinPasswordBytes == 0 {
		cfg.MinPasswordBytes = defaultMinPasswordBytes
	}
	return &Argon2{cfg: cfg}, nil
}

// Hash returns the PHC encoding of plaintext under a fresh random salt.
// Passwords are hashed as raw bytes with no Unicode normalization.
func (a *Argon2) Hash(plaintext string) (string, error) {
	if len(plaintext) < a.cfg.MinPasswordBytes {
		return "", fmt.Errorf("%w: need at least %d bytes", ErrPasswordTooShort, a.cfg.MinPasswordBytes)
	}

	d := digest{cost: a.cfg.cost(), salt: make([]byte, a.cfg.SaltLength), key: make([]byte, a.cfg.KeyLength)}
	if _, err := rand.Read(d.salt); err != nil {
		return "", fmt.Errorf("password salt: %w", err)
	}
	d.key = d.derive(plaintext)
	return d.String(), nil
}

// Verify reports whether plaintext matches encoded. The comparison is
// constant time; an error means encoded itself is unusable.
func (a *Argon2) Verify(plaintext, encoded string) (bool, error) {
	d, err := parseDigest(encoded)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(d.derive(plaintext), d.key) == 1, nil
}

// NeedsUpgrade reports whether encoded was produced with weaker costs or a
// different key length than the hasher's.
func (a *Argon2) NeedsUpgrade(encoded string) (bool, error) {
	d, err := parseDigest(encoded)
	if err != nil {
		return false, err
	}
	return d.cost.weakerThan(a.cfg.cost()) || uint32(len(d.key)) != a.cfg.KeyLength, nil
}
