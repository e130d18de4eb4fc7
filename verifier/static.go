package verifier

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/jwt"
	"github.com/MrEthical07/goGate/password"
	"github.com/MrEthical07/goGate/session"
	"go.uber.org/zap"
)

// Static verifies credentials against an in-memory account table. Passwords
// are stored as Argon2id hashes. It implements [goGate.Verifier].
type Static struct {
	hasher   *password.Argon2
	tokens   *jwt.Manager
	throttle Throttle
	delay    time.Duration
	logger   *zap.Logger
	now      func() time.Time

	mu       sync.RWMutex
	accounts map[string]account
}

type account struct {
	user session.User
	hash string
}

// Option configures a [Static] verifier.
type Option func(*Static)

// WithDelay makes every Verify call wait d before answering, simulating a
// remote authentication round-trip.
func WithDelay(d time.Duration) Option {
	return func(s *Static) {
		s.delay = d
	}
}

// WithTokens issues signed tokens through m. Without it tokens have the
// form mock-token-<id>-<unix millis>.
func WithTokens(m *jwt.Manager) Option {
	return func(s *Static) {
		s.tokens = m
	}
}

// Throttle limits repeated failed logins. *rate.Limiter implements it.
type Throttle interface {
	Check(ctx context.Context, email, ip string) error
	Failure(ctx context.Context, email, ip string) error
	Reset(ctx context.Context, email, ip string) error
}

// WithThrottle consults t before each check and reports outcomes to it.
// The client IP comes from [goGate.ClientIPFromContext].
func WithThrottle(t Throttle) Option {
	return func(s *Static) {
		s.throttle = t
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Static) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New returns an empty verifier hashing with hasher.
func New(hasher *password.Argon2, opts ...Option) (*Static, error) {
	if hasher == nil {
		return nil, errors.New("verifier requires a password hasher")
	}

	s := &Static{
		hasher:   hasher,
		logger:   zap.NewNop(),
		now:      time.Now,
		accounts: make(map[string]account),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.delay < 0 {
		return nil, errors.New("verifier delay must be >= 0")
	}
	s.logger = s.logger.Named("verifier")

	return s, nil
}

// Add registers user with the given plaintext password. Emails are matched
// case-insensitively and must be unique.
func (s *Static) Add(user session.User, plaintext string) error {
	key := normalizeEmail(user.Email)
	if key == "" || user.ID <= 0 || strings.TrimSpace(user.Name) == "" {
		return errors.New("account requires an id, an email and a name")
	}

	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		return fmt.Errorf("hash password for %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[key]; exists {
		return fmt.Errorf("account %s already exists", key)
	}
	s.accounts[key] = account{user: user, hash: hash}
	return nil
}

// Emails returns the registered emails in sorted order.
func (s *Static) Emails() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.accounts))
	for email := range s.accounts {
		out = append(out, email)
	}
	sort.Strings(out)
	return out
}

// Verify checks email and pwd after the configured delay. Unknown emails
// and wrong passwords both return [goGate.ErrInvalidCredentials].
func (s *Static) Verify(ctx context.Context, email, pwd string) (goGate.Identity, error) {
	if err := s.wait(ctx); err != nil {
		return goGate.Identity{}, err
	}

	key := normalizeEmail(email)
	ip := goGate.ClientIPFromContext(ctx)
	if s.throttle != nil {
		if err := s.throttle.Check(ctx, key, ip); err != nil {
			return goGate.Identity{}, err
		}
	}

	s.mu.RLock()
	acct, ok := s.accounts[key]
	s.mu.RUnlock()
	if !ok {
		return goGate.Identity{}, s.reject(ctx, key, ip)
	}

	match, err := s.hasher.Verify(pwd, acct.hash)
	if err != nil {
		return goGate.Identity{}, fmt.Errorf("verify %s: %w", acct.user.Email, err)
	}
	if !match {
		return goGate.Identity{}, s.reject(ctx, key, ip)
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, key, ip); err != nil {
			s.logger.Warn("throttle reset failed", zap.Error(err))
		}
	}

	if needs, err := s.hasher.NeedsUpgrade(acct.hash); err == nil && needs {
		s.logger.Info("stored hash uses weaker parameters", zap.Int64("user_id", acct.user.ID))
	}

	token, err := s.issue(acct.user)
	if err != nil {
		return goGate.Identity{}, fmt.Errorf("issue token: %w", err)
	}

	return goGate.Identity{User: acct.user, Token: token}, nil
}

func (s *Static) reject(ctx context.Context, key, ip string) error {
	if s.throttle != nil {
		if err := s.throttle.Failure(ctx, key, ip); err != nil {
			s.logger.Warn("throttle update failed", zap.Error(err))
		}
	}
	return goGate.ErrInvalidCredentials
}

func (s *Static) issue(u session.User) (string, error) {
	if s.tokens == nil {
		return fmt.Sprintf("mock-token-%d-%d", u.ID, s.now().UnixMilli()), nil
	}
	return s.tokens.Issue(jwt.Subject{
		UserID: u.ID,
		Email:  u.Email,
		Role:   string(u.Role),
	})
}

func (s *Static) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
