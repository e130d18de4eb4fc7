package rate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config tunes the login throttle.
type Config struct {
	// MaxAttempts failures are tolerated per window; the next check fails.
	MaxAttempts      int
	Window           time.Duration
	EnableIPThrottle bool
	Prefix           string
}

// DefaultConfig allows five failures per identifier per 15 minutes.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 5,
		Window:      15 * time.Minute,
		Prefix:      "gogate:rl:",
	}
}

// Limiter counts failed logins per identifier and, optionally, per IP.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

func New(redisClient redis.UniversalClient, cfg Config) (*Limiter, error) {
	if redisClient == nil {
		return nil, errors.New("rate: nil redis client")
	}
	if cfg.MaxAttempts <= 0 {
		return nil, fmt.Errorf("rate: MaxAttempts must be > 0, got %d", cfg.MaxAttempts)
	}
	if cfg.Window <= 0 {
		return nil, fmt.Errorf("rate: Window must be > 0, got %s", cfg.Window)
	}
	return &Limiter{redis: redisClient, config: cfg}, nil
}

// Check fails with [ErrRateLimited] when email or ip already used up the
// window's budget. It does not count an attempt.
func (l *Limiter) Check(ctx context.Context, email, ip string) error {
	for _, key := range l.keys(email, ip) {
		count, err := l.redis.Get(ctx, key).Int64()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		if count >= int64(l.config.MaxAttempts) {
			return ErrRateLimited
		}
	}
	return nil
}

// Failure records one failed attempt for email and ip.
func (l *Limiter) Failure(ctx context.Context, email, ip string) error {
	for _, key := range l.keys(email, ip) {
		count, err := l.redis.Incr(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		if count == 1 {
			if err := l.redis.Expire(ctx, key, l.config.Window).Err(); err != nil {
				return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
			}
		}
	}
	return nil
}

// Reset clears the counters after a successful login.
func (l *Limiter) Reset(ctx context.Context, email, ip string) error {
	if err := l.redis.Del(ctx, l.keys(email, ip)...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Attempts returns the failure count for email in the current window.
func (l *Limiter) Attempts(ctx context.Context, email string) (int, error) {
	count, err := l.redis.Get(ctx, l.userKey(email)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return int(max(count, 0)), nil
}

func (l *Limiter) keys(email, ip string) []string {
	keys := []string{l.userKey(email)}
	if l.config.EnableIPThrottle && ip != "" {
		keys = append(keys, l.config.Prefix+"login:ip:"+ip)
	}
	return keys
}

func (l *Limiter) userKey(email string) string {
	return l.config.Prefix + "login:u:" + strings.ToLower(strings.TrimSpace(email))
}
