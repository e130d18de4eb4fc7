package goGate

import (
	"errors"
	"fmt"

	"github.com/MrEthical07/goGate/internal/audit"
	"github.com/MrEthical07/goGate/permission"
	"github.com/MrEthical07/goGate/session"
	"go.uber.org/zap"
)

// Builder assembles an [Engine]. A Builder can be built once.
type Builder struct {
	config Config

	policy   *permission.Policy
	store    session.Store
	verifier Verifier
	logger   *zap.Logger

	auditSink AuditSink

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithPolicy sets the role/permission policy. The policy is frozen by
// Build. Defaults to [permission.Default].
func (b *Builder) WithPolicy(policy *permission.Policy) *Builder {
	b.policy = policy
	return b
}

// WithStore sets the key-value store sessions persist into. Defaults to a
// fresh [session.MemoryStore].
func (b *Builder) WithStore(store session.Store) *Builder {
	b.store = store
	return b
}

// WithVerifier sets the credential verifier. Required.
func (b *Builder) WithVerifier(v Verifier) *Builder {
	b.verifier = v
	return b
}

func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// WithAuditSink sets the sink audit events are dispatched to. Events are
// only emitted when Config.Audit.Enabled is true.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns an Engine in
// [StatusLoading]; call [Engine.Restore] once at startup.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.verifier == nil {
		return nil, errors.New("credential verifier required")
	}

	policy := b.policy
	if policy == nil {
		policy = permission.Default()
	}
	if policy.Count() == 0 {
		return nil, errors.New("policy must define at least one role")
	}
	policy.Freeze()

	store := b.store
	if store == nil {
		store = session.NewMemoryStore()
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	engine := &Engine{
		config:   cfg,
		policy:   policy,
		verifier: b.verifier,
		persist: session.NewPersistence(store, session.Keys{
			Token: cfg.Storage.TokenKey,
			User:  cfg.Storage.UserKey,
		}),
		logger:  logger.Named("gogate"),
		metrics: NewMetrics(cfg.Metrics),
		audit: audit.NewDispatcher(audit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink),
	}
	engine.current.Store(anonymousState)

	b.built = true

	engine.logger.Debug("engine built",
		zap.Strings("roles", roleNames(policy.Roles())),
		zap.Int("permissions", policy.Registry().Count()),
		zap.String("token_key", cfg.Storage.TokenKey),
		zap.String("user_key", cfg.Storage.UserKey),
	)

	return engine, nil
}

func roleNames(roles []permission.Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

// MustBuild is Build for wiring code where a configuration error is a
// programming error.
func (b *Builder) MustBuild() *Engine {
	engine, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("goGate: %v", err))
	}
	return engine
}
