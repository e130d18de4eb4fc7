package main

import (
	"context"
	"fmt"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/internal/appconfig"
	"github.com/MrEthical07/goGate/internal/content"
	"github.com/MrEthical07/goGate/internal/rate"
	"github.com/MrEthical07/goGate/jwt"
	"github.com/MrEthical07/goGate/metrics/export/prometheus"
	"github.com/MrEthical07/goGate/permission"
	"github.com/MrEthical07/goGate/session"
	"github.com/MrEthical07/goGate/verifier"
)

type app struct {
	cfg      appconfig.Config
	logger   *zap.Logger
	engine   *goGate.Engine
	routes   *permission.RouteTable
	content  *content.Store
	tokens   *jwt.Manager
	exporter *prometheus.Exporter
	redis    redis.UniversalClient

	closers []func()
}

func newApp(ctx context.Context, cfg appconfig.Config, logger *zap.Logger) (_ *app, err error) {
	a := &app{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	policy, routes, err := loadPolicy(cfg.PolicyFile)
	if err != nil {
		return nil, err
	}
	a.routes = routes

	store, err := a.openStore()
	if err != nil {
		return nil, err
	}

	opts := []verifier.Option{verifier.WithDelay(cfg.LoginDelay), verifier.WithLogger(logger)}
	if cfg.TokenSecret != "" {
		a.tokens, err = jwt.NewManager(jwt.Config{
			TTL:           cfg.TokenTTL,
			SigningMethod: jwt.MethodHS256,
			PrivateKey:    []byte(cfg.TokenSecret),
			Issuer:        "gogate-demo",
		})
		if err != nil {
			return nil, fmt.Errorf("token manager: %w", err)
		}
		opts = append(opts, verifier.WithTokens(a.tokens))
	}
	if a.redis != nil {
		limiter, err := rate.New(a.redis, rate.Config{
			MaxAttempts:      cfg.LoginMaxAttempts,
			Window:           cfg.LoginWindow,
			EnableIPThrottle: true,
			Prefix:           cfg.RedisPrefix + "rl:",
		})
		if err != nil {
			return nil, err
		}
		opts = append(opts, verifier.WithThrottle(limiter))
	}
	accounts, err := verifier.NewDemo(opts...)
	if err != nil {
		return nil, fmt.Errorf("demo accounts: %w", err)
	}

	engineCfg := goGate.DefaultConfig()
	engineCfg.Audit.Enabled = cfg.Audit
	engineCfg.Metrics.Enabled = cfg.Metrics
	engineCfg.Metrics.EnableLatencyHistograms = cfg.Metrics
	for _, w := range engineCfg.Lint() {
		logger.Info("engine config", zap.String("code", w.Code), zap.String("note", w.Message))
	}

	a.engine, err = goGate.New().
		WithConfig(engineCfg).
		WithPolicy(policy).
		WithStore(store).
		WithVerifier(accounts).
		WithLogger(logger).
		WithAuditSink(goGate.NewZapSink(logger)).
		Build()
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, a.engine.Close)

	if err := a.routes.Validate(a.engine.Policy()); err != nil {
		return nil, err
	}

	res := a.engine.Restore(ctx)
	logger.Info("session restored", zap.Stringer("outcome", res.Outcome), zap.Int64("user_id", res.User.ID))

	a.content = content.New(store)
	if cfg.Metrics {
		a.exporter = prometheus.NewExporter(a.engine)
	}
	return a, nil
}

func loadPolicy(path string) (*permission.Policy, *permission.RouteTable, error) {
	if path == "" {
		return permission.Default(), permission.DefaultRouteTable(), nil
	}
	policy, routes, err := permission.LoadPolicyFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("policy file: %w", err)
	}
	return policy, routes, nil
}

func (a *app) openStore() (session.Store, error) {
	switch a.cfg.Store {
	case appconfig.StoreFile:
		return session.NewFileStore(a.cfg.StoreFile)
	case appconfig.StoreRedis:
		addr := a.cfg.RedisAddr
		if addr == "" {
			mr, err := miniredis.Run()
			if err != nil {
				return nil, fmt.Errorf("embedded redis: %w", err)
			}
			a.closers = append(a.closers, mr.Close)
			addr = mr.Addr()
			a.logger.Info("using embedded redis", zap.String("addr", addr))
		}
		client := redis.NewClient(&redis.Options{Addr: addr})
		a.closers = append(a.closers, func() { _ = client.Close() })
		a.redis = client

		store := session.NewRedisStore(client, a.cfg.RedisPrefix, 0)
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if _, err := store.Ping(pingCtx); err != nil {
			return nil, fmt.Errorf("redis %s: %w", addr, err)
		}
		return store, nil
	default:
		return session.NewMemoryStore(), nil
	}
}

// Close releases resources in reverse acquisition order.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
