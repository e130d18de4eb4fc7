package goGate

import (
	"errors"
	"strings"

	"github.com/MrEthical07/goGate/permission"
	"github.com/MrEthical07/goGate/session"
)

// Config is the Engine configuration. It is copied by the Builder, so later
// changes to a Config value do not affect a built Engine.
type Config struct {
	Storage StorageConfig
	Audit   AuditConfig
	Metrics MetricsConfig
	Routing RoutingConfig
}

/*
====================================
STORAGE CONFIG
====================================
*/

// StorageConfig names the two key-value entries a session is persisted
// under.
type StorageConfig struct {
	TokenKey string
	UserKey  string
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig toggles the in-process counters and the login latency
// histogram.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
ROUTING CONFIG
====================================
*/

// RoutingConfig holds defaults for route guards built from the Engine.
type RoutingConfig struct {
	// DefaultFallback is where denied requests are redirected when a route
	// names no fallback of its own.
	DefaultFallback string
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			TokenKey: session.DefaultTokenKey,
			UserKey:  session.DefaultUserKey,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
		Routing: RoutingConfig{
			DefaultFallback: permission.DefaultFallbackPath,
		},
	}
}

/*
====================================
VALIDATION
====================================
*/

// Validate checks cfg for values the Engine cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Storage.TokenKey) == "" {
		return errors.New("Storage TokenKey must not be empty")
	}
	if strings.TrimSpace(c.Storage.UserKey) == "" {
		return errors.New("Storage UserKey must not be empty")
	}
	if c.Storage.TokenKey == c.Storage.UserKey {
		return errors.New("Storage TokenKey and UserKey must differ")
	}

	if c.Audit.BufferSize < 0 {
		return errors.New("Audit BufferSize must be >= 0")
	}
	if c.Audit.Enabled && c.Audit.BufferSize == 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	if !strings.HasPrefix(c.Routing.DefaultFallback, "/") {
		return errors.New("Routing DefaultFallback must be an absolute path")
	}

	return nil
}

// LintWarning is a non-fatal configuration observation.
type LintWarning struct {
	Code    string
	Message string
}

// LintWarnings is the result of [Config.Lint].
type LintWarnings []LintWarning

// Codes returns the warning codes in order.
func (ws LintWarnings) Codes() []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.Code
	}
	return out
}

// Lint reports settings that are valid but likely unintended.
func (c *Config) Lint() LintWarnings {
	var ws LintWarnings

	if c.Audit.Enabled && !c.Audit.DropIfFull {
		ws = append(ws, LintWarning{
			Code:    "audit_blocking",
			Message: "audit dispatcher blocks session mutations when its buffer is full",
		})
	}
	if !c.Metrics.Enabled {
		ws = append(ws, LintWarning{
			Code:    "metrics_disabled",
			Message: "persistence failures will only be visible in logs",
		})
	}
	if c.Storage.TokenKey != session.DefaultTokenKey || c.Storage.UserKey != session.DefaultUserKey {
		ws = append(ws, LintWarning{
			Code:    "storage_keys_custom",
			Message: "sessions persisted under the default keys will not be restored",
		})
	}

	return ws
}
