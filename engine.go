package goGate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/goGate/internal/audit"
	"github.com/MrEthical07/goGate/permission"
	"github.com/MrEthical07/goGate/session"
	"go.uber.org/zap"
)

// Engine owns the single mutable session. Mutations (Login, Logout,
// UpdateUser, Restore, Flush) are serialized; queries read an immutable
// [SessionState] snapshot and never block on a mutation in flight.
type Engine struct {
	config   Config
	policy   *permission.Policy
	verifier Verifier
	persist  *session.Persistence
	logger   *zap.Logger
	audit    *audit.Dispatcher
	metrics  *Metrics

	mu      sync.Mutex
	current atomic.Pointer[SessionState]
	ready   atomic.Bool
	pending atomic.Int32
	// dirty is set when the store may not match memory. Guarded by mu.
	dirty bool
}

// Close flushes pending audit events. The Engine must not be used after.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped returns how many audit events were dropped because the
// dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// Config returns the configuration the Engine was built with.
func (e *Engine) Config() Config {
	return e.config
}

// Policy returns the frozen role/permission policy.
func (e *Engine) Policy() *permission.Policy {
	return e.policy
}

/*
====================================
QUERIES
====================================
*/

// Status reports the lifecycle state. It is StatusLoading before the first
// Restore or mutation completes and while any Login is in flight.
func (e *Engine) Status() Status {
	if e == nil || !e.ready.Load() || e.pending.Load() > 0 {
		return StatusLoading
	}
	if e.Session().IsAuthenticated() {
		return StatusAuthenticated
	}
	return StatusUnauthenticated
}

// Session returns the current snapshot. It is never nil.
func (e *Engine) Session() *SessionState {
	if e == nil {
		return anonymousState
	}
	if s := e.current.Load(); s != nil {
		return s
	}
	return anonymousState
}

// Evaluator returns an evaluator bound to the current snapshot. Later
// mutations do not affect it; fetch a fresh one per decision.
func (e *Engine) Evaluator() Evaluator {
	return NewEvaluator(e.Session())
}

// IsAllowed evaluates req against the current session and counts the
// decision.
func (e *Engine) IsAllowed(req Requirement) bool {
	allowed := e.Evaluator().IsAllowed(req)
	if allowed {
		e.metricInc(MetricAccessAllowed)
	} else {
		e.metricInc(MetricAccessDenied)
	}
	return allowed
}

// PersistencePending reports whether the store may lag behind memory after
// a failed write.
func (e *Engine) PersistencePending() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty
}

/*
====================================
MUTATIONS
====================================
*/

// Login verifies creds and, on success, replaces the session with the
// verified user, derives its permissions and persists the record.
//
// A rejected login returns an error wrapping [ErrInvalidCredentials] and
// leaves any prior session untouched. When only the store write fails the
// session is live and the returned error wraps [ErrPersistenceWriteFailure].
func (e *Engine) Login(ctx context.Context, creds Credentials) (session.User, error) {
	if e == nil || e.verifier == nil {
		return session.User{}, ErrEngineNotReady
	}

	e.pending.Add(1)
	defer e.pending.Add(-1)

	e.mu.Lock()
	defer e.mu.Unlock()

	email := strings.TrimSpace(creds.Email)

	start := time.Now()
	identity, err := e.verifier.Verify(ctx, email, creds.Password)
	e.metrics.Observe(MetricLoginLatency, time.Since(start))
	if err == nil {
		err = e.checkIdentity(identity)
	}
	if err != nil {
		if !errors.Is(err, ErrInvalidCredentials) {
			err = fmt.Errorf("%w: %w", ErrVerifierUnavailable, err)
		}
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, session.User{}, err, func() map[string]string {
			return map[string]string{
				"identifier": email,
			}
		})
		e.logger.Debug("login rejected", zap.String("email", email), zap.Error(err))
		return session.User{}, err
	}

	state := newSessionState(identity.User, identity.Token, e.policy.PermissionsFor(identity.User.Role))
	e.current.Store(state)
	e.ready.Store(true)

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, identity.User, nil, nil)

	return identity.User, e.syncLocked(ctx, state)
}

func (e *Engine) checkIdentity(id Identity) error {
	u := id.User
	if u.ID <= 0 || strings.TrimSpace(u.Email) == "" || strings.TrimSpace(u.Name) == "" {
		return fmt.Errorf("%w: verifier returned an incomplete user", ErrInvalidCredentials)
	}
	if !u.ValidUTF8() {
		return fmt.Errorf("%w: verifier returned a user with invalid UTF-8", ErrInvalidCredentials)
	}
	if !e.policy.HasRole(id.User.Role) {
		return errors.Join(ErrInvalidCredentials, fmt.Errorf("%w: %q", ErrUnknownRole, id.User.Role))
	}
	return nil
}

// Logout clears the session and removes the persisted record. Logging out
// without a session is a no-op apart from the store removal. The session
// is cleared even when the removal fails; the error then wraps
// [ErrPersistenceWriteFailure].
func (e *Engine) Logout(ctx context.Context) error {
	if e == nil {
		return ErrEngineNotReady
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	prev := e.Session()
	e.current.Store(anonymousState)
	e.ready.Store(true)

	if prev.IsAuthenticated() {
		e.metricInc(MetricLogout)
		e.emitAudit(ctx, auditEventLogout, true, prev.user, nil, nil)
	}

	return e.syncLocked(ctx, anonymousState)
}

// UpdateUser merges patch into the current user. Permissions are
// re-derived only when the patch names a role; the role must exist in the
// policy. Returns [ErrNoActiveSession] when nobody is logged in.
func (e *Engine) UpdateUser(ctx context.Context, patch session.UserPatch) (session.User, error) {
	if e == nil {
		return session.User{}, ErrEngineNotReady
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	cur := e.Session()
	user, ok := cur.User()
	if !ok {
		return session.User{}, ErrNoActiveSession
	}

	updated := patch.Apply(user)
	if updated.Email == "" || updated.Name == "" {
		err := fmt.Errorf("%w: email and name must not be empty", ErrInvalidUserUpdate)
		e.emitAudit(ctx, auditEventUserUpdate, false, user, err, nil)
		return user, err
	}
	if !updated.ValidUTF8() {
		err := fmt.Errorf("%w: fields must be valid UTF-8", ErrInvalidUserUpdate)
		e.emitAudit(ctx, auditEventUserUpdate, false, user, err, nil)
		return user, err
	}

	perms := cur.permissions
	roleChanged := patch.ChangesRole() && updated.Role != user.Role
	if patch.ChangesRole() {
		if !e.policy.HasRole(updated.Role) {
			err := fmt.Errorf("%w: %q", ErrUnknownRole, updated.Role)
			e.emitAudit(ctx, auditEventRoleChange, false, user, err, nil)
			return user, err
		}
		perms = e.policy.PermissionsFor(updated.Role)
	}

	state := newSessionState(updated, cur.token, perms)
	e.current.Store(state)

	e.metricInc(MetricUserUpdated)
	e.emitAudit(ctx, auditEventUserUpdate, true, updated, nil, nil)
	if roleChanged {
		e.metricInc(MetricRoleChanged)
		e.emitAudit(ctx, auditEventRoleChange, true, updated, nil, func() map[string]string {
			return map[string]string{
				"from": string(user.Role),
				"to":   string(updated.Role),
			}
		})
	}

	return updated, e.syncLocked(ctx, state)
}

// Restore hydrates the session from the store. It is meant to run once at
// startup and never fails: missing, unreadable or malformed data leaves the
// session empty and is reported through the result. Malformed data is left
// in the store; the next mutation overwrites it.
func (e *Engine) Restore(ctx context.Context) RestoreResult {
	if e == nil {
		return RestoreResult{Outcome: RestoreCold, Err: ErrEngineNotReady}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.ready.Store(true)

	// Memory is authoritative while the store lags behind it.
	if e.dirty {
		if user, ok := e.Session().User(); ok {
			return RestoreResult{Outcome: RestoreHit, User: user}
		}
		return RestoreResult{Outcome: RestoreCold}
	}

	rec, err := e.persist.Load(ctx)
	switch {
	case err != nil && (errors.Is(err, session.ErrMalformedUserData) || errors.Is(err, session.ErrStoreCorrupt)):
		return e.restoreMalformed(ctx, fmt.Errorf("%w: %w", ErrMalformedPersistedState, err))
	case err != nil:
		e.current.Store(anonymousState)
		e.metricInc(MetricRestoreCold)
		e.emitAudit(ctx, auditEventRestoreCold, false, session.User{}, err, nil)
		e.logger.Warn("session store unreadable, starting cold", zap.Error(err))
		return RestoreResult{Outcome: RestoreCold, Err: err}
	case rec == nil:
		e.current.Store(anonymousState)
		e.metricInc(MetricRestoreCold)
		e.emitAudit(ctx, auditEventRestoreCold, true, session.User{}, nil, nil)
		return RestoreResult{Outcome: RestoreCold}
	case !e.policy.HasRole(rec.User.Role):
		return e.restoreMalformed(ctx, fmt.Errorf("%w: %w %q", ErrMalformedPersistedState, ErrUnknownRole, rec.User.Role))
	}

	state := newSessionState(rec.User, rec.Token, e.policy.PermissionsFor(rec.User.Role))
	e.current.Store(state)
	e.metricInc(MetricRestoreHit)
	e.emitAudit(ctx, auditEventRestoreHit, true, rec.User, nil, nil)

	return RestoreResult{Outcome: RestoreHit, User: rec.User}
}

func (e *Engine) restoreMalformed(ctx context.Context, err error) RestoreResult {
	e.current.Store(anonymousState)
	e.metricInc(MetricRestoreMalformed)
	e.emitAudit(ctx, auditEventRestoreMalformed, false, session.User{}, err, nil)
	e.logger.Warn("discarding malformed persisted session", zap.Error(err))
	return RestoreResult{Outcome: RestoreMalformed, Err: err}
}

// Flush retries the store write when a previous one failed. It returns nil
// when the store is already in sync.
func (e *Engine) Flush(ctx context.Context) error {
	if e == nil {
		return ErrEngineNotReady
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.dirty {
		return nil
	}
	return e.syncLocked(ctx, e.Session())
}

// syncLocked writes the whole of state to the store, or clears it for the
// anonymous state. Each write carries the full session, so a success after
// earlier failures brings the store fully up to date.
func (e *Engine) syncLocked(ctx context.Context, state *SessionState) error {
	var err error
	if state.IsAuthenticated() {
		err = e.persist.Save(ctx, state.record())
	} else {
		err = e.persist.Clear(ctx)
	}

	if err != nil {
		e.dirty = true
		err = fmt.Errorf("%w: %w", ErrPersistenceWriteFailure, err)
		e.metricInc(MetricPersistFailure)
		e.emitAudit(ctx, auditEventPersistFailure, false, state.user, err, nil)
		e.logger.Warn("session persistence failed, keeping in-memory state",
			zap.Bool("authenticated", state.IsAuthenticated()),
			zap.Error(err),
		)
		return err
	}

	if e.dirty {
		e.dirty = false
		e.metricInc(MetricPersistRetrySuccess)
		e.logger.Info("session persistence recovered")
	}
	return nil
}
