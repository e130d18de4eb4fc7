package goGate

import (
	"context"
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/MrEthical07/goGate/internal/audit"
	"github.com/MrEthical07/goGate/session"
	"go.uber.org/zap"
)

type (
	// AuditEvent is one session lifecycle record.
	AuditEvent = audit.Event
	// AuditSink consumes audit events. Sinks run on the dispatcher goroutine.
	AuditSink = audit.Sink
	// NoOpSink discards events.
	NoOpSink = audit.NoOpSink
)

// NewChannelSink returns a sink that forwards events to a buffered channel.
func NewChannelSink(buffer int) *audit.ChannelSink {
	return audit.NewChannelSink(buffer)
}

// NewJSONWriterSink returns a sink writing one JSON object per line to w.
func NewJSONWriterSink(w io.Writer) *audit.JSONWriterSink {
	return audit.NewJSONWriterSink(w)
}

// NewZapSink returns a sink that logs events through logger.
func NewZapSink(logger *zap.Logger) *audit.ZapSink {
	return audit.NewZapSink(logger)
}

const (
	auditEventLoginSuccess     = "login_success"
	auditEventLoginFailure     = "login_failure"
	auditEventLogout           = "logout"
	auditEventUserUpdate       = "user_update"
	auditEventRoleChange       = "role_change"
	auditEventRestoreHit       = "restore_hit"
	auditEventRestoreCold      = "restore_cold"
	auditEventRestoreMalformed = "restore_malformed"
	auditEventPersistFailure   = "persist_failure"
)

// AuditErrorCode is the stable error label carried in [AuditEvent.Error].
type AuditErrorCode string

const (
	auditErrInvalidCredentials AuditErrorCode = "invalid_credentials"
	auditErrUnknownRole        AuditErrorCode = "unknown_role"
	auditErrNoActiveSession    AuditErrorCode = "no_active_session"
	auditErrInvalidUpdate      AuditErrorCode = "invalid_update"
	auditErrMalformedState     AuditErrorCode = "malformed_state"
	auditErrPersistence        AuditErrorCode = "persistence_failure"
	auditErrUnavailable        AuditErrorCode = "backend_unavailable"
	auditErrCanceled           AuditErrorCode = "canceled"
	auditErrInternal           AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	user session.User,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Role:      string(user.Role),
		IP:        ClientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if user.ID > 0 {
		event.UserID = strconv.FormatInt(user.ID, 10)
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	// ErrUnknownRole is checked first: a login rejected for an unknown role
	// also wraps ErrInvalidCredentials.
	switch {
	case errors.Is(err, ErrUnknownRole):
		return auditErrUnknownRole
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrNoActiveSession):
		return auditErrNoActiveSession
	case errors.Is(err, ErrInvalidUserUpdate):
		return auditErrInvalidUpdate
	case errors.Is(err, ErrMalformedPersistedState):
		return auditErrMalformedState
	case errors.Is(err, ErrPersistenceWriteFailure):
		return auditErrPersistence
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return auditErrCanceled
	case errors.Is(err, ErrVerifierUnavailable),
		errors.Is(err, session.ErrStoreUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}
