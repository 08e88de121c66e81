// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/mmu-rhsf/fellowhub/internal/app/store/audit"
	"github.com/mmu-rhsf/fellowhub/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destinations for a category of events.
const (
	All = "all" // MongoDB + zap
	DB  = "db"  // MongoDB only
	Log = "log" // zap only
	Off = "off"
)

// Config selects the destination per event category.
type Config struct {
	Auth         string
	Admin        string
	Registration string
}

// Sink persists events. *audit.Store satisfies it.
type Sink interface {
	Log(ctx context.Context, event audit.Event) error
}

// Logger writes audit events to the configured destinations.
type Logger struct {
	sink   Sink
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger. sink may be nil when no category is
// configured for "db" or "all".
func New(sink Sink, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{sink: sink, zapLog: zapLog, config: config}
}

func (l *Logger) setting(category string) string {
	var s string
	switch category {
	case audit.CategoryAuth:
		s = l.config.Auth
	case audit.CategoryAdmin:
		s = l.config.Admin
	case audit.CategoryRegistration:
		s = l.config.Registration
	}
	if s == "" {
		return All
	}
	return s
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.ActorID != "" {
		fields = append(fields, zap.String("actor_id", event.ActorID))
	}
	if event.FormID != "" {
		fields = append(fields, zap.String("form_id", event.FormID))
	}
	if event.MemberID != nil {
		fields = append(fields, zap.String("member_id", event.MemberID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event. A nil Logger is a no-op so handlers can be
// tested without one.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}
	setting := l.setting(event.Category)
	if setting == Off {
		return
	}
	if (setting == All || setting == Log) && l.zapLog != nil {
		l.logToZap(event)
	}
	if (setting == All || setting == DB) && l.sink != nil {
		if err := l.sink.Log(ctx, event); err != nil && l.zapLog != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func fromRequest(r *http.Request, e audit.Event) audit.Event {
	e.IP = ratelimit.ClientIP(r)
	e.UserAgent = r.UserAgent()
	return e
}

// --- Authentication Events ---

func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, actorID, username string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		ActorID:   actorID,
		Success:   true,
		Details:   map[string]string{"username": username},
	}))
}

func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, attemptedUsername string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailed,
		FailureReason: "invalid credentials",
		Details:       map[string]string{"attempted_username": attemptedUsername},
	}))
}

func (l *Logger) LoginRateLimited(ctx context.Context, r *http.Request) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedRateLimit,
		FailureReason: "rate limited",
	}))
}

// --- Form Administration Events ---

func (l *Logger) FormCreated(ctx context.Context, r *http.Request, actorID, formID, title string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventFormCreated,
		ActorID:   actorID,
		FormID:    formID,
		Success:   true,
		Details:   map[string]string{"title": title},
	}))
}

func (l *Logger) FormDeactivated(ctx context.Context, r *http.Request, actorID, formID string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventFormDeactivated,
		ActorID:   actorID,
		FormID:    formID,
		Success:   true,
	}))
}

func (l *Logger) FormDeleted(ctx context.Context, r *http.Request, actorID, formID string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventFormDeleted,
		ActorID:   actorID,
		FormID:    formID,
		Success:   true,
	}))
}

// --- Public Registration Events ---

func (l *Logger) RegistrationSubmitted(ctx context.Context, r *http.Request, formID string, memberID primitive.ObjectID) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryRegistration,
		EventType: audit.EventRegistrationSubmitted,
		FormID:    formID,
		MemberID:  &memberID,
		Success:   true,
	}))
}

// RegistrationRejected records a refused submission. code is the error
// code returned to the caller; reason is the refusal reason or field, if any.
func (l *Logger) RegistrationRejected(ctx context.Context, r *http.Request, formID, code, reason string) {
	e := audit.Event{
		Category:      audit.CategoryRegistration,
		EventType:     audit.EventRegistrationRejected,
		FormID:        formID,
		FailureReason: code,
	}
	if reason != "" {
		e.Details = map[string]string{"reason": reason}
	}
	l.Log(ctx, fromRequest(r, e))
}
