package jwtauth

import (
	"log/slog"
	"time"
)

// SecurityEvent represents a structured security log entry
type SecurityEvent struct {
	EventType     string        // "success" or "failure"
	Timestamp     time.Time     // Event timestamp
	RequestID     string        // Correlation ID
	Stage         string        // Gate or flow that produced the event
	Subject       string        // Subject from claims (empty when unknown)
	Kind          TokenKind     // Token kind when known
	FailureReason string        // Error code (on failure)
	Detail        string        // Internal error text, logged only
	TokenPreview  string        // Redacted token preview
	Latency       time.Duration // Evaluation latency
}

// LogValue implements slog.LogValuer for structured logging with redaction
func (e SecurityEvent) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("event", e.EventType),
		slog.Time("timestamp", e.Timestamp),
		slog.String("request_id", e.RequestID),
		slog.String("stage", e.Stage),
		slog.String("subject", e.Subject),
		slog.String("kind", string(e.Kind)),
		slog.String("token", redactToken(e.TokenPreview)),
		slog.Duration("latency", e.Latency),
	}
	if e.FailureReason != "" {
		attrs = append(attrs,
			slog.String("failure_reason", e.FailureReason),
			slog.String("detail", e.Detail),
		)
	}
	return slog.GroupValue(attrs...)
}

// redactToken redacts sensitive token data
func redactToken(token string) string {
	if len(token) == 0 {
		return ""
	}
	if len(token) <= 8 {
		return "***"
	}
	return token[:8] + "..."
}

// logSecurityEvent emits a security event via the configured logger
func logSecurityEvent(logger *slog.Logger, event SecurityEvent) {
	if logger == nil {
		return // Logging disabled
	}

	if event.EventType == "failure" {
		logger.Warn("authentication failed", "auth_event", event)
	} else {
		logger.Info("authentication succeeded", "auth_event", event)
	}
}

// newFailureEvent builds a failure event from a gate or flow error
func newFailureEvent(stage, requestID, token string, err error, latency time.Duration) SecurityEvent {
	event := SecurityEvent{
		EventType:     "failure",
		Timestamp:     time.Now(),
		RequestID:     requestID,
		Stage:         stage,
		FailureReason: getErrorCode(err),
		TokenPreview:  token,
		Latency:       latency,
	}
	if err != nil {
		event.Detail = err.Error()
	}
	return event
}

// newSuccessEvent builds a success event for verified claims
func newSuccessEvent(stage, requestID, token string, claims *Claims, latency time.Duration) SecurityEvent {
	event := SecurityEvent{
		EventType:    "success",
		Timestamp:    time.Now(),
		RequestID:    requestID,
		Stage:        stage,
		TokenPreview: token,
		Latency:      latency,
	}
	if claims != nil {
		event.Subject = claims.Subject
		event.Kind = claims.Kind
	}
	return event
}
