package audit

import (
	"context"

	"sisc-sesau/internal/observability"
)

// SafeRecorder wraps a Recorder so write failures are logged and swallowed.
// Losing an audit row must never fail a login or a password change.
type SafeRecorder struct {
	inner  Recorder
	logger *observability.Logger
}

func NewSafeRecorder(inner Recorder, logger *observability.Logger) *SafeRecorder {
	return &SafeRecorder{inner: inner, logger: logger}
}

func (s *SafeRecorder) Record(ctx context.Context, entry Entry) error {
	if err := s.inner.Record(ctx, entry); err != nil {
		s.logger.Warn("audit_write_failed", map[string]any{
			"action": string(entry.Action),
			"error":  err.Error(),
		})
	}
	return nil
}
