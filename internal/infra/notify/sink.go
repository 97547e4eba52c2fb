package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/amytsuki/highlight-hero-creator/internal/domain/port"
)

// LogSink is the worker-side NotificationSink: user-visible status messages
// land in the structured log and are carried to the user by the status
// queue, not by an in-process toast.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Notify(_ context.Context, level port.NotifyLevel, message string) {
	switch level {
	case port.NotifyError:
		s.logger.Error(message)
	case port.NotifyWarning:
		s.logger.Warn(message)
	default:
		s.logger.Info(message)
	}
}
