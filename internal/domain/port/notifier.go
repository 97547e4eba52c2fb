package port

import "context"

// FailureNotifier reports a permanently failed render to the user out of
// band (email in production).
type FailureNotifier interface {
	NotifyFailure(ctx context.Context, userEmail string, jobID string, videoKey string, errorMsg string) error
}

// NotificationSink receives user-visible status messages from pipeline
// components. Passing it explicitly keeps the compositor and encoder free
// of global toast side effects.
type NotificationSink interface {
	Notify(ctx context.Context, level NotifyLevel, message string)
}

type NotifyLevel string

const (
	NotifyInfo    NotifyLevel = "info"
	NotifyWarning NotifyLevel = "warning"
	NotifyError   NotifyLevel = "error"
)
