package notify

import "context"

// Notifier defines the interface for sending run notifications.
type Notifier interface {
	Notify(ctx context.Context, eventType string, message string, threadTS string) (string, error)
}
