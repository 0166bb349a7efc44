package application

import (
	"context"
	"log/slog"
)

// Notifier delivers best-effort messages to user inboxes. Implementations
// must not fail the primary operation: services log delivery errors and
// continue.
type Notifier interface {
	Notify(ctx context.Context, collegeID, userID, ntype, title, message string) error
}

// notify performs a best-effort delivery, logging failures without
// propagating them.
func notify(ctx context.Context, notifier Notifier, logger *slog.Logger, collegeID, userID, ntype, title, message string) {
	if notifier == nil {
		return
	}
	if err := notifier.Notify(ctx, collegeID, userID, ntype, title, message); err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.WarnContext(ctx, "notification delivery failed", "error", err, "notification_type", ntype, "user_id", userID)
	}
}
