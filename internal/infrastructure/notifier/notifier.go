package notifier

import (
	"context"
	"log/slog"
)

// LogNotifier records user-facing notifications in the structured log.
// Delivery is best effort; a failed or dropped notification never affects
// the ledger mutation that triggered it.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// Notify logs the notification without blocking the caller.
func (n *LogNotifier) Notify(ctx context.Context, event string, payload map[string]any) {
	attrs := make([]any, 0, len(payload)+1)
	attrs = append(attrs, slog.String("event", event))
	for key, value := range payload {
		attrs = append(attrs, slog.Any(key, value))
	}
	n.logger.InfoContext(ctx, "NOTIFICATION", attrs...)
}
