package notifier

import (
	"log/slog"

	"github.com/careercompass/compass/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes toasts to the given logger as structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each toast via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the toast at a level matching its severity.
// Returns nil (stdout logging does not fail).
func (n *LogNotifier) Notify(t model.Toast) error {
	args := []any{"message", t.Message}
	if t.Title != "" {
		args = append(args, "title", t.Title)
	}
	switch t.Level {
	case model.ToastError:
		n.logger.Error("toast", args...)
	case model.ToastWarning:
		n.logger.Warn("toast", args...)
	default:
		n.logger.Info("toast", args...)
	}
	return nil
}
