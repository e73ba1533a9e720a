package notifier

import (
	"bytes"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/careercompass/compass/internal/model"
)

func TestLogNotifier_Notify_returnsNil(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	n := NewLogNotifier(logger)
	if err := n.Notify(model.Toast{}); err != nil {
		t.Errorf("Notify(zero) = %v, want nil", err)
	}
	if err := n.Notify(model.Toast{Level: model.ToastSuccess, Message: "Course saved successfully!"}); err != nil {
		t.Errorf("Notify(success) = %v, want nil", err)
	}
}

func TestLogNotifier_Notify_levelFollowsToast(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewTextHandler(&buf, nil)))

	_ = n.Notify(model.Toast{Level: model.ToastError, Message: "Failed to save item"})

	out := buf.String()
	if !strings.Contains(out, "level=ERROR") {
		t.Errorf("expected ERROR level, got %q", out)
	}
	if !strings.Contains(out, `message="Failed to save item"`) {
		t.Errorf("expected message attr, got %q", out)
	}
}
