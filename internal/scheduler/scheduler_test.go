package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// --- Mock implementations ---

type countingTask struct {
	name  string
	calls atomic.Int32
	err   error
}

func (t *countingTask) Name() string { return t.name }

func (t *countingTask) Run(_ context.Context) error {
	t.calls.Add(1)
	return t.err
}

type orderRecorder struct {
	mu    sync.Mutex
	order []string
}

func (r *orderRecorder) task(id string) Task {
	return TaskFunc{TaskName: id, Fn: func(context.Context) error {
		r.mu.Lock()
		r.order = append(r.order, id)
		r.mu.Unlock()
		return nil
	}}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Tests ---

func TestRun_CancelReturnsPromptly(t *testing.T) {
	task := &countingTask{name: "hydrate"}
	s := NewScheduler([]Task{task}, time.Hour, 0, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if task.calls.Load() != 0 {
		t.Errorf("calls = %d, want no cycle before the first interval", task.calls.Load())
	}
}

func TestRun_TicksRepeatedly(t *testing.T) {
	task := &countingTask{name: "hydrate"}
	s := NewScheduler([]Task{task}, 20*time.Millisecond, 0, discardLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	if err := s.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if got := task.calls.Load(); got < 2 {
		t.Errorf("calls = %d, want at least 2", got)
	}
}

func TestRunAll_ContinuesAfterError(t *testing.T) {
	failing := &countingTask{name: "cleanup", err: errors.New("disk full")}
	ok := &countingTask{name: "hydrate"}
	s := NewScheduler([]Task{failing, ok}, time.Hour, 0, discardLogger())

	s.runAll(context.Background())

	if failing.calls.Load() != 1 || ok.calls.Load() != 1 {
		t.Errorf("calls = %d/%d, want 1/1", failing.calls.Load(), ok.calls.Load())
	}
}

func TestRunAll_Order(t *testing.T) {
	rec := &orderRecorder{}
	s := NewScheduler([]Task{rec.task("a"), rec.task("b"), rec.task("c")}, time.Hour, time.Millisecond, discardLogger())

	s.runAll(context.Background())

	want := []string{"a", "b", "c"}
	if len(rec.order) != len(want) {
		t.Fatalf("order = %v, want %v", rec.order, want)
	}
	for i := range want {
		if rec.order[i] != want[i] {
			t.Errorf("order[%d] = %s, want %s", i, rec.order[i], want[i])
		}
	}
}

func TestRunAll_StopsOnCancel(t *testing.T) {
	first := &countingTask{name: "first"}
	second := &countingTask{name: "second"}
	s := NewScheduler([]Task{first, second}, time.Hour, time.Hour, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.runAll(ctx)
		close(done)
	}()

	// Cancel during the pause between tasks.
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("runAll did not stop on cancel")
	}
	if second.calls.Load() != 0 {
		t.Error("second task should not run after cancel")
	}
}
