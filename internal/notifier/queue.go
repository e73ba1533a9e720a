package notifier

import (
	"sync"

	"github.com/careercompass/compass/internal/model"
)

var _ model.Notifier = (*QueueNotifier)(nil)

// DefaultQueueSize bounds QueueNotifier when no size is given.
const DefaultQueueSize = 16

// QueueNotifier buffers toasts for a UI to drain. When full, the oldest toast
// is dropped.
type QueueNotifier struct {
	mu    sync.Mutex
	size  int
	queue []model.Toast
}

// NewQueueNotifier returns a queue holding at most size toasts.
func NewQueueNotifier(size int) *QueueNotifier {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &QueueNotifier{size: size}
}

// Notify enqueues t. It never fails.
func (q *QueueNotifier) Notify(t model.Toast) error {
	if t.Duration == 0 {
		t.Duration = model.DefaultToastDuration
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.queue) == q.size {
		q.queue = q.queue[1:]
	}
	q.queue = append(q.queue, t)
	return nil
}

// Drain returns and clears every queued toast, oldest first.
func (q *QueueNotifier) Drain() []model.Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.queue
	q.queue = nil
	return out
}

// Len returns the number of queued toasts.
func (q *QueueNotifier) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queue)
}
