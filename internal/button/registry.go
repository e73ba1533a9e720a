package button

import (
	"slices"
	"strconv"
	"sync"

	"github.com/careercompass/compass/internal/model"
)

// Registry owns the buttons of the current page, keyed by control id.
type Registry struct {
	deps Deps

	mu      sync.RWMutex
	next    int
	buttons map[string]*Button
	order   []string
}

// NewRegistry returns an empty registry whose buttons share deps.
func NewRegistry(deps Deps) *Registry {
	return &Registry{deps: deps, buttons: make(map[string]*Button)}
}

// Add creates a button for payload and returns it. Control ids are
// "<category>-<n>" and unique within the registry.
func (r *Registry) Add(category model.Category, payload model.Payload) *Button {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	control := string(category) + "-" + strconv.Itoa(r.next)
	b := New(control, category, payload, r.deps)
	r.buttons[control] = b
	r.order = append(r.order, control)
	return b
}

// Get returns the button registered under control.
func (r *Registry) Get(control string) (*Button, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.buttons[control]
	return b, ok
}

// All returns the buttons in registration order.
func (r *Registry) All() []*Button {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Button, 0, len(r.order))
	for _, c := range r.order {
		out = append(out, r.buttons[c])
	}
	return out
}

// Remove drops the named buttons. A button already handed out keeps
// working for its holder.
func (r *Registry) Remove(controls ...string) {
	if len(controls) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range controls {
		delete(r.buttons, c)
	}
	r.order = slices.DeleteFunc(r.order, func(c string) bool {
		_, ok := r.buttons[c]
		return !ok
	})
}

// Len returns the number of registered buttons.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.buttons)
}

// Reset drops every button, e.g. before rendering a new result set.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buttons = make(map[string]*Button)
	r.order = nil
}
