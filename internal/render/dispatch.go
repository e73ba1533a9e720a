package render

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/careercompass/compass/internal/button"
)

// ErrUnknownAction is returned for an event whose action has no handler.
var ErrUnknownAction = errors.New("unknown action")

// Event is a click on a rendered control, described by its data-*
// attributes.
type Event struct {
	Action  string
	Control string
	Data    map[string]string
}

// Handler reacts to one action.
type Handler func(ctx context.Context, ev Event) error

// Dispatcher routes events by their data-action value. Handlers are
// registered once, before the first dispatch.
type Dispatcher struct {
	handlers map[string]Handler
}

// NewDispatcher returns an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]Handler)}
}

// Handle registers h for action. It panics if action is empty or already
// registered.
func (d *Dispatcher) Handle(action string, h Handler) {
	if action == "" || h == nil {
		panic("render: empty action or nil handler")
	}
	if _, dup := d.handlers[action]; dup {
		panic("render: multiple registrations for action " + action)
	}
	d.handlers[action] = h
}

// Dispatch calls the handler registered for ev.Action.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) error {
	h, ok := d.handlers[ev.Action]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownAction, ev.Action)
	}
	return h(ctx, ev)
}

// Actions lists the registered actions in sorted order.
func (d *Dispatcher) Actions() []string {
	out := make([]string, 0, len(d.handlers))
	for a := range d.handlers {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// ErrUnknownControl is returned when an event names a control that is not
// registered.
var ErrUnknownControl = errors.New("unknown control")

// ClickHandler clicks the button named by the event's control id. It serves
// both the save and unsave actions; the button decides the direction from
// its own state.
func ClickHandler(reg *button.Registry) Handler {
	return func(ctx context.Context, ev Event) error {
		b, ok := reg.Get(ev.Control)
		if !ok {
			return fmt.Errorf("%w %q", ErrUnknownControl, ev.Control)
		}
		_, err := b.Click(ctx)
		return err
	}
}

// NewButtonDispatcher returns a dispatcher with save and unsave routed to
// the buttons of reg.
func NewButtonDispatcher(reg *button.Registry) *Dispatcher {
	d := NewDispatcher()
	click := ClickHandler(reg)
	d.Handle("save", click)
	d.Handle("unsave", click)
	return d
}
