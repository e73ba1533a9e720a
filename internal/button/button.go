package button

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/careercompass/compass/internal/model"
)

var (
	// ErrDisabled is returned for a click on a pending button. No request is made.
	ErrDisabled = errors.New("button is disabled while a request is pending")
	// ErrNoPayload is returned when a save is clicked on a control without item data.
	ErrNoPayload = errors.New("no item data found")
)

// Ledger is the saved-item cache as seen by a button.
type Ledger interface {
	IsSaved(category model.Category, payload model.Payload) (string, bool)
	RecordSave(category model.Category, id string, payload model.Payload)
	RecordRemoval(category model.Category, id string)
}

// Mirror receives confirmed changes for local persistence.
type Mirror interface {
	Saved(ctx context.Context, category model.Category, itemID string, payload model.Payload)
	Removed(ctx context.Context, category model.Category, itemID string)
}

// Change describes one state transition of a button.
type Change struct {
	Control string
	From    State
	To      State
	SavedID string
}

// Observer is called after every transition, outside the button's lock.
type Observer func(Change)

// Deps are the collaborators shared by every button on a page.
type Deps struct {
	Saver    model.ItemSaver
	Ledger   Ledger
	Notifier model.Notifier
	Mirror   Mirror   // optional
	Observer Observer // optional
	Logger   *slog.Logger
}

// Button is the save control of one rendered item.
type Button struct {
	control  string
	category model.Category
	payload  model.Payload
	deps     Deps

	mu      sync.Mutex
	state   State
	savedID string
}

// New creates the control for payload. Its initial state comes from the
// ledger, so a re-rendered card shows Saved for an already-saved item.
func New(control string, category model.Category, payload model.Payload, deps Deps) *Button {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	b := &Button{
		control:  control,
		category: category,
		payload:  payload.Clone(),
		deps:     deps,
		state:    StateSave,
	}
	if id, ok := deps.Ledger.IsSaved(category, payload); ok {
		b.state = StateSaved
		b.savedID = id
	}
	return b
}

// Control returns the control id the button was registered under.
func (b *Button) Control() string { return b.control }

// Category returns the item category.
func (b *Button) Category() model.Category { return b.category }

// Payload returns a copy of the item payload.
func (b *Button) Payload() model.Payload { return b.payload.Clone() }

// State returns the current state and saved id.
func (b *Button) State() (State, string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state, b.savedID
}

// Click toggles the item. A click while pending returns ErrDisabled without
// contacting the server. On failure the button returns to its pre-click
// state, an error toast is sent, and the error is returned. The caller's ctx
// bounds the request; the button adds no timeout of its own.
func (b *Button) Click(ctx context.Context) (State, error) {
	b.mu.Lock()
	from := b.state
	if from.Pending() {
		b.mu.Unlock()
		return from, ErrDisabled
	}
	if from == StateSave && len(b.payload) == 0 {
		b.mu.Unlock()
		b.toast(model.ToastError, "Error: No item data found")
		return from, ErrNoPayload
	}
	pending := StateSaving
	if from == StateSaved {
		pending = StateRemoving
	}
	savedID := b.savedID
	b.transitionLocked(pending, savedID)
	b.mu.Unlock()
	b.emit(from, pending, savedID)

	if pending == StateSaving {
		return b.save(ctx)
	}
	return b.unsave(ctx, savedID)
}

func (b *Button) save(ctx context.Context) (State, error) {
	id, err := b.deps.Saver.SaveItem(ctx, b.category, b.payload)
	if err != nil {
		b.finish(StateSaving, StateSave, "")
		b.fail("save", err, "Failed to save item")
		return StateSave, err
	}
	if id == "" {
		id = uuid.NewString()
		b.deps.Logger.Debug("server returned no item id, using local id", "category", b.category, "id", id)
	}

	b.deps.Ledger.RecordSave(b.category, id, b.payload)
	if b.deps.Mirror != nil {
		b.deps.Mirror.Saved(ctx, b.category, id, b.payload)
	}
	b.finish(StateSaving, StateSaved, id)
	b.toast(model.ToastSuccess, fmt.Sprintf("%s saved successfully!", b.category.Title()))
	return StateSaved, nil
}

func (b *Button) unsave(ctx context.Context, savedID string) (State, error) {
	if err := b.deps.Saver.DeleteSavedItem(ctx, b.category, savedID); err != nil {
		b.finish(StateRemoving, StateSaved, savedID)
		b.fail("unsave", err, "Failed to remove item")
		return StateSaved, err
	}

	b.deps.Ledger.RecordRemoval(b.category, savedID)
	if b.deps.Mirror != nil {
		b.deps.Mirror.Removed(ctx, b.category, savedID)
	}
	b.finish(StateRemoving, StateSave, "")
	b.toast(model.ToastSuccess, fmt.Sprintf("%s removed successfully!", b.category.Title()))
	return StateSave, nil
}

func (b *Button) finish(from, to State, savedID string) {
	b.mu.Lock()
	b.transitionLocked(to, savedID)
	b.mu.Unlock()
	b.emit(from, to, savedID)
}

func (b *Button) transitionLocked(to State, savedID string) {
	if !IsTransitionAllowed(b.state, to) {
		// Only reachable through a programming error in this package.
		panic(fmt.Sprintf("button: invalid transition %s -> %s", b.state, to))
	}
	b.state = to
	b.savedID = savedID
}

func (b *Button) emit(from, to State, savedID string) {
	if b.deps.Observer != nil {
		b.deps.Observer(Change{Control: b.control, From: from, To: to, SavedID: savedID})
	}
}

// fail reports err to the user. A server rejection shows the server's message;
// any other failure shows a generic one.
func (b *Button) fail(op string, err error, fallback string) {
	b.deps.Logger.Warn(op+" failed", "category", b.category, "control", b.control, "error", err)
	msg := "Error processing request"
	var rej *model.ServerRejection
	if errors.As(err, &rej) {
		msg = rej.Message
		if msg == "" {
			msg = fallback
		}
	}
	b.toast(model.ToastError, msg)
}

func (b *Button) toast(level model.ToastLevel, msg string) {
	if b.deps.Notifier == nil {
		return
	}
	if err := b.deps.Notifier.Notify(model.Toast{Level: level, Message: msg}); err != nil {
		b.deps.Logger.Debug("toast delivery failed", "error", err)
	}
}
