package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/careercompass/compass/internal/model"
)

// Store is the local mirror of saved items.
type Store interface {
	Add(ctx context.Context, collection, userID, itemID string, payload model.Payload) (string, error)
	List(ctx context.Context, collection, userID string) ([]Doc, error)
	Delete(ctx context.Context, collection, docID string) error
	DeleteItem(ctx context.Context, collection, userID, itemID string) error
	Cleanup(ctx context.Context, olderThan time.Duration) error
	Close() error
}

var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*NopStore)(nil)
)

// Mirror copies confirmed save and unsave results into a Store for one user.
// Mirror failures are logged and never reach the user.
type Mirror struct {
	store  Store
	userID string
	logger *slog.Logger
}

// NewMirror returns a Mirror writing userID's items to s.
func NewMirror(s Store, userID string, logger *slog.Logger) *Mirror {
	return &Mirror{store: s, userID: userID, logger: logger}
}

// Saved records a confirmed save.
func (m *Mirror) Saved(ctx context.Context, category model.Category, itemID string, payload model.Payload) {
	docID, err := m.store.Add(ctx, Collection(category), m.userID, itemID, payload)
	if err != nil {
		m.logger.Warn("mirror save failed", "category", category, "item_id", itemID, "error", err)
		return
	}
	m.logger.Debug("mirrored save", "category", category, "item_id", itemID, "doc_id", docID)
}

// Removed records a confirmed unsave.
func (m *Mirror) Removed(ctx context.Context, category model.Category, itemID string) {
	if err := m.store.DeleteItem(ctx, Collection(category), m.userID, itemID); err != nil {
		m.logger.Warn("mirror delete failed", "category", category, "item_id", itemID, "error", err)
	}
}
