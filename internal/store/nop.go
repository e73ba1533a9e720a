package store

import (
	"context"
	"time"

	"github.com/careercompass/compass/internal/model"
)

// NopStore is used when mirroring is disabled. Writes are discarded and
// listings are empty.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) Add(ctx context.Context, collection, userID, itemID string, payload model.Payload) (string, error) {
	return "", nil
}
func (s *NopStore) List(ctx context.Context, collection, userID string) ([]Doc, error) {
	return nil, nil
}
func (s *NopStore) Delete(ctx context.Context, collection, docID string) error { return nil }
func (s *NopStore) DeleteItem(ctx context.Context, collection, userID, itemID string) error {
	return nil
}
func (s *NopStore) Cleanup(ctx context.Context, olderThan time.Duration) error { return nil }
func (s *NopStore) Close() error                                               { return nil }
