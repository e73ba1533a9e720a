package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/careercompass/compass/internal/model"
)

// Doc is one mirrored saved item.
type Doc struct {
	ID         string
	Collection string
	UserID     string
	ItemID     string
	Payload    model.Payload
	SavedAt    time.Time
}

// Collection returns the mirror collection for category, e.g.
// "saved_certificates".
func Collection(category model.Category) string {
	return "saved_" + category.Plural()
}

// SQLiteStore keeps a local copy of the user's saved items. It is written
// after the server confirms a change and is never consulted to decide whether
// an item is saved.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures the
// saved_docs table exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS saved_docs (
		doc_id     TEXT PRIMARY KEY,
		collection TEXT NOT NULL,
		user_id    TEXT NOT NULL,
		item_id    TEXT NOT NULL DEFAULT '',
		payload    TEXT NOT NULL,
		saved_at   DATETIME DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating saved_docs table: %w", err)
	}
	createIndex := `CREATE INDEX IF NOT EXISTS saved_docs_owner ON saved_docs (collection, user_id)`
	if _, err := db.Exec(createIndex); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating saved_docs index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Add stores payload in collection for userID and returns the new document id.
// itemID is the server id of the saved item, used by DeleteItem.
func (s *SQLiteStore) Add(ctx context.Context, collection, userID, itemID string, payload model.Payload) (string, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding payload for %s: %w", collection, err)
	}
	docID := uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO saved_docs (doc_id, collection, user_id, item_id, payload, saved_at) VALUES (?, ?, ?, ?, ?, ?)",
		docID, collection, userID, itemID, string(b), time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("adding doc to %s: %w", collection, err)
	}
	return docID, nil
}

// List returns every document of collection owned by userID, oldest first.
func (s *SQLiteStore) List(ctx context.Context, collection, userID string) ([]Doc, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT doc_id, item_id, payload, saved_at FROM saved_docs WHERE collection = ? AND user_id = ? ORDER BY saved_at, doc_id",
		collection, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []Doc
	for rows.Next() {
		var (
			d   Doc
			raw string
		)
		if err := rows.Scan(&d.ID, &d.ItemID, &raw, &d.SavedAt); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", collection, err)
		}
		if err := json.Unmarshal([]byte(raw), &d.Payload); err != nil {
			return nil, fmt.Errorf("decoding %s doc %s: %w", collection, d.ID, err)
		}
		d.Collection = collection
		d.UserID = userID
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", collection, err)
	}
	return docs, nil
}

// Delete removes one document. Deleting a missing document is a no-op.
func (s *SQLiteStore) Delete(ctx context.Context, collection, docID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM saved_docs WHERE collection = ? AND doc_id = ?", collection, docID)
	if err != nil {
		return fmt.Errorf("deleting doc %s from %s: %w", docID, collection, err)
	}
	return nil
}

// DeleteItem removes the documents mirroring server item itemID.
func (s *SQLiteStore) DeleteItem(ctx context.Context, collection, userID, itemID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM saved_docs WHERE collection = ? AND user_id = ? AND item_id = ?",
		collection, userID, itemID,
	)
	if err != nil {
		return fmt.Errorf("deleting item %s from %s: %w", itemID, collection, err)
	}
	return nil
}

// Cleanup deletes documents saved longer ago than olderThan.
func (s *SQLiteStore) Cleanup(ctx context.Context, olderThan time.Duration) error {
	cutoff := time.Now().UTC().Add(-olderThan)
	_, err := s.db.ExecContext(ctx, "DELETE FROM saved_docs WHERE saved_at < ?", cutoff)
	if err != nil {
		return fmt.Errorf("cleaning up docs older than %v: %w", olderThan, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
