// Package localstore is the single-node fallback persistence layer. It keeps
// every record as a JSON document in one SQLite table, addressed by a
// slash-separated path, and fans out change notifications in process.
package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"gaoexevents/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	path TEXT PRIMARY KEY,
	value BLOB NOT NULL,
	updated_at TIMESTAMP NOT NULL
);`

type Store struct {
	db  *sql.DB
	hub *hub
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	// The sqlite driver serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent use.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init local store schema: %w", err)
	}
	return &Store{db: db, hub: newHub()}, nil
}

func (s *Store) Close() error {
	s.hub.closeAll()
	return s.db.Close()
}

// Get unmarshals the document at path into v. Returns domain.ErrNotFound when
// the path has no document.
func (s *Store) Get(ctx context.Context, path string, v any) error {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM documents WHERE path = ?`, path).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get document %s: %w", path, err)
	}
	if err := json.Unmarshal(value, v); err != nil {
		return fmt.Errorf("decode document %s: %w", path, err)
	}
	return nil
}

// Set writes the document at path, replacing any existing one.
func (s *Store) Set(ctx context.Context, path string, v any) error {
	value, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", path, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (path, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT (path) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		path, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set document %s: %w", path, err)
	}
	s.hub.notify(path)
	return nil
}

// Insert writes the document only when the path is vacant and reports whether
// it did. The primary key on path makes concurrent inserts race-safe.
func (s *Store) Insert(ctx context.Context, path string, v any) (bool, error) {
	value, err := json.Marshal(v)
	if err != nil {
		return false, fmt.Errorf("encode document %s: %w", path, err)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO documents (path, value, updated_at) VALUES (?, ?, ?)`,
		path, value, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("insert document %s: %w", path, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert document result: %w", err)
	}
	if affected == 0 {
		return false, nil
	}
	s.hub.notify(path)
	return true, nil
}

// Delete removes the document at path. Returns domain.ErrNotFound when there
// was nothing to remove.
func (s *Store) Delete(ctx context.Context, path string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE path = ?`, path)
	if err != nil {
		return fmt.Errorf("delete document %s: %w", path, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	s.hub.notify(path)
	return nil
}

// List visits every document whose path starts with prefix, ordered by path.
func (s *Store) List(ctx context.Context, prefix string, fn func(path string, value []byte) error) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, value FROM documents WHERE path LIKE ? ORDER BY path`, prefix+"%")
	if err != nil {
		return fmt.Errorf("list documents %s: %w", prefix, err)
	}
	defer rows.Close()

	for rows.Next() {
		var path string
		var value []byte
		if err := rows.Scan(&path, &value); err != nil {
			return fmt.Errorf("scan document: %w", err)
		}
		if err := fn(path, value); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate documents: %w", err)
	}
	return nil
}

// Watch returns a channel that receives a tick whenever a document under
// prefix changes. The returned stop function releases the subscription.
func (s *Store) Watch(prefix string) (<-chan struct{}, func()) {
	return s.hub.subscribe(prefix)
}

type subscriber struct {
	prefix string
	ch     chan struct{}
}

type hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]subscriber
	closed bool
}

func newHub() *hub {
	return &hub{subs: make(map[int]subscriber)}
}

func (h *hub) subscribe(prefix string) (<-chan struct{}, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	ch := make(chan struct{}, 1)
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	h.subs[id] = subscriber{prefix: prefix, ch: ch}
	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub.ch)
		}
	}
}

func (h *hub) notify(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.subs {
		if !strings.HasPrefix(path, sub.prefix) {
			continue
		}
		// A pending tick already covers this change.
		select {
		case sub.ch <- struct{}{}:
		default:
		}
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, sub := range h.subs {
		delete(h.subs, id)
		close(sub.ch)
	}
}
