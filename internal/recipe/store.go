package recipe

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/samber/lo"
)

// Kinds of generated text kept in a Store.
const (
	KindValidation = "validation"
	KindOptions    = "options"
	KindDetails    = "details"
	KindNutrition  = "nutrition"
)

// Store caches generated text by key.
type Store interface {
	// GetText returns the cached text for key, or "" when there is none.
	GetText(ctx context.Context, key string) (string, error)
	SaveText(ctx context.Context, key, kind, text string) error
}

// CacheKey derives the cache key for a kind of generated text. Ingredient
// order and duplicates do not change the key; the recipe name is compared
// case-insensitively.
func CacheKey(kind, recipeName string, ingredients []string) string {
	normalized := lo.Uniq(lo.Map(ingredients, func(s string, _ int) string {
		return strings.ToLower(strings.TrimSpace(s))
	}))
	sort.Strings(normalized)

	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s", kind, strings.ToLower(strings.TrimSpace(recipeName)), strings.Join(normalized, "\x00"))
	return kind + ":" + hex.EncodeToString(h.Sum(nil))
}

// PostgresStore implements Store for PostgreSQL.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(dataSourceName string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS generated_texts (
		cache_key TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		body TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create generated_texts table: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Close closes the underlying database handle.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// GetText retrieves cached text by key.
func (s *PostgresStore) GetText(ctx context.Context, key string) (string, error) {
	var body string
	err := s.db.GetContext(ctx, &body, "SELECT body FROM generated_texts WHERE cache_key = $1", key)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("failed to get generated text: %w", err)
	}
	return body, nil
}

// SaveText stores text under key, replacing any previous value.
func (s *PostgresStore) SaveText(ctx context.Context, key, kind, text string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO generated_texts (cache_key, kind, body) VALUES ($1, $2, $3) ON CONFLICT (cache_key) DO UPDATE SET kind = $2, body = $3, created_at = now()",
		key,
		kind,
		text,
	)
	if err != nil {
		return fmt.Errorf("failed to save generated text: %w", err)
	}
	return nil
}

// MemoryStore is an in-process Store used when no database is configured.
// It keeps at most max entries and evicts the oldest first.
type MemoryStore struct {
	mu    sync.Mutex
	max   int
	order []string
	texts map[string]string
}

// NewMemoryStore creates a MemoryStore holding up to max entries. A max of
// zero or less means unbounded.
func NewMemoryStore(max int) *MemoryStore {
	return &MemoryStore{max: max, texts: make(map[string]string)}
}

// GetText returns the cached text for key.
func (m *MemoryStore) GetText(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.texts[key], nil
}

// SaveText stores text under key.
func (m *MemoryStore) SaveText(_ context.Context, key, _ string, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.texts[key]; !ok {
		m.order = append(m.order, key)
	}
	m.texts[key] = text

	for m.max > 0 && len(m.order) > m.max {
		delete(m.texts, m.order[0])
		m.order = m.order[1:]
	}
	return nil
}

// Len returns the number of cached entries.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.texts)
}
