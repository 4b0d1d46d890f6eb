package explain

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/raysh454/clauseguard/internal/logging"
	"github.com/raysh454/clauseguard/internal/model"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaFS embed.FS

// Cache stores explanations by key. Implementations must be safe for
// concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (*model.Explanation, bool, error)
	Put(ctx context.Context, key string, entry CacheEntry) error
	Close() error
}

// CacheEntry is what Put persists alongside the explanation.
type CacheEntry struct {
	Model       string
	Language    string
	Categories  []string
	Explanation *model.Explanation
}

// CacheKey derives the cache key for one explanation request.
func CacheKey(modelName, lang string, categoryIDs []string, clause string) string {
	h := sha256.New()
	for _, part := range []string{modelName, lang, strings.Join(categoryIDs, ","), clause} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// SQLiteCache persists explanations in a single sqlite table.
type SQLiteCache struct {
	db     *sql.DB
	logger logging.Logger
	now    func() time.Time
}

// OpenCache opens (creating if needed) the cache database at path.
func OpenCache(path string, logger logging.Logger) (*SQLiteCache, error) {
	if path == "" {
		return nil, errors.New("explain: cache path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	c, err := NewCache(db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// NewCache applies the schema to db and returns a cache that owns it.
func NewCache(db *sql.DB, logger logging.Logger) (*SQLiteCache, error) {
	if db == nil {
		return nil, errors.New("explain: nil db")
	}
	// sqlite has a single writer; one connection avoids lock upgrades failing
	// with SQLITE_BUSY under concurrent analyses.
	db.SetMaxOpenConns(1)
	if err := applySchema(db); err != nil {
		return nil, fmt.Errorf("failed to apply cache schema: %w", err)
	}
	return &SQLiteCache{db: db, logger: logging.Component(logger, "explain-cache"), now: time.Now}, nil
}

func applySchema(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema.sql: %w", err)
	}
	if _, err := db.Exec(string(schemaSQL)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

func (c *SQLiteCache) Get(ctx context.Context, key string) (*model.Explanation, bool, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			c.logger.Warn("Failed to rollback transaction", logging.Field{Key: "error", Value: rbErr.Error()})
		}
	}()

	var payload string
	err = tx.QueryRowContext(ctx, `SELECT payload FROM explanations WHERE key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query explanation: %w", err)
	}

	var e model.Explanation
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		return nil, false, fmt.Errorf("decode cached explanation: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE explanations SET hits = hits + 1, used_at = ? WHERE key = ?`,
		c.now().Unix(), key); err != nil {
		return nil, false, fmt.Errorf("touch explanation: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("commit: %w", err)
	}
	return &e, true, nil
}

func (c *SQLiteCache) Put(ctx context.Context, key string, entry CacheEntry) error {
	if entry.Explanation == nil {
		return errors.New("explain: nil explanation")
	}
	payload, err := json.Marshal(entry.Explanation)
	if err != nil {
		return fmt.Errorf("encode explanation: %w", err)
	}
	now := c.now().Unix()
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO explanations (key, model, language, categories, payload, created_at, used_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, used_at = excluded.used_at`,
		key, entry.Model, entry.Language, strings.Join(entry.Categories, ","), string(payload), now, now)
	if err != nil {
		return fmt.Errorf("store explanation: %w", err)
	}
	return nil
}

// Prune removes entries not used since before cutoff and returns how many
// were deleted.
func (c *SQLiteCache) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM explanations WHERE used_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("prune explanations: %w", err)
	}
	return res.RowsAffected()
}

// Len returns the number of cached explanations.
func (c *SQLiteCache) Len(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM explanations`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (c *SQLiteCache) Close() error { return c.db.Close() }
