// Package cache stores API responses as JSON blobs in a local SQLite database.
package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// DefaultTTL is how long an entry stays valid when no TTL is configured.
const DefaultTTL = 720 * time.Hour

// DB is a SQLite-backed response cache. A nil *DB disables caching.
type DB struct {
	db   *sql.DB
	mu   sync.RWMutex
	path string
	ttl  time.Duration
	now  func() time.Time
}

// Open opens (or creates) the cache database at path and ensures all tables exist.
func Open(path string, ttl time.Duration) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "open cache database")
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		closeErr := db.Close()
		return nil, errors.Join(eris.Wrap(err, "connect to cache database"), closeErr)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}

	c := &DB{db: db, path: path, ttl: ttl, now: time.Now}
	for _, table := range Tables {
		if _, err := db.Exec(fmt.Sprintf(tableSchema, table)); err != nil {
			_ = db.Close()
			return nil, eris.Wrapf(err, "create cache table %s", table)
		}
	}
	return c, nil
}

// Path returns the database file path.
func (c *DB) Path() string {
	return c.path
}

// Close closes the database connection.
func (c *DB) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.db.Close()
}

// Get returns the cached payload for key when it is younger than ttl.
func (c *DB) Get(table, key string, ttl time.Duration) (string, bool, error) {
	if !validTable(table) {
		return "", false, eris.Errorf("invalid cache table name: %s", table)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var data string
	var cachedAt time.Time
	query := fmt.Sprintf("SELECT data, cached_at FROM %s WHERE cache_key = ?", table)
	err := c.db.QueryRow(query, key).Scan(&data, &cachedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, eris.Wrap(err, "query cache")
	}

	if age := c.now().UTC().Sub(cachedAt); age > ttl {
		slog.Debug("Cache expired", "table", table, "key", key, "age", age)
		return "", false, nil
	}
	return data, true, nil
}

// Set stores payload under key, replacing any previous entry.
func (c *DB) Set(table, key, data string) error {
	if !validTable(table) {
		return eris.Errorf("invalid cache table name: %s", table)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	query := fmt.Sprintf("INSERT OR REPLACE INTO %s (cache_key, data, cached_at) VALUES (?, ?, ?)", table)
	if _, err := c.db.Exec(query, key, data, c.now().UTC()); err != nil {
		return eris.Wrap(err, "set cache")
	}
	return nil
}

// Invalidate deletes every entry in table and returns the number removed.
func (c *DB) Invalidate(table string) (int64, error) {
	if !validTable(table) {
		return 0, eris.Errorf("invalid cache table name: %s", table)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	result, err := c.db.Exec(fmt.Sprintf("DELETE FROM %s", table))
	if err != nil {
		return 0, eris.Wrap(err, "delete cache entries")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, eris.Wrap(err, "count deleted cache entries")
	}
	slog.Debug("Cache table cleared", "table", table, "rows_deleted", rows)
	return rows, nil
}

// GetOrFetch returns the cached value for key or calls fetch and stores its result.
// shouldCache may veto storing a fetched value; nil stores everything.
// Cache failures are logged and never hide a successful fetch.
func GetOrFetch[T any](c *DB, table, key string, fetch func() (T, error), shouldCache func(T) bool) (T, bool, error) {
	var zero T
	if c == nil {
		v, err := fetch()
		return v, false, err
	}

	if cached, ok, err := c.Get(table, key, c.ttl); err != nil {
		slog.Warn("Cache lookup failed", "table", table, "key", key, "error", err)
	} else if ok {
		var result T
		if err := json.Unmarshal([]byte(cached), &result); err == nil {
			slog.Debug("Cache hit", "table", table, "key", key)
			return result, true, nil
		}
		slog.Warn("Failed to unmarshal cached data, will refetch", "table", table, "key", key)
	}

	slog.Debug("Cache miss, fetching data", "table", table, "key", key)
	data, err := fetch()
	if err != nil {
		return zero, false, err
	}
	storeFetched(c, table, key, data, shouldCache)
	return data, false, nil
}

// Refresh calls fetch without reading the cache and replaces the entry for
// key with the result. A nil cache only fetches.
func Refresh[T any](c *DB, table, key string, fetch func() (T, error), shouldCache func(T) bool) (T, error) {
	data, err := fetch()
	if err != nil || c == nil {
		return data, err
	}
	slog.Debug("Cache refresh", "table", table, "key", key)
	storeFetched(c, table, key, data, shouldCache)
	return data, nil
}

func storeFetched[T any](c *DB, table, key string, data T, shouldCache func(T) bool) {
	if shouldCache != nil && !shouldCache(data) {
		return
	}
	payload, err := json.Marshal(data)
	if err != nil {
		slog.Warn("Failed to marshal data for caching", "table", table, "key", key, "error", err)
		return
	}
	if err := c.Set(table, key, string(payload)); err != nil {
		slog.Warn("Failed to cache data", "table", table, "key", key, "error", err)
	}
}
