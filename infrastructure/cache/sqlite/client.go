// ABOUTME: SQLite-based TTL store for single-node deployments
// ABOUTME: Keeps cool-downs and cached responses across process restarts

package sqlite

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"digests-ingest/core/errors"
	_ "github.com/mattn/go-sqlite3"
)

// Client implements the Cache interface using SQLite.
// Expiry is stored in unix milliseconds; 0 means the entry never expires.
type Client struct {
	db       *sql.DB
	filePath string
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

// NewSQLiteCache creates a new SQLite cache client
func NewSQLiteCache(filePath string) (*Client, error) {
	return newClient(filePath, 5*time.Minute)
}

func newClient(filePath string, cleanupInterval time.Duration) (*Client, error) {
	if filePath == "" {
		filePath = "ingest.db"
	}

	db, err := sql.Open("sqlite3", filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// sqlite3 serializes writers; one connection avoids SQLITE_BUSY under concurrent workers
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to SQLite database: %w", err)
	}

	client := &Client{
		db:       db,
		filePath: filePath,
		now:      time.Now,
		stop:     make(chan struct{}),
	}

	if err := client.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if cleanupInterval > 0 {
		go client.cleanupRoutine(cleanupInterval)
	}

	return client, nil
}

// initSchema creates the cache table if it doesn't exist
func (c *Client) initSchema() error {
	query := `
		CREATE TABLE IF NOT EXISTS ttl_store (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			expiry INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_ttl_store_expiry ON ttl_store(expiry);
	`

	_, err := c.db.Exec(query)
	return err
}

// Get retrieves a live value from the store
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, stderrors.New("key cannot be empty")
	}

	var value []byte
	query := "SELECT value FROM ttl_store WHERE key = ? AND (expiry = 0 OR expiry > ?)"
	err := c.db.QueryRowContext(ctx, query, key, c.nowMillis()).Scan(&value)

	if err == sql.ErrNoRows {
		return nil, &errors.NotFoundError{Resource: "cache key", ID: key}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get value: %w", err)
	}

	return value, nil
}

// Set stores a value with TTL. A non-positive TTL means no expiry.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return stderrors.New("key cannot be empty")
	}
	if value == nil {
		value = []byte{}
	}

	var expiry int64
	if ttl > 0 {
		expiry = c.now().Add(ttl).UnixMilli()
	}

	query := "INSERT OR REPLACE INTO ttl_store (key, value, expiry) VALUES (?, ?, ?)"
	if _, err := c.db.ExecContext(ctx, query, key, value, expiry); err != nil {
		return fmt.Errorf("failed to set value: %w", err)
	}

	return nil
}

// Delete removes a value from the store
func (c *Client) Delete(ctx context.Context, key string) error {
	if key == "" {
		return stderrors.New("key cannot be empty")
	}

	if _, err := c.db.ExecContext(ctx, "DELETE FROM ttl_store WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete value: %w", err)
	}

	return nil
}

// TTL returns the remaining lifetime of key, or 0 when it never expires
func (c *Client) TTL(ctx context.Context, key string) (time.Duration, error) {
	if key == "" {
		return 0, stderrors.New("key cannot be empty")
	}

	now := c.nowMillis()
	var expiry int64
	query := "SELECT expiry FROM ttl_store WHERE key = ? AND (expiry = 0 OR expiry > ?)"
	err := c.db.QueryRowContext(ctx, query, key, now).Scan(&expiry)

	if err == sql.ErrNoRows {
		return 0, &errors.NotFoundError{Resource: "cache key", ID: key}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read ttl: %w", err)
	}
	if expiry == 0 {
		return 0, nil
	}

	return time.Duration(expiry-now) * time.Millisecond, nil
}

func (c *Client) nowMillis() int64 {
	return c.now().UnixMilli()
}

// cleanupRoutine periodically removes expired entries
func (c *Client) cleanupRoutine(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, _ = c.cleanup()
		case <-c.stop:
			return
		}
	}
}

// cleanup removes expired entries and returns how many were removed
func (c *Client) cleanup() (int64, error) {
	res, err := c.db.Exec("DELETE FROM ttl_store WHERE expiry != 0 AND expiry <= ?", c.nowMillis())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Close stops the cleanup routine and closes the database connection
func (c *Client) Close() error {
	c.stopOnce.Do(func() { close(c.stop) })
	return c.db.Close()
}

// Stats returns store statistics
func (c *Client) Stats() (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var count int
	if err := c.db.QueryRow("SELECT COUNT(*) FROM ttl_store").Scan(&count); err != nil {
		return nil, err
	}
	stats["total_entries"] = count

	var expired int
	err := c.db.QueryRow("SELECT COUNT(*) FROM ttl_store WHERE expiry != 0 AND expiry <= ?", c.nowMillis()).Scan(&expired)
	if err != nil {
		return nil, err
	}
	stats["expired_entries"] = expired

	var pageCount, pageSize int
	if err := c.db.QueryRow("PRAGMA page_count").Scan(&pageCount); err == nil {
		if err := c.db.QueryRow("PRAGMA page_size").Scan(&pageSize); err == nil {
			stats["db_size_bytes"] = pageCount * pageSize
		}
	}

	stats["file_path"] = c.filePath

	return stats, nil
}
