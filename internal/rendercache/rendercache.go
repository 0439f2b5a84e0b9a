// Package rendercache stores finished renders in SQLite so repeated
// requests skip the web engine.
package rendercache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cryguy/mathrender/internal/core"
	"github.com/npillmayer/schuko/tracing"

	// Pure-Go SQLite driver for database/sql.
	_ "github.com/glebarez/sqlite"
)

// tracer traces with key 'mathrender.rendercache'.
func tracer() tracing.Trace {
	return tracing.Select("mathrender.rendercache")
}

// FileName is the database file created inside the cache directory.
const FileName = "rendercache.sqlite3"

const schema = `CREATE TABLE IF NOT EXISTS renders (
	key     TEXT PRIMARY KEY,
	latex   TEXT NOT NULL,
	width   INTEGER NOT NULL,
	height  INTEGER NOT NULL,
	pixels  BLOB NOT NULL,
	created INTEGER NOT NULL
)`

// Key identifies a render: the same source, style and density always
// produce the same image.
type Key struct {
	Latex   string
	Style   core.Style
	Density float64
}

// Hash is the hex SHA-256 of the key's JSON form.
func (k Key) Hash() string {
	b, _ := json.Marshal(k)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Entry is a cached render: raw RGBA rows of Width*Height pixels.
type Entry struct {
	Width   int
	Height  int
	Pixels  []byte
	Created time.Time
}

// Cache is a render cache backed by one SQLite database.
type Cache struct {
	db *sql.DB
}

// Open opens (or creates) the cache stored at {dir}/rendercache.sqlite3.
func Open(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	db, err := sql.Open("sqlite", filepath.Join(dir, FileName))
	if err != nil {
		return nil, fmt.Errorf("opening render cache: %w", err)
	}
	_, _ = db.Exec("PRAGMA journal_mode=WAL")
	return initCache(db)
}

// OpenMemory creates a cache that lives as long as the returned value.
func OpenMemory() (*Cache, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory render cache: %w", err)
	}
	// every connection would get its own empty database
	db.SetMaxOpenConns(1)
	return initCache(db)
}

func initCache(db *sql.DB) (*Cache, error) {
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating render cache schema: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close closes the database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the entry for key. ok is false on a miss.
func (c *Cache) Get(key Key) (e Entry, ok bool, err error) {
	var created int64
	row := c.db.QueryRow(`SELECT width, height, pixels, created FROM renders WHERE key = ?`, key.Hash())
	err = row.Scan(&e.Width, &e.Height, &e.Pixels, &created)
	if errors.Is(err, sql.ErrNoRows) {
		tracer().Debugf("cache miss for %q", key.Latex)
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("reading render cache: %w", err)
	}
	if len(e.Pixels) != e.Width*e.Height*4 {
		tracer().Errorf("dropping corrupt cache entry for %q", key.Latex)
		return Entry{}, false, c.Delete(key)
	}
	e.Created = time.Unix(0, created)
	tracer().Debugf("cache hit for %q", key.Latex)
	return e, true, nil
}

// Put stores e under key, replacing an existing entry.
func (c *Cache) Put(key Key, e Entry) error {
	if e.Width <= 0 || e.Height <= 0 || len(e.Pixels) != e.Width*e.Height*4 {
		return fmt.Errorf("render cache: %dx%d entry with %d bytes", e.Width, e.Height, len(e.Pixels))
	}
	if e.Created.IsZero() {
		e.Created = time.Now()
	}
	_, err := c.db.Exec(`INSERT OR REPLACE INTO renders (key, latex, width, height, pixels, created)
		VALUES (?, ?, ?, ?, ?, ?)`, key.Hash(), key.Latex, e.Width, e.Height, e.Pixels, e.Created.UnixNano())
	if err != nil {
		return fmt.Errorf("writing render cache: %w", err)
	}
	return nil
}

// Delete removes the entry for key.
func (c *Cache) Delete(key Key) error {
	if _, err := c.db.Exec(`DELETE FROM renders WHERE key = ?`, key.Hash()); err != nil {
		return fmt.Errorf("deleting from render cache: %w", err)
	}
	return nil
}

// Prune removes entries created before cutoff and reports how many.
func (c *Cache) Prune(cutoff time.Time) (int64, error) {
	res, err := c.db.Exec(`DELETE FROM renders WHERE created < ?`, cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("pruning render cache: %w", err)
	}
	n, _ := res.RowsAffected()
	tracer().Infof("pruned %d cached renders", n)
	return n, nil
}

// Len returns the number of cached renders.
func (c *Cache) Len() (int, error) {
	var n int
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM renders`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting render cache: %w", err)
	}
	return n, nil
}
