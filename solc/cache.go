package solc

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/teranos/solmap/errors"
)

// Cache is a content-addressed store of combined-json artifacts keyed
// by compiler input hash. It is explicit state handed to a Compiler,
// never process-global.
type Cache struct {
	db *sql.DB
}

// CacheKey derives the content address for one compilation: the source
// bytes, the exact solc version, and the extra args all change the
// output, so all three feed the hash.
func CacheKey(source []byte, solcVersion string, args []string) string {
	h := sha256.New()
	h.Write(source)
	h.Write([]byte{0})
	h.Write([]byte(solcVersion))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(args, "\x00")))
	return hex.EncodeToString(h.Sum(nil))
}

// OpenCache opens (or creates) a SQLite-backed artifact cache at path.
// If logger is provided, logs cache operations; otherwise operates
// silently.
func OpenCache(path string, logger *zap.SugaredLogger) (*Cache, error) {
	if logger != nil {
		logger.Debugw("Opening artifact cache", "path", path)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "open artifact cache")
	}

	// Enable WAL mode for concurrent reads during writes
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "enable WAL mode")
	}

	// Set busy timeout to 5 seconds
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "set busy timeout")
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS artifacts (
			key        TEXT PRIMARY KEY,
			artifact   BLOB NOT NULL,
			created_at INTEGER NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create artifacts table")
	}

	return &Cache{db: db}, nil
}

// Get returns the cached artifact for key, with ok false on a miss.
func (c *Cache) Get(key string) ([]byte, bool, error) {
	var artifact []byte
	err := c.db.QueryRow("SELECT artifact FROM artifacts WHERE key = ?", key).Scan(&artifact)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "query artifact cache")
	}
	return artifact, true, nil
}

// Put stores an artifact under key, replacing any previous entry.
func (c *Cache) Put(key string, artifact []byte) error {
	_, err := c.db.Exec(
		"INSERT OR REPLACE INTO artifacts (key, artifact, created_at) VALUES (?, ?, ?)",
		key, artifact, time.Now().Unix(),
	)
	if err != nil {
		return errors.Wrap(err, "store artifact")
	}
	return nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}
