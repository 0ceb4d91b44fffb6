// Package buildcache is a persisted incremental-build cache keyed by a
// translation unit's source hash, so a driver like cmd/sysc can skip
// re-analyzing an unchanged file and reuse the IR text it emitted last
// time. It selects a database/sql driver by name, blank-importing every
// candidate and opening a single handle against one cache table.
package buildcache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// DriverEnv names the environment variable a build invocation uses to
// pick an alternate cache backend; the zero-config default is the
// pure-Go modernc.org/sqlite driver.
const DriverEnv = "SYSC_CACHE_DRIVER"

const defaultDriver = "sqlite"

// driverDSN maps a driver name to a default data-source name rooted at
// path, mirroring database.go's per-dbType DSN construction.
func driverDSN(driver, path string) (string, error) {
	switch driver {
	case "sqlite", "":
		return path, nil
	case "sqlite3":
		return path, nil
	case "mysql":
		return os.Getenv("SYSC_CACHE_DSN"), nil
	case "postgres", "postgresql":
		return os.Getenv("SYSC_CACHE_DSN"), nil
	case "mssql", "sqlserver":
		return os.Getenv("SYSC_CACHE_DSN"), nil
	default:
		return "", fmt.Errorf("buildcache: unknown driver %q", driver)
	}
}

func sqlDriverName(driver string) string {
	switch driver {
	case "sqlite", "":
		return "sqlite"
	case "sqlite3":
		return "sqlite3"
	case "mysql":
		return "mysql"
	case "postgres", "postgresql":
		return "postgres"
	case "mssql", "sqlserver":
		return "sqlserver"
	default:
		return driver
	}
}

// Cache wraps one database/sql handle holding a single table:
// translation-unit content hash -> emitted IR text.
type Cache struct {
	db     *sql.DB
	rebind func(query string) string
}

// Open opens (creating if necessary) a build cache at path, using the
// driver named by the SYSC_CACHE_DRIVER environment variable or the
// pure-Go sqlite default when unset.
func Open(path string) (*Cache, error) {
	driver := os.Getenv(DriverEnv)
	if driver == "" {
		driver = defaultDriver
	}
	dsn, err := driverDSN(driver, path)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(sqlDriverName(driver), dsn)
	if err != nil {
		return nil, fmt.Errorf("buildcache: open %s: %w", driver, err)
	}
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("buildcache: init schema: %w", err)
	}
	return &Cache{db: db, rebind: rebindFunc(sqlDriverName(driver))}, nil
}

// rebindFunc returns a function that rewrites the `?`-style placeholders
// this package's queries are written with into whatever bind-variable
// syntax the chosen driver expects: lib/pq wants `$1, $2, ...` and
// go-mssqldb wants `@p1, @p2, ...`; sqlite/sqlite3/mysql accept `?`
// unchanged.
func rebindFunc(driverName string) func(string) string {
	switch driverName {
	case "postgres":
		return func(q string) string { return rebind(q, func(n int) string { return fmt.Sprintf("$%d", n) }) }
	case "sqlserver":
		return func(q string) string { return rebind(q, func(n int) string { return fmt.Sprintf("@p%d", n) }) }
	default:
		return func(q string) string { return q }
	}
}

func rebind(query string, placeholder func(int) string) string {
	var b []byte
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b = append(b, placeholder(n)...)
			continue
		}
		b = append(b, query[i])
	}
	return string(b)
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS build_cache (
	id         TEXT PRIMARY KEY,
	hash       TEXT UNIQUE NOT NULL,
	ir_text    TEXT NOT NULL,
	error_count INTEGER NOT NULL,
	updated_at TEXT NOT NULL
)`

// Close releases the underlying handle.
func (c *Cache) Close() error { return c.db.Close() }

// Hash content-hashes a translation unit's source text with blake2b.
func Hash(source []byte) string {
	sum := blake2b.Sum256(source)
	return fmt.Sprintf("%x", sum)
}

// Entry is one cached analysis result for a translation unit.
type Entry struct {
	ID         string
	Hash       string
	IRText     string
	ErrorCount int
	UpdatedAt  time.Time
}

// Lookup returns the cached entry for hash, if any.
func (c *Cache) Lookup(ctx context.Context, hash string) (*Entry, bool, error) {
	row := c.db.QueryRowContext(ctx,
		c.rebind(`SELECT id, hash, ir_text, error_count, updated_at FROM build_cache WHERE hash = ?`), hash)
	var e Entry
	var updatedAt string
	if err := row.Scan(&e.ID, &e.Hash, &e.IRText, &e.ErrorCount, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("buildcache: lookup: %w", err)
	}
	e.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &e, true, nil
}

// Store records the analysis result for hash, replacing any prior entry
// for the same content hash (the translation unit didn't change, so the
// row's identity is re-used rather than growing the table unbounded).
func (c *Cache) Store(ctx context.Context, hash, irText string, errorCount int) (*Entry, error) {
	e := &Entry{ID: uuid.NewString(), Hash: hash, IRText: irText, ErrorCount: errorCount, UpdatedAt: time.Now()}
	_, err := c.db.ExecContext(ctx,
		c.rebind(`INSERT INTO build_cache (id, hash, ir_text, error_count, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(hash) DO UPDATE SET ir_text = excluded.ir_text, error_count = excluded.error_count, updated_at = excluded.updated_at`),
		e.ID, e.Hash, e.IRText, e.ErrorCount, e.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("buildcache: store: %w", err)
	}
	return e, nil
}
