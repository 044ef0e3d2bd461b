package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"marquee/internal/config"
)

// Store persists ingested titles and their child rows. It runs on SQLite
// (modernc.org/sqlite) or PostgreSQL (lib/pq) through database/sql.
type Store struct {
	db      *sql.DB
	dialect dialect
	now     func() time.Time
}

type dialect struct {
	name       string
	driver     string
	schema     string
	tableQuery string
}

var (
	sqliteDialect = dialect{
		name:       config.StoreDriverSQLite,
		driver:     "sqlite",
		schema:     schemaSQLite,
		tableQuery: "SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	}
	postgresDialect = dialect{
		name:       config.StoreDriverPostgres,
		driver:     "postgres",
		schema:     schemaPostgres,
		tableQuery: "SELECT COUNT(1) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = 'schema_version'",
	}
)

// Open connects to the configured store and creates or verifies its schema.
func Open(ctx context.Context, cfg config.Store) (*Store, error) {
	var d dialect
	switch cfg.Driver {
	case config.StoreDriverSQLite:
		d = sqliteDialect
	case config.StoreDriverPostgres:
		d = postgresDialect
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}

	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("store dsn required")
	}
	if d.name == config.StoreDriverSQLite {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("ensure store directory: %w", err)
		}
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", d.name, err)
	}
	if d.name == config.StoreDriverSQLite {
		// A single connection keeps foreign_keys and busy_timeout in effect
		// for every statement.
		db.SetMaxOpenConns(1)
		pragmas := []string{
			"PRAGMA journal_mode=WAL",
			"PRAGMA foreign_keys = ON",
			"PRAGMA busy_timeout = 5000",
		}
		for _, pragma := range pragmas {
			if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
				_ = db.Close()
				return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
			}
		}
	} else if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect %s store: %w", d.name, err)
	}

	store := &Store{db: db, dialect: d, now: time.Now}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Driver returns the configured driver name.
func (s *Store) Driver() string {
	return s.dialect.name
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.dialect.name != config.StoreDriverPostgres {
		return query
	}
	return rebindDollar(query)
}

func rebindDollar(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inString := false
	for _, r := range query {
		switch {
		case r == '\'':
			inString = !inString
		case r == '?' && !inString:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}
