package sqlstore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema_sqlite.sql
var sqliteSchema string

//go:embed schema_postgres.sql
var postgresSchema string

const (
	// DriverSQLite selects github.com/mattn/go-sqlite3.
	DriverSQLite = "sqlite3"
	// DriverPostgres selects github.com/lib/pq.
	DriverPostgres = "postgres"
)

var (
	// ErrUnsupportedDriver is returned by Open for unknown driver names.
	ErrUnsupportedDriver = errors.New("sqlstore: unsupported driver")
	// ErrInvalidNamespace is returned by Open for namespaces that are not
	// lower-case SQL identifiers.
	ErrInvalidNamespace = errors.New("sqlstore: invalid namespace")
)

var namespacePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,31}$`)

// Config selects the database.
type Config struct {
	Driver string
	DSN    string
	// Namespace prefixes every table name. Empty means no prefix.
	Namespace string
}

// Store is a triple store over database/sql.
type Store struct {
	db      *sql.DB
	driver  string
	queries queries
}

// Open connects to the database and creates the schema if needed.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	var schema string
	switch cfg.Driver {
	case DriverSQLite:
		schema = sqliteSchema
	case DriverPostgres:
		schema = postgresSchema
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}

	prefix := ""
	if cfg.Namespace != "" {
		if !namespacePattern.MatchString(cfg.Namespace) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidNamespace, cfg.Namespace)
		}
		prefix = cfg.Namespace + "_"
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlstore: connect to database: %w", err)
	}

	if cfg.Driver == DriverSQLite {
		// SQLite only supports one writer at a time.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)

		if err := applyPragmas(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
	}

	if _, err := db.ExecContext(ctx, strings.ReplaceAll(schema, "{{ns}}", prefix)); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlstore: apply schema: %w", err)
	}

	return &Store{
		db:      db,
		driver:  cfg.Driver,
		queries: newQueries(cfg.Driver, prefix),
	}, nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("sqlstore: execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Driver returns the configured driver name.
func (s *Store) Driver() string {
	return s.driver
}

type queries struct {
	prefix string

	forwardLookup  string
	reverseLookup  string
	reverseRemove  string
	reverseInsert  string
	reverseUpsert  string
	forwardInsert  string
	nextID         string
	statementAdd   string
	statementCount string
	statementScan  string
}

func newQueries(driver, prefix string) queries {
	t := func(name string) string { return prefix + name }
	q := queries{
		prefix:        prefix,
		forwardLookup: "SELECT id FROM " + t("term2id") + " WHERE key = ?",
		reverseLookup: "SELECT term FROM " + t("id2term") + " WHERE key = ?",
		reverseRemove: "DELETE FROM " + t("id2term") + " WHERE key = ?",
		reverseInsert: "INSERT INTO " + t("id2term") + " (key, term) VALUES (?, ?) ON CONFLICT DO NOTHING",
		reverseUpsert: "INSERT INTO " + t("id2term") + " (key, term) VALUES (?, ?) " +
			"ON CONFLICT (key) DO UPDATE SET term = excluded.term",
		forwardInsert: "INSERT INTO " + t("term2id") + " (key, id) VALUES (?, ?)",
		nextID: "INSERT INTO " + t("counters") + " (name, value) VALUES (?, 1) " +
			"ON CONFLICT (name) DO UPDATE SET value = " + t("counters") + ".value + 1 RETURNING value",
		statementAdd: "INSERT INTO " + t("statements") + " (subject, predicate, object) VALUES (?, ?, ?) " +
			"ON CONFLICT DO NOTHING",
		statementCount: "SELECT COUNT(*) FROM " + t("statements"),
		statementScan: "SELECT st.seq, s.term, p.term, o.term FROM " + t("statements") + " st " +
			"LEFT JOIN " + t("id2term") + " s ON s.key = st.subject " +
			"LEFT JOIN " + t("id2term") + " p ON p.key = st.predicate " +
			"LEFT JOIN " + t("id2term") + " o ON o.key = st.object " +
			"ORDER BY st.seq",
	}
	if driver == DriverPostgres {
		q.forwardLookup = rebind(q.forwardLookup)
		q.reverseLookup = rebind(q.reverseLookup)
		q.reverseRemove = rebind(q.reverseRemove)
		q.reverseInsert = rebind(q.reverseInsert)
		q.reverseUpsert = rebind(q.reverseUpsert)
		q.forwardInsert = rebind(q.forwardInsert)
		q.nextID = rebind(q.nextID)
		q.statementAdd = rebind(q.statementAdd)
	}
	return q
}

// rebind rewrites ? placeholders to PostgreSQL's $n form.
func rebind(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
