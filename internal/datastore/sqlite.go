package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore writes tables to a local SQLite file that Datasette can serve.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a SQLiteStore for dbPath. Call Connect before use.
func NewSQLiteStore(dbPath string) *SQLiteStore {
	return &SQLiteStore{
		dbPath: dbPath,
	}
}

// Connect opens the database file, creating it when needed.
func (s *SQLiteStore) Connect() error {
	db, err := sql.Open("sqlite", s.dbPath)
	if err != nil {
		return eris.Wrap(err, "open database")
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return eris.Wrapf(err, "connect to %s", s.dbPath)
	}
	s.db = db
	return nil
}

// CreateTable executes schema.
func (s *SQLiteStore) CreateTable(schema string) error {
	if _, err := s.db.Exec(schema); err != nil {
		return eris.Wrap(err, "create table")
	}
	return nil
}

// BatchInsert inserts records into table in one transaction. Rows that
// collide with an existing primary key replace it. The column set is taken
// from the first record.
func (s *SQLiteStore) BatchInsert(ctx context.Context, database string, table string, records []map[string]any) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "begin transaction")
	}
	defer func() {
		// no-op once committed
		_ = tx.Rollback()
	}()

	columns := recordColumns(records[0])
	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = "?"
	}
	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = quoteIdent(col)
	}
	query := fmt.Sprintf(
		"INSERT OR REPLACE INTO %s (%s) VALUES (%s)",
		quoteIdent(table),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
	)

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return eris.Wrapf(err, "prepare insert into %s", table)
	}
	defer func() { _ = stmt.Close() }()

	for _, record := range records {
		values := make([]any, len(columns))
		for i, col := range columns {
			values[i] = record[col]
		}
		if _, err := stmt.ExecContext(ctx, values...); err != nil {
			return eris.Wrapf(err, "insert into %s", table)
		}
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "commit transaction")
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// recordColumns returns the keys of record in a stable order.
func recordColumns(record map[string]any) []string {
	columns := make([]string, 0, len(record))
	for col := range record {
		columns = append(columns, col)
	}
	slices.Sort(columns)
	return columns
}

// quoteIdent quotes a table or column name; "cast" is an SQL keyword.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
