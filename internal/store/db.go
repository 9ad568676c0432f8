package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"go-pdf-fixtures/internal/model"
)

// ErrTableNotFound is returned when the requested table is missing
var ErrTableNotFound = errors.New("table not found")

// StorageError wraps a failure of the underlying database
type StorageError struct {
	Op    string
	Table string
	Err   error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Table, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// RowSource reads rows of one table from a SQLite database
type RowSource struct {
	db    *sql.DB
	table string
}

// Open opens the database at dbPath read-only for the given table
func Open(dbPath, table string) (*RowSource, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, &StorageError{Op: "open database", Table: table, Err: err}
	}
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return nil, &StorageError{Op: "open database", Table: table, Err: err}
	}
	return &RowSource{db: db, table: table}, nil
}

// Close releases the database handle
func (s *RowSource) Close() error {
	return s.db.Close()
}

// ValidateTableExists checks sqlite_master for the table. A false result
// with a nil error means the database is readable but the table is missing.
func (s *RowSource) ValidateTableExists(ctx context.Context) (bool, error) {
	var name string
	err := s.db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type='table' AND name = ?`, s.table).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, &StorageError{Op: "validate table", Table: s.table, Err: err}
	}
	return true, nil
}

// GetColumnNames returns the table's columns in declaration order
func (s *RowSource) GetColumnNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "PRAGMA table_info("+quoteIdent(s.table)+")")
	if err != nil {
		return nil, &StorageError{Op: "read columns", Table: s.table, Err: err}
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var (
			cid       int
			name      string
			ctype     string
			notNull   int
			dfltValue interface{}
			pk        int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dfltValue, &pk); err != nil {
			return nil, &StorageError{Op: "read columns", Table: s.table, Err: err}
		}
		cols = append(cols, name)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "read columns", Table: s.table, Err: err}
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrTableNotFound, s.table)
	}
	return cols, nil
}

// GetAllRows eagerly fetches every row of the table in table order
func (s *RowSource) GetAllRows(ctx context.Context) ([]model.Row, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(s.table))
	if err != nil {
		return nil, &StorageError{Op: "query rows", Table: s.table, Err: err}
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, &StorageError{Op: "query rows", Table: s.table, Err: err}
	}

	var out []model.Row
	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &StorageError{Op: "scan row", Table: s.table, Err: err}
		}

		row := make(model.Row, len(cols))
		for i, c := range cols {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[i] = model.Field{Name: c, Value: v}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "query rows", Table: s.table, Err: err}
	}
	return out, nil
}

// quoteIdent quotes a SQLite identifier
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
