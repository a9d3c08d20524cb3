// Package dbsummary renders a read-only textual summary of a SQLite file:
// its tables, their columns, row counts and a few sample rows.
package dbsummary

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	_ "modernc.org/sqlite"
)

// SampleRows is the number of rows shown per table.
const SampleRows = 5

// Summarize writes the summary of the database at path under label.
// Database errors are written into the summary; only write errors are returned.
func Summarize(ctx context.Context, w io.Writer, label, path string) error {
	if _, err := fmt.Fprintf(w, "\n\n--- SQLite Database File: %s ---\n\n", label); err != nil {
		return err
	}

	db, err := open(path)
	if err != nil {
		return writeEngineError(w, err)
	}
	defer db.Close()

	return WriteTables(ctx, w, db)
}

// WriteTables writes one section per table reported by sqlite_master.
// The first database error is written as "An error occurred: ..." and ends
// the summary for this database.
func WriteTables(ctx context.Context, w io.Writer, db *sql.DB) error {
	tables, err := tableNames(ctx, db)
	if err != nil {
		return writeEngineError(w, err)
	}

	for _, table := range tables {
		var dbErr error
		werr := writeTable(ctx, w, db, table, &dbErr)
		if werr != nil {
			return werr
		}
		if dbErr != nil {
			return writeEngineError(w, dbErr)
		}
	}
	return nil
}

func open(path string) (*sql.DB, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	dsn := (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs), RawQuery: "mode=ro"}).String()
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func tableNames(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, "SELECT name FROM sqlite_master WHERE type='table'")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// writeTable writes one table section. Write failures are returned, database
// failures are stored in dbErr so the caller can render them.
func writeTable(ctx context.Context, w io.Writer, db *sql.DB, table string, dbErr *error) error {
	ew := &errWriter{w: w}
	ew.printf("\nTable: %s\n", table)
	ew.printf("%s\n", strings.Repeat("-", utf8.RuneCountInString(table)+7))
	if ew.err != nil {
		return ew.err
	}

	columns, err := tableColumns(ctx, db, table)
	if err != nil {
		*dbErr = err
		return nil
	}
	ew.printf("Columns:\n")
	for _, c := range columns {
		ew.printf("  %s (%s)\n", c.name, c.declType)
	}
	if ew.err != nil {
		return ew.err
	}

	var count int64
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quoteIdent(table)).Scan(&count); err != nil {
		*dbErr = err
		return nil
	}
	ew.printf("\nTotal rows: %d\n", count)

	ew.printf("\nSample Data (up to %d rows):\n", SampleRows)
	if ew.err != nil {
		return ew.err
	}
	samples, err := sampleRows(ctx, db, table, columns)
	if err != nil {
		*dbErr = err
		return nil
	}
	for _, row := range samples {
		ew.printf("  %s\n", formatRow(row))
	}
	ew.printf("\n")
	return ew.err
}

type column struct {
	name     string
	declType string
}

func tableColumns(ctx context.Context, db *sql.DB, table string) ([]column, error) {
	rows, err := db.QueryContext(ctx, "PRAGMA table_info("+quoteIdent(table)+")")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// cid, name, type, notnull, dflt_value, pk
	var columns []column
	for rows.Next() {
		var (
			cid, notNull, pk int64
			name, declType   string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &declType, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		columns = append(columns, column{name: name, declType: declType})
	}
	return columns, rows.Err()
}

func sampleRows(ctx context.Context, db *sql.DB, table string, columns []column) ([][]any, error) {
	query := fmt.Sprintf("SELECT %s FROM %s LIMIT %d", selectList(columns), quoteIdent(table), SampleRows)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out [][]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		out = append(out, values)
	}
	return out, rows.Err()
}

// selectList returns "*" unless a column is declared with a date or time
// type. The driver parses text in such columns into time values, so they are
// selected as unary-plus expressions, which carry no declared type and come
// back exactly as stored.
func selectList(columns []column) string {
	if !slices.ContainsFunc(columns, column.isTemporal) {
		return "*"
	}
	exprs := make([]string, len(columns))
	for i, c := range columns {
		exprs[i] = quoteIdent(c.name)
		if c.isTemporal() {
			exprs[i] = "+" + exprs[i]
		}
	}
	return strings.Join(exprs, ", ")
}

func (c column) isTemporal() bool {
	t := strings.ToUpper(c.declType)
	return strings.Contains(t, "DATE") || strings.Contains(t, "TIME")
}

func writeEngineError(w io.Writer, err error) error {
	_, werr := fmt.Fprintf(w, "An error occurred: %v\n", err)
	return werr
}

// quoteIdent quotes a SQLite identifier.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
