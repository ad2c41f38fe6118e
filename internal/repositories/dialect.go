package repository

import (
	"fmt"
	"strings"

	"github.com/zdziszkee/swift-codes-catalog/internal/database"
)

// columns is the persisted record shape; inserted_seq is appended on writes only.
var columns = []string{
	"swift_code",
	"bank_name",
	"address",
	"country_iso2",
	"country_name",
	"is_headquarter",
	"headquarter_code",
}

const seqColumn = "inserted_seq"

// dialect covers the statements that differ between Trino and SQLite.
type dialect interface {
	// upsert returns a statement writing rows records of len(columns)+1 arguments each.
	// A matched row keeps its inserted_seq.
	upsert(table string, rows int) string
	transactional() bool
}

func dialectFor(dbType string) (dialect, error) {
	switch dbType {
	case database.TypeTrino:
		return trinoDialect{}, nil
	case database.TypeSQLite:
		return sqliteDialect{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", database.ErrUnsupportedType, dbType)
	}
}

type sqliteDialect struct{}

func (sqliteDialect) upsert(table string, rows int) string {
	updates := make([]string, 0, len(columns)-1)
	for _, col := range columns[1:] {
		updates = append(updates, fmt.Sprintf("%s = excluded.%s", col, col))
	}
	return fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES %s ON CONFLICT(swift_code) DO UPDATE SET %s",
		table,
		strings.Join(columns, ", "), seqColumn,
		valueRows(rows),
		strings.Join(updates, ", "),
	)
}

func (sqliteDialect) transactional() bool { return true }

// trinoDialect targets Iceberg tables, which have no primary keys; MERGE gives upsert semantics.
type trinoDialect struct{}

func (trinoDialect) upsert(table string, rows int) string {
	all := append(append([]string{}, columns...), seqColumn)

	updates := make([]string, 0, len(columns)-1)
	for _, col := range columns[1:] {
		updates = append(updates, fmt.Sprintf("%s = source.%s", col, col))
	}
	inserts := make([]string, 0, len(all))
	for _, col := range all {
		inserts = append(inserts, "source."+col)
	}

	return fmt.Sprintf("MERGE INTO %s AS target USING (VALUES %s) AS source (%s) "+
		"ON target.swift_code = source.swift_code "+
		"WHEN MATCHED THEN UPDATE SET %s "+
		"WHEN NOT MATCHED THEN INSERT (%s) VALUES (%s)",
		table,
		valueRows(rows),
		strings.Join(all, ", "),
		strings.Join(updates, ", "),
		strings.Join(all, ", "),
		strings.Join(inserts, ", "),
	)
}

// The Trino driver has no transactions.
func (trinoDialect) transactional() bool { return false }

func valueRows(rows int) string {
	row := "(" + placeholders(len(columns)+1) + ")"
	out := make([]string, rows)
	for i := range out {
		out[i] = row
	}
	return strings.Join(out, ", ")
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
