package sqlite

import (
	"context"
	"strings"

	"reportetl/internal/ddl"
	"reportetl/internal/schema"
	"reportetl/internal/storage"
)

// Dialect renders SQLite DDL.
var Dialect = ddl.Dialect{
	Name:       "sqlite",
	QuoteIdent: sqIdent,
	MapType:    MapType,
}

// MapType maps a logical column onto SQLite's type affinities.
func MapType(c schema.Column) string {
	switch c.Kind {
	case "decimal":
		return "REAL"
	default:
		return "TEXT"
	}
}

// TableName maps a SQL Server style "dbo.Table" onto a SQLite table name.
// Only the "main" schema is kept.
func TableName(fqn string) string {
	if schemaName, table, ok := strings.Cut(fqn, "."); ok && !strings.EqualFold(schemaName, "main") {
		return table
	}
	return fqn
}

// EnsureTable creates the report table if it does not already exist.
func EnsureTable(ctx context.Context, repo storage.Repository, table string) error {
	sqlText, err := ddl.BuildCreateTableSQL(ddl.FromSchema(TableName(table), schema.Target, Dialect), Dialect)
	if err != nil {
		return err
	}
	return repo.Exec(ctx, sqlText)
}
