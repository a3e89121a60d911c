package postgres

import (
	"context"
	"fmt"

	"reportetl/internal/ddl"
	"reportetl/internal/schema"
	"reportetl/internal/storage"
)

// Dialect renders Postgres DDL with CREATE TABLE IF NOT EXISTS.
var Dialect = ddl.Dialect{
	Name:       "postgres",
	QuoteIdent: pgIdent,
	MapType:    MapType,
}

// MapType maps a logical column into a Postgres column type.
func MapType(c schema.Column) string {
	switch c.Kind {
	case "date":
		return "DATE"
	case "decimal":
		return "NUMERIC(18, 2)"
	default:
		if c.Size > 0 {
			return fmt.Sprintf("VARCHAR(%d)", c.Size)
		}
		return "TEXT"
	}
}

// EnsureTable creates the report table if it does not already exist.
func EnsureTable(ctx context.Context, repo storage.Repository, table string) error {
	sqlText, err := ddl.BuildCreateTableSQL(ddl.FromSchema(storage.StripDefaultSchema(table), schema.Target, Dialect), Dialect)
	if err != nil {
		return err
	}
	if err := repo.Exec(ctx, sqlText); err != nil {
		return fmt.Errorf("apply DDL: %w", err)
	}
	return nil
}
