package mysql

import (
	"context"
	"fmt"

	"reportetl/internal/ddl"
	"reportetl/internal/schema"
	"reportetl/internal/storage"
)

// Dialect renders MySQL DDL.
var Dialect = ddl.Dialect{
	Name:       "mysql",
	QuoteIdent: myIdent,
	MapType:    MapType,
}

// MapType maps a logical column into a MySQL column type.
func MapType(c schema.Column) string {
	switch c.Kind {
	case "date":
		return "DATE"
	case "decimal":
		return "DECIMAL(18, 2)"
	default:
		if c.Size > 0 {
			return fmt.Sprintf("VARCHAR(%d)", c.Size)
		}
		return "VARCHAR(255)"
	}
}

// EnsureTable creates the report table if it does not already exist.
func EnsureTable(ctx context.Context, repo storage.Repository, table string) error {
	sqlText, err := ddl.BuildCreateTableSQL(ddl.FromSchema(storage.StripDefaultSchema(table), schema.Target, Dialect), Dialect)
	if err != nil {
		return err
	}
	return repo.Exec(ctx, sqlText)
}
