package mssql

import (
	"context"
	"fmt"
	"strings"

	"reportetl/internal/ddl"
	"reportetl/internal/schema"
	"reportetl/internal/storage"
)

// Dialect renders SQL Server DDL. T-SQL has no CREATE TABLE IF NOT EXISTS,
// so the statement is wrapped in an OBJECT_ID guard.
var Dialect = ddl.Dialect{
	Name:       "mssql",
	QuoteIdent: msIdent,
	MapType:    MapType,
	Guard: func(quoted, create string) string {
		lit := strings.ReplaceAll(quoted, "'", "''")
		return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n  %s;\nEND;", lit, create)
	},
}

// MapType maps a logical column into a SQL Server column type.
func MapType(c schema.Column) string {
	switch c.Kind {
	case "date":
		return "DATE"
	case "decimal":
		return "DECIMAL(18, 2)"
	default:
		if c.Size > 0 {
			return fmt.Sprintf("NVARCHAR(%d)", c.Size)
		}
		return "NVARCHAR(255)"
	}
}

// EnsureTable creates the report table if it does not already exist.
func EnsureTable(ctx context.Context, repo storage.Repository, table string) error {
	sqlText, err := ddl.BuildCreateTableSQL(ddl.FromSchema(table, schema.Target, Dialect), Dialect)
	if err != nil {
		return err
	}
	return repo.Exec(ctx, sqlText)
}
