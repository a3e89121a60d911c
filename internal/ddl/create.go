// Package ddl renders CREATE TABLE statements for the report sink from the
// logical destination schema. Each storage backend supplies a Dialect with
// its identifier quoting, type mapping and existence guard.
package ddl

import (
	"fmt"
	"strings"

	"reportetl/internal/schema"
)

// Dialect adapts rendering to one SQL flavor.
type Dialect struct {
	// Name is used in error messages.
	Name string

	// QuoteIdent quotes one identifier segment.
	QuoteIdent func(string) string

	// MapType maps a logical column onto a SQL type.
	MapType func(schema.Column) string

	// Guard wraps a CREATE TABLE statement so it is a no-op when the table
	// exists. quotedFQN is the already-quoted table name. When nil the
	// statement is emitted as "CREATE TABLE IF NOT EXISTS".
	Guard func(quotedFQN, create string) string
}

// FromSchema builds a TableDef for fqn using d's type mapping.
func FromSchema(fqn string, cols []schema.Column, d Dialect) TableDef {
	td := TableDef{FQN: fqn, Columns: make([]ColumnDef, 0, len(cols))}
	for _, c := range cols {
		td.Columns = append(td.Columns, ColumnDef{
			Name:     c.Name,
			SQLType:  d.MapType(c),
			Nullable: c.Nullable,
		})
	}
	return td
}

// QuoteFQN quotes every dotted segment of fqn with d.QuoteIdent:
//
//	"dbo.Users" -> [dbo].[Users]
//	"Users"     -> [Users]
func (d Dialect) QuoteFQN(fqn string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, d.QuoteIdent(p))
	}
	return strings.Join(out, ".")
}

// BuildCreateTableSQL renders an idempotent CREATE TABLE statement.
//
// A column is rendered as:
//
//	<quoted name> <SQLType> [NOT NULL]
//
// It fails when the FQN is empty, there are no columns, or a column lacks a
// name or type.
func BuildCreateTableSQL(t TableDef, d Dialect) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("%s ddl: table FQN must not be empty", d.Name)
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("%s ddl: at least one column is required", d.Name)
	}

	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("%s ddl: column with empty name in table %s", d.Name, fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("%s ddl: column %s missing SQLType", d.Name, name)
		}

		var sb strings.Builder
		sb.WriteString(d.QuoteIdent(name))
		sb.WriteByte(' ')
		sb.WriteString(typ)
		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}
		cols = append(cols, sb.String())
	}

	quoted := d.QuoteFQN(fqn)
	body := strings.Join(cols, ",\n  ")
	if d.Guard == nil {
		return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);", quoted, body), nil
	}
	return d.Guard(quoted, fmt.Sprintf("CREATE TABLE %s (\n  %s\n)", quoted, body)), nil
}
