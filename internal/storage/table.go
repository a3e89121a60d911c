package storage

import "strings"

// DefaultSQLServerSchema is the schema SQL Server resolves unqualified names
// against. Other backends have no such schema.
const DefaultSQLServerSchema = "dbo"

// StripDefaultSchema drops a leading "dbo." from fqn so a SQL Server style
// table name resolves to the connection's own database or search path on
// backends without that schema. Any other qualifier is kept.
func StripDefaultSchema(fqn string) string {
	if schema, table, ok := strings.Cut(strings.TrimSpace(fqn), "."); ok && strings.EqualFold(schema, DefaultSQLServerSchema) {
		return table
	}
	return fqn
}
