package ddl

// ColumnDef describes a single column in a table definition.
//
// Fields:
//   - Name: column name (unquoted; quoting happens at render time)
//   - SQLType: dialect SQL type (e.g., NVARCHAR(20), DATE)
//   - Nullable: whether NULL is allowed
type ColumnDef struct {
	Name     string
	SQLType  string
	Nullable bool
}

// TableDef holds the table name (FQN) and an ordered list of columns. The
// FQN is expected in dotted form (e.g., "dbo.ReporteVencidosDiarios") and is
// quoted by the dialect.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}
