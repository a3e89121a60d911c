package schema

import "reportetl/internal/report"

// Column describes one destination column in logical terms. Backends map
// Kind and Size onto their own SQL types when bootstrapping the table.
type Column struct {
	Name     string
	Kind     string // "string" | "date" | "decimal"
	Size     int    // max characters for strings; 0 means unbounded
	Nullable bool
}

// Target is the fixed destination schema, in report.TargetColumns order.
var Target = []Column{
	{Name: "Producto", Kind: "string", Size: report.MaxProducto, Nullable: true},
	{Name: "CodDocumento", Kind: "string", Size: report.MaxCodDocumento, Nullable: true},
	{Name: "NombreProduct", Kind: "string", Nullable: true},
	{Name: "Oficina", Kind: "string", Size: report.MaxOficina, Nullable: true},
	{Name: "Fecha", Kind: "date", Nullable: true},
	{Name: "FechaProceso", Kind: "date"},
	{Name: "MontoSaldo", Kind: "decimal", Nullable: true},
	{Name: "EstadoDocumento", Kind: "string", Size: 100, Nullable: true},
}
