package builtin

import (
	"strings"
	"unicode/utf8"

	"github.com/golang-sql/civil"

	"reportetl/internal/report"
)

// Normalize converts raw rows into normalized records: it stamps the process
// date, coerces Fecha/Saldo/Monto, renames fields and truncates text to the
// destination widths. It never fails; bad values become nulls.
type Normalize struct {
	// ProcessDate is stamped into every record's FechaProceso.
	ProcessDate civil.Date
}

// Apply normalizes in, preserving order.
func (n Normalize) Apply(in []report.RawRecord) []report.NormalizedRecord {
	out := make([]report.NormalizedRecord, len(in))
	for i, r := range in {
		out[i] = report.NormalizedRecord{
			CodDocumento:    Truncate(r.CodDoc, report.MaxCodDocumento),
			Oficina:         Truncate(r.Oficina, report.MaxOficina),
			Producto:        Truncate(r.Producto, report.MaxProducto),
			NombreProduct:   r.NombreProducto,
			Fecha:           ParseDate(r.Fecha),
			FechaProceso:    n.ProcessDate,
			Saldo:           ParseDecimal(r.Saldo),
			MontoSaldo:      ParseDecimal(r.Monto),
			EstadoDocumento: r.Estado,
			EstadoValid:     strings.TrimSpace(r.Estado) != "",
		}
	}
	return out
}

// Truncate cuts s to at most n characters (runes, not bytes).
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
