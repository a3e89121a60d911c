package report

import "strings"

// utf8BOM is stripped from header cells before matching.
const utf8BOM = "\uFEFF"

// Table is the raw extracted spreadsheet: one header row and zero or more
// data rows, all cells as text. Extra columns are carried but ignored.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Len returns the number of data rows.
func (t Table) Len() int { return len(t.Rows) }

// CanonicalHeader trims whitespace and a leading BOM and resolves known
// aliases, so a BOM-prefixed " CodDoc" matches ColCodDoc.
func CanonicalHeader(h string) string {
	h = strings.TrimSpace(strings.TrimPrefix(h, utf8BOM))
	if c, ok := headerAliases[h]; ok {
		return c
	}
	return h
}

// Index maps canonical header names to their column position. When a name
// repeats, the first occurrence wins.
func (t Table) Index() map[string]int {
	idx := make(map[string]int, len(t.Headers))
	for i, h := range t.Headers {
		c := CanonicalHeader(h)
		if _, dup := idx[c]; dup {
			continue
		}
		idx[c] = i
	}
	return idx
}

// Records extracts the eight source fields from every row. Columns absent
// from the header, and cells past the end of a short row, read as "".
func (t Table) Records() []RawRecord {
	idx := t.Index()
	cell := func(row []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}
	out := make([]RawRecord, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = RawRecord{
			CodDoc:         cell(row, ColCodDoc),
			Oficina:        cell(row, ColOficina),
			Producto:       cell(row, ColProducto),
			NombreProducto: cell(row, ColNombreProducto),
			Fecha:          cell(row, ColFecha),
			Saldo:          cell(row, ColSaldo),
			Monto:          cell(row, ColMonto),
			Estado:         cell(row, ColEstado),
		}
	}
	return out
}
