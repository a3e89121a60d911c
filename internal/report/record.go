// Package report defines the row shapes that flow through the daily report
// pipeline: the raw extracted table, the normalized record used while
// filtering, and the admissible record that is persisted to the sink.
package report

import (
	"github.com/golang-sql/civil"
	"github.com/shopspring/decimal"
)

// Source column names as they appear in the spreadsheet header.
const (
	ColCodDoc         = "Cod. Doc"
	ColOficina        = "Oficina"
	ColProducto       = "Producto"
	ColNombreProducto = "NombreProducto"
	ColFecha          = "Fecha"
	ColSaldo          = "Saldo"
	ColMonto          = "Monto"
	ColEstado         = "Estado"
)

// SourceColumns is the fixed set of columns every report must expose, in the
// order they are reported when missing.
var SourceColumns = []string{
	ColCodDoc,
	ColOficina,
	ColProducto,
	ColNombreProducto,
	ColFecha,
	ColSaldo,
	ColMonto,
	ColEstado,
}

// headerAliases maps alternative header spellings onto canonical names.
var headerAliases = map[string]string{
	"CodDoc": ColCodDoc,
}

// Destination column widths. Text longer than these is truncated, never rejected.
const (
	MaxCodDocumento = 20
	MaxOficina      = 10
	MaxProducto     = 50
)

// TargetColumns is the sink column order used for every bulk insert.
var TargetColumns = []string{
	"Producto",
	"CodDocumento",
	"NombreProduct",
	"Oficina",
	"Fecha",
	"FechaProceso",
	"MontoSaldo",
	"EstadoDocumento",
}

// RawRecord is one source row with untyped text fields.
type RawRecord struct {
	CodDoc         string
	Oficina        string
	Producto       string
	NombreProducto string
	Fecha          string
	Saldo          string
	Monto          string
	Estado         string
}

// NullDate is a calendar date that may be absent (unparseable input).
type NullDate struct {
	Date  civil.Date
	Valid bool
}

// DateOf returns a valid NullDate for d.
func DateOf(d civil.Date) NullDate { return NullDate{Date: d, Valid: true} }

// String renders the date as YYYY-MM-DD, or "" when null.
func (d NullDate) String() string {
	if !d.Valid {
		return ""
	}
	return d.Date.String()
}

// NormalizedRecord is a RawRecord after type coercion, renaming and
// truncation.
type NormalizedRecord struct {
	CodDocumento  string
	Oficina       string
	Producto      string
	NombreProduct string
	Fecha         NullDate
	FechaProceso  civil.Date
	Saldo         decimal.NullDecimal
	MontoSaldo    decimal.NullDecimal

	// EstadoDocumento is meaningful only when EstadoValid is true; an empty
	// source cell is treated as a missing status.
	EstadoDocumento string
	EstadoValid     bool
}

// AdmissibleRecord is a NormalizedRecord that passed the admission filter.
// Saldo is used only for filtering and is not carried.
type AdmissibleRecord struct {
	CodDocumento    string
	Oficina         string
	Producto        string
	NombreProduct   string
	Fecha           NullDate
	FechaProceso    civil.Date
	MontoSaldo      decimal.NullDecimal
	EstadoDocumento string
}

// Admit projects a normalized record onto the persisted shape.
func Admit(n NormalizedRecord) AdmissibleRecord {
	return AdmissibleRecord{
		CodDocumento:    n.CodDocumento,
		Oficina:         n.Oficina,
		Producto:        n.Producto,
		NombreProduct:   n.NombreProduct,
		Fecha:           n.Fecha,
		FechaProceso:    n.FechaProceso,
		MontoSaldo:      n.MontoSaldo,
		EstadoDocumento: n.EstadoDocumento,
	}
}

// Row renders the record in TargetColumns order. Dates become YYYY-MM-DD
// strings, amounts exact decimal strings, and null values nil so every
// backend can bind them.
func (a AdmissibleRecord) Row() []any {
	var fecha any
	if a.Fecha.Valid {
		fecha = a.Fecha.String()
	}
	var monto any
	if a.MontoSaldo.Valid {
		monto = a.MontoSaldo.Decimal.String()
	}
	return []any{
		a.Producto,
		a.CodDocumento,
		a.NombreProduct,
		a.Oficina,
		fecha,
		a.FechaProceso.String(),
		monto,
		a.EstadoDocumento,
	}
}

// Rows renders a batch of admissible records for the sink.
func Rows(recs []AdmissibleRecord) [][]any {
	out := make([][]any, len(recs))
	for i := range recs {
		out[i] = recs[i].Row()
	}
	return out
}
