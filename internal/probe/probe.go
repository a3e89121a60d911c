// Package probe inspects a report table without loading it: which required
// columns are present, how dates and amounts are formatted, which status
// values occur, and how many rows the admission filter would keep. It backs
// the reportprobe CLI used when a vendor changes the spreadsheet layout.
package probe

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"reportetl/internal/report"
	"reportetl/internal/transformer"
	"reportetl/internal/transformer/builtin"
)

// Value formats reported per typed column.
const (
	FormatISO          = "iso"
	FormatDayFirst     = "day-first"
	FormatExcelSerial  = "excel-serial"
	FormatDecimalComma = "decimal-comma"
	FormatDecimalDot   = "decimal-dot"
	FormatUnparseable  = "unparseable"
)

// DefaultSamples is the number of example values kept per column.
const DefaultSamples = 3

// Column summarizes one required source column.
type Column struct {
	Name    string         `json:"name"`
	Index   int            `json:"index"` // -1 when absent
	Filled  int            `json:"filled"`
	Formats map[string]int `json:"formats,omitempty"`
	Samples []string       `json:"samples,omitempty"`
}

// Result is the outcome of Inspect.
type Result struct {
	Rows    int      `json:"rows"`
	Headers []string `json:"headers"`
	Missing []string `json:"missing,omitempty"`
	Extra   []string `json:"extra,omitempty"`
	Columns []Column `json:"columns"`

	// Statuses counts distinct non-empty Estado values.
	Statuses map[string]int `json:"statuses,omitempty"`

	// Dry-run of the transformer; only set when no column is missing.
	ReferenceDate string         `json:"reference_date"`
	Admitted      int            `json:"admitted"`
	Rejected      map[string]int `json:"rejected,omitempty"`
}

// Inspect summarizes t. ref and now have the same meaning as in
// transformer.Transform; samples caps the example values per column.
func Inspect(t report.Table, ref, now time.Time, samples int) Result {
	if samples < 0 {
		samples = 0
	}
	idx := t.Index()
	res := Result{
		Rows:          t.Len(),
		Headers:       t.Headers,
		ReferenceDate: ref.Format(time.DateOnly),
	}

	required := make(map[string]bool, len(report.SourceColumns))
	for _, c := range report.SourceColumns {
		required[c] = true
	}
	for _, h := range t.Headers {
		if c := report.CanonicalHeader(h); !required[c] && c != "" {
			res.Extra = append(res.Extra, c)
		}
	}

	for _, name := range report.SourceColumns {
		i, ok := idx[name]
		col := Column{Name: name, Index: -1}
		if !ok {
			res.Missing = append(res.Missing, name)
			res.Columns = append(res.Columns, col)
			continue
		}
		col.Index = i
		classify := classifierFor(name)
		for _, row := range t.Rows {
			if i >= len(row) {
				continue
			}
			v := strings.TrimSpace(row[i])
			if v == "" {
				continue
			}
			col.Filled++
			if len(col.Samples) < samples {
				col.Samples = append(col.Samples, v)
			}
			if classify != nil {
				if col.Formats == nil {
					col.Formats = map[string]int{}
				}
				col.Formats[classify(v)]++
			}
			if name == report.ColEstado {
				if res.Statuses == nil {
					res.Statuses = map[string]int{}
				}
				res.Statuses[v]++
			}
		}
		res.Columns = append(res.Columns, col)
	}

	if len(res.Missing) == 0 {
		_, stats := transformer.TransformWithStats(t, ref, now)
		res.Admitted = stats.Admitted
		if len(stats.Rejected) > 0 {
			res.Rejected = stats.Rejected
		}
	}
	return res
}

// StatusNames returns the distinct status values, most frequent first.
func (r Result) StatusNames() []string {
	out := make([]string, 0, len(r.Statuses))
	for s := range r.Statuses {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if r.Statuses[out[i]] != r.Statuses[out[j]] {
			return r.Statuses[out[i]] > r.Statuses[out[j]]
		}
		return out[i] < out[j]
	})
	return out
}

func classifierFor(col string) func(string) string {
	switch col {
	case report.ColFecha:
		return dateFormat
	case report.ColSaldo, report.ColMonto:
		return decimalFormat
	default:
		return nil
	}
}

// dateFormat names the convention v is written in, using the same parser
// as the transformer so that the counts match what a run would see.
func dateFormat(v string) string {
	if !builtin.ParseDate(v).Valid {
		return FormatUnparseable
	}
	if _, err := strconv.ParseFloat(v, 64); err == nil {
		return FormatExcelSerial
	}
	if len(v) >= 10 && v[4] == '-' && v[7] == '-' {
		return FormatISO
	}
	return FormatDayFirst
}

func decimalFormat(v string) string {
	if !builtin.ParseDecimal(v).Valid {
		return FormatUnparseable
	}
	if strings.Contains(v, ",") {
		return FormatDecimalComma
	}
	return FormatDecimalDot
}
