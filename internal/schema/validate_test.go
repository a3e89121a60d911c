package schema

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"reportetl/internal/report"
)

func without(cols []string, drop ...string) []string {
	skip := map[string]bool{}
	for _, d := range drop {
		skip[d] = true
	}
	var out []string
	for _, c := range cols {
		if !skip[c] {
			out = append(out, c)
		}
	}
	return out
}

// TestValidate_ReportsExactSetDifference drops every subset of a few columns
// and checks that the reported list equals exactly what was removed.
func TestValidate_ReportsExactSetDifference(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		drop []string
	}{
		{"none", nil},
		{"one", []string{report.ColSaldo}},
		{"two", []string{report.ColCodDoc, report.ColEstado}},
		{"three", []string{report.ColFecha, report.ColMonto, report.ColOficina}},
		{"all", report.SourceColumns},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			headers := append(without(report.SourceColumns, tc.drop...), "Ignored")
			_, err := Validate(report.Table{Headers: headers})

			if len(tc.drop) == 0 {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}

			var se *SchemaError
			if !errors.As(err, &se) {
				t.Fatalf("Validate() error = %v, want *SchemaError", err)
			}
			// Missing columns are reported in SourceColumns order.
			want := without(report.SourceColumns, without(report.SourceColumns, tc.drop...)...)
			if diff := cmp.Diff(want, se.Missing); diff != "" {
				t.Fatalf("Missing mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestValidate_AcceptsAliasAndPadding verifies that header canonicalization
// applies before the presence check.
func TestValidate_AcceptsAliasAndPadding(t *testing.T) {
	t.Parallel()

	headers := []string{"\uFEFFCodDoc", " Oficina", "Producto ", "NombreProducto", "Fecha", "Saldo", "Monto", "Estado"}
	tbl := report.Table{Headers: headers, Rows: [][]string{{"a"}}}
	got, err := Validate(tbl)
	if err != nil {
		t.Fatalf("Validate() error = %v, want nil", err)
	}
	if got.Len() != 1 {
		t.Fatalf("Validate() returned %d rows, want the input table", got.Len())
	}
}

func TestSchemaError_Message(t *testing.T) {
	t.Parallel()

	err := &SchemaError{Missing: []string{"Saldo", "Monto"}}
	if got, want := err.Error(), `missing required columns: ["Saldo" "Monto"]`; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestTarget_MatchesSinkColumnOrder(t *testing.T) {
	t.Parallel()

	var names []string
	for _, c := range Target {
		names = append(names, c.Name)
	}
	if diff := cmp.Diff(report.TargetColumns, names); diff != "" {
		t.Fatalf("Target order mismatch (-want +got):\n%s", diff)
	}
}
