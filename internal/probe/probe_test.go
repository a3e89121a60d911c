package probe

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"reportetl/internal/report"
	"reportetl/internal/transformer/builtin"
)

var (
	refDate = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	now     = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
)

func sampleTable() report.Table {
	return report.Table{
		Headers: []string{"\uFEFFCodDoc", "Oficina", "Producto", "NombreProducto", "Fecha", "Saldo", "Monto", "Estado", "Region"},
		Rows: [][]string{
			{"D1", "O", "P", "N", "01/06/2025", "1.234,50", "10", "Activo", "N"},
			{"D2", "O", "P", "N", "2025-06-01", "12.5", "7,25", "Activo", "S"},
			{"D3", "O", "P", "N", "45809", "0", "1", "Cerrado", "S"},
			{"D4", "O", "P", "N", "ayer", "x", "", "", "E"},
		},
	}
}

func TestInspect_FormatsAndDryRun(t *testing.T) {
	t.Parallel()

	res := Inspect(sampleTable(), refDate, now, 2)

	if res.Rows != 4 || len(res.Missing) != 0 {
		t.Fatalf("rows=%d missing=%v", res.Rows, res.Missing)
	}
	if diff := cmp.Diff([]string{"Region"}, res.Extra); diff != "" {
		t.Fatalf("Extra mismatch (-want +got):\n%s", diff)
	}

	byName := map[string]Column{}
	for _, c := range res.Columns {
		byName[c.Name] = c
	}
	wantFecha := map[string]int{FormatDayFirst: 1, FormatISO: 1, FormatExcelSerial: 1, FormatUnparseable: 1}
	if diff := cmp.Diff(wantFecha, byName[report.ColFecha].Formats); diff != "" {
		t.Fatalf("Fecha formats mismatch (-want +got):\n%s", diff)
	}
	wantSaldo := map[string]int{FormatDecimalComma: 1, FormatDecimalDot: 2, FormatUnparseable: 1}
	if diff := cmp.Diff(wantSaldo, byName[report.ColSaldo].Formats); diff != "" {
		t.Fatalf("Saldo formats mismatch (-want +got):\n%s", diff)
	}
	if got := byName[report.ColMonto].Filled; got != 3 {
		t.Fatalf("Monto filled = %d, want 3", got)
	}
	if got := byName[report.ColCodDoc].Samples; len(got) != 2 {
		t.Fatalf("samples = %v, want 2", got)
	}
	if byName[report.ColOficina].Formats != nil {
		t.Fatal("text columns carry no formats")
	}

	if diff := cmp.Diff(map[string]int{"Activo": 2, "Cerrado": 1}, res.Statuses); diff != "" {
		t.Fatalf("Statuses mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Activo", "Cerrado"}, res.StatusNames()); diff != "" {
		t.Fatalf("StatusNames mismatch (-want +got):\n%s", diff)
	}

	// 45809 is 2025-06-01 as an Excel serial but carries a zero balance.
	if res.Admitted != 2 {
		t.Fatalf("Admitted = %d, want 2", res.Admitted)
	}
	wantRejected := map[string]int{builtin.RejectBalance: 1, builtin.RejectDate: 1}
	if diff := cmp.Diff(wantRejected, res.Rejected); diff != "" {
		t.Fatalf("Rejected mismatch (-want +got):\n%s", diff)
	}
}

func TestInspect_MissingColumnsSkipsDryRun(t *testing.T) {
	t.Parallel()

	tbl := report.Table{
		Headers: []string{"Cod. Doc", "Fecha"},
		Rows:    [][]string{{"D1", "01/06/2025"}, {"D2"}},
	}
	res := Inspect(tbl, refDate, now, DefaultSamples)

	want := []string{report.ColOficina, report.ColProducto, report.ColNombreProducto, report.ColSaldo, report.ColMonto, report.ColEstado}
	if diff := cmp.Diff(want, res.Missing); diff != "" {
		t.Fatalf("Missing mismatch (-want +got):\n%s", diff)
	}
	if res.Admitted != 0 || res.Rejected != nil {
		t.Fatalf("dry run executed with missing columns: %+v", res)
	}
	for _, c := range res.Columns {
		if c.Name == report.ColOficina && c.Index != -1 {
			t.Fatalf("absent column index = %d, want -1", c.Index)
		}
		if c.Name == report.ColFecha && c.Filled != 1 {
			t.Fatalf("Fecha filled = %d, want 1 (short row)", c.Filled)
		}
	}
}
