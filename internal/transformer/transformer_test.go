package transformer

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"reportetl/internal/report"
	"reportetl/internal/transformer/builtin"
)

var header = []string{"Cod. Doc", "Oficina", "Producto", "NombreProducto", "Fecha", "Saldo", "Monto", "Estado"}

func table(rows ...[]string) report.Table {
	return report.Table{Headers: header, Rows: rows}
}

// TestTransform_AdmissionExample covers the three-row example: only the row
// dated on the reference day with a non-zero balance survives.
func TestTransform_AdmissionExample(t *testing.T) {
	t.Parallel()

	ref := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	tbl := table(
		[]string{"D1", "O", "P", "N", "01/06/2025", "100", "100", "Activo"},
		[]string{"D2", "O", "P", "N", "01/06/2025", "0", "100", "Activo"},
		[]string{"D3", "O", "P", "N", "01/05/2025", "50", "50", "Pendiente"},
	)
	out, stats := TransformWithStats(tbl, ref, ref)
	if len(out) != 1 || out[0].CodDocumento != "D1" {
		t.Fatalf("admitted = %+v, want only D1", out)
	}
	want := map[string]int{builtin.RejectBalance: 1, builtin.RejectDate: 1}
	if diff := cmp.Diff(want, stats.Rejected); diff != "" {
		t.Fatalf("Rejected mismatch (-want +got):\n%s", diff)
	}
	if stats.Read != 3 || stats.Admitted != 1 {
		t.Fatalf("stats = %+v", stats)
	}
}

// TestTransform_EndToEndTenRows runs the ten-row scenario: three admissible
// rows and seven failing at least one filter.
func TestTransform_EndToEndTenRows(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 7, 0, 0, 0, time.Local)
	tbl := table(
		[]string{"A1", "OF1", "P1", "Prod 1", "01/06/2025", "10,5", "11,25", "Activo"},
		[]string{"B1", "OF1", "P1", "Prod 1", "31/05/2025", "10", "10", "Activo"},
		[]string{"A2", "OF2", "P2", "Prod 2", "01/06/2025", "-3", "3", "Pendiente"},
		[]string{"B2", "OF2", "P2", "Prod 2", "01/06/2025", "0", "3", "Activo"},
		[]string{"B3", "OF3", "P3", "Prod 3", "01/06/2025", "", "3", "Activo"},
		[]string{"B4", "OF3", "P3", "Prod 3", "01/06/2025", "5", "3", "Cerrado"},
		[]string{"B5", "OF3", "P3", "Prod 3", "01/06/2025", "5", "3", ""},
		[]string{"B6", "OF3", "P3", "Prod 3", "garbage", "5", "3", "Activo"},
		[]string{"A3", "OF4", "P4", "Prod 4", "2025-06-01", "1.000,00", "1.000,00", "pendiente"},
		[]string{"B7", "OF4", "P4", "Prod 4", "02/07/2025", "9", "9", "Activo"},
	)
	out := Transform(tbl, now, now)

	var got [][]any
	for _, r := range out {
		got = append(got, r.Row())
	}
	want := [][]any{
		{"P1", "A1", "Prod 1", "OF1", "2025-06-01", "2025-06-01", 11.25, "Activo"},
		{"P2", "A2", "Prod 2", "OF2", "2025-06-01", "2025-06-01", 3.0, "Pendiente"},
		{"P4", "A3", "Prod 4", "OF4", "2025-06-01", "2025-06-01", 1000.0, "pendiente"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

// TestTransform_ProcessDateIndependentOfFecha verifies that FechaProceso is
// always the run date, even when the reference date is a past day.
func TestTransform_ProcessDateIndependentOfFecha(t *testing.T) {
	t.Parallel()

	ref := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	out := Transform(table([]string{"D", "O", "P", "N", "01/05/2025", "1", "1", "Activo"}), ref, now)
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
	if got := out[0].FechaProceso.String(); got != "2025-06-01" {
		t.Fatalf("FechaProceso = %s, want 2025-06-01", got)
	}
}

// TestTransform_HorizonIndependentOfAdmission verifies that a reference date
// beyond today+90 days still yields nothing.
func TestTransform_HorizonIndependentOfAdmission(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	ref := now.AddDate(0, 0, 91)
	fecha := ref.Format("02/01/2006")
	out, stats := TransformWithStats(table([]string{"D", "O", "P", "N", fecha, "1", "1", "Activo"}), ref, now)
	if len(out) != 0 {
		t.Fatalf("len(out) = %d, want 0", len(out))
	}
	if stats.Rejected[builtin.RejectHorizon] != 1 {
		t.Fatalf("Rejected = %v, want one %s", stats.Rejected, builtin.RejectHorizon)
	}
}

// TestTransform_TruncatesLongProducto verifies that overlong values are cut
// to 50 characters and never rejected.
func TestTransform_TruncatesLongProducto(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	long := strings.Repeat("x", 80)
	out := Transform(table([]string{"D", "O", long, "N", "01/06/2025", "1", "1", "Activo"}), now, now)
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
	if n := len(out[0].Producto); n != 50 {
		t.Fatalf("len(Producto) = %d, want 50", n)
	}
}

func TestTransform_EmptyTable(t *testing.T) {
	t.Parallel()

	now := time.Now()
	out, stats := TransformWithStats(table(), now, now)
	if len(out) != 0 || stats.Read != 0 || stats.Admitted != 0 {
		t.Fatalf("out=%v stats=%+v, want empty", out, stats)
	}
}
