package main

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

const report = `Cod. Doc;Oficina;Producto;NombreProducto;Fecha;Saldo;Monto;Estado
D1;OF1;P1;Prod 1;01/06/2025;100;1.234,56;Activo
D2;OF2;P2;Prod 2;01/06/2025;0;10;Activo
D3;OF3;P3;Prod 3;01/06/2025;5;2,5;pendiente
D4;OF4;P4;Prod 4;31/05/2025;5;2,5;Pendiente
`

var fixedNow = func() time.Time { return time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC) }

func writeConfig(t *testing.T, root, dbPath string) string {
	t.Helper()
	cfg := `job: test
source:
  kind: local
  root: ` + root + `
  folder: reportes
  file: ReporteDiario.csv
  download_dir: ` + filepath.Join(root, "downloads") + `
sink:
  kind: sqlite
  database: ` + dbPath + `
  auto_create_table: true
log:
  level: error
`
	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := os.WriteFile(path, []byte(cfg), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func seed(t *testing.T, root string, marker bool) {
	t.Helper()
	dir := filepath.Join(root, "reportes")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "ReporteDiario.csv"), []byte(report), 0o644); err != nil {
		t.Fatal(err)
	}
	if marker {
		if err := os.WriteFile(filepath.Join(dir, "runETL.txt"), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func markerExists(root string) bool {
	_, err := os.Stat(filepath.Join(root, "reportes", "runETL.txt"))
	return err == nil
}

// TestRun_LocalToSQLite drives the binary end to end against a local folder
// and a SQLite file.
func TestRun_LocalToSQLite(t *testing.T) {
	root := t.TempDir()
	dbPath := filepath.Join(t.TempDir(), "report.db")
	seed(t, root, true)
	cfgPath := writeConfig(t, root, dbPath)

	var stderr bytes.Buffer
	code := run(context.Background(), []string{"-config", cfgPath, "-reference-date", "2025-06-01"}, &stderr, fixedNow)
	if code != exitOK {
		t.Fatalf("run() = %d, want 0; stderr:\n%s", code, stderr.String())
	}
	if markerExists(root) {
		t.Fatal("marker not removed after successful run")
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT CodDocumento, Fecha, FechaProceso, EstadoDocumento FROM ReporteVencidosDiarios ORDER BY CodDocumento`)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer rows.Close()
	var got [][4]string
	for rows.Next() {
		var r [4]string
		if err := rows.Scan(&r[0], &r[1], &r[2], &r[3]); err != nil {
			t.Fatalf("scan: %v", err)
		}
		got = append(got, r)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("rows: %v", err)
	}
	want := [][4]string{
		{"D1", "2025-06-01", "2025-06-02", "Activo"},
		{"D3", "2025-06-01", "2025-06-02", "pendiente"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_MarkerAbsentExitsZero(t *testing.T) {
	root := t.TempDir()
	dbPath := filepath.Join(t.TempDir(), "report.db")
	seed(t, root, false)
	cfgPath := writeConfig(t, root, dbPath)

	var stderr bytes.Buffer
	if code := run(context.Background(), []string{"-config", cfgPath}, &stderr, fixedNow); code != exitOK {
		t.Fatalf("run() = %d, want 0; stderr:\n%s", code, stderr.String())
	}
	if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
		t.Fatalf("sink touched although marker was absent: stat err = %v", err)
	}
}

func TestRun_ValidateOnly(t *testing.T) {
	root := t.TempDir()
	cfgPath := writeConfig(t, root, filepath.Join(root, "report.db"))

	var stderr bytes.Buffer
	if code := run(context.Background(), []string{"-config", cfgPath, "-validate"}, &stderr, fixedNow); code != exitOK {
		t.Fatalf("run(-validate) = %d, want 0; stderr:\n%s", code, stderr.String())
	}
	if !strings.Contains(stderr.String(), "configuration is valid") {
		t.Fatalf("stderr = %q", stderr.String())
	}
}

func TestRun_ConfigErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	incomplete := filepath.Join(dir, "incomplete.json")
	if err := os.WriteFile(incomplete, []byte(`{"source":{"kind":"sharepoint"},"sink":{"kind":"mssql"}}`), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "missing file", args: []string{"-config", filepath.Join(dir, "nope.yaml")}, want: "read config"},
		{name: "missing fields", args: []string{"-config", incomplete}, want: "source.site_url must not be empty"},
		{name: "bad reference date", args: []string{"-config", incomplete, "-reference-date", "01/06/2025"}, want: "invalid -reference-date"},
		{name: "unknown flag", args: []string{"-nope"}, want: "flag provided but not defined"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var stderr bytes.Buffer
			if code := run(context.Background(), tt.args, &stderr, fixedNow); code != exitConfig {
				t.Fatalf("run() = %d, want %d", code, exitConfig)
			}
			if !strings.Contains(stderr.String(), tt.want) {
				t.Fatalf("stderr = %q, want it to contain %q", stderr.String(), tt.want)
			}
		})
	}
}
