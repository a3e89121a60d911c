package local

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"reportetl/internal/docstore"
)

// seed creates root/Reportes with the given files.
func seed(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "Reportes")
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f), []byte("content of "+f), 0o644); err != nil {
			t.Fatalf("write %s: %v", f, err)
		}
	}
	return root
}

func TestStore_ListOpenDelete(t *testing.T) {
	t.Parallel()

	root := seed(t, "runETL.txt", "reporte.xlsx")
	s, err := New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	names, err := s.List(ctx, "/Reportes/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if diff := cmp.Diff([]string{"reporte.xlsx", "runETL.txt"}, names); diff != "" {
		t.Fatalf("List mismatch (-want +got):\n%s", diff)
	}

	rc, err := s.Open(ctx, "Reportes", "reporte.xlsx")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	b, _ := io.ReadAll(rc)
	rc.Close()
	if string(b) != "content of reporte.xlsx" {
		t.Fatalf("Open content = %q", b)
	}

	if err := s.Delete(ctx, "Reportes", "runETL.txt"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "Reportes", "runETL.txt"); !errors.Is(err, docstore.ErrNotFound) || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("second Delete err = %v, want ErrNotFound", err)
	}
}

func TestStore_RejectsEscapingPaths(t *testing.T) {
	t.Parallel()

	s, err := New(seed(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := s.Open(context.Background(), "Reportes", "../../etc/passwd"); err == nil {
		t.Fatal("expected error for path escaping root")
	}
}

func TestStore_CanceledContext(t *testing.T) {
	t.Parallel()

	s, err := New(seed(t, "a.txt"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.List(ctx, "Reportes"); !errors.Is(err, context.Canceled) {
		t.Fatalf("List err = %v, want context.Canceled", err)
	}
}

func TestNew_InvalidRoot(t *testing.T) {
	t.Parallel()

	if _, err := New(""); err == nil {
		t.Fatal("expected error for empty root")
	}
	f := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(f, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(f); err == nil {
		t.Fatal("expected error for non-directory root")
	}
}
