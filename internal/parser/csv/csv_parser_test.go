package csv

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/encoding/charmap"
)

func TestParse_SniffsSemicolonAndStripsBOM(t *testing.T) {
	t.Parallel()

	in := "\uFEFFCod. Doc;Oficina;Saldo\nD1;OF1;1.234,56\n;;\nD2;OF2;0\n"
	got, err := NewParser(Options{TrimSpace: true}).Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if diff := cmp.Diff([]string{"Cod. Doc", "Oficina", "Saldo"}, got.Headers); diff != "" {
		t.Fatalf("headers mismatch (-want +got):\n%s", diff)
	}
	want := [][]string{{"D1", "OF1", "1.234,56"}, {"D2", "OF2", "0"}}
	if diff := cmp.Diff(want, got.Rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_CommaDelimitedRaggedRows(t *testing.T) {
	t.Parallel()

	in := "a,b,c\n1,2\n\"x,y\",z,w,extra\n"
	got, err := NewParser(Options{}).Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := [][]string{{"1", "2"}, {"x,y", "z", "w", "extra"}}
	if diff := cmp.Diff(want, got.Rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Windows1252(t *testing.T) {
	t.Parallel()

	enc, err := charmap.Windows1252.NewEncoder().String("Oficina;Estado\nOF1;Pendiente de revisión\n")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := NewParser(Options{Encoding: "windows-1252"}).Parse(bytes.NewReader([]byte(enc)))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Len() != 1 || got.Rows[0][1] != "Pendiente de revisión" {
		t.Fatalf("rows = %q", got.Rows)
	}
}

func TestParse_UnknownEncoding(t *testing.T) {
	t.Parallel()

	if _, err := NewParser(Options{Encoding: "ebcdic"}).Parse(strings.NewReader("a\n")); err == nil {
		t.Fatal("expected error for unsupported encoding")
	}
}

func TestParse_EmptyInput(t *testing.T) {
	t.Parallel()

	got, err := NewParser(Options{}).Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Headers != nil || got.Len() != 0 {
		t.Fatalf("expected empty table, got %+v", got)
	}
}
