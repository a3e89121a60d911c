// Package csv reads a delimited text export of the daily report into a
// report.Table. It handles the quirks of spreadsheet CSV exports: a UTF-8
// BOM, Windows-1252 encoded files and ';' as delimiter in decimal-comma
// locales.
package csv

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"reportetl/internal/report"
)

// Options configures the CSV parser. All fields are optional.
type Options struct {
	// Comma is the field delimiter. When zero it is sniffed from the header
	// line: ';' if the header has more semicolons than commas, else ','.
	Comma rune

	// Encoding names the source charset: "utf-8" (default) or
	// "windows-1252" / "latin1".
	Encoding string

	// TrimSpace trims leading/trailing spaces from each cell.
	TrimSpace bool
}

// Parser parses CSV input according to Options.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// decoder returns the charset decoder for the configured encoding.
func decoder(name string) (*encoding.Decoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return unicode.UTF8BOM.NewDecoder(), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder(), nil
	case "latin1", "iso-8859-1":
		return charmap.ISO8859_1.NewDecoder(), nil
	default:
		return nil, fmt.Errorf("csv: unsupported encoding %q", name)
	}
}

// sniffComma inspects the first line and picks ';' or ','.
func sniffComma(head []byte) rune {
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}
	if bytes.Count(head, []byte{';'}) > bytes.Count(head, []byte{','}) {
		return ';'
	}
	return ','
}

// Parse reads the whole input. The first record is the header; fully empty
// records are skipped. Rows may be ragged; short rows read as empty cells
// downstream.
func (p *Parser) Parse(r io.Reader) (report.Table, error) {
	dec, err := decoder(p.opt.Encoding)
	if err != nil {
		return report.Table{}, err
	}
	br := bufio.NewReaderSize(transform.NewReader(r, dec), 64*1024)

	comma := p.opt.Comma
	if comma == 0 {
		head, _ := br.Peek(4096)
		comma = sniffComma(head)
	}

	cr := csv.NewReader(br)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var t report.Table
	for line := 1; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return report.Table{}, fmt.Errorf("csv: line %d: %w", line, err)
		}
		if p.opt.TrimSpace {
			for i := range row {
				row[i] = strings.TrimSpace(row[i])
			}
		}
		if t.Headers == nil {
			t.Headers = StripHeaderBOM(row)
			continue
		}
		if blank(row) {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
