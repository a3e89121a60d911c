// Package xlsx reads the daily report workbook into a report.Table using
// excelize. Cells are read as raw values so that dates arrive as Excel serial
// numbers and amounts as plain numbers, independent of cell formatting.
package xlsx

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"reportetl/internal/report"
)

// Options configures the workbook reader.
type Options struct {
	// Sheet names the worksheet to read. Empty means the first sheet.
	Sheet string

	// Password opens an encrypted workbook.
	Password string
}

// Parser reads one worksheet of a workbook.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// Parse reads the configured sheet. The first row is the header; fully empty
// rows are skipped.
func (p *Parser) Parse(r io.Reader) (report.Table, error) {
	f, err := excelize.OpenReader(r, excelize.Options{Password: p.opt.Password})
	if err != nil {
		return report.Table{}, fmt.Errorf("xlsx: open: %w", err)
	}
	defer f.Close()

	sheet := p.opt.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return report.Table{}, fmt.Errorf("xlsx: workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return report.Table{}, fmt.Errorf("xlsx: read sheet %q: %w", sheet, err)
	}

	var t report.Table
	for _, row := range rows {
		if t.Headers == nil {
			t.Headers = row
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
