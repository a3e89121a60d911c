// Package parser selects the reader for a downloaded report file.
package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"reportetl/internal/parser/csv"
	"reportetl/internal/parser/xlsx"
	"reportetl/internal/report"
)

// Parser turns raw file bytes into a report table.
type Parser interface {
	Parse(r io.Reader) (report.Table, error)
}

// Options carries reader settings for every supported format.
type Options struct {
	Sheet    string // xlsx
	Encoding string // csv
	Comma    rune   // csv; zero means sniff
}

// ForFile picks a parser from the file extension.
func ForFile(name string, opt Options) (Parser, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return xlsx.NewParser(xlsx.Options{Sheet: opt.Sheet}), nil
	case ".csv", ".txt":
		return csv.NewParser(csv.Options{Comma: opt.Comma, Encoding: opt.Encoding, TrimSpace: true}), nil
	default:
		return nil, fmt.Errorf("parser: unsupported report file type %q", filepath.Ext(name))
	}
}
