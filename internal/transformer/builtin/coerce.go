// Package builtin contains the fixed transformation steps of the daily
// report: type coercion, normalization, the admission filter and the
// future-date horizon.
package builtin

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/golang-sql/civil"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"reportetl/internal/report"
)

// dayFirstLayouts are tried in order. ISO forms come first so that
// "2025-06-01" is never read as day 20.
var dayFirstLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/1/2",
	"2006/1/2 15:04",
	"2006/1/2 15:04:05",
	"2/1/2006",
	"2/1/2006 15:04",
	"2/1/2006 15:04:05",
	"2-1-2006",
	"2-1-2006 15:04",
	"2-1-2006 15:04:05",
	"2.1.2006",
	"2.1.2006 15:04",
	"2.1.2006 15:04:05",
	"2/1/06",
	"2-1-06",
	"2.1.06",
	"2/1/2006 3:04 PM",
	"2/1/2006 3:04:05 PM",
	"2-1-2006 3:04 PM",
	"2-1-2006 3:04:05 PM",
	"2.1.2006 3:04 PM",
	"2.1.2006 3:04:05 PM",
	"2-Jan-2006",
	"2-Jan-06",
	"2 Jan 2006",
	"2/Jan/2006",
}

// commaDecimal matches decimal-comma numbers: one comma as the decimal point,
// optionally preceded by dot-separated thousands groups.
var commaDecimal = regexp.MustCompile(`^[-+]?(\d{1,3}(\.\d{3})*|\d+),\d+$`)

// maxExcelSerial is the serial number of 9999-12-31 in the 1900 date system.
const maxExcelSerial = 2958465

// ParseDate parses s as a day-first calendar date, ignoring any time of day.
// Pure numbers are read as Excel serial dates, which is how spreadsheet date
// cells arrive when read as raw values. Anything else yields a null date.
func ParseDate(s string) report.NullDate {
	s = strings.TrimSpace(s)
	if s == "" {
		return report.NullDate{}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if !(f >= 1 && f <= maxExcelSerial) {
			return report.NullDate{}
		}
		t, err := excelize.ExcelDateToTime(f, false)
		if err != nil {
			return report.NullDate{}
		}
		return report.DateOf(civil.DateOf(t))
	}
	for _, layout := range dayFirstLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return report.DateOf(civil.DateOf(t))
		}
	}
	return report.NullDate{}
}

// ParseDecimal parses s as a decimal using the decimal-comma convention of
// the source reports: when s contains a comma, dots are thousands separators
// and the comma is the decimal point ("1.234,56" is 1234.56). A comma
// followed by a dot, or dots that are not thousands groups, is not a number
// ("1,234.56" is null). Without a
// comma, s is read as a plain dot-decimal ("1234.56", "-3", "1e3").
// Unparseable or empty input yields a null decimal.
func ParseDecimal(s string) decimal.NullDecimal {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\u00a0', '\u202f':
			return -1
		}
		return r
	}, s)
	if s == "" {
		return decimal.NullDecimal{}
	}
	if strings.Contains(s, ",") {
		if !commaDecimal.MatchString(s) {
			return decimal.NullDecimal{}
		}
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}
