// Package schema holds the source and destination shape of the daily report:
// the required-column check applied to every extracted table and the logical
// destination schema used for table bootstrap.
package schema

import (
	"fmt"

	"reportetl/internal/report"
)

// SchemaError reports every required column absent from a source table.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %q", e.Missing)
}

// Validate checks that t exposes every column in report.SourceColumns. It
// does no type checking; bad cell values become nulls in the transformer.
//
// On failure it returns a *SchemaError listing each missing column in
// SourceColumns order, not only the first.
func Validate(t report.Table) (report.Table, error) {
	idx := t.Index()
	var missing []string
	for _, c := range report.SourceColumns {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return t, &SchemaError{Missing: missing}
	}
	return t, nil
}
