package storage

import (
	"context"
	"fmt"

	"reportetl/internal/report"
)

// InsertBatch writes recs to repo as a single batch in report.TargetColumns
// order. Either every row is persisted or none is. An empty batch performs
// no sink I/O.
func InsertBatch(ctx context.Context, repo Repository, recs []report.AdmissibleRecord) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}
	n, err := repo.CopyFrom(ctx, report.TargetColumns, report.Rows(recs))
	if err != nil {
		return 0, fmt.Errorf("insert batch of %d rows: %w", len(recs), err)
	}
	return n, nil
}
