// Package transformer turns a validated raw table into the admissible rows
// that are loaded into the sink. It is pure: the only inputs are the table,
// the reference date and the supplied "now".
package transformer

import (
	"time"

	"github.com/golang-sql/civil"

	"reportetl/internal/report"
	"reportetl/internal/transformer/builtin"
)

// Transformer is one filtering stage over normalized records.
type Transformer interface {
	Apply([]report.NormalizedRecord) []report.NormalizedRecord
}

// Chain is an ordered list of transformers.
type Chain []Transformer

func (c Chain) Apply(in []report.NormalizedRecord) []report.NormalizedRecord {
	out := in
	for _, t := range c {
		out = t.Apply(out)
	}
	return out
}

// Stats summarizes one run of the transformer.
type Stats struct {
	Read     int
	Admitted int
	Rejected map[string]int // by builtin.Reject* reason
}

// Transform normalizes t and returns the admissible records, in input order.
// referenceDate selects the report day; now supplies the process date and
// the horizon bound.
func Transform(t report.Table, referenceDate, now time.Time) []report.AdmissibleRecord {
	out, _ := TransformWithStats(t, referenceDate, now)
	return out
}

// TransformWithStats is Transform plus per-reason rejection counts.
func TransformWithStats(t report.Table, referenceDate, now time.Time) ([]report.AdmissibleRecord, Stats) {
	stats := Stats{Rejected: map[string]int{}}
	reject := func(reason string) { stats.Rejected[reason]++ }

	today := civil.DateOf(now)
	raw := t.Records()
	stats.Read = len(raw)

	norm := builtin.Normalize{ProcessDate: today}.Apply(raw)
	kept := Chain{
		builtin.Admit{Reference: civil.DateOf(referenceDate), OnReject: reject},
		builtin.NewHorizon(today, reject),
	}.Apply(norm)

	out := make([]report.AdmissibleRecord, len(kept))
	for i := range kept {
		out[i] = report.Admit(kept[i])
	}
	stats.Admitted = len(out)
	return out, stats
}
