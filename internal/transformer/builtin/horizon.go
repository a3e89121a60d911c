package builtin

import (
	"github.com/golang-sql/civil"

	"reportetl/internal/report"
)

// HorizonDays bounds how far past the run date a record may be dated.
const HorizonDays = 90

// Horizon drops records dated after Limit, and records with no date. It is
// independent of Admit so that loosening the admission date rule cannot let
// far-future rows through.
type Horizon struct {
	Limit    civil.Date
	OnReject func(reason string)
}

// NewHorizon returns a Horizon bounded at today + HorizonDays.
func NewHorizon(today civil.Date, onReject func(string)) Horizon {
	return Horizon{Limit: today.AddDays(HorizonDays), OnReject: onReject}
}

// Apply filters in place and returns the surviving prefix of in.
func (h Horizon) Apply(in []report.NormalizedRecord) []report.NormalizedRecord {
	out := in[:0]
	for _, r := range in {
		if !r.Fecha.Valid || r.Fecha.Date.After(h.Limit) {
			if h.OnReject != nil {
				h.OnReject(RejectHorizon)
			}
			continue
		}
		out = append(out, r)
	}
	return out
}
