package builtin

import (
	"strings"

	"github.com/golang-sql/civil"
	"golang.org/x/text/cases"

	"reportetl/internal/report"
)

// Rejection reasons reported through OnReject callbacks.
const (
	RejectDate    = "date_mismatch"
	RejectBalance = "zero_or_null_balance"
	RejectStatus  = "status"
	RejectHorizon = "beyond_horizon"
)

// admittedStatuses are matched as case-folded substrings of EstadoDocumento.
var admittedStatuses = []string{"activo", "pendiente"}

// Admit keeps only records dated on Reference, with a non-null non-zero
// Saldo, whose status contains "Activo" or "Pendiente" (case-insensitive).
// A record failing several predicates is reported once, for the first one
// checked in that order.
type Admit struct {
	Reference civil.Date
	OnReject  func(reason string)
}

// Apply filters in place and returns the surviving prefix of in.
func (a Admit) Apply(in []report.NormalizedRecord) []report.NormalizedRecord {
	fold := cases.Fold()
	out := in[:0]
	for _, r := range in {
		reason := ""
		switch {
		case !r.Fecha.Valid || r.Fecha.Date != a.Reference:
			reason = RejectDate
		case !r.Saldo.Valid || r.Saldo.Decimal.IsZero():
			reason = RejectBalance
		case !r.EstadoValid || !statusAdmitted(fold.String(r.EstadoDocumento)):
			reason = RejectStatus
		}
		if reason != "" {
			if a.OnReject != nil {
				a.OnReject(reason)
			}
			continue
		}
		out = append(out, r)
	}
	return out
}

func statusAdmitted(folded string) bool {
	for _, s := range admittedStatuses {
		if strings.Contains(folded, s) {
			return true
		}
	}
	return false
}
