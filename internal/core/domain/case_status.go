package domain

import "github.com/shopspring/decimal"

// CaseStatus represents the funding lifecycle state of a treatment case
type CaseStatus string

const (
	CaseStatusPending     CaseStatus = "pending"
	CaseStatusActive      CaseStatus = "active"
	CaseStatusFullyFunded CaseStatus = "fully_funded"
	CaseStatusCompleted   CaseStatus = "completed"
	CaseStatusCancelled   CaseStatus = "cancelled"
)

// IsValid reports whether the status is a known lifecycle state
func (s CaseStatus) IsValid() bool {
	switch s {
	case CaseStatusPending, CaseStatusActive, CaseStatusFullyFunded,
		CaseStatusCompleted, CaseStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether the status absorbs all further transitions
func (s CaseStatus) IsTerminal() bool {
	return s == CaseStatusCompleted || s == CaseStatusCancelled
}

// AcceptsDonations reports whether a case in this status may receive donations
func (s CaseStatus) AcceptsDonations() bool {
	switch s {
	case CaseStatusFullyFunded, CaseStatusCompleted, CaseStatusCancelled:
		return false
	}
	return true
}

// ResolveStatus derives the new case status from funding totals.
// Terminal states (cancelled, completed) absorb. A case whose raised amount
// meets or exceeds its total cost becomes fully_funded. Otherwise the status
// is unchanged. A pending case is never auto-promoted to active; that
// requires explicit admin verification.
func ResolveStatus(current CaseStatus, amountRaised, totalCost decimal.Decimal) CaseStatus {
	if current.IsTerminal() {
		return current
	}
	if amountRaised.GreaterThanOrEqual(totalCost) {
		return CaseStatusFullyFunded
	}
	return current
}

// RemainingNeeded computes max(totalCost - amountRaised, 0)
func RemainingNeeded(totalCost, amountRaised decimal.Decimal) decimal.Decimal {
	needed := totalCost.Sub(amountRaised)
	if needed.IsNegative() {
		return decimal.Zero
	}
	return needed
}
