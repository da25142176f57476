package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// STATE CLASSIFIER - Maps balance/delinquency/promise facts to a loan state
// =============================================================================

type State string

const (
	StatePaid     State = "paid"
	StatePromised State = "promised" // overdue but covered by an unexpired promise to pay
	StateOverdue  State = "overdue"
	StateDueSoon  State = "due_soon"
	StateCurrent  State = "current"
)

// DefaultUpcomingDays is the due-soon window when the caller does not supply
// one. The UI exposes it as an adjustable threshold.
const DefaultUpcomingDays = 3

// paidTolerance absorbs cent-level rounding residue: a balance at or below
// it counts as fully paid.
var paidTolerance = decimal.NewFromFloat(0.005)

// Classify labels a loan. First match wins:
//  1. balance within tolerance of zero -> paid
//  2. overdue but promise to pay not yet lapsed -> promised
//  3. anything overdue -> overdue
//  4. next payment within the upcoming window -> due_soon
//  5. otherwise -> current
func Classify(l Loan, t Totals, d Delinquency, today Date, upcomingDays int) State {
	if t.Balance.LessThanOrEqual(paidTolerance) {
		return StatePaid
	}
	if l.PromiseToPay != nil && d.OverdueAmount.IsPositive() && today.BeforeOrEqual(*l.PromiseToPay) {
		return StatePromised
	}
	if d.OverdueAmount.IsPositive() {
		return StateOverdue
	}
	if d.DaysUntilNext != nil && *d.DaysUntilNext >= 0 && *d.DaysUntilNext <= upcomingDays {
		return StateDueSoon
	}
	return StateCurrent
}

// OverdueBucket sub-buckets an overdue loan for reporting: under or over 30
// days late. Empty for loans that are not late.
func OverdueBucket(daysLate int) string {
	switch {
	case daysLate <= 0:
		return ""
	case daysLate < 30:
		return "1-29"
	default:
		return "30+"
	}
}

// HasActivePromise reports whether the loan carries a promise to pay that
// has not lapsed as of today.
func HasActivePromise(l Loan, today Date) bool {
	return l.PromiseToPay != nil && l.PromiseToPay.AfterOrEqual(today)
}
