package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// TOTALS - Paid / due / balance aggregation for one loan
// =============================================================================

// Totals summarizes a loan's money position.
type Totals struct {
	// QuotaPerPeriod is the flat installment amount, for display.
	QuotaPerPeriod decimal.Decimal

	// PaidToDate is money actually collected: all payments except
	// renewal-adjustment entries.
	PaidToDate decimal.Decimal

	// TotalDue is the sum of all installment totals over the loan's life.
	TotalDue decimal.Decimal

	// Balance = max(TotalDue - settled, 0), where settled includes
	// adjustment entries. Overpayment is silently absorbed; there is no
	// credit carry-forward.
	Balance decimal.Decimal
}

// PaidToDate sums payment amounts, excluding accounting-adjustment entries.
// Adjustment payments zero out a renewed loan's balance without counting as
// collections, so they are skipped here and everywhere money-collected is
// reported.
func PaidToDate(payments []Payment) decimal.Decimal {
	paid := decimal.Zero
	for _, p := range payments {
		if p.Method.IsAdjustment() {
			continue
		}
		paid = paid.Add(p.Amount)
	}
	return paid
}

// SettledToDate sums payment amounts with adjustments included. This is the
// figure the balance is drawn against: a renewal-adjustment settles the book
// even though it never counts as collected money.
func SettledToDate(payments []Payment) decimal.Decimal {
	settled := decimal.Zero
	for _, p := range payments {
		settled = settled.Add(p.Amount)
	}
	return settled
}

// ComputeTotals derives the loan's totals from its (recomputed) schedule and
// payment history.
func ComputeTotals(l Loan, payments []Payment) Totals {
	totalDue := ScheduleTotal(BuildSchedule(l))
	paid := PaidToDate(payments)

	balance := Round2(totalDue.Sub(SettledToDate(payments)))
	if balance.IsNegative() {
		balance = decimal.Zero
	}

	return Totals{
		QuotaPerPeriod: QuotaPerPeriod(l),
		PaidToDate:     Round2(paid),
		TotalDue:       Round2(totalDue),
		Balance:        balance,
	}
}
