/*
delinquency.go - Overdue amounts, days late and next due date

PURPOSE:
  Compares the recomputed schedule against today's date and the paid total
  to answer: how much is overdue, for how long, and when is the next
  payment expected?

DUE BOUNDARY:
  An installment counts as "due" only when its due date is STRICTLY before
  today. An installment due exactly today is granted grace through the end
  of the day: it is not overdue, but it is eligible to be the next due date
  with zero days until.

PAYMENT ALLOCATION:
  Payments are allocated oldest-installment-first by cumulative sum. The
  first installment whose cumulative total exceeds the paid amount is the
  first unpaid one; days late are measured from its due date.
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// Delinquency describes a loan's arrears position as of a given day.
type Delinquency struct {
	// OverdueAmount = max(expected by now - paid, 0).
	OverdueAmount decimal.Decimal

	// DaysLate counts days since the first unpaid due installment. Zero
	// whenever nothing is overdue.
	DaysLate int

	// NextDueDate is the first unpaid installment due today or later; nil
	// when the schedule holds no such installment.
	NextDueDate *Date

	// DaysUntilNext is the distance to NextDueDate, nil alongside it.
	DaysUntilNext *int
}

// Analyze computes the loan's delinquency facts as of today.
func Analyze(l Loan, payments []Payment, today Date) Delinquency {
	schedule := BuildSchedule(l)
	paid := PaidToDate(payments)

	// Expected by now: every installment due strictly before today.
	expected := decimal.Zero
	for _, ins := range schedule {
		if ins.DueDate.Before(today) {
			expected = expected.Add(ins.Total)
		}
	}

	overdue := Round2(expected.Sub(paid))
	if overdue.IsNegative() {
		overdue = decimal.Zero
	}

	d := Delinquency{OverdueAmount: overdue}

	// First unpaid installment: earliest whose cumulative total exceeds
	// what has been paid.
	if overdue.IsPositive() {
		cum := decimal.Zero
		for _, ins := range schedule {
			cum = cum.Add(ins.Total)
			if cum.GreaterThan(paid) {
				d.DaysLate = DaysBetween(ins.DueDate, today)
				break
			}
		}
	}

	// Next due: first unpaid installment due today or later.
	cum := decimal.Zero
	for _, ins := range schedule {
		cum = cum.Add(ins.Total)
		if cum.GreaterThan(paid) && ins.DueDate.AfterOrEqual(today) {
			due := ins.DueDate
			until := DaysBetween(today, due)
			d.NextDueDate = &due
			d.DaysUntilNext = &until
			break
		}
	}

	return d
}
