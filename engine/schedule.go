/*
schedule.go - Installment schedule construction

PURPOSE:
  Builds the ordered sequence of due dates and amounts for a loan. The
  schedule is a pure function of the loan terms: it is recomputed on every
  call and never cached or persisted, so any change to the terms is
  immediately reflected.

FLAT INTEREST:
  totalInterest = principal x monthlyRate x termMonths, computed once over
  the full term. There is no per-period recomputation on declining balance.

ROUNDING:
  Per-period interest and principal are each rounded to cents. The final
  period absorbs all rounding residue: its principal portion is the exact
  remaining balance and its interest portion is totalInterest minus the sum
  already scheduled. Cumulative principal therefore equals the loan
  principal penny-exact.

DUE DATES:
  The first installment falls one period AFTER the start date; the start
  date itself is never a due date.
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// Installment is one scheduled due-date/amount pair.
type Installment struct {
	Seq     int
	DueDate Date

	Total     decimal.Decimal // Interest + Principal, rounded to cents
	Interest  decimal.Decimal
	Principal decimal.Decimal

	// RemainingPrincipal is the principal still owed after this installment.
	RemainingPrincipal decimal.Decimal
}

// TotalInterest returns the flat interest fixed at origination:
// principal x monthlyRate x termMonths, rounded to cents.
func TotalInterest(l Loan) decimal.Decimal {
	if l.TermMonths <= 0 {
		return decimal.Zero
	}
	return Round2(l.Principal.Mul(l.MonthlyRate).Mul(decimal.NewFromInt(int64(l.TermMonths))))
}

// QuotaPerPeriod returns the flat installment amount shown to the customer:
// (principal + total interest) / periods. Display value only - the final
// installment's actual amount differs by the absorbed rounding residue.
func QuotaPerPeriod(l Loan) decimal.Decimal {
	n := l.Periods()
	if n <= 0 {
		return decimal.Zero
	}
	return Round2(l.Principal.Add(TotalInterest(l)).Div(decimal.NewFromInt(int64(n))))
}

// MonthlyInterestDue returns one month of flat interest on the principal.
// This is the amount collected by an interest-only renewal.
func MonthlyInterestDue(l Loan) decimal.Decimal {
	return Round2(l.Principal.Mul(l.MonthlyRate))
}

// BuildSchedule produces the loan's installments in due-date order. A loan
// with zero or negative periods (bad term, unknown frequency) yields an
// empty schedule; callers treat that as "nothing due", not as an error.
func BuildSchedule(l Loan) []Installment {
	n := l.Periods()
	if n <= 0 {
		return nil
	}

	periods := decimal.NewFromInt(int64(n))
	totalInterest := TotalInterest(l)
	interestPer := Round2(totalInterest.Div(periods))
	principalPer := Round2(l.Principal.Div(periods))

	out := make([]Installment, 0, n)
	due := Advance(l.Frequency, l.StartDate)
	balance := l.Principal

	for k := 1; k <= n; k++ {
		var principal, interest decimal.Decimal
		if k < n {
			principal = principalPer
			interest = interestPer
		} else {
			// Final period absorbs all rounding residue.
			principal = Round2(balance)
			interest = Round2(totalInterest.Sub(interestPer.Mul(decimal.NewFromInt(int64(n - 1)))))
		}
		balance = Round2(balance.Sub(principal))

		out = append(out, Installment{
			Seq:                k,
			DueDate:            due,
			Total:              Round2(principal.Add(interest)),
			Interest:           interest,
			Principal:          principal,
			RemainingPrincipal: balance,
		})
		due = Advance(l.Frequency, due)
	}
	return out
}

// ScheduleTotal sums the installment totals: what the borrower owes over the
// loan's full life.
func ScheduleTotal(schedule []Installment) decimal.Decimal {
	total := decimal.Zero
	for _, ins := range schedule {
		total = total.Add(ins.Total)
	}
	return total
}
