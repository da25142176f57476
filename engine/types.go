/*
Package engine provides the core loan accounting engine.

PURPOSE:
  This package contains the pure computation core of the loan book:
  schedule generation, payment aggregation, delinquency analysis, state
  classification and portfolio statistics. Nothing in here touches
  persistence or the network - every function is deterministic given its
  inputs, and a loan's schedule is always recomputed from its parameters,
  never stored.

KEY CONCEPTS IN THIS FILE (types.go):
  - Loan: terms of a microloan (principal, flat monthly rate, term, cadence)
  - Payment: an immutable record of money received against a loan
  - Customer: identity and location attributes for a borrower
  - Frequency: installment cadence (daily/weekly/biweekly/monthly)

DESIGN PRINCIPLES:
  1. Purity: schedules and totals are derived, never persisted state
  2. Precision: uses decimal.Decimal for all money, rounded to cents at
     each computation boundary
  3. Degradation: invalid parameters (zero term, unknown frequency) yield
     empty schedules and zero totals, never errors

SEE ALSO:
  - calendar.go: date stepping with month-length and leap-year handling
  - schedule.go: installment schedule construction
  - totals.go: paid/due/balance aggregation
  - delinquency.go: overdue amounts and days late
  - classify.go: loan state classification
  - portfolio.go: fleet-wide statistics and collection priorities
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// FREQUENCY - Installment cadence
// =============================================================================

type Frequency string

const (
	FreqDaily    Frequency = "daily"
	FreqWeekly   Frequency = "weekly"
	FreqBiweekly Frequency = "biweekly"
	FreqMonthly  Frequency = "monthly"
)

// PeriodsPerMonth returns how many installments a month holds for the given
// cadence. Unknown frequencies return 0, which degrades downstream into an
// empty schedule rather than an error.
func PeriodsPerMonth(f Frequency) int {
	switch f {
	case FreqDaily:
		return 30
	case FreqWeekly:
		return 4
	case FreqBiweekly:
		return 2
	case FreqMonthly:
		return 1
	default:
		return 0
	}
}

// =============================================================================
// MONEY - All amounts are decimal, rounded to cents at each boundary
// =============================================================================

// Round2 rounds to 2 decimal places, half away from zero. Residual cents
// from per-period division are force-balanced onto the final installment by
// the schedule builder.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Money builds a decimal amount from a float. Test and seed convenience.
func Money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// ParseMoney parses a decimal amount from its string form, as received on
// API boundaries. Amounts travel as strings to avoid float drift.
func ParseMoney(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// =============================================================================
// LOAN
// =============================================================================

type LoanStatus string

const (
	StatusActive  LoanStatus = "active"
	StatusRenewed LoanStatus = "renewed" // historical/closed via renewal
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Loan holds the terms of a microloan. Interest is flat: fixed at
// origination as principal x rate x term, spread evenly across periods,
// never recalculated on declining balance.
type Loan struct {
	ID         int64
	CustomerID int64

	Principal   decimal.Decimal
	MonthlyRate decimal.Decimal // fractional, e.g. 0.2 = 20%/month
	TermMonths  int
	Frequency   Frequency
	StartDate   Date

	// NumPeriods is denormalized for persistence and display. It must always
	// equal PeriodsPerMonth(Frequency) x TermMonths; any edit to frequency or
	// term goes through RecomputeNumPeriods.
	NumPeriods int

	Collector string
	Status    LoanStatus
	Visible   bool // counts toward the active portfolio, independent of Status

	// PromiseToPay suppresses overdue classification until the date lapses.
	PromiseToPay *Date

	// PriorityOverride, when set, wins over the computed collection priority.
	PriorityOverride Priority

	Notes string
}

// Periods returns the installment count derived from the loan terms. This is
// the authoritative value; NumPeriods is just its stored copy.
func (l Loan) Periods() int {
	return PeriodsPerMonth(l.Frequency) * l.TermMonths
}

// RecomputeNumPeriods restores the NumPeriods invariant after any edit to
// frequency or term.
func (l *Loan) RecomputeNumPeriods() {
	l.NumPeriods = l.Periods()
}

// =============================================================================
// PAYMENT - Immutable once created
// =============================================================================

type PaymentMethod string

const (
	MethodCash     PaymentMethod = "cash"
	MethodTransfer PaymentMethod = "transfer"
	MethodOther    PaymentMethod = "other"

	// MethodInterestOnly marks the synthetic interest payment recorded when a
	// loan is renewed.
	MethodInterestOnly PaymentMethod = "interest-only-renewal"

	// MethodAdjustment marks the accounting fiction recorded during renewal
	// close-out: it zeroes the old loan's balance but is excluded from all
	// collected-money sums.
	MethodAdjustment PaymentMethod = "renewal-adjustment"
)

// IsAdjustment reports whether the payment is an accounting adjustment that
// must not count as money actually collected.
func (m PaymentMethod) IsAdjustment() bool {
	return m == MethodAdjustment
}

// Payment records money received against a loan. Payments have no update or
// delete path: corrections happen by recording further payments.
type Payment struct {
	ID         int64
	LoanID     int64
	CustomerID int64 // denormalized from the loan

	Date   Date
	Amount decimal.Decimal // non-negative
	Method PaymentMethod
	Note   string

	// IdempotencyKey guards synthetic payments written by the renewal
	// workflow against double application.
	IdempotencyKey string
}

// =============================================================================
// CUSTOMER
// =============================================================================

type Customer struct {
	ID           int64
	Name         string
	Document     string
	Phone        string
	Address      string
	Zone         string
	Neighborhood string
	Notes        string
}
