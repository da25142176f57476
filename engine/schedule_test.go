package engine_test

import (
	"testing"
	"time"

	"github.com/argsoja/loanbook/engine"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func monthlyLoan(principal float64, rate float64, termMonths int) engine.Loan {
	l := engine.Loan{
		ID:          1,
		CustomerID:  1,
		Principal:   engine.Money(principal),
		MonthlyRate: engine.Money(rate),
		TermMonths:  termMonths,
		Frequency:   engine.FreqMonthly,
		StartDate:   engine.NewDate(2024, time.January, 1),
		Status:      engine.StatusActive,
		Visible:     true,
	}
	l.RecomputeNumPeriods()
	return l
}

func assertMoney(t *testing.T, expected float64, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, engine.Money(expected).Equal(actual), "expected %v, got %v", expected, actual)
}

// =============================================================================
// SCHEDULE SHAPE
// =============================================================================

func TestBuildSchedule_SingleMonthlyInstallment(t *testing.T) {
	// GIVEN: 900,000 at 20%/month for 1 month, monthly cadence, start Jan 1
	// WHEN: Building the schedule
	// THEN: One installment, due Feb 1, for 1,080,000.00

	loan := monthlyLoan(900_000, 0.2, 1)
	schedule := engine.BuildSchedule(loan)

	require.Len(t, schedule, 1)
	assert.Equal(t, "2024-02-01", schedule[0].DueDate.String())
	assertMoney(t, 1_080_000, schedule[0].Total)
	assertMoney(t, 180_000, schedule[0].Interest)
	assertMoney(t, 900_000, schedule[0].Principal)
	assert.True(t, schedule[0].RemainingPrincipal.IsZero())
}

func TestBuildSchedule_DailyCadence(t *testing.T) {
	// GIVEN: Same loan with daily cadence
	// THEN: 30 installments of 36,000 each, starting Jan 2 (never Jan 1)

	loan := monthlyLoan(900_000, 0.2, 1)
	loan.Frequency = engine.FreqDaily
	loan.RecomputeNumPeriods()

	schedule := engine.BuildSchedule(loan)
	require.Len(t, schedule, 30)

	assert.Equal(t, "2024-01-02", schedule[0].DueDate.String())
	assert.Equal(t, "2024-01-31", schedule[29].DueDate.String())
	for _, ins := range schedule {
		assertMoney(t, 36_000, ins.Total)
	}
}

func TestBuildSchedule_StartDateNeverDue(t *testing.T) {
	loan := monthlyLoan(100_000, 0.1, 3)
	for _, ins := range engine.BuildSchedule(loan) {
		assert.True(t, ins.DueDate.After(loan.StartDate))
	}
}

func TestBuildSchedule_InvalidParamsDegradeToEmpty(t *testing.T) {
	zeroTerm := monthlyLoan(100_000, 0.1, 0)
	assert.Empty(t, engine.BuildSchedule(zeroTerm))
	assert.True(t, engine.QuotaPerPeriod(zeroTerm).IsZero())

	unknownFreq := monthlyLoan(100_000, 0.1, 2)
	unknownFreq.Frequency = engine.Frequency("hourly")
	assert.Empty(t, engine.BuildSchedule(unknownFreq))
}

// =============================================================================
// ROUNDING PROPERTIES
// =============================================================================

func TestBuildSchedule_PrincipalSumsExactly(t *testing.T) {
	// Sum of principal portions must equal the loan principal penny-exact,
	// with the last installment absorbing the rounding residue.
	cases := []struct {
		name      string
		principal float64
		rate      float64
		term      int
		freq      engine.Frequency
	}{
		{"daily with residue", 1_000_000, 0.15, 1, engine.FreqDaily},
		{"weekly", 333_333, 0.2, 2, engine.FreqWeekly},
		{"biweekly odd cents", 100_000.33, 0.1, 3, engine.FreqBiweekly},
		{"monthly long term", 754_321, 0.07, 11, engine.FreqMonthly},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			loan := monthlyLoan(tc.principal, tc.rate, tc.term)
			loan.Frequency = tc.freq
			loan.RecomputeNumPeriods()

			schedule := engine.BuildSchedule(loan)
			require.NotEmpty(t, schedule)

			principalSum := decimal.Zero
			totalSum := decimal.Zero
			for _, ins := range schedule {
				principalSum = principalSum.Add(ins.Principal)
				totalSum = totalSum.Add(ins.Total)
			}

			assert.True(t, principalSum.Equal(loan.Principal),
				"principal sum %v != %v", principalSum, loan.Principal)

			expectedTotal := loan.Principal.Add(engine.TotalInterest(loan))
			assert.True(t, totalSum.Sub(expectedTotal).Abs().LessThanOrEqual(engine.Money(0.01)),
				"total %v not within a cent of %v", totalSum, expectedTotal)

			last := schedule[len(schedule)-1]
			assert.True(t, last.RemainingPrincipal.IsZero())
		})
	}
}

func TestBuildSchedule_Idempotent(t *testing.T) {
	loan := monthlyLoan(123_456.78, 0.18, 4)
	loan.Frequency = engine.FreqWeekly
	loan.RecomputeNumPeriods()

	first := engine.BuildSchedule(loan)
	second := engine.BuildSchedule(loan)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.True(t, first[i].Total.Equal(second[i].Total))
		assert.Equal(t, first[i].DueDate, second[i].DueDate)
	}
}

func TestMonthlyInterestDue(t *testing.T) {
	loan := monthlyLoan(900_000, 0.2, 1)
	assertMoney(t, 180_000, engine.MonthlyInterestDue(loan))
}

func TestRecomputeNumPeriods(t *testing.T) {
	loan := monthlyLoan(100_000, 0.1, 2)
	assert.Equal(t, 2, loan.NumPeriods)

	loan.Frequency = engine.FreqDaily
	loan.RecomputeNumPeriods()
	assert.Equal(t, 60, loan.NumPeriods)
}
