package engine_test

import (
	"testing"
	"time"

	"github.com/argsoja/loanbook/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fiveQuotaLoan has five monthly installments of 100,000 each, due on the
// first of Feb through Jun 2024.
func fiveQuotaLoan() engine.Loan {
	return monthlyLoan(400_000, 0.05, 5)
}

func TestAnalyze_NothingDueYet(t *testing.T) {
	loan := fiveQuotaLoan()
	today := engine.NewDate(2024, time.January, 15)

	d := engine.Analyze(loan, nil, today)

	assert.True(t, d.OverdueAmount.IsZero())
	assert.Equal(t, 0, d.DaysLate)
	require.NotNil(t, d.NextDueDate)
	assert.Equal(t, "2024-02-01", d.NextDueDate.String())
	require.NotNil(t, d.DaysUntilNext)
	assert.Equal(t, 17, *d.DaysUntilNext)
}

func TestAnalyze_TwoPaidEvaluatedDayAfterThirdDue(t *testing.T) {
	// GIVEN: Quota 100,000, two installments fully paid (200,000)
	// WHEN: Evaluated the day after the third due date (Apr 2)
	// THEN: 100,000 overdue, 1 day late, next due May 1

	loan := fiveQuotaLoan()
	pays := []engine.Payment{
		payment(loan.ID, engine.NewDate(2024, time.February, 1), 100_000, engine.MethodCash),
		payment(loan.ID, engine.NewDate(2024, time.March, 1), 100_000, engine.MethodCash),
	}
	today := engine.NewDate(2024, time.April, 2)

	d := engine.Analyze(loan, pays, today)

	assertMoney(t, 100_000, d.OverdueAmount)
	assert.Equal(t, 1, d.DaysLate)
	require.NotNil(t, d.NextDueDate)
	assert.Equal(t, "2024-05-01", d.NextDueDate.String())
	require.NotNil(t, d.DaysUntilNext)
	assert.Equal(t, 29, *d.DaysUntilNext)
}

func TestAnalyze_DueTodayIsNotOverdue(t *testing.T) {
	// An installment due exactly today gets grace through the end of the
	// day: not overdue, but next-due with zero days until.
	loan := fiveQuotaLoan()
	today := engine.NewDate(2024, time.February, 1)

	d := engine.Analyze(loan, nil, today)

	assert.True(t, d.OverdueAmount.IsZero())
	assert.Equal(t, 0, d.DaysLate)
	require.NotNil(t, d.NextDueDate)
	assert.Equal(t, "2024-02-01", d.NextDueDate.String())
	require.NotNil(t, d.DaysUntilNext)
	assert.Equal(t, 0, *d.DaysUntilNext)
}

func TestAnalyze_PartialPaymentKeepsInstallmentUnpaid(t *testing.T) {
	// 50,000 against the first 100,000 installment: still 50,000 overdue,
	// days late measured from the first installment's due date.
	loan := fiveQuotaLoan()
	pays := []engine.Payment{
		payment(loan.ID, engine.NewDate(2024, time.February, 1), 50_000, engine.MethodCash),
	}
	today := engine.NewDate(2024, time.February, 11)

	d := engine.Analyze(loan, pays, today)

	assertMoney(t, 50_000, d.OverdueAmount)
	assert.Equal(t, 10, d.DaysLate)
}

func TestAnalyze_DaysLateZeroWheneverNothingOverdue(t *testing.T) {
	loan := fiveQuotaLoan()
	pays := []engine.Payment{
		payment(loan.ID, engine.NewDate(2024, time.February, 1), 300_000, engine.MethodCash),
	}
	today := engine.NewDate(2024, time.March, 15)

	d := engine.Analyze(loan, pays, today)
	assert.True(t, d.OverdueAmount.IsZero())
	assert.Equal(t, 0, d.DaysLate)
}

func TestAnalyze_FullyPaidHasNoNextDue(t *testing.T) {
	loan := fiveQuotaLoan()
	pays := []engine.Payment{
		payment(loan.ID, engine.NewDate(2024, time.June, 1), 500_000, engine.MethodTransfer),
	}
	today := engine.NewDate(2024, time.June, 2)

	d := engine.Analyze(loan, pays, today)

	assert.True(t, d.OverdueAmount.IsZero())
	assert.Nil(t, d.NextDueDate)
	assert.Nil(t, d.DaysUntilNext)
}

func TestAnalyze_AdjustmentPaymentsDoNotCountAsPaid(t *testing.T) {
	loan := fiveQuotaLoan()
	pays := []engine.Payment{
		payment(loan.ID, engine.NewDate(2024, time.February, 1), 100_000, engine.MethodAdjustment),
	}
	today := engine.NewDate(2024, time.February, 5)

	d := engine.Analyze(loan, pays, today)
	assertMoney(t, 100_000, d.OverdueAmount)
}
