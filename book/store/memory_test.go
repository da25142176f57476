package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/argsoja/loanbook/book"
	"github.com/argsoja/loanbook/engine"
)

// Interface conformance.
var (
	_ book.TxStore  = (*TxMemory)(nil)
	_ book.Store    = (*txMemoryView)(nil)
	_ book.AuditLog = (*Memory)(nil)
)

func seedLoan(t *testing.T, m *Memory) (*engine.Customer, *engine.Loan) {
	t.Helper()
	ctx := context.Background()
	c := &engine.Customer{Name: "Marta Diaz"}
	require.NoError(t, m.CreateCustomer(ctx, c))
	l := &engine.Loan{
		CustomerID:  c.ID,
		Principal:   engine.Money(500_000),
		MonthlyRate: engine.Money(0.1),
		TermMonths:  1,
		Frequency:   engine.FreqMonthly,
		StartDate:   engine.NewDate(2024, time.June, 1),
		Status:      engine.StatusActive,
		Visible:     true,
	}
	l.RecomputeNumPeriods()
	require.NoError(t, m.CreateLoan(ctx, l))
	return c, l
}

func TestMemory_LoanRequiresCustomer(t *testing.T) {
	m := NewMemory()
	err := m.CreateLoan(context.Background(), &engine.Loan{CustomerID: 999})
	assert.ErrorIs(t, err, engine.ErrCustomerNotFound)
}

func TestMemory_PaymentIdempotencyAndOrdering(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	c, l := seedLoan(t, m)

	// Out-of-order inserts, read back date-ordered.
	for _, day := range []int{9, 3, 6} {
		require.NoError(t, m.CreatePayment(ctx, &engine.Payment{
			LoanID:     l.ID,
			CustomerID: c.ID,
			Date:       engine.NewDate(2024, time.June, day),
			Amount:     engine.Money(55_000),
			Method:     engine.MethodCash,
		}))
	}
	ps, err := m.PaymentsByLoan(ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, ps, 3)
	assert.Equal(t, 3, ps[0].Date.Day())
	assert.Equal(t, 9, ps[2].Date.Day())

	p := &engine.Payment{
		LoanID: l.ID, CustomerID: c.ID,
		Date: engine.NewDate(2024, time.June, 10), Amount: engine.Money(1000),
		Method: engine.MethodCash, IdempotencyKey: "k1",
	}
	require.NoError(t, m.CreatePayment(ctx, p))
	dup := *p
	dup.ID = 0
	assert.ErrorIs(t, m.CreatePayment(ctx, &dup), engine.ErrDuplicateIdempotencyKey)
}

func TestTxMemory_RollbackRestoresState(t *testing.T) {
	tm := NewTxMemory()
	ctx := context.Background()
	c, l := seedLoan(t, tm.Memory)

	sentinel := errors.New("boom")
	err := tm.WithTx(ctx, func(tx book.Store) error {
		if err := tx.CreatePayment(ctx, &engine.Payment{
			LoanID: l.ID, CustomerID: c.ID,
			Date: engine.NewDate(2024, time.June, 2), Amount: engine.Money(1000), Method: engine.MethodCash,
		}); err != nil {
			return err
		}
		got, err := tx.GetLoan(ctx, l.ID)
		if err != nil {
			return err
		}
		got.Status = engine.StatusRenewed
		if err := tx.UpdateLoan(ctx, got); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	got, err := tm.GetLoan(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, engine.StatusActive, got.Status)
	ps, err := tm.PaymentsByLoan(ctx, l.ID)
	require.NoError(t, err)
	assert.Empty(t, ps)
}

func TestMemory_Reset(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	seedLoan(t, m)

	require.NoError(t, m.Reset(ctx))

	customers, err := m.ListCustomers(ctx)
	require.NoError(t, err)
	assert.Empty(t, customers)

	// IDs restart from 1 on a reset store.
	c := &engine.Customer{Name: "Ana Torres"}
	require.NoError(t, m.CreateCustomer(ctx, c))
	assert.Equal(t, int64(1), c.ID)
}
