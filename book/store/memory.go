// Package store provides book.Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/argsoja/loanbook/book"
	"github.com/argsoja/loanbook/engine"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu sync.RWMutex

	customers map[int64]engine.Customer
	loans     map[int64]engine.Loan
	payments  map[int64]engine.Payment

	idempotency map[string]bool

	nextCustomerID int64
	nextLoanID     int64
	nextPaymentID  int64

	audit []book.AuditEntry
}

func NewMemory() *Memory {
	return &Memory{
		customers:   make(map[int64]engine.Customer),
		loans:       make(map[int64]engine.Loan),
		payments:    make(map[int64]engine.Payment),
		idempotency: make(map[string]bool),
	}
}

// -----------------------------------------------------------------------------
// Customers
// -----------------------------------------------------------------------------

func (m *Memory) CreateCustomer(_ context.Context, c *engine.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createCustomerLocked(c)
}

func (m *Memory) createCustomerLocked(c *engine.Customer) error {
	m.nextCustomerID++
	c.ID = m.nextCustomerID
	m.customers[c.ID] = *c
	return nil
}

func (m *Memory) GetCustomer(_ context.Context, id int64) (*engine.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getCustomerLocked(id)
}

func (m *Memory) getCustomerLocked(id int64) (*engine.Customer, error) {
	c, ok := m.customers[id]
	if !ok {
		return nil, engine.ErrCustomerNotFound
	}
	return &c, nil
}

func (m *Memory) UpdateCustomer(_ context.Context, c *engine.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateCustomerLocked(c)
}

func (m *Memory) updateCustomerLocked(c *engine.Customer) error {
	if _, ok := m.customers[c.ID]; !ok {
		return engine.ErrCustomerNotFound
	}
	m.customers[c.ID] = *c
	return nil
}

func (m *Memory) ListCustomers(_ context.Context) ([]engine.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listCustomersLocked()
}

func (m *Memory) listCustomersLocked() ([]engine.Customer, error) {
	out := make([]engine.Customer, 0, len(m.customers))
	for _, c := range m.customers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// -----------------------------------------------------------------------------
// Loans
// -----------------------------------------------------------------------------

func (m *Memory) CreateLoan(_ context.Context, l *engine.Loan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createLoanLocked(l)
}

func (m *Memory) createLoanLocked(l *engine.Loan) error {
	if _, ok := m.customers[l.CustomerID]; !ok {
		return engine.ErrCustomerNotFound
	}
	m.nextLoanID++
	l.ID = m.nextLoanID
	m.loans[l.ID] = *l
	return nil
}

func (m *Memory) GetLoan(_ context.Context, id int64) (*engine.Loan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getLoanLocked(id)
}

func (m *Memory) getLoanLocked(id int64) (*engine.Loan, error) {
	l, ok := m.loans[id]
	if !ok {
		return nil, engine.ErrLoanNotFound
	}
	return &l, nil
}

func (m *Memory) UpdateLoan(_ context.Context, l *engine.Loan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateLoanLocked(l)
}

func (m *Memory) updateLoanLocked(l *engine.Loan) error {
	if _, ok := m.loans[l.ID]; !ok {
		return engine.ErrLoanNotFound
	}
	m.loans[l.ID] = *l
	return nil
}

func (m *Memory) ListLoans(_ context.Context) ([]engine.Loan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listLoansLocked()
}

func (m *Memory) listLoansLocked() ([]engine.Loan, error) {
	out := make([]engine.Loan, 0, len(m.loans))
	for _, l := range m.loans {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) LoansByCustomer(_ context.Context, customerID int64) ([]engine.Loan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loansByCustomerLocked(customerID)
}

func (m *Memory) loansByCustomerLocked(customerID int64) ([]engine.Loan, error) {
	var out []engine.Loan
	for _, l := range m.loans {
		if l.CustomerID == customerID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// -----------------------------------------------------------------------------
// Payments
// -----------------------------------------------------------------------------

// CreatePayment appends a payment. Append-only: there is no update or delete.
func (m *Memory) CreatePayment(_ context.Context, p *engine.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createPaymentLocked(p)
}

func (m *Memory) createPaymentLocked(p *engine.Payment) error {
	if _, ok := m.loans[p.LoanID]; !ok {
		return engine.ErrLoanNotFound
	}
	if p.IdempotencyKey != "" && m.idempotency[p.IdempotencyKey] {
		return engine.ErrDuplicateIdempotencyKey
	}
	m.nextPaymentID++
	p.ID = m.nextPaymentID
	m.payments[p.ID] = *p
	if p.IdempotencyKey != "" {
		m.idempotency[p.IdempotencyKey] = true
	}
	return nil
}

func (m *Memory) GetPayment(_ context.Context, id int64) (*engine.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.payments[id]
	if !ok {
		return nil, engine.ErrPaymentNotFound
	}
	return &p, nil
}

func (m *Memory) PaymentsByLoan(_ context.Context, loanID int64) ([]engine.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.paymentsByLoanLocked(loanID)
}

func (m *Memory) paymentsByLoanLocked(loanID int64) ([]engine.Payment, error) {
	var out []engine.Payment
	for _, p := range m.payments {
		if p.LoanID == loanID {
			out = append(out, p)
		}
	}
	sortPayments(out)
	return out, nil
}

func (m *Memory) PaymentsByLoans(_ context.Context, loanIDs []int64) (map[int64][]engine.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	want := make(map[int64]bool, len(loanIDs))
	for _, id := range loanIDs {
		want[id] = true
	}
	out := make(map[int64][]engine.Payment)
	for _, p := range m.payments {
		if want[p.LoanID] {
			out[p.LoanID] = append(out[p.LoanID], p)
		}
	}
	for _, ps := range out {
		sortPayments(ps)
	}
	return out, nil
}

// sortPayments orders by date, then insertion order for same-day payments.
func sortPayments(ps []engine.Payment) {
	sort.SliceStable(ps, func(i, j int) bool {
		if !ps[i].Date.Equal(ps[j].Date) {
			return ps[i].Date.Before(ps[j].Date)
		}
		return ps[i].ID < ps[j].ID
	})
}

// -----------------------------------------------------------------------------
// Audit log
// -----------------------------------------------------------------------------

func (m *Memory) Append(_ context.Context, entry book.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audit = append(m.audit, entry)
	return nil
}

func (m *Memory) ByLoan(_ context.Context, loanID int64) ([]book.AuditEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []book.AuditEntry
	for _, e := range m.audit {
		if e.LoanID == loanID {
			out = append(out, e)
		}
	}
	return out, nil
}

// -----------------------------------------------------------------------------
// Reset
// -----------------------------------------------------------------------------

// Reset drops all stored data. Used by the demo scenario endpoints.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers = make(map[int64]engine.Customer)
	m.loans = make(map[int64]engine.Loan)
	m.payments = make(map[int64]engine.Payment)
	m.idempotency = make(map[string]bool)
	m.nextCustomerID = 0
	m.nextLoanID = 0
	m.nextPaymentID = 0
	m.audit = nil
	return nil
}

// =============================================================================
// TRANSACTIONAL MEMORY STORE
// =============================================================================

// TxMemory wraps Memory with transaction support.
type TxMemory struct {
	*Memory
}

func NewTxMemory() *TxMemory {
	return &TxMemory{Memory: NewMemory()}
}

// WithTx executes fn within a transaction.
// For memory store, this is simulated with a snapshot + rollback on error.
func (tm *TxMemory) WithTx(ctx context.Context, fn func(book.Store) error) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	snapshot := tm.snapshot()

	if err := fn(&txMemoryView{parent: tm}); err != nil {
		tm.restore(snapshot)
		return err
	}
	return nil
}

func (tm *TxMemory) snapshot() memorySnapshot {
	s := memorySnapshot{
		customers:      make(map[int64]engine.Customer, len(tm.customers)),
		loans:          make(map[int64]engine.Loan, len(tm.loans)),
		payments:       make(map[int64]engine.Payment, len(tm.payments)),
		idempotency:    make(map[string]bool, len(tm.idempotency)),
		nextCustomerID: tm.nextCustomerID,
		nextLoanID:     tm.nextLoanID,
		nextPaymentID:  tm.nextPaymentID,
	}
	for k, v := range tm.customers {
		s.customers[k] = v
	}
	for k, v := range tm.loans {
		s.loans[k] = v
	}
	for k, v := range tm.payments {
		s.payments[k] = v
	}
	for k, v := range tm.idempotency {
		s.idempotency[k] = v
	}
	return s
}

func (tm *TxMemory) restore(s memorySnapshot) {
	tm.customers = s.customers
	tm.loans = s.loans
	tm.payments = s.payments
	tm.idempotency = s.idempotency
	tm.nextCustomerID = s.nextCustomerID
	tm.nextLoanID = s.nextLoanID
	tm.nextPaymentID = s.nextPaymentID
}

type memorySnapshot struct {
	customers   map[int64]engine.Customer
	loans       map[int64]engine.Loan
	payments    map[int64]engine.Payment
	idempotency map[string]bool

	nextCustomerID int64
	nextLoanID     int64
	nextPaymentID  int64
}

// txMemoryView routes Store calls back to the parent without re-locking; the
// parent's mutex is held for the whole transaction.
type txMemoryView struct {
	parent *TxMemory
}

func (tv *txMemoryView) CreateCustomer(_ context.Context, c *engine.Customer) error {
	return tv.parent.createCustomerLocked(c)
}

func (tv *txMemoryView) GetCustomer(_ context.Context, id int64) (*engine.Customer, error) {
	return tv.parent.getCustomerLocked(id)
}

func (tv *txMemoryView) UpdateCustomer(_ context.Context, c *engine.Customer) error {
	return tv.parent.updateCustomerLocked(c)
}

func (tv *txMemoryView) ListCustomers(_ context.Context) ([]engine.Customer, error) {
	return tv.parent.listCustomersLocked()
}

func (tv *txMemoryView) CreateLoan(_ context.Context, l *engine.Loan) error {
	return tv.parent.createLoanLocked(l)
}

func (tv *txMemoryView) GetLoan(_ context.Context, id int64) (*engine.Loan, error) {
	return tv.parent.getLoanLocked(id)
}

func (tv *txMemoryView) UpdateLoan(_ context.Context, l *engine.Loan) error {
	return tv.parent.updateLoanLocked(l)
}

func (tv *txMemoryView) ListLoans(_ context.Context) ([]engine.Loan, error) {
	return tv.parent.listLoansLocked()
}

func (tv *txMemoryView) LoansByCustomer(_ context.Context, customerID int64) ([]engine.Loan, error) {
	return tv.parent.loansByCustomerLocked(customerID)
}

func (tv *txMemoryView) CreatePayment(_ context.Context, p *engine.Payment) error {
	return tv.parent.createPaymentLocked(p)
}

func (tv *txMemoryView) GetPayment(_ context.Context, id int64) (*engine.Payment, error) {
	p, ok := tv.parent.payments[id]
	if !ok {
		return nil, engine.ErrPaymentNotFound
	}
	return &p, nil
}

func (tv *txMemoryView) PaymentsByLoan(_ context.Context, loanID int64) ([]engine.Payment, error) {
	return tv.parent.paymentsByLoanLocked(loanID)
}

func (tv *txMemoryView) PaymentsByLoans(_ context.Context, loanIDs []int64) (map[int64][]engine.Payment, error) {
	out := make(map[int64][]engine.Payment)
	for _, id := range loanIDs {
		ps, _ := tv.parent.paymentsByLoanLocked(id)
		if len(ps) > 0 {
			out[id] = ps
		}
	}
	return out, nil
}
