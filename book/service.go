/*
Package book binds the pure loan engine to persistence.

PURPOSE:
  The Service is what the HTTP layer (and any other collaborator) talks
  to: it loads records, runs the engine's pure computations over them, and
  serializes every mutation. The engine package stays free of I/O; this
  package stays free of arithmetic.

CLOCK:
  Today's date is injected (Now func) so delinquency and classification
  are deterministic under test. Production wiring uses engine.Today.

AUDIT:
  Every mutation appends an audit entry. The audit log is a best-effort
  side channel: an append failure is logged by the implementation but
  never fails the operation that triggered it.
*/
package book

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/argsoja/loanbook/engine"
	"github.com/google/uuid"
)

// Service exposes the loan book's operations.
type Service struct {
	Store TxStore
	Audit AuditLog

	// Now supplies today's date; defaults to engine.Today.
	Now func() engine.Date
}

func NewService(store TxStore, audit AuditLog) *Service {
	return &Service{
		Store: store,
		Audit: audit,
		Now:   engine.Today,
	}
}

func (s *Service) today() engine.Date {
	if s.Now != nil {
		return s.Now()
	}
	return engine.Today()
}

// audit appends a best-effort audit entry. Failures are swallowed: the audit
// log is a side channel, never a reason to fail the operation.
func (s *Service) audit(ctx context.Context, loanID int64, action, info string) {
	if s.Audit == nil {
		return
	}
	_ = s.Audit.Append(ctx, AuditEntry{
		ID:     uuid.NewString(),
		LoanID: loanID,
		Action: action,
		Info:   info,
		At:     time.Now().UTC(),
	})
}

// =============================================================================
// CUSTOMERS
// =============================================================================

func (s *Service) CreateCustomer(ctx context.Context, c *engine.Customer) error {
	return s.Store.CreateCustomer(ctx, c)
}

func (s *Service) GetCustomer(ctx context.Context, id int64) (*engine.Customer, error) {
	return s.Store.GetCustomer(ctx, id)
}

func (s *Service) UpdateCustomer(ctx context.Context, c *engine.Customer) error {
	return s.Store.UpdateCustomer(ctx, c)
}

func (s *Service) ListCustomers(ctx context.Context) ([]engine.Customer, error) {
	return s.Store.ListCustomers(ctx)
}

// =============================================================================
// LOANS
// =============================================================================

// CreateLoan validates the terms, restores the NumPeriods invariant and
// persists the loan as active and visible.
func (s *Service) CreateLoan(ctx context.Context, l *engine.Loan) error {
	if l.Principal.IsNegative() {
		return fmt.Errorf("principal: %w", engine.ErrNegativeAmount)
	}
	if l.MonthlyRate.IsNegative() {
		return fmt.Errorf("monthly rate: %w", engine.ErrNegativeAmount)
	}
	if l.TermMonths < 1 {
		return engine.ErrInvalidTerm
	}
	if _, err := s.Store.GetCustomer(ctx, l.CustomerID); err != nil {
		return err
	}

	if l.StartDate.IsZero() {
		l.StartDate = s.today()
	}
	l.Status = engine.StatusActive
	l.Visible = true
	l.RecomputeNumPeriods()

	if err := s.Store.CreateLoan(ctx, l); err != nil {
		return err
	}
	s.audit(ctx, l.ID, AuditCreateLoan, fmt.Sprintf("principal %s at %s for %d month(s), %s",
		l.Principal, l.MonthlyRate, l.TermMonths, l.Frequency))
	return nil
}

func (s *Service) GetLoan(ctx context.Context, id int64) (*engine.Loan, error) {
	return s.Store.GetLoan(ctx, id)
}

func (s *Service) ListLoans(ctx context.Context) ([]engine.Loan, error) {
	return s.Store.ListLoans(ctx)
}

// UpdateLoanTerms edits a loan's financial terms, recomputing NumPeriods.
// The recomputed schedule takes effect immediately since schedules are
// always derived on demand.
func (s *Service) UpdateLoanTerms(ctx context.Context, id int64, principal, monthlyRate string, termMonths int, freq engine.Frequency, start engine.Date) (*engine.Loan, error) {
	l, err := s.Store.GetLoan(ctx, id)
	if err != nil {
		return nil, err
	}

	p, err := engine.ParseMoney(principal)
	if err != nil {
		return nil, fmt.Errorf("principal: %w", err)
	}
	r, err := engine.ParseMoney(monthlyRate)
	if err != nil {
		return nil, fmt.Errorf("monthly rate: %w", err)
	}
	if p.IsNegative() || r.IsNegative() {
		return nil, engine.ErrNegativeAmount
	}
	if termMonths < 1 {
		return nil, engine.ErrInvalidTerm
	}

	l.Principal = p
	l.MonthlyRate = r
	l.TermMonths = termMonths
	l.Frequency = freq
	if !start.IsZero() {
		l.StartDate = start
	}
	l.RecomputeNumPeriods()

	if err := s.Store.UpdateLoan(ctx, l); err != nil {
		return nil, err
	}
	s.audit(ctx, l.ID, AuditUpdateLoan, "terms updated")
	return l, nil
}

func (s *Service) SetPromiseToPay(ctx context.Context, id int64, promise *engine.Date) error {
	l, err := s.Store.GetLoan(ctx, id)
	if err != nil {
		return err
	}
	l.PromiseToPay = promise
	if err := s.Store.UpdateLoan(ctx, l); err != nil {
		return err
	}
	info := "cleared"
	if promise != nil {
		info = promise.String()
	}
	s.audit(ctx, id, AuditSetPromise, info)
	return nil
}

// ClearPromiseToPay removes the loan's promise-to-pay date.
func (s *Service) ClearPromiseToPay(ctx context.Context, id int64) error {
	return s.SetPromiseToPay(ctx, id, nil)
}

func (s *Service) SetVisibility(ctx context.Context, id int64, visible bool) error {
	l, err := s.Store.GetLoan(ctx, id)
	if err != nil {
		return err
	}
	l.Visible = visible
	if err := s.Store.UpdateLoan(ctx, l); err != nil {
		return err
	}
	s.audit(ctx, id, AuditSetVisibility, fmt.Sprintf("visible=%t", visible))
	return nil
}

func (s *Service) SetPriorityOverride(ctx context.Context, id int64, p engine.Priority) error {
	l, err := s.Store.GetLoan(ctx, id)
	if err != nil {
		return err
	}
	l.PriorityOverride = p
	if err := s.Store.UpdateLoan(ctx, l); err != nil {
		return err
	}
	s.audit(ctx, id, AuditSetPriority, string(p))
	return nil
}

// ActiveLoansForCustomer returns the customer's loans that still count:
// visible, not renewed, not fully paid; newest first.
func (s *Service) ActiveLoansForCustomer(ctx context.Context, customerID int64) ([]engine.Loan, error) {
	loans, err := s.Store.LoansByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	today := s.today()

	var active []engine.Loan
	for _, l := range loans {
		if l.Status == engine.StatusRenewed || !l.Visible {
			continue
		}
		pays, err := s.Store.PaymentsByLoan(ctx, l.ID)
		if err != nil {
			return nil, err
		}
		totals := engine.ComputeTotals(l, pays)
		delinq := engine.Analyze(l, pays, today)
		if engine.Classify(l, totals, delinq, today, engine.DefaultUpcomingDays) == engine.StatePaid {
			continue
		}
		active = append(active, l)
	}

	// Newest first.
	sort.SliceStable(active, func(i, j int) bool {
		return active[j].StartDate.Before(active[i].StartDate)
	})
	return active, nil
}

// HasActiveVisibleLoan reports whether the customer already carries an
// active, visible, unpaid loan. One live loan per customer is the house
// rule for origination; close, hide or renew before opening another.
func (s *Service) HasActiveVisibleLoan(ctx context.Context, customerID int64) (bool, error) {
	active, err := s.ActiveLoansForCustomer(ctx, customerID)
	if err != nil {
		return false, err
	}
	return len(active) > 0, nil
}

// =============================================================================
// PAYMENTS
// =============================================================================

// RecordPayment persists a manual payment against a loan. The payment's
// customer is denormalized from the loan; immutable once stored.
func (s *Service) RecordPayment(ctx context.Context, p *engine.Payment) error {
	if p.Amount.IsNegative() {
		return fmt.Errorf("payment amount: %w", engine.ErrNegativeAmount)
	}
	l, err := s.Store.GetLoan(ctx, p.LoanID)
	if err != nil {
		return err
	}

	p.CustomerID = l.CustomerID
	if p.Date.IsZero() {
		p.Date = s.today()
	}
	if p.Method == "" {
		p.Method = engine.MethodCash
	}

	if err := s.Store.CreatePayment(ctx, p); err != nil {
		return err
	}
	s.audit(ctx, p.LoanID, AuditRecordPayment, fmt.Sprintf("%s via %s", p.Amount, p.Method))
	return nil
}

func (s *Service) PaymentsByLoan(ctx context.Context, loanID int64) ([]engine.Payment, error) {
	return s.Store.PaymentsByLoan(ctx, loanID)
}

func (s *Service) GetPayment(ctx context.Context, id int64) (*engine.Payment, error) {
	return s.Store.GetPayment(ctx, id)
}

// =============================================================================
// DERIVED VIEWS - Load records, run the engine
// =============================================================================

func (s *Service) LoanTotals(ctx context.Context, id int64) (engine.Totals, error) {
	l, err := s.Store.GetLoan(ctx, id)
	if err != nil {
		return engine.Totals{}, err
	}
	pays, err := s.Store.PaymentsByLoan(ctx, id)
	if err != nil {
		return engine.Totals{}, err
	}
	return engine.ComputeTotals(*l, pays), nil
}

func (s *Service) LoanSchedule(ctx context.Context, id int64) ([]engine.Installment, error) {
	l, err := s.Store.GetLoan(ctx, id)
	if err != nil {
		return nil, err
	}
	return engine.BuildSchedule(*l), nil
}

func (s *Service) LoanDelinquency(ctx context.Context, id int64) (engine.Delinquency, error) {
	l, err := s.Store.GetLoan(ctx, id)
	if err != nil {
		return engine.Delinquency{}, err
	}
	pays, err := s.Store.PaymentsByLoan(ctx, id)
	if err != nil {
		return engine.Delinquency{}, err
	}
	return engine.Analyze(*l, pays, s.today()), nil
}

// LoanState classifies one loan. upcomingDays <= 0 uses the default window.
func (s *Service) LoanState(ctx context.Context, id int64, upcomingDays int) (engine.State, error) {
	l, err := s.Store.GetLoan(ctx, id)
	if err != nil {
		return "", err
	}
	pays, err := s.Store.PaymentsByLoan(ctx, id)
	if err != nil {
		return "", err
	}
	if upcomingDays <= 0 {
		upcomingDays = engine.DefaultUpcomingDays
	}
	today := s.today()
	totals := engine.ComputeTotals(*l, pays)
	delinq := engine.Analyze(*l, pays, today)
	return engine.Classify(*l, totals, delinq, today, upcomingDays), nil
}

// PortfolioStats runs the engine's fleet aggregation over the whole book.
func (s *Service) PortfolioStats(ctx context.Context, f engine.Filter) ([]engine.Row, engine.Aggregates, error) {
	loans, err := s.Store.ListLoans(ctx)
	if err != nil {
		return nil, engine.Aggregates{}, err
	}
	customers, err := s.Store.ListCustomers(ctx)
	if err != nil {
		return nil, engine.Aggregates{}, err
	}

	ids := make([]int64, len(loans))
	for i, l := range loans {
		ids[i] = l.ID
	}
	paymentsByLoan, err := s.Store.PaymentsByLoans(ctx, ids)
	if err != nil {
		return nil, engine.Aggregates{}, err
	}

	byID := make(map[int64]engine.Customer, len(customers))
	for _, c := range customers {
		byID[c.ID] = c
	}

	rows, agg := engine.ComputeStats(loans, byID, paymentsByLoan, s.today(), f)
	return rows, agg, nil
}
