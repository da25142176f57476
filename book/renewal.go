package book

import (
	"context"
	"fmt"

	"github.com/argsoja/loanbook/engine"
	"github.com/google/uuid"
)

// RenewalResult reports what a renewal did: the loan that was closed, the
// successor that replaces it, and the synthetic payments written to settle
// the old position.
type RenewalResult struct {
	Closed    *engine.Loan
	Successor *engine.Loan

	InterestPayment   *engine.Payment
	AdjustmentPayment *engine.Payment // nil when nothing was left to settle
}

// Renew closes a loan by collecting its monthly interest and reopening the
// same terms as a fresh loan starting today.
//
// Inside one transaction, in order:
//
//  1. an interest-only payment for one month of interest on the principal;
//  2. if closeWithAdjustment, a renewal-adjustment payment for whatever
//     balance remains after the interest payment, so the old loan reads as
//     fully settled (adjustments never count toward paid-to-date);
//  3. the old loan is marked renewed and hidden from working views;
//  4. a successor loan is created with the same principal, rate, term and
//     cadence, starting today.
//
// Any failure rolls the whole thing back: no renewed-but-no-successor or
// paid-but-still-active states can be observed.
func (s *Service) Renew(ctx context.Context, loanID int64, closeWithAdjustment bool) (*RenewalResult, error) {
	today := s.today()
	res := &RenewalResult{}

	err := s.Store.WithTx(ctx, func(tx Store) error {
		l, err := tx.GetLoan(ctx, loanID)
		if err != nil {
			if engine.IsNotFound(err) {
				return &engine.RenewalError{LoanID: loanID, Reason: "loan not found"}
			}
			return err
		}
		if l.Status == engine.StatusRenewed {
			return &engine.RenewalError{LoanID: loanID, Reason: "already renewed"}
		}
		if !l.Visible {
			return &engine.RenewalError{LoanID: loanID, Reason: "loan is hidden"}
		}

		interest := engine.MonthlyInterestDue(*l)
		intPay := &engine.Payment{
			LoanID:         l.ID,
			CustomerID:     l.CustomerID,
			Date:           today,
			Amount:         interest,
			Method:         engine.MethodInterestOnly,
			IdempotencyKey: uuid.NewString(),
			Note:           fmt.Sprintf("renewal interest on loan %d", l.ID),
		}
		if err := tx.CreatePayment(ctx, intPay); err != nil {
			return err
		}
		res.InterestPayment = intPay

		if closeWithAdjustment {
			pays, err := tx.PaymentsByLoan(ctx, l.ID)
			if err != nil {
				return err
			}
			totals := engine.ComputeTotals(*l, pays)
			if totals.Balance.IsPositive() {
				adjPay := &engine.Payment{
					LoanID:         l.ID,
					CustomerID:     l.CustomerID,
					Date:           today,
					Amount:         totals.Balance,
					Method:         engine.MethodAdjustment,
					IdempotencyKey: uuid.NewString(),
					Note:           fmt.Sprintf("renewal adjustment on loan %d", l.ID),
				}
				if err := tx.CreatePayment(ctx, adjPay); err != nil {
					return err
				}
				res.AdjustmentPayment = adjPay
			}
		}

		l.Status = engine.StatusRenewed
		l.Visible = false
		if err := tx.UpdateLoan(ctx, l); err != nil {
			return err
		}
		res.Closed = l

		next := &engine.Loan{
			CustomerID:  l.CustomerID,
			Principal:   l.Principal,
			MonthlyRate: l.MonthlyRate,
			TermMonths:  l.TermMonths,
			Frequency:   l.Frequency,
			StartDate:   today,
			Collector:   l.Collector,
			Status:      engine.StatusActive,
			Visible:     true,
			Notes:       fmt.Sprintf("renewal of loan %d", l.ID),
		}
		next.RecomputeNumPeriods()
		if err := tx.CreateLoan(ctx, next); err != nil {
			return err
		}
		res.Successor = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, res.Closed.ID, AuditRenew,
		fmt.Sprintf("renewed into loan %d, interest %s", res.Successor.ID, res.InterestPayment.Amount))
	s.audit(ctx, res.Successor.ID, AuditCreateLoan,
		fmt.Sprintf("created by renewal of loan %d", res.Closed.ID))
	return res, nil
}
