/*
errors.go - Centralized error types for the loan book

PURPOSE:
  All sentinel errors in one place. Layers above wrap these with
  fmt.Errorf("...: %w", err) and callers branch with errors.Is().

NOTE:
  The pure computations in this package never return errors: invalid loan
  parameters degrade to empty schedules and zero totals by design. These
  errors exist for the service and persistence layers built on top.
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrCustomerNotFound is returned when a referenced customer doesn't exist.
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrLoanNotFound is returned when a referenced loan doesn't exist.
	ErrLoanNotFound = errors.New("loan not found")

	// ErrPaymentNotFound is returned when a referenced payment doesn't exist.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrNegativeAmount is returned when a monetary input is negative.
	ErrNegativeAmount = errors.New("amount must not be negative")

	// ErrInvalidTerm is returned when a loan is created with a non-positive
	// term. Existing stored loans with bad terms degrade to empty schedules
	// instead.
	ErrInvalidTerm = errors.New("term must be at least one month")

	// ErrNoEligibleLoan is returned when a renewal targets a loan that is
	// already renewed, hidden, or missing. The workflow does not self-heal.
	ErrNoEligibleLoan = errors.New("no eligible loan to renew")

	// ErrActiveLoanExists is returned when originating a loan for a customer
	// who already carries an active, visible, unpaid one. Close, hide or
	// renew the existing loan first.
	ErrActiveLoanExists = errors.New("customer already has an active loan")

	// ErrDuplicateIdempotencyKey is returned when a synthetic payment with
	// the same idempotency key was already recorded. Expected on retries.
	ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// RenewalError explains why a loan cannot be renewed.
type RenewalError struct {
	LoanID int64
	Reason string
}

func (e *RenewalError) Error() string {
	return fmt.Sprintf("loan %d cannot be renewed: %s", e.LoanID, e.Reason)
}

func (e *RenewalError) Unwrap() error { return ErrNoEligibleLoan }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound reports whether the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrLoanNotFound) ||
		errors.Is(err, ErrPaymentNotFound)
}

// IsClientError reports whether the error is due to invalid caller input
// rather than an internal failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNegativeAmount) ||
		errors.Is(err, ErrInvalidTerm) ||
		errors.Is(err, ErrNoEligibleLoan) ||
		errors.Is(err, ErrActiveLoanExists) ||
		errors.Is(err, ErrDuplicateIdempotencyKey)
}
