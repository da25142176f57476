/*
store.go - Persistence interfaces for the loan book

PURPOSE:
  Defines the boundary between the service layer and the database. The
  engine itself never sees these interfaces - it works on plain values
  loaded through them.

IMMUTABILITY CONTRACT:
  Payments are append-only: CreatePayment is the only write, there is no
  update or delete. Corrections happen by recording further payments.
  Loans are mutable (status, visibility, promise, terms) but every
  mutation to one loan must be serialized by the implementation.

ATOMICITY:
  WithTx() gives the renewal workflow all-or-nothing semantics: either
  the interest payment, the optional adjustment, the old loan's close-out
  and the successor loan all land, or none do.

IMPLEMENTATIONS:
  - store/sqlite:    production SQLite store
  - book/store:      in-memory store for tests and development
*/
package book

import (
	"context"
	"time"

	"github.com/argsoja/loanbook/engine"
)

// =============================================================================
// STORE - Record persistence
// =============================================================================

// Store persists customers, loans and payments. Create methods assign the
// record's ID. Missing records surface as the engine's not-found sentinels.
type Store interface {
	CreateCustomer(ctx context.Context, c *engine.Customer) error
	GetCustomer(ctx context.Context, id int64) (*engine.Customer, error)
	UpdateCustomer(ctx context.Context, c *engine.Customer) error
	ListCustomers(ctx context.Context) ([]engine.Customer, error)

	CreateLoan(ctx context.Context, l *engine.Loan) error
	GetLoan(ctx context.Context, id int64) (*engine.Loan, error)
	UpdateLoan(ctx context.Context, l *engine.Loan) error
	ListLoans(ctx context.Context) ([]engine.Loan, error)
	LoansByCustomer(ctx context.Context, customerID int64) ([]engine.Loan, error)

	// CreatePayment is the ONLY payment write. Rejects a duplicate
	// idempotency key with engine.ErrDuplicateIdempotencyKey.
	CreatePayment(ctx context.Context, p *engine.Payment) error
	GetPayment(ctx context.Context, id int64) (*engine.Payment, error)
	PaymentsByLoan(ctx context.Context, loanID int64) ([]engine.Payment, error)

	// PaymentsByLoans loads payment histories for many loans at once,
	// keyed by loan ID. Used by portfolio aggregation.
	PaymentsByLoans(ctx context.Context, loanIDs []int64) (map[int64][]engine.Payment, error)
}

// TxStore wraps Store with transaction support. If fn returns an error the
// transaction rolls back; otherwise it commits.
type TxStore interface {
	Store

	WithTx(ctx context.Context, fn func(Store) error) error
}

// =============================================================================
// AUDIT LOG - Append-only, write-only side channel
// =============================================================================

// AuditEntry records what happened to a loan. The engine never reads these.
type AuditEntry struct {
	ID     string
	LoanID int64
	Action string
	Info   string
	At     time.Time
}

const (
	AuditCreateLoan    = "create"
	AuditUpdateLoan    = "update"
	AuditRecordPayment = "payment"
	AuditSetPromise    = "promise"
	AuditSetVisibility = "visibility"
	AuditSetPriority   = "priority"
	AuditRenew         = "renew"
)

// AuditLog is append-only. ByLoan exists for operator inspection only.
type AuditLog interface {
	Append(ctx context.Context, entry AuditEntry) error
	ByLoan(ctx context.Context, loanID int64) ([]AuditEntry, error)
}
