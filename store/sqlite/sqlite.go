/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements book.Store, book.TxStore and book.AuditLog using SQLite. In
  production, the same patterns apply to PostgreSQL - only minor SQL dialect
  differences.

APPEND-ONLY ENFORCEMENT:
  The payments table is append-only:
  - No UPDATE statements on payments
  - No DELETE statements on payments
  - Corrections via further payments only

KEY TABLES:
  customers:  Borrower records
  loans:      Loan terms; schedules are derived, never stored
  payments:   Immutable record of money received (and renewal adjustments)
  audit_logs: Trail of mutations per loan

MONEY AND DATES:
  Decimal amounts are stored as TEXT and parsed with shopspring/decimal on
  the way out, so no float ever touches a balance. Dates are stored as
  YYYY-MM-DD TEXT, which sorts correctly as a string.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/loanbook.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - book/store.go: Interface definitions
  - book/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/argsoja/loanbook/book"
	"github.com/argsoja/loanbook/engine"
	"github.com/shopspring/decimal"
)

// Store implements the storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// dbtx abstracts *sql.DB and *sql.Tx so every query helper works both
// standalone and inside WithTx. Reads inside a transaction must go through
// the *sql.Tx, or they would not see the transaction's own writes.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS customers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		document TEXT,
		phone TEXT,
		address TEXT,
		zone TEXT,
		neighborhood TEXT,
		notes TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS loans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		customer_id INTEGER NOT NULL REFERENCES customers(id),
		principal TEXT NOT NULL,
		monthly_rate TEXT NOT NULL,
		term_months INTEGER NOT NULL,
		frequency TEXT NOT NULL,
		start_date TEXT NOT NULL,
		num_periods INTEGER NOT NULL,
		collector TEXT,
		status TEXT NOT NULL DEFAULT 'active',
		visible BOOLEAN NOT NULL DEFAULT TRUE,
		promise_to_pay TEXT,
		priority_override TEXT,
		notes TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_loans_customer
		ON loans(customer_id);
	CREATE INDEX IF NOT EXISTS idx_loans_status
		ON loans(status);

	-- Payments (append-only: no UPDATE or DELETE ever issued)
	CREATE TABLE IF NOT EXISTS payments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		loan_id INTEGER NOT NULL REFERENCES loans(id),
		customer_id INTEGER NOT NULL,
		date TEXT NOT NULL,
		amount TEXT NOT NULL,
		method TEXT NOT NULL,
		note TEXT,
		idempotency_key TEXT UNIQUE,
		created_at TEXT NOT NULL
	);

	-- Hot path: loading a loan's payment history for totals/delinquency
	CREATE INDEX IF NOT EXISTS idx_payments_loan_date
		ON payments(loan_id, date);
	CREATE INDEX IF NOT EXISTS idx_payments_idempotency
		ON payments(idempotency_key) WHERE idempotency_key IS NOT NULL;

	CREATE TABLE IF NOT EXISTS audit_logs (
		id TEXT PRIMARY KEY,
		loan_id INTEGER NOT NULL,
		action TEXT NOT NULL,
		info TEXT,
		at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_audit_logs_loan
		ON audit_logs(loan_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// CUSTOMERS
// =============================================================================

func (s *Store) CreateCustomer(ctx context.Context, c *engine.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return createCustomer(ctx, s.db, c)
}

func createCustomer(ctx context.Context, db dbtx, c *engine.Customer) error {
	res, err := db.ExecContext(ctx, `
		INSERT INTO customers (name, document, phone, address, zone, neighborhood, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Name, c.Document, c.Phone, c.Address, c.Zone, c.Neighborhood, c.Notes,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert customer: %w", err)
	}
	c.ID, err = res.LastInsertId()
	return err
}

func (s *Store) GetCustomer(ctx context.Context, id int64) (*engine.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getCustomer(ctx, s.db, id)
}

func getCustomer(ctx context.Context, db dbtx, id int64) (*engine.Customer, error) {
	var c engine.Customer
	err := db.QueryRowContext(ctx, `
		SELECT id, name, document, phone, address, zone, neighborhood, notes
		FROM customers WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.Document, &c.Phone, &c.Address, &c.Zone, &c.Neighborhood, &c.Notes)
	if err == sql.ErrNoRows {
		return nil, engine.ErrCustomerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, c *engine.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateCustomer(ctx, s.db, c)
}

func updateCustomer(ctx context.Context, db dbtx, c *engine.Customer) error {
	res, err := db.ExecContext(ctx, `
		UPDATE customers
		SET name = ?, document = ?, phone = ?, address = ?, zone = ?, neighborhood = ?, notes = ?
		WHERE id = ?`,
		c.Name, c.Document, c.Phone, c.Address, c.Zone, c.Neighborhood, c.Notes, c.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return engine.ErrCustomerNotFound
	}
	return nil
}

func (s *Store) ListCustomers(ctx context.Context) ([]engine.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listCustomers(ctx, s.db)
}

func listCustomers(ctx context.Context, db dbtx) ([]engine.Customer, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, document, phone, address, zone, neighborhood, notes
		FROM customers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []engine.Customer
	for rows.Next() {
		var c engine.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Document, &c.Phone, &c.Address, &c.Zone, &c.Neighborhood, &c.Notes); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// =============================================================================
// LOANS
// =============================================================================

const loanColumns = `id, customer_id, principal, monthly_rate, term_months, frequency,
	start_date, num_periods, collector, status, visible, promise_to_pay, priority_override, notes`

func (s *Store) CreateLoan(ctx context.Context, l *engine.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return createLoan(ctx, s.db, l)
}

func createLoan(ctx context.Context, db dbtx, l *engine.Loan) error {
	var promise *string
	if l.PromiseToPay != nil {
		p := l.PromiseToPay.String()
		promise = &p
	}

	res, err := db.ExecContext(ctx, `
		INSERT INTO loans (customer_id, principal, monthly_rate, term_months, frequency,
			start_date, num_periods, collector, status, visible, promise_to_pay,
			priority_override, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.CustomerID, l.Principal.String(), l.MonthlyRate.String(), l.TermMonths, l.Frequency,
		l.StartDate.String(), l.NumPeriods, l.Collector, l.Status, l.Visible, promise,
		string(l.PriorityOverride), l.Notes,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isForeignKeyError(err) {
			return engine.ErrCustomerNotFound
		}
		return fmt.Errorf("failed to insert loan: %w", err)
	}
	l.ID, err = res.LastInsertId()
	return err
}

func (s *Store) GetLoan(ctx context.Context, id int64) (*engine.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getLoan(ctx, s.db, id)
}

func getLoan(ctx context.Context, db dbtx, id int64) (*engine.Loan, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, engine.ErrLoanNotFound
	}
	l, err := scanLoan(rows)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *Store) UpdateLoan(ctx context.Context, l *engine.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateLoan(ctx, s.db, l)
}

func updateLoan(ctx context.Context, db dbtx, l *engine.Loan) error {
	var promise *string
	if l.PromiseToPay != nil {
		p := l.PromiseToPay.String()
		promise = &p
	}

	res, err := db.ExecContext(ctx, `
		UPDATE loans
		SET principal = ?, monthly_rate = ?, term_months = ?, frequency = ?,
			start_date = ?, num_periods = ?, collector = ?, status = ?, visible = ?,
			promise_to_pay = ?, priority_override = ?, notes = ?
		WHERE id = ?`,
		l.Principal.String(), l.MonthlyRate.String(), l.TermMonths, l.Frequency,
		l.StartDate.String(), l.NumPeriods, l.Collector, l.Status, l.Visible,
		promise, string(l.PriorityOverride), l.Notes, l.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return engine.ErrLoanNotFound
	}
	return nil
}

func (s *Store) ListLoans(ctx context.Context) ([]engine.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryLoans(ctx, s.db, `SELECT `+loanColumns+` FROM loans ORDER BY id`)
}

func (s *Store) LoansByCustomer(ctx context.Context, customerID int64) ([]engine.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryLoans(ctx, s.db,
		`SELECT `+loanColumns+` FROM loans WHERE customer_id = ? ORDER BY id`, customerID)
}

func queryLoans(ctx context.Context, db dbtx, query string, args ...any) ([]engine.Loan, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query loans: %w", err)
	}
	defer rows.Close()

	var loans []engine.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, l)
	}
	return loans, rows.Err()
}

func scanLoan(rows *sql.Rows) (engine.Loan, error) {
	var (
		l                engine.Loan
		principal        string
		monthlyRate      string
		startDate        string
		promiseToPay     sql.NullString
		priorityOverride sql.NullString
		collector        sql.NullString
		notes            sql.NullString
	)

	err := rows.Scan(
		&l.ID, &l.CustomerID, &principal, &monthlyRate, &l.TermMonths, &l.Frequency,
		&startDate, &l.NumPeriods, &collector, &l.Status, &l.Visible,
		&promiseToPay, &priorityOverride, &notes,
	)
	if err != nil {
		return l, fmt.Errorf("failed to scan loan: %w", err)
	}

	l.Principal, err = decimal.NewFromString(principal)
	if err != nil {
		return l, fmt.Errorf("loan %d: bad principal %q: %w", l.ID, principal, err)
	}
	l.MonthlyRate, err = decimal.NewFromString(monthlyRate)
	if err != nil {
		return l, fmt.Errorf("loan %d: bad monthly rate %q: %w", l.ID, monthlyRate, err)
	}
	l.StartDate, err = engine.ParseDate(startDate)
	if err != nil {
		return l, fmt.Errorf("loan %d: bad start date %q: %w", l.ID, startDate, err)
	}
	if promiseToPay.Valid && promiseToPay.String != "" {
		d, err := engine.ParseDate(promiseToPay.String)
		if err != nil {
			return l, fmt.Errorf("loan %d: bad promise date %q: %w", l.ID, promiseToPay.String, err)
		}
		l.PromiseToPay = &d
	}
	l.Collector = collector.String
	l.PriorityOverride = engine.Priority(priorityOverride.String)
	l.Notes = notes.String

	return l, nil
}

// =============================================================================
// PAYMENTS (append-only)
// =============================================================================

const paymentColumns = `id, loan_id, customer_id, date, amount, method, note, idempotency_key`

func (s *Store) CreatePayment(ctx context.Context, p *engine.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return createPayment(ctx, s.db, p)
}

func createPayment(ctx context.Context, db dbtx, p *engine.Payment) error {
	res, err := db.ExecContext(ctx, `
		INSERT INTO payments (loan_id, customer_id, date, amount, method, note, idempotency_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.LoanID, p.CustomerID, p.Date.String(), p.Amount.String(), p.Method, p.Note,
		nullString(p.IdempotencyKey),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return engine.ErrDuplicateIdempotencyKey
		}
		if isForeignKeyError(err) {
			return engine.ErrLoanNotFound
		}
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	p.ID, err = res.LastInsertId()
	return err
}

func (s *Store) GetPayment(ctx context.Context, id int64) (*engine.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ps, err := queryPayments(ctx, s.db,
		`SELECT `+paymentColumns+` FROM payments WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(ps) == 0 {
		return nil, engine.ErrPaymentNotFound
	}
	return &ps[0], nil
}

func (s *Store) PaymentsByLoan(ctx context.Context, loanID int64) ([]engine.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return paymentsByLoan(ctx, s.db, loanID)
}

func paymentsByLoan(ctx context.Context, db dbtx, loanID int64) ([]engine.Payment, error) {
	return queryPayments(ctx, db,
		`SELECT `+paymentColumns+` FROM payments WHERE loan_id = ? ORDER BY date, id`, loanID)
}

func (s *Store) PaymentsByLoans(ctx context.Context, loanIDs []int64) (map[int64][]engine.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return paymentsByLoans(ctx, s.db, loanIDs)
}

func paymentsByLoans(ctx context.Context, db dbtx, loanIDs []int64) (map[int64][]engine.Payment, error) {
	out := make(map[int64][]engine.Payment)
	if len(loanIDs) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(loanIDs)), ",")
	args := make([]any, len(loanIDs))
	for i, id := range loanIDs {
		args[i] = id
	}

	ps, err := queryPayments(ctx, db,
		`SELECT `+paymentColumns+` FROM payments WHERE loan_id IN (`+placeholders+`) ORDER BY date, id`,
		args...)
	if err != nil {
		return nil, err
	}
	for _, p := range ps {
		out[p.LoanID] = append(out[p.LoanID], p)
	}
	return out, nil
}

func queryPayments(ctx context.Context, db dbtx, query string, args ...any) ([]engine.Payment, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var payments []engine.Payment
	for rows.Next() {
		var (
			p              engine.Payment
			date           string
			amount         string
			note           sql.NullString
			idempotencyKey sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.LoanID, &p.CustomerID, &date, &amount, &p.Method, &note, &idempotencyKey); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		p.Date, err = engine.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("payment %d: bad date %q: %w", p.ID, date, err)
		}
		p.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("payment %d: bad amount %q: %w", p.ID, amount, err)
		}
		p.Note = note.String
		p.IdempotencyKey = idempotencyKey.String
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// =============================================================================
// TRANSACTIONAL STORE (book.TxStore interface)
// =============================================================================

// WithTx executes a function within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(store book.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// txStore runs every operation through the open *sql.Tx so the transaction
// body reads its own writes.
type txStore struct {
	tx *sql.Tx
}

func (ts *txStore) CreateCustomer(ctx context.Context, c *engine.Customer) error {
	return createCustomer(ctx, ts.tx, c)
}

func (ts *txStore) GetCustomer(ctx context.Context, id int64) (*engine.Customer, error) {
	return getCustomer(ctx, ts.tx, id)
}

func (ts *txStore) UpdateCustomer(ctx context.Context, c *engine.Customer) error {
	return updateCustomer(ctx, ts.tx, c)
}

func (ts *txStore) ListCustomers(ctx context.Context) ([]engine.Customer, error) {
	return listCustomers(ctx, ts.tx)
}

func (ts *txStore) CreateLoan(ctx context.Context, l *engine.Loan) error {
	return createLoan(ctx, ts.tx, l)
}

func (ts *txStore) GetLoan(ctx context.Context, id int64) (*engine.Loan, error) {
	return getLoan(ctx, ts.tx, id)
}

func (ts *txStore) UpdateLoan(ctx context.Context, l *engine.Loan) error {
	return updateLoan(ctx, ts.tx, l)
}

func (ts *txStore) ListLoans(ctx context.Context) ([]engine.Loan, error) {
	return queryLoans(ctx, ts.tx, `SELECT `+loanColumns+` FROM loans ORDER BY id`)
}

func (ts *txStore) LoansByCustomer(ctx context.Context, customerID int64) ([]engine.Loan, error) {
	return queryLoans(ctx, ts.tx,
		`SELECT `+loanColumns+` FROM loans WHERE customer_id = ? ORDER BY id`, customerID)
}

func (ts *txStore) CreatePayment(ctx context.Context, p *engine.Payment) error {
	return createPayment(ctx, ts.tx, p)
}

func (ts *txStore) GetPayment(ctx context.Context, id int64) (*engine.Payment, error) {
	ps, err := queryPayments(ctx, ts.tx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(ps) == 0 {
		return nil, engine.ErrPaymentNotFound
	}
	return &ps[0], nil
}

func (ts *txStore) PaymentsByLoan(ctx context.Context, loanID int64) ([]engine.Payment, error) {
	return paymentsByLoan(ctx, ts.tx, loanID)
}

func (ts *txStore) PaymentsByLoans(ctx context.Context, loanIDs []int64) (map[int64][]engine.Payment, error) {
	return paymentsByLoans(ctx, ts.tx, loanIDs)
}

// =============================================================================
// AUDIT LOG (book.AuditLog interface)
// =============================================================================

func (s *Store) Append(ctx context.Context, entry book.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, loan_id, action, info, at)
		VALUES (?, ?, ?, ?, ?)`,
		entry.ID, entry.LoanID, entry.Action, entry.Info,
		entry.At.UTC().Format(time.RFC3339),
	)
	return err
}

func (s *Store) ByLoan(ctx context.Context, loanID int64) ([]book.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, loan_id, action, info, at
		FROM audit_logs WHERE loan_id = ? ORDER BY at`, loanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []book.AuditEntry
	for rows.Next() {
		var e book.AuditEntry
		var at string
		var info sql.NullString
		if err := rows.Scan(&e.ID, &e.LoanID, &e.Action, &info, &at); err != nil {
			return nil, err
		}
		e.Info = info.String
		e.At, _ = time.Parse(time.RFC3339, at)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"payments", "audit_logs", "loans", "customers"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
