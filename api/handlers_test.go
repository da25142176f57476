/*
handlers_test.go - HTTP-level tests for the API

Tests run against the full router over the in-memory store, exercising
routing, JSON encoding and domain-error mapping together.
*/
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/argsoja/loanbook/book"
	memstore "github.com/argsoja/loanbook/book/store"
	"github.com/argsoja/loanbook/engine"
)

var apiToday = engine.NewDate(2024, time.July, 1)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	mem := memstore.NewTxMemory()
	svc := book.NewService(mem, mem.Memory)
	svc.Now = func() engine.Date { return apiToday }
	h := NewHandler(svc)
	h.Reset = mem.Reset
	return NewRouter(h)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out), "body: %s", rec.Body.String())
	return out
}

func createCustomer(t *testing.T, router http.Handler, name string) CustomerDTO {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/customers", CustomerRequest{Name: name, Zone: "Centro"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[CustomerDTO](t, rec)
}

func createLoan(t *testing.T, router http.Handler, customerID int64, principal, rate string, freq string) LoanDTO {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/loans", CreateLoanRequest{
		CustomerID:  customerID,
		Principal:   principal,
		MonthlyRate: rate,
		TermMonths:  1,
		Frequency:   freq,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[LoanDTO](t, rec)
}

// =============================================================================
// CUSTOMERS
// =============================================================================

func TestCustomerLifecycle(t *testing.T) {
	router := newTestRouter(t)

	// GIVEN: A created customer
	c := createCustomer(t, router, "Marta Diaz")
	assert.NotZero(t, c.ID)
	assert.Equal(t, "Marta Diaz", c.Name)

	// WHEN: Fetching and updating it
	rec := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/customers/%d", c.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/customers/%d", c.ID), CustomerRequest{
		Name:  "Marta Diaz",
		Phone: "300 555 0101",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// THEN: The list reflects the update
	rec = doJSON(t, router, http.MethodGet, "/api/customers", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]CustomerDTO](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "300 555 0101", list[0].Phone)
}

func TestCreateCustomer_RequiresName(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/customers", CustomerRequest{Zone: "Norte"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// LOANS AND PAYMENTS
// =============================================================================

func TestLoanLifecycle(t *testing.T) {
	router := newTestRouter(t)
	c := createCustomer(t, router, "Ana Torres")

	// GIVEN: A daily loan (900,000 at 20% for one month: 30 quotas of 36,000)
	l := createLoan(t, router, c.ID, "900000", "0.2", "daily")
	assert.Equal(t, 30, l.NumPeriods)
	assert.Equal(t, "active", l.Status)
	assert.Equal(t, apiToday.String(), l.StartDate)

	// WHEN: Recording a payment
	rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/loans/%d/payments", l.ID), CreatePaymentRequest{
		Amount: "36000",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	p := decode[PaymentDTO](t, rec)
	assert.Equal(t, c.ID, p.CustomerID)
	assert.Equal(t, "cash", p.Method)

	// THEN: Totals, schedule and state reflect it
	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/loans/%d/totals", l.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	totals := decode[TotalsDTO](t, rec)
	assert.Equal(t, "36000.00", totals.PaidToDate)
	assert.Equal(t, "1080000.00", totals.TotalDue)
	assert.Equal(t, "1044000.00", totals.Balance)

	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/loans/%d/schedule", l.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	schedule := decode[[]InstallmentDTO](t, rec)
	require.Len(t, schedule, 30)
	assert.Equal(t, "36000.00", schedule[0].Total)

	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/loans/%d/state", l.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	state := decode[StateDTO](t, rec)
	assert.Equal(t, "due_soon", state.State)

	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/loans/%d/payments", l.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	pays := decode[[]PaymentDTO](t, rec)
	require.Len(t, pays, 1)
}

func TestPaymentIdempotency(t *testing.T) {
	router := newTestRouter(t)
	c := createCustomer(t, router, "Luis Pardo")
	l := createLoan(t, router, c.ID, "500000", "0.1", "monthly")

	req := CreatePaymentRequest{Amount: "55000", IdempotencyKey: "pos-terminal-42"}

	rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/loans/%d/payments", l.ID), req)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Same key again is a conflict, not a double charge.
	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/loans/%d/payments", l.ID), req)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/loans/%d/payments", l.ID), nil)
	pays := decode[[]PaymentDTO](t, rec)
	assert.Len(t, pays, 1)
}

func TestPromiseVisibilityPriority(t *testing.T) {
	router := newTestRouter(t)
	c := createCustomer(t, router, "Rosa Quintero")
	l := createLoan(t, router, c.ID, "500000", "0.1", "monthly")

	rec := doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/loans/%d/promise", l.ID), PromiseRequest{Date: "2024-07-05"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/loans/%d/priority", l.ID), PriorityRequest{Priority: "high"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/loans/%d/priority", l.ID), PriorityRequest{Priority: "urgent"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/loans/%d", l.ID), nil)
	got := decode[LoanDTO](t, rec)
	assert.Equal(t, "2024-07-05", got.PromiseToPay)
	assert.Equal(t, "high", got.PriorityOverride)

	// Hiding drops the loan from the customer's active list.
	rec = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/loans/%d/visibility", l.ID), VisibilityRequest{Visible: false})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/customers/%d/loans", c.ID), nil)
	loans := decode[[]LoanDTO](t, rec)
	assert.Empty(t, loans)
}

func TestCreateLoanRejectsSecondActiveLoan(t *testing.T) {
	router := newTestRouter(t)
	c := createCustomer(t, router, "Elena Prada")
	l := createLoan(t, router, c.ID, "500000", "0.1", "monthly")

	// A second origination while the first loan is live is a conflict.
	rec := doJSON(t, router, http.MethodPost, "/api/loans", CreateLoanRequest{
		CustomerID:  c.ID,
		Principal:   "300000",
		MonthlyRate: "0.1",
		TermMonths:  1,
		Frequency:   "monthly",
	})
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	// Hiding the first loan frees the customer for a new one.
	rec = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/loans/%d/visibility", l.ID), VisibilityRequest{Visible: false})
	require.Equal(t, http.StatusOK, rec.Code)
	createLoan(t, router, c.ID, "300000", "0.1", "monthly")
}

// =============================================================================
// RENEWAL
// =============================================================================

func TestRenewEndpoint(t *testing.T) {
	router := newTestRouter(t)
	c := createCustomer(t, router, "Marta Diaz")
	l := createLoan(t, router, c.ID, "500000", "0.1", "monthly")

	rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/loans/%d/payments", l.ID), CreatePaymentRequest{Amount: "470000"})
	require.Equal(t, http.StatusCreated, rec.Code)

	// WHEN: Renewing with a closing adjustment
	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/loans/%d/renew", l.ID), RenewRequest{CloseWithAdjustment: true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[RenewResponse](t, rec)

	// THEN: Old loan closed, successor open, interest and adjustment recorded
	assert.Equal(t, "renewed", res.ClosedLoan.Status)
	assert.False(t, res.ClosedLoan.Visible)
	assert.Equal(t, "active", res.NewLoan.Status)
	assert.Equal(t, "500000.00", res.NewLoan.Principal)
	assert.Equal(t, "50000.00", res.InterestPayment.Amount)
	require.NotNil(t, res.AdjustmentPayment)
	assert.Equal(t, "30000.00", res.AdjustmentPayment.Amount)

	// Renewing the closed loan again is a conflict.
	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/loans/%d/renew", l.ID), RenewRequest{})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

// =============================================================================
// DOCUMENTS
// =============================================================================

func TestReceiptAndStatement(t *testing.T) {
	router := newTestRouter(t)
	c := createCustomer(t, router, "Ana Torres")
	l := createLoan(t, router, c.ID, "900000", "0.2", "daily")

	rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/loans/%d/payments", l.ID), CreatePaymentRequest{Amount: "36000"})
	require.Equal(t, http.StatusCreated, rec.Code)
	p := decode[PaymentDTO](t, rec)

	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/payments/%d/receipt", p.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	doc := decode[DocumentDTO](t, rec)
	assert.Contains(t, doc.Title, "Recibo de Pago")
	assert.NotEmpty(t, doc.Lines)
	assert.Contains(t, doc.Text, "36000.00")

	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/loans/%d/statement", l.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	doc = decode[DocumentDTO](t, rec)
	assert.Contains(t, doc.Title, "Estado de Cuenta")
	assert.Contains(t, doc.Text, "Ana Torres")
}

// =============================================================================
// PORTFOLIO
// =============================================================================

func TestPortfolioEndpoint(t *testing.T) {
	router := newTestRouter(t)
	c := createCustomer(t, router, "Ana Torres")
	createLoan(t, router, c.ID, "800000", "0.15", "monthly")

	rec := doJSON(t, router, http.MethodGet, "/api/portfolio?only_visible=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	p := decode[PortfolioDTO](t, rec)
	require.Len(t, p.Rows, 1)
	assert.Equal(t, "current", p.Rows[0].State)
	assert.Equal(t, "920000.00", p.PortfolioBalance)
	assert.Equal(t, 1, p.StateCounts["current"])
}

// =============================================================================
// ERROR MAPPING
// =============================================================================

func TestErrorMapping(t *testing.T) {
	router := newTestRouter(t)
	c := createCustomer(t, router, "Ana Torres")

	t.Run("unknown loan is 404", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/loans/999", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unknown payment is 404", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/payments/999/receipt", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("non-numeric id is 400", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/loans/abc", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("negative principal is 400", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/loans", CreateLoanRequest{
			CustomerID:  c.ID,
			Principal:   "-100",
			MonthlyRate: "0.1",
			TermMonths:  1,
			Frequency:   "monthly",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("loan for unknown customer is 404", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/loans", CreateLoanRequest{
			CustomerID:  999,
			Principal:   "100000",
			MonthlyRate: "0.1",
			TermMonths:  1,
			Frequency:   "monthly",
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("negative payment is 400", func(t *testing.T) {
		l := createLoan(t, router, c.ID, "100000", "0.1", "monthly")
		rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/loans/%d/payments", l.ID), CreatePaymentRequest{Amount: "-5"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestScenarios(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/scenarios", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]ScenarioDTO](t, rec)
	require.NotEmpty(t, list)

	// WHEN: Loading the collection-day scenario
	rec = doJSON(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "collection-day"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// THEN: The portfolio covers every working state
	rec = doJSON(t, router, http.MethodGet, "/api/portfolio?include_paid=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	p := decode[PortfolioDTO](t, rec)
	for _, state := range []string{"overdue", "promised", "due_soon", "current", "paid"} {
		assert.GreaterOrEqual(t, p.StateCounts[state], 1, "state %s missing", state)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/scenarios/current", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	current := decode[ScenarioDTO](t, rec)
	assert.Equal(t, "collection-day", current.ID)

	// Reset wipes everything and clears the current scenario.
	rec = doJSON(t, router, http.MethodPost, "/api/scenarios/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/customers", nil)
	customers := decode[[]CustomerDTO](t, rec)
	assert.Empty(t, customers)
}

func TestLoadScenario_UnknownID(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
