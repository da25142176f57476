/*
handlers.go - HTTP API handlers for the loan book

PURPOSE:
  Exposes the loan engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the book.Service for everything
  else.

ENDPOINTS:
  Customers:
    GET    /api/customers               List all customers
    POST   /api/customers               Create customer
    GET    /api/customers/{id}          Get customer details
    PUT    /api/customers/{id}          Update customer
    GET    /api/customers/{id}/loans    Customer's active loans

  Loans:
    POST   /api/loans                   Originate a loan
    GET    /api/loans/{id}              Get loan details
    PUT    /api/loans/{id}              Edit loan terms
    GET    /api/loans/{id}/schedule     Derived installment schedule
    GET    /api/loans/{id}/totals       Paid/due/balance position
    GET    /api/loans/{id}/delinquency  Overdue amount and days late
    GET    /api/loans/{id}/state        Classification
    GET    /api/loans/{id}/statement    Account statement document
    PUT    /api/loans/{id}/promise      Set/clear promise to pay
    PUT    /api/loans/{id}/visibility   Show/hide in the portfolio
    PUT    /api/loans/{id}/priority     Set/clear priority override
    GET    /api/loans/{id}/payments     Payment history
    POST   /api/loans/{id}/payments     Record a payment
    POST   /api/loans/{id}/renew        Renewal workflow

  Payments:
    GET    /api/payments/{id}/receipt   Payment receipt document

  Portfolio:
    GET    /api/portfolio               Ranked rows + dashboard aggregates

  Scenarios:
    GET    /api/scenarios               List demo scenarios
    POST   /api/scenarios/load          Load a demo scenario
    POST   /api/scenarios/reset         Wipe the database

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Renewal conflicts, duplicate idempotency keys
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/argsoja/loanbook/book"
	"github.com/argsoja/loanbook/engine"
	"github.com/argsoja/loanbook/receipt"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *book.Service

	// Reset wipes all stored data; nil disables the scenario endpoints
	// that need it.
	Reset func(ctx context.Context) error

	// UpcomingDays is the server default for the due-soon window when a
	// request does not pass ?upcoming_days. Zero falls through to the
	// engine default.
	UpcomingDays int

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler over the service.
func NewHandler(svc *book.Service) *Handler {
	return &Handler{Service: svc}
}

// =============================================================================
// CUSTOMER HANDLERS
// =============================================================================

// ListCustomers returns all customers.
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.Service.ListCustomers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list customers", err)
		return
	}

	dtos := make([]CustomerDTO, len(customers))
	for i, c := range customers {
		dtos[i] = toCustomerDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateCustomer creates a new customer.
func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}

	c := engine.Customer{
		Name:         req.Name,
		Document:     req.Document,
		Phone:        req.Phone,
		Address:      req.Address,
		Zone:         req.Zone,
		Neighborhood: req.Neighborhood,
		Notes:        req.Notes,
	}
	if err := h.Service.CreateCustomer(r.Context(), &c); err != nil {
		writeDomainError(w, "Failed to create customer", err)
		return
	}
	writeJSON(w, http.StatusCreated, toCustomerDTO(c))
}

// GetCustomer returns a single customer.
func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	c, err := h.Service.GetCustomer(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get customer", err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerDTO(*c))
}

// UpdateCustomer updates a customer's attributes.
func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req CustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	c := engine.Customer{
		ID:           id,
		Name:         req.Name,
		Document:     req.Document,
		Phone:        req.Phone,
		Address:      req.Address,
		Zone:         req.Zone,
		Neighborhood: req.Neighborhood,
		Notes:        req.Notes,
	}
	if err := h.Service.UpdateCustomer(r.Context(), &c); err != nil {
		writeDomainError(w, "Failed to update customer", err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerDTO(c))
}

// CustomerLoans returns the customer's active loans, newest first.
func (h *Handler) CustomerLoans(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	loans, err := h.Service.ActiveLoansForCustomer(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to list customer loans", err)
		return
	}

	dtos := make([]LoanDTO, len(loans))
	for i, l := range loans {
		dtos[i] = toLoanDTO(l)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// LOAN HANDLERS
// =============================================================================

// CreateLoan originates a new loan.
func (h *Handler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req CreateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	principal, err := engine.ParseMoney(req.Principal)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid principal", err)
		return
	}
	rate, err := engine.ParseMoney(req.MonthlyRate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid monthly_rate", err)
		return
	}

	// One live loan per customer: origination is blocked while an active,
	// visible, unpaid loan exists. Renewal closes the old loan first, so
	// successors never hit this check.
	busy, err := h.Service.HasActiveVisibleLoan(r.Context(), req.CustomerID)
	if err != nil {
		writeDomainError(w, "Failed to check active loans", err)
		return
	}
	if busy {
		writeError(w, http.StatusConflict,
			"Customer already has an active loan; close, hide or renew it first", engine.ErrActiveLoanExists)
		return
	}

	l := engine.Loan{
		CustomerID:  req.CustomerID,
		Principal:   principal,
		MonthlyRate: rate,
		TermMonths:  req.TermMonths,
		Frequency:   engine.Frequency(req.Frequency),
		Collector:   req.Collector,
		Notes:       req.Notes,
	}
	if req.StartDate != "" {
		d, err := engine.ParseDate(req.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start_date (use YYYY-MM-DD)", err)
			return
		}
		l.StartDate = d
	}

	if err := h.Service.CreateLoan(r.Context(), &l); err != nil {
		writeDomainError(w, "Failed to create loan", err)
		return
	}
	writeJSON(w, http.StatusCreated, toLoanDTO(l))
}

// GetLoan returns a single loan.
func (h *Handler) GetLoan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	l, err := h.Service.GetLoan(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get loan", err)
		return
	}
	writeJSON(w, http.StatusOK, toLoanDTO(*l))
}

// UpdateLoan edits a loan's financial terms.
func (h *Handler) UpdateLoan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var start engine.Date
	if req.StartDate != "" {
		d, err := engine.ParseDate(req.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start_date (use YYYY-MM-DD)", err)
			return
		}
		start = d
	}

	l, err := h.Service.UpdateLoanTerms(r.Context(), id,
		req.Principal, req.MonthlyRate, req.TermMonths, engine.Frequency(req.Frequency), start)
	if err != nil {
		writeDomainError(w, "Failed to update loan", err)
		return
	}
	writeJSON(w, http.StatusOK, toLoanDTO(*l))
}

// LoanSchedule returns the loan's derived installment schedule.
func (h *Handler) LoanSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	schedule, err := h.Service.LoanSchedule(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to build schedule", err)
		return
	}
	writeJSON(w, http.StatusOK, toInstallmentDTOs(schedule))
}

// LoanTotals returns the loan's financial position.
func (h *Handler) LoanTotals(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	totals, err := h.Service.LoanTotals(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to compute totals", err)
		return
	}
	writeJSON(w, http.StatusOK, toTotalsDTO(totals))
}

// LoanDelinquency returns the loan's overdue position.
func (h *Handler) LoanDelinquency(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	d, err := h.Service.LoanDelinquency(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to analyze delinquency", err)
		return
	}
	writeJSON(w, http.StatusOK, toDelinquencyDTO(d))
}

// LoanState returns the loan's classification. The due-soon window can be
// widened with ?upcoming_days=N.
func (h *Handler) LoanState(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	upcoming := queryInt(r, "upcoming_days", h.UpcomingDays)
	state, err := h.Service.LoanState(r.Context(), id, upcoming)
	if err != nil {
		writeDomainError(w, "Failed to classify loan", err)
		return
	}
	writeJSON(w, http.StatusOK, StateDTO{State: string(state)})
}

// SetPromise sets or clears the loan's promise-to-pay date.
func (h *Handler) SetPromise(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req PromiseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var promise *engine.Date
	if req.Date != "" {
		d, err := engine.ParseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
			return
		}
		promise = &d
	}

	if err := h.Service.SetPromiseToPay(r.Context(), id, promise); err != nil {
		writeDomainError(w, "Failed to set promise", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// SetVisibility shows or hides a loan in the working portfolio.
func (h *Handler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req VisibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.Service.SetVisibility(r.Context(), id, req.Visible); err != nil {
		writeDomainError(w, "Failed to set visibility", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// SetPriority sets or clears the loan's manual priority override.
func (h *Handler) SetPriority(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req PriorityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	switch engine.Priority(req.Priority) {
	case "", engine.PriorityHigh, engine.PriorityMedium, engine.PriorityLow:
	default:
		writeError(w, http.StatusBadRequest, "Invalid priority (use high/medium/low or empty)", nil)
		return
	}

	if err := h.Service.SetPriorityOverride(r.Context(), id, engine.Priority(req.Priority)); err != nil {
		writeDomainError(w, "Failed to set priority", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// =============================================================================
// PAYMENT HANDLERS
// =============================================================================

// ListPayments returns a loan's payment history.
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	// Loan existence first, so a bad ID is a 404 and not an empty list.
	if _, err := h.Service.GetLoan(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to get loan", err)
		return
	}

	pays, err := h.Service.PaymentsByLoan(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to list payments", err)
		return
	}

	dtos := make([]PaymentDTO, len(pays))
	for i, p := range pays {
		dtos[i] = toPaymentDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreatePayment records a payment against a loan.
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	amount, err := engine.ParseMoney(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}

	p := engine.Payment{
		LoanID:         id,
		Amount:         amount,
		Method:         engine.PaymentMethod(req.Method),
		Note:           req.Note,
		IdempotencyKey: req.IdempotencyKey,
	}
	if req.Date != "" {
		d, err := engine.ParseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
			return
		}
		p.Date = d
	}

	if err := h.Service.RecordPayment(r.Context(), &p); err != nil {
		writeDomainError(w, "Failed to record payment", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPaymentDTO(p))
}

// Renew runs the renewal workflow on a loan.
func (h *Handler) Renew(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req RenewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	res, err := h.Service.Renew(r.Context(), id, req.CloseWithAdjustment)
	if err != nil {
		writeDomainError(w, "Failed to renew loan", err)
		return
	}

	resp := RenewResponse{
		ClosedLoan:      toLoanDTO(*res.Closed),
		NewLoan:         toLoanDTO(*res.Successor),
		InterestPayment: toPaymentDTO(*res.InterestPayment),
	}
	if res.AdjustmentPayment != nil {
		adj := toPaymentDTO(*res.AdjustmentPayment)
		resp.AdjustmentPayment = &adj
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// DOCUMENT HANDLERS
// =============================================================================

// PaymentReceipt returns the receipt document for a payment.
func (h *Handler) PaymentReceipt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	ctx := r.Context()

	p, err := h.Service.GetPayment(ctx, id)
	if err != nil {
		writeDomainError(w, "Failed to get payment", err)
		return
	}
	l, err := h.Service.GetLoan(ctx, p.LoanID)
	if err != nil {
		writeDomainError(w, "Failed to get loan", err)
		return
	}
	c, err := h.Service.GetCustomer(ctx, l.CustomerID)
	if err != nil {
		writeDomainError(w, "Failed to get customer", err)
		return
	}

	doc := receipt.PaymentReceipt(*p, *l, *c)
	writeDocument(w, doc)
}

// LoanStatement returns the account statement document for a loan.
func (h *Handler) LoanStatement(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	ctx := r.Context()

	l, err := h.Service.GetLoan(ctx, id)
	if err != nil {
		writeDomainError(w, "Failed to get loan", err)
		return
	}
	c, err := h.Service.GetCustomer(ctx, l.CustomerID)
	if err != nil {
		writeDomainError(w, "Failed to get customer", err)
		return
	}
	totals, err := h.Service.LoanTotals(ctx, id)
	if err != nil {
		writeDomainError(w, "Failed to compute totals", err)
		return
	}

	doc := receipt.Statement(*l, *c, engine.BuildSchedule(*l), totals)
	writeDocument(w, doc)
}

// writeDocument serializes a rendered document. A render failure is logged
// and the structured lines are returned anyway: documents are a side
// effect, never the operation itself.
func writeDocument(w http.ResponseWriter, doc receipt.Document) {
	dto := DocumentDTO{Title: doc.Title, Lines: doc.Lines}
	if text, err := doc.Render(); err != nil {
		log.Printf("document render failed: %v", err)
	} else {
		dto.Text = text
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// PORTFOLIO HANDLER
// =============================================================================

// Portfolio returns the ranked collections worklist and dashboard
// aggregates. Query params: include_paid, exclude_renewed, only_visible,
// upcoming_days.
func (h *Handler) Portfolio(w http.ResponseWriter, r *http.Request) {
	f := engine.Filter{
		IncludePaid:    queryBool(r, "include_paid"),
		ExcludeRenewed: queryBool(r, "exclude_renewed"),
		OnlyVisible:    queryBool(r, "only_visible"),
		UpcomingDays:   queryInt(r, "upcoming_days", h.UpcomingDays),
	}

	rows, agg, err := h.Service.PortfolioStats(r.Context(), f)
	if err != nil {
		writeDomainError(w, "Failed to compute portfolio stats", err)
		return
	}
	writeJSON(w, http.StatusOK, toPortfolioDTO(rows, agg))
}

// =============================================================================
// HELPERS
// =============================================================================

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid "+name, err)
		return 0, false
	}
	return id, true
}

func queryBool(r *http.Request, name string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return v
}

func queryInt(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps service errors to HTTP statuses.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case engine.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, engine.ErrNoEligibleLoan),
		errors.Is(err, engine.ErrDuplicateIdempotencyKey),
		errors.Is(err, engine.ErrActiveLoanExists):
		writeError(w, http.StatusConflict, message, err)
	case engine.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
