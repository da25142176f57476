/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY ON THE WIRE:
  Amounts travel as strings ("550000.00"), never floats: the engine works
  in decimals and the API must not reintroduce float drift at the edges.
  Dates travel as YYYY-MM-DD strings.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - server.go: Router setup and middleware
*/
package api

import (
	"github.com/argsoja/loanbook/engine"
)

// =============================================================================
// CUSTOMERS
// =============================================================================

// CustomerDTO represents a customer in API responses.
type CustomerDTO struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Document     string `json:"document,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Address      string `json:"address,omitempty"`
	Zone         string `json:"zone,omitempty"`
	Neighborhood string `json:"neighborhood,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// CustomerRequest is the request to create or update a customer.
type CustomerRequest struct {
	Name         string `json:"name"`
	Document     string `json:"document"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	Zone         string `json:"zone"`
	Neighborhood string `json:"neighborhood"`
	Notes        string `json:"notes"`
}

// =============================================================================
// LOANS
// =============================================================================

// LoanDTO represents a loan in API responses.
type LoanDTO struct {
	ID               int64  `json:"id"`
	CustomerID       int64  `json:"customer_id"`
	Principal        string `json:"principal"`
	MonthlyRate      string `json:"monthly_rate"`
	TermMonths       int    `json:"term_months"`
	Frequency        string `json:"frequency"`
	StartDate        string `json:"start_date"`
	NumPeriods       int    `json:"num_periods"`
	Collector        string `json:"collector,omitempty"`
	Status           string `json:"status"`
	Visible          bool   `json:"visible"`
	PromiseToPay     string `json:"promise_to_pay,omitempty"`
	PriorityOverride string `json:"priority_override,omitempty"`
	Notes            string `json:"notes,omitempty"`
}

// CreateLoanRequest is the request to originate a loan.
type CreateLoanRequest struct {
	CustomerID  int64  `json:"customer_id"`
	Principal   string `json:"principal"`
	MonthlyRate string `json:"monthly_rate"`
	TermMonths  int    `json:"term_months"`
	Frequency   string `json:"frequency"`
	StartDate   string `json:"start_date,omitempty"`
	Collector   string `json:"collector,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// UpdateLoanRequest is the request to edit a loan's terms.
type UpdateLoanRequest struct {
	Principal   string `json:"principal"`
	MonthlyRate string `json:"monthly_rate"`
	TermMonths  int    `json:"term_months"`
	Frequency   string `json:"frequency"`
	StartDate   string `json:"start_date,omitempty"`
}

// PromiseRequest sets or clears a promise-to-pay date.
type PromiseRequest struct {
	// Date is YYYY-MM-DD; empty clears the promise.
	Date string `json:"date"`
}

// VisibilityRequest toggles a loan in or out of the working portfolio.
type VisibilityRequest struct {
	Visible bool `json:"visible"`
}

// PriorityRequest sets or clears a manual priority override.
type PriorityRequest struct {
	// Priority is high/medium/low; empty clears the override.
	Priority string `json:"priority"`
}

// RenewRequest triggers the renewal workflow.
type RenewRequest struct {
	CloseWithAdjustment bool `json:"close_with_adjustment"`
}

// RenewResponse reports the outcome of a renewal.
type RenewResponse struct {
	ClosedLoan        LoanDTO     `json:"closed_loan"`
	NewLoan           LoanDTO     `json:"new_loan"`
	InterestPayment   PaymentDTO  `json:"interest_payment"`
	AdjustmentPayment *PaymentDTO `json:"adjustment_payment,omitempty"`
}

// =============================================================================
// PAYMENTS
// =============================================================================

// PaymentDTO represents a payment in API responses.
type PaymentDTO struct {
	ID         int64  `json:"id"`
	LoanID     int64  `json:"loan_id"`
	CustomerID int64  `json:"customer_id"`
	Date       string `json:"date"`
	Amount     string `json:"amount"`
	Method     string `json:"method"`
	Note       string `json:"note,omitempty"`
}

// CreatePaymentRequest is the request to record a payment.
type CreatePaymentRequest struct {
	Amount string `json:"amount"`
	Date   string `json:"date,omitempty"`
	Method string `json:"method,omitempty"`
	Note   string `json:"note,omitempty"`
	// IdempotencyKey makes retried submissions safe; a repeated key is a 409.
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// =============================================================================
// DERIVED VIEWS
// =============================================================================

// InstallmentDTO is one row of a loan's schedule.
type InstallmentDTO struct {
	Seq                int    `json:"n"`
	DueDate            string `json:"date"`
	Total              string `json:"quota"`
	Interest           string `json:"interest"`
	Principal          string `json:"principal"`
	RemainingPrincipal string `json:"remaining_principal"`
}

// TotalsDTO is a loan's financial position.
type TotalsDTO struct {
	QuotaPerPeriod string `json:"quota_per_period"`
	PaidToDate     string `json:"paid_to_date"`
	TotalDue       string `json:"total_due"`
	Balance        string `json:"balance"`
}

// DelinquencyDTO is a loan's overdue position.
type DelinquencyDTO struct {
	OverdueAmount string `json:"overdue_amount"`
	DaysLate      int    `json:"days_late"`
	NextDueDate   string `json:"next_due_date,omitempty"`
	DaysUntilNext *int   `json:"days_until_next,omitempty"`
}

// StateDTO is a loan's classification.
type StateDTO struct {
	State string `json:"state"`
}

// PortfolioRowDTO is one loan's line in the portfolio view.
type PortfolioRowDTO struct {
	LoanID       int64  `json:"loan_id"`
	CustomerID   int64  `json:"customer_id"`
	CustomerName string `json:"customer_name"`
	State        string `json:"state"`
	Balance      string `json:"balance"`
	Overdue      string `json:"overdue"`
	DaysLate     int    `json:"days_late"`
	NextDueDate  string `json:"next_due_date,omitempty"`
	Collector    string `json:"collector,omitempty"`
	Zone         string `json:"zone,omitempty"`
	Priority     string `json:"priority"`
	Score        string `json:"score"`
}

// PortfolioDTO is the dashboard payload: ranked rows plus aggregates.
type PortfolioDTO struct {
	Rows             []PortfolioRowDTO `json:"rows"`
	PortfolioBalance string            `json:"portfolio_balance"`
	OverdueTotal     string            `json:"overdue_total"`
	CurrentTotal     string            `json:"current_total"`
	StateCounts      map[string]int    `json:"state_counts"`
	StateBalances    map[string]string `json:"state_balances"`
	AgingCounts      map[string]int    `json:"aging_counts"`
	AgingAmounts     map[string]string `json:"aging_amounts"`
}

// DocumentDTO is a rendered receipt or statement.
type DocumentDTO struct {
	Title string   `json:"title"`
	Lines []string `json:"lines"`
	Text  string   `json:"text,omitempty"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO describes a loadable demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toCustomerDTO(c engine.Customer) CustomerDTO {
	return CustomerDTO{
		ID:           c.ID,
		Name:         c.Name,
		Document:     c.Document,
		Phone:        c.Phone,
		Address:      c.Address,
		Zone:         c.Zone,
		Neighborhood: c.Neighborhood,
		Notes:        c.Notes,
	}
}

func toLoanDTO(l engine.Loan) LoanDTO {
	dto := LoanDTO{
		ID:               l.ID,
		CustomerID:       l.CustomerID,
		Principal:        l.Principal.StringFixed(2),
		MonthlyRate:      l.MonthlyRate.String(),
		TermMonths:       l.TermMonths,
		Frequency:        string(l.Frequency),
		StartDate:        l.StartDate.String(),
		NumPeriods:       l.NumPeriods,
		Collector:        l.Collector,
		Status:           string(l.Status),
		Visible:          l.Visible,
		PriorityOverride: string(l.PriorityOverride),
		Notes:            l.Notes,
	}
	if l.PromiseToPay != nil {
		dto.PromiseToPay = l.PromiseToPay.String()
	}
	return dto
}

func toPaymentDTO(p engine.Payment) PaymentDTO {
	return PaymentDTO{
		ID:         p.ID,
		LoanID:     p.LoanID,
		CustomerID: p.CustomerID,
		Date:       p.Date.String(),
		Amount:     p.Amount.StringFixed(2),
		Method:     string(p.Method),
		Note:       p.Note,
	}
}

func toTotalsDTO(t engine.Totals) TotalsDTO {
	return TotalsDTO{
		QuotaPerPeriod: t.QuotaPerPeriod.StringFixed(2),
		PaidToDate:     t.PaidToDate.StringFixed(2),
		TotalDue:       t.TotalDue.StringFixed(2),
		Balance:        t.Balance.StringFixed(2),
	}
}

func toDelinquencyDTO(d engine.Delinquency) DelinquencyDTO {
	dto := DelinquencyDTO{
		OverdueAmount: d.OverdueAmount.StringFixed(2),
		DaysLate:      d.DaysLate,
		DaysUntilNext: d.DaysUntilNext,
	}
	if d.NextDueDate != nil {
		dto.NextDueDate = d.NextDueDate.String()
	}
	return dto
}

func toInstallmentDTOs(schedule []engine.Installment) []InstallmentDTO {
	dtos := make([]InstallmentDTO, len(schedule))
	for i, inst := range schedule {
		dtos[i] = InstallmentDTO{
			Seq:                inst.Seq,
			DueDate:            inst.DueDate.String(),
			Total:              inst.Total.StringFixed(2),
			Interest:           inst.Interest.StringFixed(2),
			Principal:          inst.Principal.StringFixed(2),
			RemainingPrincipal: inst.RemainingPrincipal.StringFixed(2),
		}
	}
	return dtos
}

func toPortfolioDTO(rows []engine.Row, agg engine.Aggregates) PortfolioDTO {
	dto := PortfolioDTO{
		Rows:             make([]PortfolioRowDTO, len(rows)),
		PortfolioBalance: agg.PortfolioBalance.StringFixed(2),
		OverdueTotal:     agg.OverdueTotal.StringFixed(2),
		CurrentTotal:     agg.CurrentTotal.StringFixed(2),
		StateCounts:      make(map[string]int, len(agg.StateCounts)),
		StateBalances:    make(map[string]string, len(agg.StateBalances)),
		AgingCounts:      make(map[string]int, len(agg.AgingCounts)),
		AgingAmounts:     make(map[string]string, len(agg.AgingAmounts)),
	}
	for i, row := range rows {
		r := PortfolioRowDTO{
			LoanID:       row.LoanID,
			CustomerID:   row.CustomerID,
			CustomerName: row.CustomerName,
			State:        string(row.State),
			Balance:      row.Balance.StringFixed(2),
			Overdue:      row.Overdue.StringFixed(2),
			DaysLate:     row.DaysLate,
			Collector:    row.Collector,
			Zone:         row.Zone,
			Priority:     string(row.Priority),
			Score:        row.Score.StringFixed(2),
		}
		if row.NextDueDate != nil {
			r.NextDueDate = row.NextDueDate.String()
		}
		dto.Rows[i] = r
	}
	for state, n := range agg.StateCounts {
		dto.StateCounts[string(state)] = n
	}
	for state, bal := range agg.StateBalances {
		dto.StateBalances[string(state)] = bal.StringFixed(2)
	}
	for label, n := range agg.AgingCounts {
		dto.AgingCounts[label] = n
	}
	for label, amt := range agg.AgingAmounts {
		dto.AgingAmounts[label] = amt.StringFixed(2)
	}
	return dto
}
