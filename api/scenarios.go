/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario creates customers, loans and
	payments that land in specific portfolio states.

AVAILABLE SCENARIOS:

	single-loan:     One daily-cadence loan, part paid, current
	collection-day:  A full walkbook: overdue, promised, due-soon,
	                 current and paid loans across several customers
	renewal-cycle:   A loan renewed into a successor

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create customers
 3. Create loans with start dates relative to today
 4. Record payments that produce the target states

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "collection-day"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Error helpers and handler context
  - server.go: Route wiring
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/argsoja/loanbook/engine"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "single-loan",
		Name:        "Single Loan",
		Description: "One daily-cadence loan with a few payments, still current",
	},
	{
		ID:          "collection-day",
		Name:        "Collection Day",
		Description: "A walkbook covering overdue, promised, due-soon, current and paid loans",
	},
	{
		ID:          "renewal-cycle",
		Name:        "Renewal Cycle",
		Description: "A loan closed by renewal with its successor open",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	if h.currentScenario == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{
		ID:   h.currentScenario,
		Name: h.currentScenario,
	})
}

// LoadScenario wipes the database and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	if err := h.resetAll(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	var err error
	switch req.ScenarioID {
	case "single-loan":
		err = h.loadSingleLoan(ctx)
	case "collection-day":
		err = h.loadCollectionDay(ctx)
	case "renewal-cycle":
		err = h.loadRenewalCycle(ctx)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown scenario: %s", req.ScenarioID), nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.currentScenario = req.ScenarioID
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "loaded",
		"scenario": req.ScenarioID,
	})
}

// ResetDatabase wipes all data without loading anything.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.resetAll(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "reset"})
}

func (h *Handler) resetAll(ctx context.Context) error {
	if h.Reset == nil {
		return fmt.Errorf("reset not available on this deployment")
	}
	h.currentScenario = ""
	return h.Reset(ctx)
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

// seed bundles what every loader needs.
type seed struct {
	h     *Handler
	ctx   context.Context
	today engine.Date
}

func (s seed) customer(name, zone, phone string) (*engine.Customer, error) {
	c := &engine.Customer{Name: name, Zone: zone, Phone: phone}
	return c, s.h.Service.CreateCustomer(s.ctx, c)
}

func (s seed) loan(customerID int64, principal, rate float64, termMonths int, freq engine.Frequency, startDaysAgo int, collector string) (*engine.Loan, error) {
	l := &engine.Loan{
		CustomerID:  customerID,
		Principal:   engine.Money(principal),
		MonthlyRate: engine.Money(rate),
		TermMonths:  termMonths,
		Frequency:   freq,
		StartDate:   s.today.AddDays(-startDaysAgo),
		Collector:   collector,
	}
	return l, s.h.Service.CreateLoan(s.ctx, l)
}

func (s seed) pay(loanID int64, daysAgo int, amount float64) error {
	return s.h.Service.RecordPayment(s.ctx, &engine.Payment{
		LoanID: loanID,
		Date:   s.today.AddDays(-daysAgo),
		Amount: engine.Money(amount),
		Method: engine.MethodCash,
	})
}

func (h *Handler) newSeed(ctx context.Context) seed {
	return seed{h: h, ctx: ctx, today: h.Service.Now()}
}

// loadSingleLoan: one borrower, one daily loan, nine quotas collected.
func (h *Handler) loadSingleLoan(ctx context.Context) error {
	s := h.newSeed(ctx)

	c, err := s.customer("Marta Diaz", "Centro", "300 555 0101")
	if err != nil {
		return err
	}
	// 900,000 at 20% for one month, daily: 30 quotas of 36,000.
	l, err := s.loan(c.ID, 900_000, 0.2, 1, engine.FreqDaily, 10, "Jairo")
	if err != nil {
		return err
	}
	for day := 9; day >= 1; day-- {
		if err := s.pay(l.ID, day, 36_000); err != nil {
			return err
		}
	}
	return nil
}

// loadCollectionDay: one loan per portfolio state.
func (h *Handler) loadCollectionDay(ctx context.Context) error {
	s := h.newSeed(ctx)

	ana, err := s.customer("Ana Torres", "Norte", "300 555 0102")
	if err != nil {
		return err
	}
	luis, err := s.customer("Luis Pardo", "Sur", "300 555 0103")
	if err != nil {
		return err
	}
	rosa, err := s.customer("Rosa Quintero", "Centro", "300 555 0104")
	if err != nil {
		return err
	}

	// Overdue: monthly loan whose only installment lapsed 15 days ago.
	if _, err := s.loan(ana.ID, 1_200_000, 0.15, 1, engine.FreqMonthly, 45, "Jairo"); err != nil {
		return err
	}

	// Promised: same shape, but covered by a promise for tomorrow.
	promisedLoan, err := s.loan(luis.ID, 600_000, 0.15, 1, engine.FreqMonthly, 45, "Jairo")
	if err != nil {
		return err
	}
	tomorrow := s.today.AddDays(1)
	if err := h.Service.SetPromiseToPay(ctx, promisedLoan.ID, &tomorrow); err != nil {
		return err
	}

	// Due soon: weekly loan with the next quota due in 2 days, all prior
	// quotas covered. Start 26 days ago puts quotas at -19, -12, -5, +2.
	dueSoon, err := s.loan(rosa.ID, 400_000, 0.1, 1, engine.FreqWeekly, 26, "Pilar")
	if err != nil {
		return err
	}
	for _, daysAgo := range []int{19, 12, 5} {
		if err := s.pay(dueSoon.ID, daysAgo, 110_000); err != nil {
			return err
		}
	}

	// Current: fresh monthly loan, first quota a month away.
	if _, err := s.loan(rosa.ID, 800_000, 0.15, 2, engine.FreqMonthly, 0, "Pilar"); err != nil {
		return err
	}

	// Paid: small loan settled in full.
	paid, err := s.loan(ana.ID, 200_000, 0.1, 1, engine.FreqMonthly, 40, "Jairo")
	if err != nil {
		return err
	}
	return s.pay(paid.ID, 5, 220_000)
}

// loadRenewalCycle: a part-paid loan renewed into a fresh one.
func (h *Handler) loadRenewalCycle(ctx context.Context) error {
	s := h.newSeed(ctx)

	c, err := s.customer("Marta Diaz", "Centro", "300 555 0101")
	if err != nil {
		return err
	}
	l, err := s.loan(c.ID, 500_000, 0.1, 1, engine.FreqMonthly, 35, "Jairo")
	if err != nil {
		return err
	}
	if err := s.pay(l.ID, 4, 470_000); err != nil {
		return err
	}
	_, err = h.Service.Renew(ctx, l.ID, true)
	return err
}
