/*
portfolio.go - Fleet-wide statistics and collection priorities

PURPOSE:
  Runs totals/delinquency/classification over every loan in the book and
  folds the results into dashboard aggregates: portfolio balance, overdue
  totals, per-state counts and balances, an aging histogram, and a ranked
  collections worklist.

PRIORITY SCORE:
  score = daysLate x 2 + balance/100000 + 5 if an unexpired promise exists.
  The score orders the collections worklist; it is never persisted.
*/
package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AGING BUCKETS
// =============================================================================

// AgingLabels lists the histogram buckets in display order.
var AgingLabels = []string{"1-7", "8-15", "16-30", "30+"}

// AgingBucket maps days late to its histogram bucket; empty when not late.
func AgingBucket(daysLate int) string {
	switch {
	case daysLate <= 0:
		return ""
	case daysLate <= 7:
		return "1-7"
	case daysLate <= 15:
		return "8-15"
	case daysLate <= 30:
		return "16-30"
	default:
		return "30+"
	}
}

// =============================================================================
// PRIORITY
// =============================================================================

var (
	highBalance   = decimal.NewFromInt(1_000_000)
	mediumBalance = decimal.NewFromInt(300_000)
	scoreDivisor  = decimal.NewFromInt(100_000)
	promiseBonus  = decimal.NewFromInt(5)
	two           = decimal.NewFromInt(2)
)

// PriorityFor computes the collection priority label from balance and days
// late. A loan's PriorityOverride, when set, wins over this.
func PriorityFor(balance decimal.Decimal, daysLate int) Priority {
	if daysLate >= 30 || balance.GreaterThanOrEqual(highBalance) {
		return PriorityHigh
	}
	if daysLate >= 8 || balance.GreaterThanOrEqual(mediumBalance) {
		return PriorityMedium
	}
	return PriorityLow
}

// Score ranks loans for the collections worklist. Higher means call sooner.
func Score(daysLate int, balance decimal.Decimal, hasPromise bool) decimal.Decimal {
	s := decimal.NewFromInt(int64(daysLate)).Mul(two).Add(balance.Div(scoreDivisor))
	if hasPromise {
		s = s.Add(promiseBonus)
	}
	return s
}

// =============================================================================
// PORTFOLIO STATS
// =============================================================================

// Filter narrows which loans enter the portfolio view.
type Filter struct {
	IncludePaid    bool // keep fully-paid loans in the rows
	ExcludeRenewed bool // drop historical renewed loans
	OnlyVisible    bool // drop manually hidden loans
	UpcomingDays   int  // due-soon window; 0 means DefaultUpcomingDays
}

// Row is one loan's line in the portfolio view, ranked by Score.
type Row struct {
	LoanID       int64
	CustomerID   int64
	CustomerName string
	State        State
	Balance      decimal.Decimal
	Overdue      decimal.Decimal
	DaysLate     int
	NextDueDate  *Date
	Collector    string
	Zone         string
	Priority     Priority
	Score        decimal.Decimal
}

// Aggregates are the dashboard totals for the filtered portfolio.
type Aggregates struct {
	PortfolioBalance decimal.Decimal
	OverdueTotal     decimal.Decimal

	// CurrentTotal = portfolio balance minus overdue, floored at zero.
	CurrentTotal decimal.Decimal

	StateCounts   map[State]int
	StateBalances map[State]decimal.Decimal

	AgingCounts  map[string]int
	AgingAmounts map[string]decimal.Decimal
}

// ComputeStats classifies every loan passing the filter and folds the
// results into rows (sorted by priority score, highest first) and
// aggregates. customers and paymentsByLoan are plain lookups supplied by
// the persistence layer; the computation itself stays pure.
func ComputeStats(
	loans []Loan,
	customers map[int64]Customer,
	paymentsByLoan map[int64][]Payment,
	today Date,
	f Filter,
) ([]Row, Aggregates) {

	upcoming := f.UpcomingDays
	if upcoming <= 0 {
		upcoming = DefaultUpcomingDays
	}

	agg := Aggregates{
		PortfolioBalance: decimal.Zero,
		OverdueTotal:     decimal.Zero,
		CurrentTotal:     decimal.Zero,
		StateCounts:      make(map[State]int),
		StateBalances:    make(map[State]decimal.Decimal),
		AgingCounts:      make(map[string]int),
		AgingAmounts:     make(map[string]decimal.Decimal),
	}
	for _, label := range AgingLabels {
		agg.AgingCounts[label] = 0
		agg.AgingAmounts[label] = decimal.Zero
	}

	var rows []Row
	for _, l := range loans {
		if f.OnlyVisible && !l.Visible {
			continue
		}
		if f.ExcludeRenewed && l.Status == StatusRenewed {
			continue
		}

		payments := paymentsByLoan[l.ID]
		t := ComputeTotals(l, payments)
		d := Analyze(l, payments, today)
		state := Classify(l, t, d, today, upcoming)
		if !f.IncludePaid && state == StatePaid {
			continue
		}

		hasPromise := HasActivePromise(l, today)
		priority := l.PriorityOverride
		if priority == "" {
			priority = PriorityFor(t.Balance, d.DaysLate)
		}

		c := customers[l.CustomerID]
		rows = append(rows, Row{
			LoanID:       l.ID,
			CustomerID:   l.CustomerID,
			CustomerName: c.Name,
			State:        state,
			Balance:      t.Balance,
			Overdue:      d.OverdueAmount,
			DaysLate:     d.DaysLate,
			NextDueDate:  d.NextDueDate,
			Collector:    l.Collector,
			Zone:         c.Zone,
			Priority:     priority,
			Score:        Score(d.DaysLate, t.Balance, hasPromise),
		})

		agg.PortfolioBalance = agg.PortfolioBalance.Add(t.Balance)
		agg.OverdueTotal = agg.OverdueTotal.Add(d.OverdueAmount)
		agg.StateCounts[state]++
		agg.StateBalances[state] = agg.StateBalances[state].Add(t.Balance)

		if bucket := AgingBucket(d.DaysLate); bucket != "" {
			agg.AgingCounts[bucket]++
			agg.AgingAmounts[bucket] = agg.AgingAmounts[bucket].Add(d.OverdueAmount)
		}
	}

	agg.CurrentTotal = agg.PortfolioBalance.Sub(agg.OverdueTotal)
	if agg.CurrentTotal.IsNegative() {
		agg.CurrentTotal = decimal.Zero
	}

	agg.PortfolioBalance = Round2(agg.PortfolioBalance)
	agg.OverdueTotal = Round2(agg.OverdueTotal)
	agg.CurrentTotal = Round2(agg.CurrentTotal)
	for k, v := range agg.StateBalances {
		agg.StateBalances[k] = Round2(v)
	}
	for k, v := range agg.AgingAmounts {
		agg.AgingAmounts[k] = Round2(v)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Score.GreaterThan(rows[j].Score)
	})
	return rows, agg
}
