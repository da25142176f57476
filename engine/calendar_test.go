package engine_test

import (
	"testing"
	"time"

	"github.com/argsoja/loanbook/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddMonths_ClampsToShorterMonth(t *testing.T) {
	// GIVEN: Jan 31
	// WHEN: Advancing one calendar month
	// THEN: The day clamps to February's last day

	jan31 := engine.NewDate(2023, time.January, 31)
	assert.Equal(t, "2023-02-28", jan31.AddMonths(1).String())

	leapJan31 := engine.NewDate(2024, time.January, 31)
	assert.Equal(t, "2024-02-29", leapJan31.AddMonths(1).String())
}

func TestAddMonths_YearRollover(t *testing.T) {
	dec15 := engine.NewDate(2024, time.December, 15)
	assert.Equal(t, "2025-01-15", dec15.AddMonths(1).String())

	mar31 := engine.NewDate(2024, time.March, 31)
	assert.Equal(t, "2024-04-30", mar31.AddMonths(1).String())
}

func TestIsLeapYear_CenturyRules(t *testing.T) {
	cases := []struct {
		year int
		leap bool
	}{
		{2024, true},
		{2023, false},
		{1900, false}, // divisible by 100, not by 400
		{2000, true},  // divisible by 400
		{2100, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.leap, engine.IsLeapYear(tc.year), "year %d", tc.year)
	}
}

func TestAdvance_PerFrequency(t *testing.T) {
	d := engine.NewDate(2024, time.January, 1)

	assert.Equal(t, "2024-01-02", engine.Advance(engine.FreqDaily, d).String())
	assert.Equal(t, "2024-01-08", engine.Advance(engine.FreqWeekly, d).String())
	assert.Equal(t, "2024-01-16", engine.Advance(engine.FreqBiweekly, d).String())
	assert.Equal(t, "2024-02-01", engine.Advance(engine.FreqMonthly, d).String())
}

func TestDaysBetween(t *testing.T) {
	a := engine.NewDate(2024, time.April, 1)
	b := engine.NewDate(2024, time.April, 2)

	assert.Equal(t, 1, engine.DaysBetween(a, b))
	assert.Equal(t, -1, engine.DaysBetween(b, a))
	assert.Equal(t, 0, engine.DaysBetween(a, a))
}

func TestParseDate_RoundTrip(t *testing.T) {
	d, err := engine.ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", d.String())

	_, err = engine.ParseDate("not-a-date")
	assert.Error(t, err)
}

func TestPeriodsPerMonth(t *testing.T) {
	assert.Equal(t, 30, engine.PeriodsPerMonth(engine.FreqDaily))
	assert.Equal(t, 4, engine.PeriodsPerMonth(engine.FreqWeekly))
	assert.Equal(t, 2, engine.PeriodsPerMonth(engine.FreqBiweekly))
	assert.Equal(t, 1, engine.PeriodsPerMonth(engine.FreqMonthly))
	assert.Equal(t, 0, engine.PeriodsPerMonth(engine.Frequency("hourly")))
}
