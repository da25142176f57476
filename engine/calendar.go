package engine

import (
	"time"
)

// =============================================================================
// DATE - Day-granularity calendar date
// =============================================================================

// Date is a calendar date with day granularity. The zero value is the zero
// date. All comparisons normalize to UTC midnight so wall-clock components
// never leak into due-date arithmetic.
type Date struct {
	Time time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a timestamp to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Comparison
func (d Date) Before(other Date) bool        { return d.normalize().Before(other.normalize()) }
func (d Date) Equal(other Date) bool         { return d.normalize().Equal(other.normalize()) }
func (d Date) After(other Date) bool         { return d.normalize().After(other.normalize()) }
func (d Date) BeforeOrEqual(other Date) bool { return d.Before(other) || d.Equal(other) }
func (d Date) AfterOrEqual(other Date) bool  { return d.After(other) || d.Equal(other) }

// Properties
func (d Date) Year() int         { return d.Time.Year() }
func (d Date) Month() time.Month { return d.Time.Month() }
func (d Date) Day() int          { return d.Time.Day() }
func (d Date) IsZero() bool      { return d.Time.IsZero() }

func (d Date) String() string {
	return d.Time.Format("2006-01-02")
}

// Arithmetic
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// DaysBetween returns the whole days from one date to another (negative when
// to precedes from).
func DaysBetween(from, to Date) int {
	return int(to.normalize().Sub(from.normalize()).Hours() / 24)
}

// =============================================================================
// MONTH STEPPING - Clamped, leap-aware
// =============================================================================

// IsLeapYear implements the Gregorian rule: divisible by 4, not by 100
// unless by 400.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

var daysPerMonth = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// DaysInMonth returns the length of a month, February adjusted for leap years.
func DaysInMonth(year int, month time.Month) int {
	if month == time.February && IsLeapYear(year) {
		return 29
	}
	return daysPerMonth[month-1]
}

// AddMonths advances a date by whole calendar months, clamping the day to the
// shorter month's last day (Jan 31 + 1 month = Feb 28/29). time.AddDate is
// deliberately not used here: it normalizes overflow into the next month.
func (d Date) AddMonths(months int) Date {
	m := int(d.Time.Month()) - 1 + months
	y := d.Time.Year() + m/12
	m = m % 12
	if m < 0 {
		m += 12
		y--
	}
	month := time.Month(m + 1)
	day := d.Time.Day()
	if limit := DaysInMonth(y, month); day > limit {
		day = limit
	}
	return NewDate(y, month, day)
}

// =============================================================================
// DATE STEPPER - Advances a due date by one installment period
// =============================================================================

// Advance steps a date forward by one period of the given cadence:
// daily +1d, weekly +7d, biweekly +15d, monthly +1 clamped calendar month.
// Unknown frequencies fall back to monthly; the schedule builder never
// reaches here for them anyway since they produce zero periods.
func Advance(f Frequency, d Date) Date {
	switch f {
	case FreqDaily:
		return d.AddDays(1)
	case FreqWeekly:
		return d.AddDays(7)
	case FreqBiweekly:
		return d.AddDays(15)
	default:
		return d.AddMonths(1)
	}
}
