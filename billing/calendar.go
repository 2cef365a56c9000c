package billing

import "time"

// =============================================================================
// DATE - Day-granularity calendar date (UTC)
// =============================================================================

type Date struct {
	t time.Time
}

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a timestamp to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses an ISO date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// Comparison
func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.t.After(other.t) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.t.Before(other.t) }

// Arithmetic
func (d Date) AddDays(n int) Date   { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return Date{t: d.t.AddDate(0, n, 0)} }

// Properties
func (d Date) Year() int         { return d.t.Year() }
func (d Date) Month() time.Month { return d.t.Month() }
func (d Date) Day() int          { return d.t.Day() }
func (d Date) IsZero() bool      { return d.t.IsZero() }
func (d Date) Time() time.Time   { return d.t }

func (d Date) String() string { return d.t.Format("2006-01-02") }

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	if len(s) >= 2 && s[0] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DaysBetween returns the whole days from one date to another.
func DaysBetween(from, to Date) int {
	return int(to.t.Sub(from.t).Hours() / 24)
}

// =============================================================================
// BILLING CALENDAR - Monthly cycle boundaries anchored to the admission day
// =============================================================================

// NextCycleBoundary computes the next month's occurrence of the anchor day.
// When the target month is too short for the anchor (anchor 31, February),
// the boundary clamps to the last day of that month and clamped is true.
//
// The flag matters downstream: a clamped cycle is paid through the clamped
// day itself (inclusive), while a regular cycle is paid through the day
// before the next boundary. That asymmetry is the short-month policy and
// must not be smoothed over.
func NextCycleBoundary(cycleStart Date, anchorDay int) (next Date, clamped bool) {
	year, month := cycleStart.Year(), cycleStart.Month()

	candidate := time.Date(year, month+1, anchorDay, 0, 0, 0, 0, time.UTC)
	target := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC)
	if candidate.Month() != target.Month() {
		// Anchor day overflowed into the following month; clamp to the
		// last day of the target month (day 0 of the month after it).
		return Date{t: time.Date(year, month+2, 0, 0, 0, 0, 0, time.UTC)}, true
	}
	return Date{t: candidate}, false
}
