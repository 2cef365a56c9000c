package billing_test

import (
	"testing"
	"time"

	"github.com/studyspace/fee-engine/billing"
)

func TestNextCycleBoundary(t *testing.T) {
	cases := []struct {
		name        string
		start       billing.Date
		anchor      int
		wantNext    billing.Date
		wantClamped bool
	}{
		{
			name:     "plain mid-month anchor",
			start:    billing.NewDate(2024, time.January, 15),
			anchor:   15,
			wantNext: billing.NewDate(2024, time.February, 15),
		},
		{
			name:        "anchor 31 clamps to leap February",
			start:       billing.NewDate(2024, time.January, 31),
			anchor:      31,
			wantNext:    billing.NewDate(2024, time.February, 29),
			wantClamped: true,
		},
		{
			name:        "anchor 31 clamps to non-leap February",
			start:       billing.NewDate(2023, time.January, 31),
			anchor:      31,
			wantNext:    billing.NewDate(2023, time.February, 28),
			wantClamped: true,
		},
		{
			name:        "anchor 30 clamps to February",
			start:       billing.NewDate(2024, time.January, 30),
			anchor:      30,
			wantNext:    billing.NewDate(2024, time.February, 29),
			wantClamped: true,
		},
		{
			name:     "anchor 31 lands in 31-day month unclamped",
			start:    billing.NewDate(2024, time.February, 29),
			anchor:   31,
			wantNext: billing.NewDate(2024, time.March, 31),
		},
		{
			name:        "anchor 31 clamps to April",
			start:       billing.NewDate(2024, time.March, 31),
			anchor:      31,
			wantNext:    billing.NewDate(2024, time.April, 30),
			wantClamped: true,
		},
		{
			name:     "december rolls into next year",
			start:    billing.NewDate(2024, time.December, 10),
			anchor:   10,
			wantNext: billing.NewDate(2025, time.January, 10),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, clamped := billing.NextCycleBoundary(tc.start, tc.anchor)
			if !next.Equal(tc.wantNext) {
				t.Errorf("next = %s, want %s", next, tc.wantNext)
			}
			if clamped != tc.wantClamped {
				t.Errorf("clamped = %v, want %v", clamped, tc.wantClamped)
			}
		})
	}
}

func TestDaysBetween(t *testing.T) {
	a := billing.NewDate(2024, time.January, 1)
	b := billing.NewDate(2024, time.January, 15)
	if got := billing.DaysBetween(a, b); got != 14 {
		t.Errorf("DaysBetween = %d, want 14", got)
	}
	if got := billing.DaysBetween(b, a); got != -14 {
		t.Errorf("reverse DaysBetween = %d, want -14", got)
	}
}

func TestParseDate(t *testing.T) {
	d, err := billing.ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Equal(billing.NewDate(2024, time.February, 29)) {
		t.Errorf("got %s", d)
	}

	if _, err := billing.ParseDate("not-a-date"); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := billing.NewDate(2024, time.June, 5)
	raw, err := d.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `"2024-06-05"` {
		t.Errorf("marshal = %s", raw)
	}

	var back billing.Date
	if err := back.UnmarshalJSON(raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d) {
		t.Errorf("round trip = %s, want %s", back, d)
	}
}
