package ledger

import (
	"testing"
	"time"
)

func at(hour, minute int) time.Time {
	return time.Date(2024, time.March, 15, hour, minute, 0, 0, time.UTC)
}

func TestShiftComplete(t *testing.T) {
	morning := TimeShift{Name: "Morning", Start: "06:00", End: "14:00"}
	night := TimeShift{Name: "Night", Start: "22:00", End: "06:00"}

	tests := []struct {
		name  string
		shift TimeShift
		now   time.Time
		want  bool
	}{
		{"morning before start", morning, at(5, 0), false},
		{"morning during", morning, at(10, 30), false},
		{"morning at end", morning, at(14, 0), true},
		{"morning after end", morning, at(18, 0), true},

		// Night wraps midnight: running 22:00..06:00, complete 06:00..22:00.
		{"night during late evening", night, at(23, 0), false},
		{"night during early morning", night, at(3, 0), false},
		{"night at end", night, at(6, 0), true},
		{"night midday", night, at(12, 0), true},
		{"night reopens", night, at(22, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShiftComplete(tt.shift, tt.now); got != tt.want {
				t.Errorf("ShiftComplete(%s, %s) = %v, want %v",
					tt.shift.Name, tt.now.Format("15:04"), got, tt.want)
			}
		})
	}
}

func TestShiftComplete_BadClockValues(t *testing.T) {
	bad := TimeShift{Name: "Broken", Start: "25:00", End: "xx"}
	if ShiftComplete(bad, at(12, 0)) {
		t.Error("unparseable shift should never report complete")
	}
}

func TestGenerateSeats(t *testing.T) {
	seats := GenerateSeats(map[string]int{"B": 2, "A": 3})

	if len(seats) != 5 {
		t.Fatalf("expected 5 seats, got %d", len(seats))
	}
	// Halls come out sorted, seats numbered from 1.
	wantIDs := []string{"A1", "A2", "A3", "B1", "B2"}
	for i, want := range wantIDs {
		if seats[i].ID != want {
			t.Errorf("seat[%d].ID = %s, want %s", i, seats[i].ID, want)
		}
	}
}
