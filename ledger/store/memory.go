// Package store provides ledger.Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/studyspace/fee-engine/billing"
	"github.com/studyspace/fee-engine/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu         sync.RWMutex
	students   map[string]ledger.Student
	seats      map[string]ledger.Seat
	shifts     []ledger.TimeShift
	attendance map[string]map[string]bool // day -> roll -> present
	activities []ledger.Activity
	settings   map[string]string
	users      map[string]ledger.User
}

func NewMemory() *Memory {
	return &Memory{
		students:   make(map[string]ledger.Student),
		seats:      make(map[string]ledger.Seat),
		attendance: make(map[string]map[string]bool),
		settings:   make(map[string]string),
		users:      make(map[string]ledger.User),
	}
}

// =============================================================================
// STUDENTS
// =============================================================================

func (m *Memory) SaveStudent(_ context.Context, s ledger.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.students[s.Roll] = cloneStudent(s)
	return nil
}

func (m *Memory) GetStudent(_ context.Context, roll string) (*ledger.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.students[roll]
	if !ok {
		return nil, nil
	}
	out := cloneStudent(s)
	return &out, nil
}

func (m *Memory) ListStudents(_ context.Context) ([]ledger.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ledger.Student, 0, len(m.students))
	for _, s := range m.students {
		out = append(out, cloneStudent(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Roll < out[j].Roll })
	return out, nil
}

func (m *Memory) DeleteStudent(_ context.Context, roll string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.students, roll)
	return nil
}

// cloneStudent deep-copies the slices so callers can't mutate stored state.
func cloneStudent(s ledger.Student) ledger.Student {
	s.FeeChanges = append([]billing.FeeChange(nil), s.FeeChanges...)
	s.Payments = append([]ledger.Payment(nil), s.Payments...)
	s.PastHistory = append([]ledger.Payment(nil), s.PastHistory...)
	return s
}

// =============================================================================
// SEATS
// =============================================================================

func (m *Memory) SaveSeat(_ context.Context, seat ledger.Seat) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seats[seat.ID] = seat
	return nil
}

func (m *Memory) GetSeat(_ context.Context, id string) (*ledger.Seat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seat, ok := m.seats[id]
	if !ok {
		return nil, nil
	}
	return &seat, nil
}

func (m *Memory) ListSeats(_ context.Context) ([]ledger.Seat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ledger.Seat, 0, len(m.seats))
	for _, seat := range m.seats {
		out = append(out, seat)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Hall != out[j].Hall {
			return out[i].Hall < out[j].Hall
		}
		return seatNum(out[i].ID, out[i].Hall) < seatNum(out[j].ID, out[j].Hall)
	})
	return out, nil
}

func (m *Memory) ReplaceSeats(_ context.Context, seats []ledger.Seat) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seats = make(map[string]ledger.Seat, len(seats))
	for _, seat := range seats {
		m.seats[seat.ID] = seat
	}
	return nil
}

func seatNum(id, hall string) int {
	n := 0
	for _, r := range id[len(hall):] {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// =============================================================================
// SHIFTS
// =============================================================================

func (m *Memory) SaveShifts(_ context.Context, shifts []ledger.TimeShift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shifts = append([]ledger.TimeShift(nil), shifts...)
	return nil
}

func (m *Memory) ListShifts(_ context.Context) ([]ledger.TimeShift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]ledger.TimeShift(nil), m.shifts...), nil
}

// =============================================================================
// ATTENDANCE
// =============================================================================

func (m *Memory) MarkAttendance(_ context.Context, day billing.Date, roll string, present bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := day.String()
	if m.attendance[k] == nil {
		m.attendance[k] = make(map[string]bool)
	}
	m.attendance[k][roll] = present
	return nil
}

func (m *Memory) AttendanceOn(_ context.Context, day billing.Date) (map[string]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]bool, len(m.attendance[day.String()]))
	for roll, present := range m.attendance[day.String()] {
		out[roll] = present
	}
	return out, nil
}

func (m *Memory) AllAttendance(_ context.Context) (map[string]map[string]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]map[string]bool, len(m.attendance))
	for day, rolls := range m.attendance {
		inner := make(map[string]bool, len(rolls))
		for roll, present := range rolls {
			inner[roll] = present
		}
		out[day] = inner
	}
	return out, nil
}

// =============================================================================
// ACTIVITY FEED
// =============================================================================

func (m *Memory) AppendActivity(_ context.Context, a ledger.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activities = append(m.activities, a)
	return nil
}

func (m *Memory) RecentActivities(_ context.Context, limit int) ([]ledger.Activity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := len(m.activities)
	if limit > n {
		limit = n
	}
	out := make([]ledger.Activity, 0, limit)
	// Newest first.
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, m.activities[i])
	}
	return out, nil
}

// =============================================================================
// SETTINGS
// =============================================================================

func (m *Memory) GetSetting(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings[key], nil
}

func (m *Memory) SetSetting(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[key] = value
	return nil
}

func (m *Memory) ListSettings(_ context.Context) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.settings))
	for k, v := range m.settings {
		out[k] = v
	}
	return out, nil
}

// =============================================================================
// USERS
// =============================================================================

func (m *Memory) GetUser(_ context.Context, username string) (*ledger.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[username]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *Memory) SaveUser(_ context.Context, u ledger.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.Username] = u
	return nil
}

func (m *Memory) ListUsers(_ context.Context) ([]ledger.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ledger.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}
