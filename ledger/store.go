/*
store.go - Persistence interface for the entity layer

PURPOSE:
  Defines the boundary between the domain logic and the database. Unlike
  an append-only transaction log, student records here are mutable
  aggregates: payments can be edited and deleted, and the projection is
  recomputed from the stored history on every read, so the store never
  holds a derived balance.

IMPLEMENTATIONS:
  - ledger/store: In-memory, for tests and development
  - store/sqlite: SQLite-backed, for production
*/
package ledger

import (
	"context"

	"github.com/studyspace/fee-engine/billing"
)

// Store persists the entity records. SaveStudent writes the whole
// aggregate (profile, payments, fee changes, past history) atomically.
// Lookups return (nil, nil) for missing records; sentinel errors are the
// service layer's concern.
type Store interface {
	// Students
	SaveStudent(ctx context.Context, s Student) error
	GetStudent(ctx context.Context, roll string) (*Student, error)
	ListStudents(ctx context.Context) ([]Student, error)
	DeleteStudent(ctx context.Context, roll string) error

	// Seats
	SaveSeat(ctx context.Context, seat Seat) error
	GetSeat(ctx context.Context, id string) (*Seat, error)
	ListSeats(ctx context.Context) ([]Seat, error)
	// ReplaceSeats swaps the entire grid (hall reconfiguration).
	ReplaceSeats(ctx context.Context, seats []Seat) error

	// Time shifts
	SaveShifts(ctx context.Context, shifts []TimeShift) error
	ListShifts(ctx context.Context) ([]TimeShift, error)

	// Attendance
	MarkAttendance(ctx context.Context, day billing.Date, roll string, present bool) error
	AttendanceOn(ctx context.Context, day billing.Date) (map[string]bool, error)
	AllAttendance(ctx context.Context) (map[string]map[string]bool, error)

	// Activity feed
	AppendActivity(ctx context.Context, a Activity) error
	RecentActivities(ctx context.Context, limit int) ([]Activity, error)

	// Settings (key/value)
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	ListSettings(ctx context.Context) (map[string]string, error)

	// Users
	GetUser(ctx context.Context, username string) (*User, error)
	SaveUser(ctx context.Context, u User) error
	ListUsers(ctx context.Context) ([]User, error)
}
