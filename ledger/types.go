/*
Package ledger is the entity layer for the study hall: students, payments,
seats, halls, time shifts, and attendance.

PURPOSE:
  Owns the mutable records and their invariants (one seat per active
  student, positive payment amounts, append-only fee changes) and exposes
  the mutation operations the HTTP layer consumes. Financial state is
  never stored here: every read that needs dues or paid-through dates
  assembles a billing.Account snapshot and asks the projection engine.

KEY CONCEPTS IN THIS FILE (types.go):
  - Student: The enrollment record keyed by roll number
  - Payment: A mutable payment record with a stable id (edits and
    deletions are permitted, unlike an immutable ledger)
  - Seat / hall config: The physical grid, generated 1..N per hall
  - TimeShift, Activity, User: Supporting records

SEE ALSO:
  - service.go: Mutation operations and invariants
  - store.go: Persistence interface
  - billing: The pure projection core
*/
package ledger

import (
	"sort"
	"strconv"
	"time"

	"github.com/studyspace/fee-engine/billing"
)

// =============================================================================
// STUDENT
// =============================================================================

// Student is keyed by roll number; the roll is immutable once enrolled.
// AdmissionDate anchors the billing cycle to its day-of-month.
type Student struct {
	Roll          string
	Name          string
	Father        string
	StudentMobile string
	ParentMobile  string
	Aadhar        string
	Shift         string
	Photo         string
	FormPhoto     string

	AdmissionDate billing.Date
	FeeAmount     billing.Money
	FeeChanges    []billing.FeeChange // append-only
	Payments      []Payment

	Active        bool
	DeactivatedAt *billing.Date

	// Payments archived by a reset; they no longer feed the projection.
	PastHistory []Payment

	AssignedSeat string
	AssignedAt   *time.Time
	CreatedAt    time.Time
}

// Account assembles the immutable projection input from the record.
func (s *Student) Account() billing.Account {
	payments := make([]billing.Payment, len(s.Payments))
	for i, p := range s.Payments {
		payments[i] = billing.Payment{Amount: p.Amount, Discount: p.Discount, PaidOn: p.Date}
	}
	return billing.Account{
		AdmissionDate: s.AdmissionDate,
		MonthlyFee:    s.FeeAmount,
		FeeChanges:    append([]billing.FeeChange(nil), s.FeeChanges...),
		Payments:      payments,
		Active:        s.Active,
		DeactivatedAt: s.DeactivatedAt,
	}
}

// =============================================================================
// PAYMENT
// =============================================================================

type PaymentMethod string

const (
	MethodCash   PaymentMethod = "cash"
	MethodOnline PaymentMethod = "online"
)

// Payment records money received from a student. Amount is the net amount
// actually received; Discount is the portion forgiven. Amount + Discount
// is the cycle cost the payment satisfies. Duration and Type are
// informational only and never drive the projection.
type Payment struct {
	ID       string
	Amount   billing.Money
	Discount billing.Money
	Date     billing.Date
	Duration int    // months, for the record
	Type     string // e.g. "month"
	Method   PaymentMethod
	Note     string
	Photo    string // receipt photo reference
}

// =============================================================================
// SEATS AND HALLS
// =============================================================================

// Seat id is the hall letter followed by the seat number ("A12").
type Seat struct {
	ID          string
	Hall        string
	Occupied    bool
	StudentRoll string
}

// GenerateSeats builds the grid for a hall configuration, 1..N per hall.
func GenerateSeats(config map[string]int) []Seat {
	halls := make([]string, 0, len(config))
	for h := range config {
		halls = append(halls, h)
	}
	sort.Strings(halls)

	var seats []Seat
	for _, hall := range halls {
		for i := 1; i <= config[hall]; i++ {
			id := hall + strconv.Itoa(i)
			seats = append(seats, Seat{ID: id, Hall: hall})
		}
	}
	return seats
}

// SeatCounts summarizes occupancy for a hall or the whole facility.
type SeatCounts struct {
	Total     int
	Occupied  int
	Available int
}

// =============================================================================
// SHIFTS, ATTENDANCE, ACTIVITY
// =============================================================================

// TimeShift is a daily time window ("06:00".."14:00"). Windows may wrap
// past midnight (a night shift ending at 06:00).
type TimeShift struct {
	Name  string
	Start string
	End   string
}

type Activity struct {
	ID   string
	At   time.Time
	Text string
}

// =============================================================================
// USERS
// =============================================================================

// User is an owner-editor credential. Single-tenant: typically exactly one.
type User struct {
	Username         string
	Password         string
	SecurityQuestion string
	SecurityAnswer   string
	Role             string
}

// =============================================================================
// SETTINGS KEYS
// =============================================================================

const (
	SettingWATemplate  = "wa_template"
	SettingLibraryName = "library_name"
	SettingQRCode      = "qr_code"
	SettingHallsConfig = "halls_config"
)

// DefaultWATemplate is used when no template has been configured.
const DefaultWATemplate = "Hello {name}, your fee of {due} is pending. Please pay ASAP."
