/*
service.go - Mutation operations and invariants

PURPOSE:
  The single place entity state changes. Every operation loads the
  aggregate, applies the change, saves it back, and records an activity
  line. Financial questions are always answered by handing a fresh
  billing.Account to the projection engine - never by a stored balance.

INVARIANTS ENFORCED HERE (not in the billing core):
  - At most one seat references a given roll; assigning a seat frees any
    other seat held by that student first
  - Payment amounts are positive, discounts non-negative
  - Fee changes are append-only; editing a profile with a different fee
    appends a change dated now
  - Deactivation stamps deactivatedAt and releases the seat; the record
    and its history survive
  - Reset archives payments into past history and restarts the billing
    anchor at today
*/
package ledger

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/studyspace/fee-engine/billing"
)

// Service wires the store to the billing core. Now is overridable for
// tests; nil means the wall clock.
type Service struct {
	Store Store
	Now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{Store: store}
}

// Clock is the service's view of the current instant. Exposed so the
// HTTP layer reads time from the same source the mutations use.
func (s *Service) Clock() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Today is the current calendar day per Clock.
func (s *Service) Today() billing.Date {
	return billing.DateOf(s.Clock())
}

func (s *Service) logActivity(ctx context.Context, format string, args ...any) {
	// Activity is best-effort; a failed log never fails the operation.
	_ = s.Store.AppendActivity(ctx, Activity{
		ID:   uuid.NewString(),
		At:   s.Clock(),
		Text: fmt.Sprintf(format, args...),
	})
}

func (s *Service) mustStudent(ctx context.Context, roll string) (*Student, error) {
	st, err := s.Store.GetStudent(ctx, roll)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, ErrStudentNotFound
	}
	return st, nil
}

// mustShift accepts an empty name; a non-empty one has to match a
// configured shift.
func (s *Service) mustShift(ctx context.Context, name string) error {
	if name == "" {
		return nil
	}
	shifts, err := s.Store.ListShifts(ctx)
	if err != nil {
		return err
	}
	for _, sh := range shifts {
		if sh.Name == name {
			return nil
		}
	}
	return ErrShiftNotFound
}

// =============================================================================
// ENROLLMENT
// =============================================================================

// StudentProfile carries the editable profile fields.
type StudentProfile struct {
	Roll          string
	Name          string
	Father        string
	StudentMobile string
	ParentMobile  string
	Aadhar        string
	Shift         string
	Photo         string
	FormPhoto     string
	FeeAmount     billing.Money
	AdmissionDate billing.Date
	AssignedSeat  string
}

func (p StudentProfile) validate() error {
	if strings.TrimSpace(p.Roll) == "" {
		return ErrRollRequired
	}
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	if !p.FeeAmount.IsPositive() {
		return ErrNonPositiveFee
	}
	return nil
}

// EnrollStudent creates a new record. The admission fee is not written
// into the change log; the projection synthesizes it from the admission
// date, so the log stays a pure history of changes.
func (s *Service) EnrollStudent(ctx context.Context, p StudentProfile) (*Student, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if err := s.mustShift(ctx, p.Shift); err != nil {
		return nil, err
	}
	existing, err := s.Store.GetStudent(ctx, p.Roll)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrStudentExists
	}

	admission := p.AdmissionDate
	if admission.IsZero() {
		admission = s.Today()
	}
	st := Student{
		Roll:          p.Roll,
		Name:          p.Name,
		Father:        p.Father,
		StudentMobile: p.StudentMobile,
		ParentMobile:  p.ParentMobile,
		Aadhar:        p.Aadhar,
		Shift:         p.Shift,
		Photo:         p.Photo,
		FormPhoto:     p.FormPhoto,
		AdmissionDate: admission,
		FeeAmount:     p.FeeAmount,
		Active:        true,
		CreatedAt:     s.Clock(),
	}
	if err := s.Store.SaveStudent(ctx, st); err != nil {
		return nil, err
	}
	s.logActivity(ctx, "Student enrolled: %s - %s", st.Roll, st.Name)
	if p.AssignedSeat != "" {
		if err := s.AssignSeat(ctx, p.AssignedSeat, st.Roll, false); err != nil {
			return nil, err
		}
		return s.mustStudent(ctx, st.Roll)
	}
	return &st, nil
}

// UpdateStudent edits the profile of an existing record. A different fee
// amount appends a fee change dated now; history is never rewritten.
func (s *Service) UpdateStudent(ctx context.Context, p StudentProfile) (*Student, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if err := s.mustShift(ctx, p.Shift); err != nil {
		return nil, err
	}
	st, err := s.mustStudent(ctx, p.Roll)
	if err != nil {
		return nil, err
	}

	if !p.FeeAmount.Equal(st.FeeAmount) {
		st.FeeChanges = append(st.FeeChanges, billing.FeeChange{
			EffectiveOn: s.Today(),
			Fee:         p.FeeAmount,
		})
		st.FeeAmount = p.FeeAmount
	}
	st.Name = p.Name
	st.Father = p.Father
	st.StudentMobile = p.StudentMobile
	st.ParentMobile = p.ParentMobile
	st.Aadhar = p.Aadhar
	st.Shift = p.Shift
	if p.Photo != "" {
		st.Photo = p.Photo
	}
	if p.FormPhoto != "" {
		st.FormPhoto = p.FormPhoto
	}
	if !p.AdmissionDate.IsZero() {
		st.AdmissionDate = p.AdmissionDate
	}

	if err := s.Store.SaveStudent(ctx, *st); err != nil {
		return nil, err
	}

	if p.AssignedSeat != "" && p.AssignedSeat != st.AssignedSeat {
		if err := s.AssignSeat(ctx, p.AssignedSeat, st.Roll, false); err != nil {
			return nil, err
		}
	} else if p.AssignedSeat == "" && st.AssignedSeat != "" {
		if err := s.ReleaseSeat(ctx, st.AssignedSeat); err != nil {
			return nil, err
		}
	}

	s.logActivity(ctx, "Student updated: %s - %s", p.Roll, p.Name)
	return s.mustStudent(ctx, p.Roll)
}

// DeleteStudent removes the record and frees any seat bound to the roll.
func (s *Service) DeleteStudent(ctx context.Context, roll string) error {
	if _, err := s.mustStudent(ctx, roll); err != nil {
		return err
	}
	if err := s.freeSeatsOf(ctx, roll); err != nil {
		return err
	}
	if err := s.Store.DeleteStudent(ctx, roll); err != nil {
		return err
	}
	s.logActivity(ctx, "Student deleted: %s", roll)
	return nil
}

// =============================================================================
// LIFECYCLE: DEACTIVATE / REACTIVATE / RESET
// =============================================================================

// Deactivate freezes the billing horizon at now and releases the seat.
// The record, payments, and fee history all survive.
func (s *Service) Deactivate(ctx context.Context, roll string) (*Student, error) {
	st, err := s.mustStudent(ctx, roll)
	if err != nil {
		return nil, err
	}
	if !st.Active {
		return nil, ErrStudentInactive
	}

	at := s.Today()
	st.Active = false
	st.DeactivatedAt = &at
	seat := st.AssignedSeat
	st.AssignedSeat = ""
	st.AssignedAt = nil
	if err := s.Store.SaveStudent(ctx, *st); err != nil {
		return nil, err
	}
	if seat != "" {
		if err := s.clearSeat(ctx, seat); err != nil {
			return nil, err
		}
	}
	s.logActivity(ctx, "Student deactivated: %s", roll)
	return st, nil
}

// Reactivate clears the deactivation stamp. The seat is not restored;
// assignment is a separate decision.
func (s *Service) Reactivate(ctx context.Context, roll string) (*Student, error) {
	st, err := s.mustStudent(ctx, roll)
	if err != nil {
		return nil, err
	}
	if st.Active {
		return nil, ErrStudentActive
	}
	st.Active = true
	st.DeactivatedAt = nil
	if err := s.Store.SaveStudent(ctx, *st); err != nil {
		return nil, err
	}
	s.logActivity(ctx, "Student activated: %s", roll)
	return st, nil
}

// ResetStudent starts a fresh billing cycle: payments move to past
// history, the admission anchor becomes today, and the fee-change log
// restarts at the current fee.
func (s *Service) ResetStudent(ctx context.Context, roll string) (*Student, error) {
	st, err := s.mustStudent(ctx, roll)
	if err != nil {
		return nil, err
	}

	today := s.Today()
	st.PastHistory = append(st.PastHistory, st.Payments...)
	st.Payments = nil
	st.AdmissionDate = today
	st.FeeChanges = []billing.FeeChange{{EffectiveOn: today, Fee: st.FeeAmount}}
	if err := s.Store.SaveStudent(ctx, *st); err != nil {
		return nil, err
	}
	s.logActivity(ctx, "Student reset: %s", roll)
	return st, nil
}

// =============================================================================
// PAYMENTS (mutable history, stable ids)
// =============================================================================

type PaymentInput struct {
	Amount   billing.Money
	Discount billing.Money
	Date     billing.Date
	Duration int
	Type     string
	Method   PaymentMethod
	Note     string
	Photo    string
}

func (in PaymentInput) validate() error {
	if !in.Amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	if in.Discount.IsNegative() {
		return ErrNegativeDiscount
	}
	return nil
}

func (s *Service) RecordPayment(ctx context.Context, roll string, in PaymentInput) (*Payment, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	st, err := s.mustStudent(ctx, roll)
	if err != nil {
		return nil, err
	}

	p := Payment{
		ID:       uuid.NewString(),
		Amount:   in.Amount,
		Discount: in.Discount,
		Date:     in.Date,
		Duration: in.Duration,
		Type:     in.Type,
		Method:   in.Method,
		Note:     in.Note,
		Photo:    in.Photo,
	}
	if p.Date.IsZero() {
		p.Date = s.Today()
	}
	if p.Method == "" {
		p.Method = MethodCash
	}

	st.Payments = append(st.Payments, p)
	if err := s.Store.SaveStudent(ctx, *st); err != nil {
		return nil, err
	}
	s.logActivity(ctx, "Payment of %s (discount %s, %s) added for %s",
		p.Amount, p.Discount, p.Method, roll)
	return &p, nil
}

func (s *Service) UpdatePayment(ctx context.Context, roll, paymentID string, in PaymentInput) (*Payment, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	st, err := s.mustStudent(ctx, roll)
	if err != nil {
		return nil, err
	}

	for i := range st.Payments {
		if st.Payments[i].ID != paymentID {
			continue
		}
		p := &st.Payments[i]
		p.Amount = in.Amount
		p.Discount = in.Discount
		if !in.Date.IsZero() {
			p.Date = in.Date
		}
		p.Duration = in.Duration
		p.Type = in.Type
		if in.Method != "" {
			p.Method = in.Method
		}
		p.Note = in.Note
		if in.Photo != "" {
			p.Photo = in.Photo
		}
		if err := s.Store.SaveStudent(ctx, *st); err != nil {
			return nil, err
		}
		s.logActivity(ctx, "Payment updated for %s", roll)
		out := *p
		return &out, nil
	}
	return nil, ErrPaymentNotFound
}

func (s *Service) DeletePayment(ctx context.Context, roll, paymentID string) error {
	st, err := s.mustStudent(ctx, roll)
	if err != nil {
		return err
	}
	for i := range st.Payments {
		if st.Payments[i].ID == paymentID {
			st.Payments = append(st.Payments[:i], st.Payments[i+1:]...)
			if err := s.Store.SaveStudent(ctx, *st); err != nil {
				return err
			}
			s.logActivity(ctx, "Payment deleted for %s", roll)
			return nil
		}
	}
	return ErrPaymentNotFound
}

// ChangeFee appends a fee change effective today.
func (s *Service) ChangeFee(ctx context.Context, roll string, fee billing.Money) (*Student, error) {
	if !fee.IsPositive() {
		return nil, ErrNonPositiveFee
	}
	st, err := s.mustStudent(ctx, roll)
	if err != nil {
		return nil, err
	}
	if fee.Equal(st.FeeAmount) {
		return st, nil
	}
	st.FeeChanges = append(st.FeeChanges, billing.FeeChange{EffectiveOn: s.Today(), Fee: fee})
	st.FeeAmount = fee
	if err := s.Store.SaveStudent(ctx, *st); err != nil {
		return nil, err
	}
	s.logActivity(ctx, "Fee changed to %s for %s", fee, roll)
	return st, nil
}

// =============================================================================
// PROJECTION QUERIES
// =============================================================================

// Financials projects the account as of now. Always recomputed; nothing
// is cached.
func (s *Service) Financials(ctx context.Context, roll string) (billing.Snapshot, error) {
	st, err := s.mustStudent(ctx, roll)
	if err != nil {
		return billing.Snapshot{}, err
	}
	return billing.Compute(st.Account(), s.Today()), nil
}

// DuesMessage renders the configured reminder template for a student,
// substituting {name}, {roll}, and {due}.
func (s *Service) DuesMessage(ctx context.Context, roll string) (string, error) {
	st, err := s.mustStudent(ctx, roll)
	if err != nil {
		return "", err
	}
	tpl, err := s.Store.GetSetting(ctx, SettingWATemplate)
	if err != nil {
		return "", err
	}
	if tpl == "" {
		tpl = DefaultWATemplate
	}
	snap := billing.Compute(st.Account(), s.Today())

	msg := strings.ReplaceAll(tpl, "{name}", st.Name)
	msg = strings.ReplaceAll(msg, "{roll}", st.Roll)
	msg = strings.ReplaceAll(msg, "{due}", snap.TotalDues.String())
	return msg, nil
}

// =============================================================================
// FACILITY SETTINGS
// =============================================================================

// FacilitySettings are the owner-editable preferences: the facility name,
// a payment QR code reference, and the dues reminder template.
type FacilitySettings struct {
	LibraryName string
	QRCode      string
	WATemplate  string
}

// Settings returns the stored preferences. An unset template reads as
// DefaultWATemplate, matching what DuesMessage would render.
func (s *Service) Settings(ctx context.Context) (*FacilitySettings, error) {
	out := &FacilitySettings{}
	var err error
	if out.LibraryName, err = s.Store.GetSetting(ctx, SettingLibraryName); err != nil {
		return nil, err
	}
	if out.QRCode, err = s.Store.GetSetting(ctx, SettingQRCode); err != nil {
		return nil, err
	}
	if out.WATemplate, err = s.Store.GetSetting(ctx, SettingWATemplate); err != nil {
		return nil, err
	}
	if out.WATemplate == "" {
		out.WATemplate = DefaultWATemplate
	}
	return out, nil
}

// UpdateSettings saves all three preferences. An empty template reverts
// the dues message to the default.
func (s *Service) UpdateSettings(ctx context.Context, in FacilitySettings) (*FacilitySettings, error) {
	if err := s.Store.SetSetting(ctx, SettingLibraryName, in.LibraryName); err != nil {
		return nil, err
	}
	if err := s.Store.SetSetting(ctx, SettingQRCode, in.QRCode); err != nil {
		return nil, err
	}
	if err := s.Store.SetSetting(ctx, SettingWATemplate, in.WATemplate); err != nil {
		return nil, err
	}
	s.logActivity(ctx, "Settings updated")
	return s.Settings(ctx)
}

// =============================================================================
// SEATS
// =============================================================================

// AssignSeat binds a seat to a roll. Any other seat held by the roll is
// freed first, keeping the one-seat-per-student invariant. An occupied
// seat is refused unless force is set, in which case the occupant loses it.
func (s *Service) AssignSeat(ctx context.Context, seatID, roll string, force bool) error {
	st, err := s.mustStudent(ctx, roll)
	if err != nil {
		return err
	}
	seat, err := s.Store.GetSeat(ctx, seatID)
	if err != nil {
		return err
	}
	if seat == nil {
		return ErrSeatNotFound
	}
	if seat.Occupied && seat.StudentRoll != roll && !force {
		return &SeatOccupiedError{SeatID: seatID, Occupant: seat.StudentRoll}
	}

	if err := s.freeSeatsOf(ctx, roll); err != nil {
		return err
	}
	if seat.Occupied && seat.StudentRoll != "" && seat.StudentRoll != roll {
		if evicted, err := s.Store.GetStudent(ctx, seat.StudentRoll); err != nil {
			return err
		} else if evicted != nil {
			evicted.AssignedSeat = ""
			evicted.AssignedAt = nil
			if err := s.Store.SaveStudent(ctx, *evicted); err != nil {
				return err
			}
		}
	}

	seat.Occupied = true
	seat.StudentRoll = roll
	if err := s.Store.SaveSeat(ctx, *seat); err != nil {
		return err
	}

	at := s.Clock()
	st.AssignedSeat = seatID
	st.AssignedAt = &at
	if err := s.Store.SaveStudent(ctx, *st); err != nil {
		return err
	}
	s.logActivity(ctx, "Assigned %s -> %s", roll, seatID)
	return nil
}

// ReleaseSeat clears both sides of a seat binding.
func (s *Service) ReleaseSeat(ctx context.Context, seatID string) error {
	seat, err := s.Store.GetSeat(ctx, seatID)
	if err != nil {
		return err
	}
	if seat == nil {
		return ErrSeatNotFound
	}
	roll := seat.StudentRoll
	if err := s.clearSeat(ctx, seatID); err != nil {
		return err
	}
	if roll != "" {
		if st, err := s.Store.GetStudent(ctx, roll); err != nil {
			return err
		} else if st != nil && st.AssignedSeat == seatID {
			st.AssignedSeat = ""
			st.AssignedAt = nil
			if err := s.Store.SaveStudent(ctx, *st); err != nil {
				return err
			}
		}
	}
	s.logActivity(ctx, "Released %s", seatID)
	return nil
}

func (s *Service) clearSeat(ctx context.Context, seatID string) error {
	seat, err := s.Store.GetSeat(ctx, seatID)
	if err != nil || seat == nil {
		return err
	}
	seat.Occupied = false
	seat.StudentRoll = ""
	return s.Store.SaveSeat(ctx, *seat)
}

func (s *Service) freeSeatsOf(ctx context.Context, roll string) error {
	seats, err := s.Store.ListSeats(ctx)
	if err != nil {
		return err
	}
	for _, seat := range seats {
		if seat.StudentRoll == roll {
			seat.Occupied = false
			seat.StudentRoll = ""
			if err := s.Store.SaveSeat(ctx, seat); err != nil {
				return err
			}
		}
	}
	return nil
}

// ConfigureHalls regenerates the grid for a new hall map, preserving
// bindings for seats that still exist.
func (s *Service) ConfigureHalls(ctx context.Context, config map[string]int) error {
	existing, err := s.Store.ListSeats(ctx)
	if err != nil {
		return err
	}
	byID := make(map[string]Seat, len(existing))
	for _, seat := range existing {
		byID[seat.ID] = seat
	}

	seats := GenerateSeats(config)
	for i := range seats {
		if old, ok := byID[seats[i].ID]; ok {
			seats[i].Occupied = old.Occupied
			seats[i].StudentRoll = old.StudentRoll
		}
	}
	if err := s.Store.ReplaceSeats(ctx, seats); err != nil {
		return err
	}

	raw, err := json.Marshal(config)
	if err != nil {
		return err
	}
	if err := s.Store.SetSetting(ctx, SettingHallsConfig, string(raw)); err != nil {
		return err
	}
	s.logActivity(ctx, "Hall configuration updated")
	return nil
}

// HallsConfig returns the stored hall map, or nil when unconfigured.
func (s *Service) HallsConfig(ctx context.Context) (map[string]int, error) {
	raw, err := s.Store.GetSetting(ctx, SettingHallsConfig)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}
	var config map[string]int
	if err := json.Unmarshal([]byte(raw), &config); err != nil {
		return nil, err
	}
	return config, nil
}

// SeatCountsByHall summarizes occupancy per hall plus a facility total.
func (s *Service) SeatCountsByHall(ctx context.Context) (map[string]SeatCounts, SeatCounts, error) {
	seats, err := s.Store.ListSeats(ctx)
	if err != nil {
		return nil, SeatCounts{}, err
	}
	perHall := make(map[string]SeatCounts)
	var total SeatCounts
	for _, seat := range seats {
		c := perHall[seat.Hall]
		c.Total++
		total.Total++
		if seat.Occupied {
			c.Occupied++
			total.Occupied++
		}
		perHall[seat.Hall] = c
	}
	for hall, c := range perHall {
		c.Available = c.Total - c.Occupied
		perHall[hall] = c
	}
	total.Available = total.Total - total.Occupied
	return perHall, total, nil
}

// =============================================================================
// ATTENDANCE
// =============================================================================

func (s *Service) MarkAttendance(ctx context.Context, roll string, day billing.Date, present bool) error {
	if _, err := s.mustStudent(ctx, roll); err != nil {
		return err
	}
	if day.IsZero() {
		day = s.Today()
	}
	return s.Store.MarkAttendance(ctx, day, roll, present)
}

func (s *Service) AttendanceOn(ctx context.Context, day billing.Date) (map[string]bool, error) {
	return s.Store.AttendanceOn(ctx, day)
}

// =============================================================================
// ACCOUNTS SUMMARY
// =============================================================================

// CollectionTotals splits net receipts by method. Discounts are forgiven
// money, not received money, so only Amount counts here.
type CollectionTotals struct {
	Total  billing.Money
	Cash   billing.Money
	Online billing.Money
}

func (t *CollectionTotals) add(p Payment) {
	t.Total = t.Total.Add(p.Amount)
	if p.Method == MethodOnline {
		t.Online = t.Online.Add(p.Amount)
	} else {
		t.Cash = t.Cash.Add(p.Amount)
	}
}

// DueEntry is one row of the dues list.
type DueEntry struct {
	Roll      string
	Name      string
	Seat      string
	Mobile    string
	TotalDues billing.Money
	PaidUntil *billing.Date
	DueSince  *billing.Date
	DaysDue   int
}

// Summary is the accounts page payload: collection totals for today,
// this month, and this year, plus every active student owing money,
// longest-overdue first.
type Summary struct {
	Today CollectionTotals
	Month CollectionTotals
	Year  CollectionTotals
	Dues  []DueEntry
}

func (s *Service) AccountsSummary(ctx context.Context) (*Summary, error) {
	students, err := s.Store.ListStudents(ctx)
	if err != nil {
		return nil, err
	}

	now := s.Today()
	monthStart := billing.NewDate(now.Year(), now.Month(), 1)
	yearStart := billing.NewDate(now.Year(), time.January, 1)

	sum := &Summary{
		Today: zeroTotals(), Month: zeroTotals(), Year: zeroTotals(),
	}

	for i := range students {
		st := &students[i]
		for _, p := range st.Payments {
			if p.Date.Equal(now) {
				sum.Today.add(p)
			}
			if p.Date.AfterOrEqual(monthStart) {
				sum.Month.add(p)
			}
			if p.Date.AfterOrEqual(yearStart) {
				sum.Year.add(p)
			}
		}

		snap := billing.Compute(st.Account(), now)
		if snap.TotalDues.IsPositive() && st.FeeAmount.IsPositive() && st.Active {
			mobile := st.StudentMobile
			if mobile == "" {
				mobile = st.ParentMobile
			}
			sum.Dues = append(sum.Dues, DueEntry{
				Roll:      st.Roll,
				Name:      st.Name,
				Seat:      st.AssignedSeat,
				Mobile:    mobile,
				TotalDues: snap.TotalDues,
				PaidUntil: snap.PaidUntil,
				DueSince:  snap.DueSince,
				DaysDue:   snap.DaysDue,
			})
		}
	}

	sort.SliceStable(sum.Dues, func(i, j int) bool {
		a, b := sum.Dues[i].PaidUntil, sum.Dues[j].PaidUntil
		switch {
		case a == nil:
			return b != nil
		case b == nil:
			return false
		default:
			return a.Before(*b)
		}
	})
	return sum, nil
}

func zeroTotals() CollectionTotals {
	z := billing.NewMoney(0)
	return CollectionTotals{Total: z, Cash: z, Online: z}
}

// =============================================================================
// EXPORT
// =============================================================================

// ExportStudentsCSV writes the roll/name/mobile sheet. The student's own
// mobile wins; the parent's is the fallback.
func (s *Service) ExportStudentsCSV(ctx context.Context, w io.Writer) error {
	students, err := s.Store.ListStudents(ctx)
	if err != nil {
		return err
	}
	sort.Slice(students, func(i, j int) bool { return students[i].Roll < students[j].Roll })

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"roll", "name", "studentMobile"}); err != nil {
		return err
	}
	for _, st := range students {
		mobile := st.StudentMobile
		if mobile == "" {
			mobile = st.ParentMobile
		}
		if err := cw.Write([]string{st.Roll, st.Name, mobile}); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	s.logActivity(ctx, "Exported students CSV")
	return nil
}

// StateExport is the full backup payload.
type StateExport struct {
	ExportedAt time.Time                  `json:"exported_at"`
	Students   []Student                  `json:"students"`
	Seats      []Seat                     `json:"seats"`
	Shifts     []TimeShift                `json:"shifts"`
	Attendance map[string]map[string]bool `json:"attendance"`
	Settings   map[string]string          `json:"settings"`
	Activities []Activity                 `json:"activities"`
}

func (s *Service) ExportState(ctx context.Context) (*StateExport, error) {
	students, err := s.Store.ListStudents(ctx)
	if err != nil {
		return nil, err
	}
	seats, err := s.Store.ListSeats(ctx)
	if err != nil {
		return nil, err
	}
	shifts, err := s.Store.ListShifts(ctx)
	if err != nil {
		return nil, err
	}
	attendance, err := s.Store.AllAttendance(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := s.Store.ListSettings(ctx)
	if err != nil {
		return nil, err
	}
	activities, err := s.Store.RecentActivities(ctx, 20)
	if err != nil {
		return nil, err
	}
	return &StateExport{
		ExportedAt: s.Clock(),
		Students:   students,
		Seats:      seats,
		Shifts:     shifts,
		Attendance: attendance,
		Settings:   settings,
		Activities: activities,
	}, nil
}

// =============================================================================
// USERS / CREDENTIAL GATE
// =============================================================================

// EnsureOwner seeds the single owner credential when no user exists yet.
func (s *Service) EnsureOwner(ctx context.Context, username, password string) error {
	users, err := s.Store.ListUsers(ctx)
	if err != nil {
		return err
	}
	if len(users) > 0 {
		return nil
	}
	return s.Store.SaveUser(ctx, User{
		Username:         strings.ToUpper(strings.TrimSpace(username)),
		Password:         password,
		SecurityQuestion: "Your facility name?",
		SecurityAnswer:   "default",
		Role:             "owner",
	})
}

func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, err := s.Store.GetUser(ctx, strings.ToUpper(strings.TrimSpace(username)))
	if err != nil {
		return nil, err
	}
	if u == nil || u.Password != password {
		return nil, ErrBadCredentials
	}
	s.logActivity(ctx, "User logged in: %s", u.Username)
	return u, nil
}

func (s *Service) ChangePassword(ctx context.Context, username, current, next string) error {
	u, err := s.Store.GetUser(ctx, strings.ToUpper(strings.TrimSpace(username)))
	if err != nil {
		return err
	}
	if u == nil || u.Password != current {
		return ErrBadCredentials
	}
	u.Password = next
	if err := s.Store.SaveUser(ctx, *u); err != nil {
		return err
	}
	s.logActivity(ctx, "Password changed for %s", username)
	return nil
}

// SecurityQuestion returns the reset prompt for a username.
func (s *Service) SecurityQuestion(ctx context.Context, username string) (string, error) {
	u, err := s.Store.GetUser(ctx, strings.ToUpper(strings.TrimSpace(username)))
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", ErrUserNotFound
	}
	return u.SecurityQuestion, nil
}

// ResetPassword verifies the security answer (case-insensitive, trimmed)
// and sets a new password.
func (s *Service) ResetPassword(ctx context.Context, username, answer, next string) error {
	u, err := s.Store.GetUser(ctx, strings.ToUpper(strings.TrimSpace(username)))
	if err != nil {
		return err
	}
	if u == nil {
		return ErrUserNotFound
	}
	if !strings.EqualFold(strings.TrimSpace(u.SecurityAnswer), strings.TrimSpace(answer)) {
		return ErrBadSecurityAnswer
	}
	u.Password = next
	if err := s.Store.SaveUser(ctx, *u); err != nil {
		return err
	}
	s.logActivity(ctx, "Password reset for %s", u.Username)
	return nil
}

// =============================================================================
// ACTIVITY FEED
// =============================================================================

func (s *Service) RecentActivities(ctx context.Context, limit int) ([]Activity, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.Store.RecentActivities(ctx, limit)
}
