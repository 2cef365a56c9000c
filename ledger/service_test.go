package ledger_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/studyspace/fee-engine/billing"
	"github.com/studyspace/fee-engine/ledger"
	"github.com/studyspace/fee-engine/ledger/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// fixedNow pins the clock so projections and fee changes are deterministic.
var fixedNow = time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

func newService(t *testing.T) *ledger.Service {
	t.Helper()
	svc := ledger.NewService(store.NewMemory())
	svc.Now = func() time.Time { return fixedNow }
	return svc
}

func profile(roll string) ledger.StudentProfile {
	return ledger.StudentProfile{
		Roll:          roll,
		Name:          "Student " + roll,
		FeeAmount:     billing.NewMoney(1000),
		AdmissionDate: billing.NewDate(2024, time.January, 1),
	}
}

func enroll(t *testing.T, svc *ledger.Service, roll string) *ledger.Student {
	t.Helper()
	st, err := svc.EnrollStudent(context.Background(), profile(roll))
	require.NoError(t, err)
	return st
}

func payment(amount int64) ledger.PaymentInput {
	return ledger.PaymentInput{Amount: billing.NewMoney(amount)}
}

// =============================================================================
// ENROLLMENT
// =============================================================================

func TestEnrollStudent(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	st := enroll(t, svc, "R1")

	require.True(t, st.Active)
	require.Equal(t, "2024-01-01", st.AdmissionDate.String())
	require.Empty(t, st.FeeChanges, "admission fee is synthesized, not logged")

	// Duplicate roll is refused.
	_, err := svc.EnrollStudent(ctx, profile("R1"))
	require.ErrorIs(t, err, ledger.ErrStudentExists)
}

func TestEnrollStudent_Validation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	p := profile("R1")
	p.Name = " "
	_, err := svc.EnrollStudent(ctx, p)
	require.ErrorIs(t, err, ledger.ErrNameRequired)

	p = profile("R1")
	p.FeeAmount = billing.NewMoney(0)
	_, err = svc.EnrollStudent(ctx, p)
	require.ErrorIs(t, err, ledger.ErrNonPositiveFee)

	p = profile("")
	_, err = svc.EnrollStudent(ctx, p)
	require.ErrorIs(t, err, ledger.ErrRollRequired)
}

func TestEnrollStudent_MissingAdmissionDefaultsToToday(t *testing.T) {
	svc := newService(t)

	p := profile("R1")
	p.AdmissionDate = billing.Date{}
	st, err := svc.EnrollStudent(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, "2024-03-15", st.AdmissionDate.String())
}

func TestEnrollStudent_UnknownShiftRejected(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	require.NoError(t, svc.Store.SaveShifts(ctx, ledger.DefaultShifts))

	p := profile("R1")
	p.Shift = "Afternoon"
	_, err := svc.EnrollStudent(ctx, p)
	require.ErrorIs(t, err, ledger.ErrShiftNotFound)

	p.Shift = "Morning"
	st, err := svc.EnrollStudent(ctx, p)
	require.NoError(t, err)
	require.Equal(t, "Morning", st.Shift)

	// Updates check the shift name the same way.
	p.Shift = "Afternoon"
	_, err = svc.UpdateStudent(ctx, p)
	require.ErrorIs(t, err, ledger.ErrShiftNotFound)
}

func TestUpdateStudent_FeeChangeAppends(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	enroll(t, svc, "R1")

	p := profile("R1")
	p.FeeAmount = billing.NewMoney(1200)
	st, err := svc.UpdateStudent(ctx, p)
	require.NoError(t, err)

	require.True(t, st.FeeAmount.Equal(billing.NewMoney(1200)))
	require.Len(t, st.FeeChanges, 1)
	require.Equal(t, "2024-03-15", st.FeeChanges[0].EffectiveOn.String())

	// Same fee again: no new entry.
	st, err = svc.UpdateStudent(ctx, p)
	require.NoError(t, err)
	require.Len(t, st.FeeChanges, 1)
}

// =============================================================================
// PAYMENTS
// =============================================================================

func TestRecordPayment(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	enroll(t, svc, "R1")

	p, err := svc.RecordPayment(ctx, "R1", payment(1000))
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)
	require.Equal(t, "2024-03-15", p.Date.String(), "date defaults to today")
	require.Equal(t, ledger.MethodCash, p.Method, "method defaults to cash")

	_, err = svc.RecordPayment(ctx, "R1", payment(0))
	require.ErrorIs(t, err, ledger.ErrNonPositiveAmount)

	in := payment(500)
	in.Discount = billing.NewMoney(-1)
	_, err = svc.RecordPayment(ctx, "R1", in)
	require.ErrorIs(t, err, ledger.ErrNegativeDiscount)

	_, err = svc.RecordPayment(ctx, "NOPE", payment(100))
	require.ErrorIs(t, err, ledger.ErrStudentNotFound)
}

func TestUpdateAndDeletePayment(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	enroll(t, svc, "R1")

	p, err := svc.RecordPayment(ctx, "R1", payment(1000))
	require.NoError(t, err)

	in := payment(800)
	in.Method = ledger.MethodOnline
	updated, err := svc.UpdatePayment(ctx, "R1", p.ID, in)
	require.NoError(t, err)
	require.True(t, updated.Amount.Equal(billing.NewMoney(800)))
	require.Equal(t, ledger.MethodOnline, updated.Method)

	_, err = svc.UpdatePayment(ctx, "R1", "missing-id", in)
	require.ErrorIs(t, err, ledger.ErrPaymentNotFound)

	require.NoError(t, svc.DeletePayment(ctx, "R1", p.ID))
	require.ErrorIs(t, svc.DeletePayment(ctx, "R1", p.ID), ledger.ErrPaymentNotFound)
}

func TestPaymentEditChangesProjection(t *testing.T) {
	// Payments are mutable: editing history changes the recomputed dues.
	svc := newService(t)
	ctx := context.Background()
	enroll(t, svc, "R1")

	p, err := svc.RecordPayment(ctx, "R1", payment(3000))
	require.NoError(t, err)

	snap, err := svc.Financials(ctx, "R1")
	require.NoError(t, err)
	require.True(t, snap.TotalDues.IsZero(), "Jan..Mar covered by 3000")

	_, err = svc.UpdatePayment(ctx, "R1", p.ID, payment(1000))
	require.NoError(t, err)

	snap, err = svc.Financials(ctx, "R1")
	require.NoError(t, err)
	require.True(t, snap.TotalDues.Equal(billing.NewMoney(2000)), "dues = %s", snap.TotalDues)
}

// =============================================================================
// LIFECYCLE
// =============================================================================

func TestDeactivateReleasesSeat(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	require.NoError(t, svc.ConfigureHalls(ctx, map[string]int{"A": 5}))
	enroll(t, svc, "R1")
	require.NoError(t, svc.AssignSeat(ctx, "A1", "R1", false))

	st, err := svc.Deactivate(ctx, "R1")
	require.NoError(t, err)
	require.False(t, st.Active)
	require.NotNil(t, st.DeactivatedAt)
	require.Equal(t, "2024-03-15", st.DeactivatedAt.String())
	require.Empty(t, st.AssignedSeat)

	seat, err := svc.Store.GetSeat(ctx, "A1")
	require.NoError(t, err)
	require.False(t, seat.Occupied)

	// Double deactivation is refused.
	_, err = svc.Deactivate(ctx, "R1")
	require.ErrorIs(t, err, ledger.ErrStudentInactive)

	st, err = svc.Reactivate(ctx, "R1")
	require.NoError(t, err)
	require.True(t, st.Active)
	require.Nil(t, st.DeactivatedAt)

	_, err = svc.Reactivate(ctx, "R1")
	require.ErrorIs(t, err, ledger.ErrStudentActive)
}

func TestResetStudent(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	enroll(t, svc, "R1")
	_, err := svc.RecordPayment(ctx, "R1", payment(2000))
	require.NoError(t, err)

	st, err := svc.ResetStudent(ctx, "R1")
	require.NoError(t, err)

	require.Empty(t, st.Payments)
	require.Len(t, st.PastHistory, 1, "payments move to past history")
	require.Equal(t, "2024-03-15", st.AdmissionDate.String(), "billing anchor restarts today")
	require.Len(t, st.FeeChanges, 1)
	require.True(t, st.FeeChanges[0].Fee.Equal(st.FeeAmount))

	// Archived payments no longer feed the projection.
	snap, err := svc.Financials(ctx, "R1")
	require.NoError(t, err)
	require.True(t, snap.AmountPaid.IsZero())
	require.True(t, snap.TotalDues.Equal(billing.NewMoney(1000)), "dues = %s", snap.TotalDues)
}

// =============================================================================
// SEATS
// =============================================================================

func TestAssignSeat(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	require.NoError(t, svc.ConfigureHalls(ctx, map[string]int{"A": 3}))
	enroll(t, svc, "R1")
	enroll(t, svc, "R2")

	require.NoError(t, svc.AssignSeat(ctx, "A1", "R1", false))

	// Occupied seat refused without force; the error names the occupant.
	err := svc.AssignSeat(ctx, "A1", "R2", false)
	require.ErrorIs(t, err, ledger.ErrSeatOccupied)
	require.Contains(t, err.Error(), "R1")

	// Force evicts the current occupant.
	require.NoError(t, svc.AssignSeat(ctx, "A1", "R2", true))
	st1, err := svc.Store.GetStudent(ctx, "R1")
	require.NoError(t, err)
	require.Empty(t, st1.AssignedSeat)

	// Unknown seat and unknown student.
	require.ErrorIs(t, svc.AssignSeat(ctx, "Z9", "R1", false), ledger.ErrSeatNotFound)
	require.ErrorIs(t, svc.AssignSeat(ctx, "A2", "NOPE", false), ledger.ErrStudentNotFound)
}

func TestAssignSeat_OneSeatPerStudent(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	require.NoError(t, svc.ConfigureHalls(ctx, map[string]int{"A": 3}))
	enroll(t, svc, "R1")

	require.NoError(t, svc.AssignSeat(ctx, "A1", "R1", false))
	require.NoError(t, svc.AssignSeat(ctx, "A2", "R1", false))

	// Moving to A2 freed A1.
	a1, err := svc.Store.GetSeat(ctx, "A1")
	require.NoError(t, err)
	require.False(t, a1.Occupied)

	st, err := svc.Store.GetStudent(ctx, "R1")
	require.NoError(t, err)
	require.Equal(t, "A2", st.AssignedSeat)
}

func TestReleaseSeat(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	require.NoError(t, svc.ConfigureHalls(ctx, map[string]int{"A": 2}))
	enroll(t, svc, "R1")
	require.NoError(t, svc.AssignSeat(ctx, "A1", "R1", false))

	require.NoError(t, svc.ReleaseSeat(ctx, "A1"))

	seat, err := svc.Store.GetSeat(ctx, "A1")
	require.NoError(t, err)
	require.False(t, seat.Occupied)
	st, err := svc.Store.GetStudent(ctx, "R1")
	require.NoError(t, err)
	require.Empty(t, st.AssignedSeat)
}

func TestConfigureHalls_PreservesSurvivingBindings(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	require.NoError(t, svc.ConfigureHalls(ctx, map[string]int{"A": 5, "B": 2}))
	enroll(t, svc, "R1")
	require.NoError(t, svc.AssignSeat(ctx, "A3", "R1", false))

	// Shrink hall B away, keep A.
	require.NoError(t, svc.ConfigureHalls(ctx, map[string]int{"A": 4}))

	seats, err := svc.Store.ListSeats(ctx)
	require.NoError(t, err)
	require.Len(t, seats, 4)

	a3, err := svc.Store.GetSeat(ctx, "A3")
	require.NoError(t, err)
	require.True(t, a3.Occupied)
	require.Equal(t, "R1", a3.StudentRoll)
}

// =============================================================================
// ACCOUNTS SUMMARY
// =============================================================================

func TestAccountsSummary(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	enroll(t, svc, "R1")
	enroll(t, svc, "R2")

	// R1: paid today, online. R2: paid in January, cash - counts for the
	// year but not this month or today.
	in := payment(1000)
	in.Method = ledger.MethodOnline
	_, err := svc.RecordPayment(ctx, "R1", in)
	require.NoError(t, err)

	in = payment(600)
	in.Date = billing.NewDate(2024, time.January, 10)
	_, err = svc.RecordPayment(ctx, "R2", in)
	require.NoError(t, err)

	sum, err := svc.AccountsSummary(ctx)
	require.NoError(t, err)

	require.True(t, sum.Today.Total.Equal(billing.NewMoney(1000)))
	require.True(t, sum.Today.Online.Equal(billing.NewMoney(1000)))
	require.True(t, sum.Today.Cash.IsZero())
	require.True(t, sum.Month.Total.Equal(billing.NewMoney(1000)))
	require.True(t, sum.Year.Total.Equal(billing.NewMoney(1600)))
	require.True(t, sum.Year.Cash.Equal(billing.NewMoney(600)))

	// Both owe money at 2024-03-15 (expected 3000 each); R2 paid less so
	// its paid-through date is earlier and it sorts first.
	require.Len(t, sum.Dues, 2)
	require.Equal(t, "R2", sum.Dues[0].Roll)
	require.Equal(t, "R1", sum.Dues[1].Roll)
}

func TestAccountsSummary_ExcludesInactiveAndSettled(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	enroll(t, svc, "R1")
	enroll(t, svc, "R2")
	enroll(t, svc, "R3")

	// R1 fully paid, R2 deactivated, R3 owes.
	_, err := svc.RecordPayment(ctx, "R1", payment(3000))
	require.NoError(t, err)
	_, err = svc.Deactivate(ctx, "R2")
	require.NoError(t, err)

	sum, err := svc.AccountsSummary(ctx)
	require.NoError(t, err)
	require.Len(t, sum.Dues, 1)
	require.Equal(t, "R3", sum.Dues[0].Roll)
}

// =============================================================================
// MESSAGES AND EXPORT
// =============================================================================

func TestDuesMessage(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	enroll(t, svc, "R1")

	// Default template.
	msg, err := svc.DuesMessage(ctx, "R1")
	require.NoError(t, err)
	require.Contains(t, msg, "Student R1")
	require.Contains(t, msg, "3000")

	// Custom template with all three placeholders.
	_, err = svc.UpdateSettings(ctx, ledger.FacilitySettings{
		WATemplate: "{roll}/{name}: pay {due}",
	})
	require.NoError(t, err)
	msg, err = svc.DuesMessage(ctx, "R1")
	require.NoError(t, err)
	require.Equal(t, "R1/Student R1: pay 3000", msg)
}

func TestUpdateSettings(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	// Unconfigured: the template reads as the default.
	cfg, err := svc.Settings(ctx)
	require.NoError(t, err)
	require.Empty(t, cfg.LibraryName)
	require.Equal(t, ledger.DefaultWATemplate, cfg.WATemplate)

	cfg, err = svc.UpdateSettings(ctx, ledger.FacilitySettings{
		LibraryName: "Sunrise Study Hall",
		QRCode:      "upi://pay?pa=sunrise@bank",
		WATemplate:  "Dear {name}, {due} pending.",
	})
	require.NoError(t, err)
	require.Equal(t, "Sunrise Study Hall", cfg.LibraryName)
	require.Equal(t, "upi://pay?pa=sunrise@bank", cfg.QRCode)
	require.Equal(t, "Dear {name}, {due} pending.", cfg.WATemplate)

	// Clearing the template reverts the dues message to the default.
	cfg, err = svc.UpdateSettings(ctx, ledger.FacilitySettings{
		LibraryName: "Sunrise Study Hall",
	})
	require.NoError(t, err)
	require.Equal(t, ledger.DefaultWATemplate, cfg.WATemplate)
}

func TestExportStudentsCSV(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	p := profile("R1")
	p.StudentMobile = "9876543210"
	_, err := svc.EnrollStudent(ctx, p)
	require.NoError(t, err)

	// No student mobile: parent's number is the fallback.
	p = profile("R2")
	p.ParentMobile = "9123456780"
	_, err = svc.EnrollStudent(ctx, p)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportStudentsCSV(ctx, &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "roll,name,studentMobile", lines[0])
	require.Equal(t, "R1,Student R1,9876543210", lines[1])
	require.Equal(t, "R2,Student R2,9123456780", lines[2])
}

// =============================================================================
// USERS
// =============================================================================

func TestAuthenticate(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	require.NoError(t, svc.EnsureOwner(ctx, "owner", "secret"))

	// Username matching is case-insensitive (stored uppercase).
	u, err := svc.Authenticate(ctx, "Owner", "secret")
	require.NoError(t, err)
	require.Equal(t, "OWNER", u.Username)

	_, err = svc.Authenticate(ctx, "owner", "wrong")
	require.ErrorIs(t, err, ledger.ErrBadCredentials)

	// EnsureOwner is a no-op once a user exists.
	require.NoError(t, svc.EnsureOwner(ctx, "other", "x"))
	_, err = svc.Authenticate(ctx, "other", "x")
	require.ErrorIs(t, err, ledger.ErrBadCredentials)
}

func TestPasswordResetFlow(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	require.NoError(t, svc.Store.SaveUser(ctx, ledger.User{
		Username:         "OWNER",
		Password:         "old",
		SecurityQuestion: "Favourite book?",
		SecurityAnswer:   "Gitanjali",
		Role:             "owner",
	}))

	q, err := svc.SecurityQuestion(ctx, "owner")
	require.NoError(t, err)
	require.Equal(t, "Favourite book?", q)

	require.ErrorIs(t, svc.ResetPassword(ctx, "owner", "wrong", "new"),
		ledger.ErrBadSecurityAnswer)

	// Answer check is trimmed and case-insensitive.
	require.NoError(t, svc.ResetPassword(ctx, "owner", "  gitanjali ", "new"))
	_, err = svc.Authenticate(ctx, "owner", "new")
	require.NoError(t, err)
}

func TestChangePassword(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	require.NoError(t, svc.EnsureOwner(ctx, "owner", "old"))

	require.ErrorIs(t, svc.ChangePassword(ctx, "owner", "bad", "new"),
		ledger.ErrBadCredentials)
	require.NoError(t, svc.ChangePassword(ctx, "owner", "old", "new"))
	_, err := svc.Authenticate(ctx, "owner", "new")
	require.NoError(t, err)
}

// =============================================================================
// ACTIVITY FEED
// =============================================================================

func TestActivitiesRecorded(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	enroll(t, svc, "R1")
	_, err := svc.RecordPayment(ctx, "R1", payment(500))
	require.NoError(t, err)

	activities, err := svc.RecentActivities(ctx, 10)
	require.NoError(t, err)
	require.Len(t, activities, 2)
	// Newest first.
	require.Contains(t, activities[0].Text, "Payment")
	require.Contains(t, activities[1].Text, "enrolled")
}
