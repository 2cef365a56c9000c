package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/studyspace/fee-engine/api"
	"github.com/studyspace/fee-engine/ledger"
	"github.com/studyspace/fee-engine/ledger/store"
)

// =============================================================================
// TEST HARNESS
// =============================================================================

type harness struct {
	router http.Handler
	svc    *ledger.Service
	token  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	svc := ledger.NewService(store.NewMemory())
	svc.Now = func() time.Time {
		return time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)
	}
	require.NoError(t, svc.EnsureOwner(context.Background(), "owner", "admin"))

	auth, err := api.NewAuthenticator()
	require.NoError(t, err)

	h := api.NewHandler(svc, auth)
	router := api.NewRouter(h)

	hn := &harness{router: router, svc: svc}

	// Log in once for the protected routes.
	rec := hn.do(t, "POST", "/api/login", map[string]any{
		"username": "owner", "password": "admin",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	hn.token = login.Token
	return hn
}

func (hn *harness) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if hn.token != "" {
		req.Header.Set("Authorization", "Bearer "+hn.token)
	}
	rec := httptest.NewRecorder()
	hn.router.ServeHTTP(rec, req)
	return rec
}

func (hn *harness) enroll(t *testing.T, roll string) {
	t.Helper()
	rec := hn.do(t, "POST", "/api/students", map[string]any{
		"roll": roll, "name": "Student " + roll,
		"feeAmount": 1000, "admissionDate": "2024-01-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// =============================================================================
// AUTH
// =============================================================================

func TestLoginAndTokenGate(t *testing.T) {
	hn := newHarness(t)

	// No token: rejected.
	anon := &harness{router: hn.router}
	rec := anon.do(t, "GET", "/api/students", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Bad credentials.
	rec = anon.do(t, "POST", "/api/login", map[string]any{
		"username": "owner", "password": "nope",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Valid token passes the gate.
	rec = hn.do(t, "GET", "/api/students", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestPasswordResetEndpoints(t *testing.T) {
	hn := newHarness(t)

	rec := hn.do(t, "GET", "/api/password/question?username=owner", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = hn.do(t, "POST", "/api/password/reset", map[string]any{
		"username": "owner", "answer": "default", "new": "fresh",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = hn.do(t, "POST", "/api/login", map[string]any{
		"username": "owner", "password": "fresh",
	})
	require.Equal(t, http.StatusOK, rec.Code)
}

// =============================================================================
// STUDENTS
// =============================================================================

func TestStudentLifecycleOverHTTP(t *testing.T) {
	hn := newHarness(t)
	hn.enroll(t, "R1")

	// Created with projected financials: Jan..Mar expected, nothing paid.
	rec := hn.do(t, "GET", "/api/students/R1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var student struct {
		Roll       string `json:"roll"`
		Active     bool   `json:"active"`
		Financials struct {
			TotalDues float64 `json:"totalDues"`
		} `json:"financials"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &student))
	require.Equal(t, "R1", student.Roll)
	require.True(t, student.Active)
	require.Equal(t, 3000.0, student.Financials.TotalDues)

	// Duplicate enrollment conflicts.
	rec = hn.do(t, "POST", "/api/students", map[string]any{
		"roll": "R1", "name": "Again", "feeAmount": 1000,
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	// Unknown roll.
	rec = hn.do(t, "GET", "/api/students/NOPE", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	// Delete.
	rec = hn.do(t, "DELETE", "/api/students/R1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = hn.do(t, "GET", "/api/students/R1", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStudentValidation(t *testing.T) {
	hn := newHarness(t)

	// Fee must be positive.
	rec := hn.do(t, "POST", "/api/students", map[string]any{
		"roll": "R1", "name": "X", "feeAmount": 0,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Mobile must be ten digits.
	rec = hn.do(t, "POST", "/api/students", map[string]any{
		"roll": "R1", "name": "X", "feeAmount": 1000, "studentMobile": "12345",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Aadhar must be twelve digits.
	rec = hn.do(t, "POST", "/api/students", map[string]any{
		"roll": "R1", "name": "X", "feeAmount": 1000, "aadhar": "12AB",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// PAYMENTS AND FINANCIALS
// =============================================================================

func TestPaymentsOverHTTP(t *testing.T) {
	hn := newHarness(t)
	hn.enroll(t, "R1")

	rec := hn.do(t, "POST", "/api/students/R1/payments", map[string]any{
		"amount": 2000, "method": "online",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var p struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	require.NotEmpty(t, p.ID)

	// Jan+Feb covered, Mar outstanding.
	rec = hn.do(t, "GET", "/api/students/R1/financials", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var fin struct {
		TotalDues  float64 `json:"totalDues"`
		PaidMonths int     `json:"paidMonths"`
		PaidUntil  *string `json:"paidUntil"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fin))
	require.Equal(t, 1000.0, fin.TotalDues)
	require.Equal(t, 2, fin.PaidMonths)
	require.NotNil(t, fin.PaidUntil)
	require.Equal(t, "2024-02-29", *fin.PaidUntil)

	// Zero amount rejected by validation.
	rec = hn.do(t, "POST", "/api/students/R1/payments", map[string]any{"amount": 0})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Delete unknown payment.
	rec = hn.do(t, "DELETE", "/api/students/R1/payments/none", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	// Delete the real one; dues return.
	rec = hn.do(t, "DELETE", "/api/students/R1/payments/"+p.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = hn.do(t, "GET", "/api/students/R1/financials", nil)
	fin2 := decode[map[string]any](t, rec)
	require.Equal(t, 3000.0, fin2["totalDues"])
}

func TestChangeFeeAndDeactivate(t *testing.T) {
	hn := newHarness(t)
	hn.enroll(t, "R1")

	rec := hn.do(t, "POST", "/api/students/R1/fee", map[string]any{"fee": 1200})
	require.Equal(t, http.StatusOK, rec.Code)
	var st struct {
		FeeAmount  float64 `json:"feeAmount"`
		FeeChanges []struct {
			Date string  `json:"date"`
			Fee  float64 `json:"fee"`
		} `json:"feeChanges"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	require.Equal(t, 1200.0, st.FeeAmount)
	require.Len(t, st.FeeChanges, 1)
	require.Equal(t, "2024-03-15", st.FeeChanges[0].Date)

	rec = hn.do(t, "POST", "/api/students/R1/deactivate", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = hn.do(t, "POST", "/api/students/R1/deactivate", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	rec = hn.do(t, "POST", "/api/students/R1/reactivate", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

// =============================================================================
// SEATS AND HALLS
// =============================================================================

func TestSeatEndpoints(t *testing.T) {
	hn := newHarness(t)
	hn.enroll(t, "R1")
	hn.enroll(t, "R2")

	rec := hn.do(t, "PUT", "/api/halls", map[string]any{
		"config": map[string]int{"A": 3},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = hn.do(t, "POST", "/api/seats/A1/assign", map[string]any{"roll": "R1"})
	require.Equal(t, http.StatusOK, rec.Code)

	// Occupied without force conflicts.
	rec = hn.do(t, "POST", "/api/seats/A1/assign", map[string]any{"roll": "R2"})
	require.Equal(t, http.StatusConflict, rec.Code)

	// Grid reflects the binding.
	rec = hn.do(t, "GET", "/api/seats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var seats struct {
		Seats []struct {
			ID          string `json:"id"`
			Occupied    bool   `json:"occupied"`
			StudentName string `json:"studentName"`
		} `json:"seats"`
		Counts struct {
			Total     int `json:"total"`
			Occupied  int `json:"occupied"`
			Available int `json:"available"`
		} `json:"counts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &seats))
	require.Len(t, seats.Seats, 3)
	require.Equal(t, 1, seats.Counts.Occupied)
	require.Equal(t, 2, seats.Counts.Available)
	require.Equal(t, "Student R1", seats.Seats[0].StudentName)

	rec = hn.do(t, "POST", "/api/seats/A1/release", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = hn.do(t, "POST", "/api/seats/Z9/release", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// SHIFTS, ATTENDANCE, SUMMARY
// =============================================================================

func TestShiftAndAttendanceEndpoints(t *testing.T) {
	hn := newHarness(t)
	hn.enroll(t, "R1")

	rec := hn.do(t, "PUT", "/api/shifts", map[string]any{
		"shifts": []map[string]string{
			{"name": "Morning", "start": "06:00", "end": "14:00"},
			{"name": "Night", "start": "22:00", "end": "06:00"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = hn.do(t, "GET", "/api/shifts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	shifts := decode[[]map[string]any](t, rec)
	require.Len(t, shifts, 2)

	// Completion flags come from the pinned 10:00 clock: the night shift
	// has ended, the morning one is still running.
	require.Equal(t, "Morning", shifts[0]["name"])
	require.NotEqual(t, true, shifts[0]["complete"])
	require.Equal(t, "Night", shifts[1]["name"])
	require.Equal(t, true, shifts[1]["complete"])

	rec = hn.do(t, "POST", "/api/attendance", map[string]any{
		"roll": "R1", "date": "2024-03-15", "present": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = hn.do(t, "GET", "/api/attendance?date=2024-03-15", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	marks := decode[map[string]bool](t, rec)
	require.True(t, marks["R1"])
}

func TestSummaryAndExportEndpoints(t *testing.T) {
	hn := newHarness(t)
	hn.enroll(t, "R1")

	rec := hn.do(t, "POST", "/api/students/R1/payments", map[string]any{"amount": 1000})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = hn.do(t, "GET", "/api/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var sum struct {
		Year struct {
			Total float64 `json:"total"`
			Cash  float64 `json:"cash"`
		} `json:"year"`
		Dues []struct {
			Roll string `json:"roll"`
		} `json:"dues"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	require.Equal(t, 1000.0, sum.Year.Total)
	require.Equal(t, 1000.0, sum.Year.Cash)
	require.Len(t, sum.Dues, 1)

	rec = hn.do(t, "GET", "/api/export/students.csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Body.String(), "roll,name,studentMobile")
	require.Contains(t, rec.Body.String(), "R1")

	rec = hn.do(t, "GET", "/api/activities", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	activities := decode[[]map[string]any](t, rec)
	require.NotEmpty(t, activities)
}

func TestDuesMessageEndpoint(t *testing.T) {
	hn := newHarness(t)
	hn.enroll(t, "R1")

	rec := hn.do(t, "GET", "/api/students/R1/message", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	msg := decode[map[string]string](t, rec)
	require.Contains(t, msg["message"], "Student R1")
	require.Contains(t, msg["message"], "3000")
}

func TestSettingsEndpoints(t *testing.T) {
	hn := newHarness(t)
	hn.enroll(t, "R1")

	// Unconfigured: the template falls back to the default wording.
	rec := hn.do(t, "GET", "/api/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	settings := decode[map[string]string](t, rec)
	require.Empty(t, settings["libraryName"])
	require.Contains(t, settings["waTemplate"], "{due}")

	rec = hn.do(t, "PUT", "/api/settings", map[string]any{
		"libraryName": "Sunrise Study Hall",
		"qrCode":      "upi://pay?pa=sunrise@bank",
		"waTemplate":  "{roll}/{name}: pay {due}",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = hn.do(t, "GET", "/api/settings", nil)
	settings = decode[map[string]string](t, rec)
	require.Equal(t, "Sunrise Study Hall", settings["libraryName"])
	require.Equal(t, "upi://pay?pa=sunrise@bank", settings["qrCode"])
	require.Equal(t, "{roll}/{name}: pay {due}", settings["waTemplate"])

	// The saved template drives the dues reminder.
	rec = hn.do(t, "GET", "/api/students/R1/message", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	msg := decode[map[string]string](t, rec)
	require.Equal(t, "R1/Student R1: pay 3000", msg["message"])
}

func TestBackupEndpointWithoutScheduler(t *testing.T) {
	hn := newHarness(t)
	rec := hn.do(t, "POST", "/api/backup", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
