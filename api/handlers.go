/*
handlers.go - HTTP API handlers for the study hall system

PURPOSE:
  Exposes the ledger service via REST API. Handles HTTP request/response,
  JSON serialization, request validation, and delegates to domain logic.

ENDPOINTS:
  Auth:
    POST   /api/login                    Exchange credentials for a token
    POST   /api/password                 Change password (authenticated)
    GET    /api/password/question        Security question for a username
    POST   /api/password/reset           Reset via security answer

  Students:
    GET    /api/students                 List with financials
    POST   /api/students                 Enroll
    GET    /api/students/{roll}          Record + financials
    PUT    /api/students/{roll}          Update profile
    DELETE /api/students/{roll}          Delete
    GET    /api/students/{roll}/financials
    GET    /api/students/{roll}/message  Dues reminder text
    POST   /api/students/{roll}/payments
    PUT    /api/students/{roll}/payments/{id}
    DELETE /api/students/{roll}/payments/{id}
    POST   /api/students/{roll}/fee      Append fee change
    POST   /api/students/{roll}/deactivate
    POST   /api/students/{roll}/reactivate
    POST   /api/students/{roll}/reset    Archive history, restart billing

  Seats & halls:
    GET    /api/seats                    Grid + occupancy counts
    POST   /api/seats/{id}/assign
    POST   /api/seats/{id}/release
    GET    /api/halls
    PUT    /api/halls                    Regenerate the grid

  Shifts & attendance:
    GET    /api/shifts                   With completion flags
    PUT    /api/shifts
    GET    /api/attendance?date=YYYY-MM-DD
    POST   /api/attendance

  Settings:
    GET    /api/settings                 Owner preferences
    PUT    /api/settings                 Save preferences

  Accounts:
    GET    /api/summary                  Collection totals + dues list
    GET    /api/export/students.csv
    GET    /api/activities
    POST   /api/backup                   Write a state export now

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input (validator tags on the request DTO)
  3. Call domain logic (ledger.Service)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 401: Bad credentials or missing token
  - 404: Resource not found
  - 409: Conflict (duplicate roll, occupied seat)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - auth.go: Token issuing and middleware
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/studyspace/fee-engine/billing"
	"github.com/studyspace/fee-engine/ledger"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *ledger.Service
	Auth    *Authenticator
	Backups *BackupScheduler

	validate *validator.Validate
}

// NewHandler creates a new handler around the service.
func NewHandler(svc *ledger.Service, auth *Authenticator) *Handler {
	return &Handler{
		Service:  svc,
		Auth:     auth,
		validate: validator.New(),
	}
}

// decodeValid parses the body into dst and runs validator tags.
func (h *Handler) decodeValid(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return false
	}
	return true
}

// =============================================================================
// AUTH HANDLERS
// =============================================================================

// Login exchanges credentials for a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decodeValid(w, r, &req) {
		return
	}

	user, err := h.Service.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	token, err := h.Auth.IssueToken(user.Username, user.Role)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to issue token", err)
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{Token: token, Username: user.Username, Role: user.Role})
}

// ChangePassword updates the authenticated user's password.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if !h.decodeValid(w, r, &req) {
		return
	}

	username := currentUser(r.Context())
	if err := h.Service.ChangePassword(r.Context(), username, req.Current, req.New); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "password changed"})
}

// SecurityQuestion returns the reset prompt for a username.
// GET /api/password/question?username=OWNER
func (h *Handler) SecurityQuestion(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		writeError(w, http.StatusBadRequest, "username query parameter required", nil)
		return
	}
	question, err := h.Service.SecurityQuestion(r.Context(), username)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SecurityQuestionResponse{Question: question})
}

// ResetPassword verifies the security answer and sets a new password.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	if err := h.Service.ResetPassword(r.Context(), req.Username, req.Answer, req.New); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "password reset"})
}

// =============================================================================
// STUDENT HANDLERS
// =============================================================================

// ListStudents returns every record with its projected financials.
func (h *Handler) ListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.Service.Store.ListStudents(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list students", err)
		return
	}

	now := h.Service.Today()
	dtos := make([]StudentDTO, len(students))
	for i := range students {
		dtos[i] = toStudentDTO(&students[i], billing.Compute(students[i].Account(), now))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateStudent enrolls a new student.
func (h *Handler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var req StudentRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	profile, err := toProfile(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid admission date", err)
		return
	}

	st, err := h.Service.EnrollStudent(r.Context(), profile)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toStudentDTO(st, billing.Compute(st.Account(), h.Service.Today())))
}

// GetStudent returns a single record with financials.
func (h *Handler) GetStudent(w http.ResponseWriter, r *http.Request) {
	st, err := h.Service.Store.GetStudent(r.Context(), chi.URLParam(r, "roll"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load student", err)
		return
	}
	if st == nil {
		h.writeDomainError(w, ledger.ErrStudentNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toStudentDTO(st, billing.Compute(st.Account(), h.Service.Today())))
}

// UpdateStudent edits a profile; a changed fee appends to the history.
func (h *Handler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	var req StudentRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	req.Roll = chi.URLParam(r, "roll")
	profile, err := toProfile(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid admission date", err)
		return
	}

	st, err := h.Service.UpdateStudent(r.Context(), profile)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStudentDTO(st, billing.Compute(st.Account(), h.Service.Today())))
}

// DeleteStudent removes a record entirely.
func (h *Handler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteStudent(r.Context(), chi.URLParam(r, "roll")); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "deleted"})
}

// GetFinancials returns just the projection snapshot.
func (h *Handler) GetFinancials(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Service.Financials(r.Context(), chi.URLParam(r, "roll"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toFinancialsDTO(snap))
}

// DuesMessage renders the reminder template for one student.
func (h *Handler) DuesMessage(w http.ResponseWriter, r *http.Request) {
	msg, err := h.Service.DuesMessage(r.Context(), chi.URLParam(r, "roll"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: msg})
}

// =============================================================================
// LIFECYCLE HANDLERS
// =============================================================================

func (h *Handler) DeactivateStudent(w http.ResponseWriter, r *http.Request) {
	st, err := h.Service.Deactivate(r.Context(), chi.URLParam(r, "roll"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStudentDTO(st, billing.Compute(st.Account(), h.Service.Today())))
}

func (h *Handler) ReactivateStudent(w http.ResponseWriter, r *http.Request) {
	st, err := h.Service.Reactivate(r.Context(), chi.URLParam(r, "roll"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStudentDTO(st, billing.Compute(st.Account(), h.Service.Today())))
}

func (h *Handler) ResetStudent(w http.ResponseWriter, r *http.Request) {
	st, err := h.Service.ResetStudent(r.Context(), chi.URLParam(r, "roll"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStudentDTO(st, billing.Compute(st.Account(), h.Service.Today())))
}

// =============================================================================
// PAYMENT HANDLERS
// =============================================================================

// AddPayment records a payment against a student.
func (h *Handler) AddPayment(w http.ResponseWriter, r *http.Request) {
	var req PaymentRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	input, err := toPaymentInput(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid payment date", err)
		return
	}

	p, err := h.Service.RecordPayment(r.Context(), chi.URLParam(r, "roll"), input)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPaymentDTOs([]ledger.Payment{*p})[0])
}

// UpdatePayment edits a payment by id.
func (h *Handler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	var req PaymentRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	input, err := toPaymentInput(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid payment date", err)
		return
	}

	p, err := h.Service.UpdatePayment(r.Context(),
		chi.URLParam(r, "roll"), chi.URLParam(r, "id"), input)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentDTOs([]ledger.Payment{*p})[0])
}

// DeletePayment removes a payment by id.
func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	err := h.Service.DeletePayment(r.Context(), chi.URLParam(r, "roll"), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "deleted"})
}

// ChangeFee appends a fee change effective today.
func (h *Handler) ChangeFee(w http.ResponseWriter, r *http.Request) {
	var req ChangeFeeRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	st, err := h.Service.ChangeFee(r.Context(), chi.URLParam(r, "roll"), billing.MoneyFromFloat(req.Fee))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStudentDTO(st, billing.Compute(st.Account(), h.Service.Today())))
}

// =============================================================================
// SEAT AND HALL HANDLERS
// =============================================================================

// ListSeats returns the grid with occupancy counts and occupant names.
func (h *Handler) ListSeats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	seats, err := h.Service.Store.ListSeats(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list seats", err)
		return
	}
	perHall, total, err := h.Service.SeatCountsByHall(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count seats", err)
		return
	}
	students, err := h.Service.Store.ListStudents(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list students", err)
		return
	}
	names := make(map[string]string, len(students))
	for _, st := range students {
		names[st.Roll] = st.Name
	}

	resp := SeatsResponse{
		Seats:  make([]SeatDTO, len(seats)),
		Halls:  make(map[string]SeatCountsDTO, len(perHall)),
		Counts: SeatCountsDTO(total),
	}
	for i, seat := range seats {
		resp.Seats[i] = SeatDTO{
			ID:          seat.ID,
			Hall:        seat.Hall,
			Occupied:    seat.Occupied,
			StudentRoll: seat.StudentRoll,
			StudentName: names[seat.StudentRoll],
		}
	}
	for hall, c := range perHall {
		resp.Halls[hall] = SeatCountsDTO(c)
	}
	writeJSON(w, http.StatusOK, resp)
}

// AssignSeat binds a seat to a roll.
func (h *Handler) AssignSeat(w http.ResponseWriter, r *http.Request) {
	var req AssignSeatRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	err := h.Service.AssignSeat(r.Context(), chi.URLParam(r, "id"), req.Roll, req.Force)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "assigned"})
}

// ReleaseSeat frees a seat.
func (h *Handler) ReleaseSeat(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.ReleaseSeat(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "released"})
}

// GetHalls returns the configured hall map.
func (h *Handler) GetHalls(w http.ResponseWriter, r *http.Request) {
	config, err := h.Service.HallsConfig(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load halls", err)
		return
	}
	writeJSON(w, http.StatusOK, HallsRequest{Config: config})
}

// ConfigureHalls regenerates the seat grid.
func (h *Handler) ConfigureHalls(w http.ResponseWriter, r *http.Request) {
	var req HallsRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	if err := h.Service.ConfigureHalls(r.Context(), req.Config); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "halls configured"})
}

// =============================================================================
// SHIFT AND ATTENDANCE HANDLERS
// =============================================================================

// ListShifts returns the time windows with their completion flags.
func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	shifts, err := h.Service.Store.ListShifts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list shifts", err)
		return
	}
	now := h.Service.Clock()
	dtos := make([]ShiftDTO, len(shifts))
	for i, sh := range shifts {
		dtos[i] = ShiftDTO{
			Name:     sh.Name,
			Start:    sh.Start,
			End:      sh.End,
			Complete: ledger.ShiftComplete(sh, now),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveShifts replaces the shift table.
func (h *Handler) SaveShifts(w http.ResponseWriter, r *http.Request) {
	var req SaveShiftsRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	shifts := make([]ledger.TimeShift, len(req.Shifts))
	for i, sh := range req.Shifts {
		shifts[i] = ledger.TimeShift{Name: sh.Name, Start: sh.Start, End: sh.End}
	}
	if err := h.Service.Store.SaveShifts(r.Context(), shifts); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save shifts", err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "shifts saved"})
}

// MarkAttendance records presence for one student on one day.
func (h *Handler) MarkAttendance(w http.ResponseWriter, r *http.Request) {
	var req AttendanceRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	var day billing.Date
	if req.Date != "" {
		var err error
		if day, err = billing.ParseDate(req.Date); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date", err)
			return
		}
	}
	if err := h.Service.MarkAttendance(r.Context(), req.Roll, day, req.Present); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "marked"})
}

// GetAttendance returns the roll->present map for a day (default today).
func (h *Handler) GetAttendance(w http.ResponseWriter, r *http.Request) {
	day := h.Service.Today()
	if q := r.URL.Query().Get("date"); q != "" {
		var err error
		if day, err = billing.ParseDate(q); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date", err)
			return
		}
	}
	marks, err := h.Service.AttendanceOn(r.Context(), day)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load attendance", err)
		return
	}
	writeJSON(w, http.StatusOK, marks)
}

// =============================================================================
// SETTINGS HANDLERS
// =============================================================================

// GetSettings returns the owner preferences, template default applied.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Service.Settings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsDTO(cfg))
}

// UpdateSettings saves the preferences and echoes the effective values.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	cfg, err := h.Service.UpdateSettings(r.Context(), ledger.FacilitySettings{
		LibraryName: req.LibraryName,
		QRCode:      req.QRCode,
		WATemplate:  req.WATemplate,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save settings", err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsDTO(cfg))
}

// =============================================================================
// ACCOUNTS, EXPORT, ACTIVITIES, BACKUP
// =============================================================================

// GetSummary returns collection totals and the dues list.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.Service.AccountsSummary(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build summary", err)
		return
	}

	dto := SummaryDTO{
		Today: toTotalsDTO(sum.Today),
		Month: toTotalsDTO(sum.Month),
		Year:  toTotalsDTO(sum.Year),
		Dues:  make([]DueEntryDTO, len(sum.Dues)),
	}
	for i, d := range sum.Dues {
		entry := DueEntryDTO{
			Roll:      d.Roll,
			Name:      d.Name,
			Seat:      d.Seat,
			Mobile:    d.Mobile,
			TotalDues: d.TotalDues.Float64(),
			DaysDue:   d.DaysDue,
		}
		if d.PaidUntil != nil {
			entry.PaidUntil = strPtr(d.PaidUntil.String())
		}
		if d.DueSince != nil {
			entry.DueSince = strPtr(d.DueSince.String())
		}
		dto.Dues[i] = entry
	}
	writeJSON(w, http.StatusOK, dto)
}

// ExportStudentsCSV streams the roll/name/mobile sheet.
func (h *Handler) ExportStudentsCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="students.csv"`)
	if err := h.Service.ExportStudentsCSV(r.Context(), w); err != nil {
		writeError(w, http.StatusInternalServerError, "Export failed", err)
	}
}

// ListActivities returns the recent activity feed.
func (h *Handler) ListActivities(w http.ResponseWriter, r *http.Request) {
	activities, err := h.Service.RecentActivities(r.Context(), 20)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list activities", err)
		return
	}
	writeJSON(w, http.StatusOK, toActivityDTOs(activities))
}

// TriggerBackup writes a state export immediately.
func (h *Handler) TriggerBackup(w http.ResponseWriter, r *http.Request) {
	if h.Backups == nil {
		writeError(w, http.StatusServiceUnavailable, "Backups not configured", nil)
		return
	}
	path, err := h.Backups.RunNow(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Backup failed", err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "backup written to " + path})
}

// =============================================================================
// HELPERS
// =============================================================================

func toProfile(req StudentRequest) (ledger.StudentProfile, error) {
	profile := ledger.StudentProfile{
		Roll:          req.Roll,
		Name:          req.Name,
		Father:        req.Father,
		StudentMobile: req.StudentMobile,
		ParentMobile:  req.ParentMobile,
		Aadhar:        req.Aadhar,
		Shift:         req.Shift,
		Photo:         req.Photo,
		FormPhoto:     req.FormPhoto,
		FeeAmount:     billing.MoneyFromFloat(req.FeeAmount),
		AssignedSeat:  req.AssignedSeat,
	}
	if req.AdmissionDate != "" {
		d, err := billing.ParseDate(req.AdmissionDate)
		if err != nil {
			return profile, err
		}
		profile.AdmissionDate = d
	}
	return profile, nil
}

func toPaymentInput(req PaymentRequest) (ledger.PaymentInput, error) {
	input := ledger.PaymentInput{
		Amount:   billing.MoneyFromFloat(req.Amount),
		Discount: billing.MoneyFromFloat(req.Discount),
		Duration: req.Duration,
		Type:     req.Type,
		Method:   ledger.PaymentMethod(req.Method),
		Note:     req.Note,
		Photo:    req.Photo,
	}
	if req.Date != "" {
		d, err := billing.ParseDate(req.Date)
		if err != nil {
			return input, err
		}
		input.Date = d
	}
	return input, nil
}

// writeDomainError maps ledger errors to HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrBadCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid credentials", nil)
	case ledger.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case errors.Is(err, ledger.ErrStudentExists), errors.Is(err, ledger.ErrSeatOccupied):
		writeError(w, http.StatusConflict, "Conflict", err)
	case ledger.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Invalid request", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
