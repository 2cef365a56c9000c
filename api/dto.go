/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Request types carry go-playground/validator struct tags; handlers run
  them through Handler.validate before touching the service layer.

SEE ALSO:
  - handlers.go: Uses these types
  - ledger/types.go: The domain model these map to
*/
package api

import (
	"time"

	"github.com/studyspace/fee-engine/billing"
	"github.com/studyspace/fee-engine/ledger"
)

// =============================================================================
// AUTH
// =============================================================================

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type ChangePasswordRequest struct {
	Current string `json:"current" validate:"required"`
	New     string `json:"new" validate:"required,min=4"`
}

type SecurityQuestionResponse struct {
	Question string `json:"question"`
}

type ResetPasswordRequest struct {
	Username string `json:"username" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
	New      string `json:"new" validate:"required,min=4"`
}

// =============================================================================
// STUDENTS
// =============================================================================

// StudentRequest is the enroll/update payload. Mobile numbers are ten
// digits, Aadhar twelve; all three are optional fields.
type StudentRequest struct {
	Roll          string  `json:"roll" validate:"required"`
	Name          string  `json:"name" validate:"required"`
	Father        string  `json:"father"`
	StudentMobile string  `json:"studentMobile" validate:"omitempty,len=10,numeric"`
	ParentMobile  string  `json:"parentMobile" validate:"omitempty,len=10,numeric"`
	Aadhar        string  `json:"aadhar" validate:"omitempty,len=12,numeric"`
	Shift         string  `json:"shift"`
	Photo         string  `json:"photo"`
	FormPhoto     string  `json:"formPhoto"`
	FeeAmount     float64 `json:"feeAmount" validate:"required,gt=0"`
	AdmissionDate string  `json:"admissionDate" validate:"omitempty,datetime=2006-01-02"`
	AssignedSeat  string  `json:"assignedSeat"`
}

// StudentDTO is the full record plus its projected financials.
type StudentDTO struct {
	Roll          string       `json:"roll"`
	Name          string       `json:"name"`
	Father        string       `json:"father,omitempty"`
	StudentMobile string       `json:"studentMobile,omitempty"`
	ParentMobile  string       `json:"parentMobile,omitempty"`
	Aadhar        string       `json:"aadhar,omitempty"`
	Shift         string       `json:"shift,omitempty"`
	Photo         string       `json:"photo,omitempty"`
	FormPhoto     string       `json:"formPhoto,omitempty"`
	AdmissionDate string       `json:"admissionDate"`
	FeeAmount     float64      `json:"feeAmount"`
	Active        bool         `json:"active"`
	DeactivatedAt *string      `json:"deactivatedAt,omitempty"`
	AssignedSeat  string       `json:"assignedSeat,omitempty"`
	Payments      []PaymentDTO `json:"payments"`
	FeeChanges    []FeeChangeDTO `json:"feeChanges,omitempty"`
	PastPayments  []PaymentDTO `json:"pastHistory,omitempty"`
	Financials    FinancialsDTO `json:"financials"`
}

type FeeChangeDTO struct {
	Date string  `json:"date"`
	Fee  float64 `json:"fee"`
}

// FinancialsDTO is the projection snapshot for one student.
type FinancialsDTO struct {
	TotalDues  float64 `json:"totalDues"`
	AmountPaid float64 `json:"amountPaid"`
	Overpaid   float64 `json:"overpaid"`
	PaidUntil  *string `json:"paidUntil,omitempty"`
	DueSince   *string `json:"dueSince,omitempty"`
	DaysDue    int     `json:"daysDue"`
	PaidMonths int     `json:"paidMonths"`
}

// =============================================================================
// PAYMENTS
// =============================================================================

type PaymentRequest struct {
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	Discount float64 `json:"discount" validate:"gte=0"`
	Date     string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Duration int     `json:"duration" validate:"gte=0"`
	Type     string  `json:"type"`
	Method   string  `json:"method" validate:"omitempty,oneof=cash online"`
	Note     string  `json:"note"`
	Photo    string  `json:"photo"`
}

type PaymentDTO struct {
	ID       string  `json:"id"`
	Amount   float64 `json:"amount"`
	Discount float64 `json:"discount,omitempty"`
	Date     string  `json:"date"`
	Duration int     `json:"duration,omitempty"`
	Type     string  `json:"type,omitempty"`
	Method   string  `json:"method"`
	Note     string  `json:"note,omitempty"`
	Photo    string  `json:"photo,omitempty"`
}

type ChangeFeeRequest struct {
	Fee float64 `json:"fee" validate:"required,gt=0"`
}

// =============================================================================
// SEATS, HALLS, SHIFTS, ATTENDANCE
// =============================================================================

type AssignSeatRequest struct {
	Roll  string `json:"roll" validate:"required"`
	Force bool   `json:"force"`
}

type SeatDTO struct {
	ID          string `json:"id"`
	Hall        string `json:"hall"`
	Occupied    bool   `json:"occupied"`
	StudentRoll string `json:"studentRoll,omitempty"`
	StudentName string `json:"studentName,omitempty"`
}

type HallsRequest struct {
	Config map[string]int `json:"config" validate:"required,min=1,dive,gt=0"`
}

type SeatCountsDTO struct {
	Total     int `json:"total"`
	Occupied  int `json:"occupied"`
	Available int `json:"available"`
}

type SeatsResponse struct {
	Seats  []SeatDTO                `json:"seats"`
	Halls  map[string]SeatCountsDTO `json:"halls"`
	Counts SeatCountsDTO            `json:"counts"`
}

type ShiftDTO struct {
	Name     string `json:"name" validate:"required"`
	Start    string `json:"start" validate:"required,datetime=15:04"`
	End      string `json:"end" validate:"required,datetime=15:04"`
	Complete bool   `json:"complete,omitempty"`
}

type SaveShiftsRequest struct {
	Shifts []ShiftDTO `json:"shifts" validate:"required,min=1,dive"`
}

type AttendanceRequest struct {
	Roll    string `json:"roll" validate:"required"`
	Date    string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Present bool   `json:"present"`
}

// =============================================================================
// SETTINGS
// =============================================================================

// SettingsRequest saves the owner preferences. All fields are optional;
// an empty template reverts the dues reminder to its default wording.
type SettingsRequest struct {
	LibraryName string `json:"libraryName"`
	QRCode      string `json:"qrCode"`
	WATemplate  string `json:"waTemplate"`
}

type SettingsDTO struct {
	LibraryName string `json:"libraryName"`
	QRCode      string `json:"qrCode"`
	WATemplate  string `json:"waTemplate"`
}

// =============================================================================
// SUMMARY, ACTIVITIES, MISC
// =============================================================================

type CollectionTotalsDTO struct {
	Total  float64 `json:"total"`
	Cash   float64 `json:"cash"`
	Online float64 `json:"online"`
}

type DueEntryDTO struct {
	Roll      string  `json:"roll"`
	Name      string  `json:"name"`
	Seat      string  `json:"seat,omitempty"`
	Mobile    string  `json:"mobile,omitempty"`
	TotalDues float64 `json:"totalDues"`
	PaidUntil *string `json:"paidUntil,omitempty"`
	DueSince  *string `json:"dueSince,omitempty"`
	DaysDue   int     `json:"daysDue"`
}

type SummaryDTO struct {
	Today CollectionTotalsDTO `json:"today"`
	Month CollectionTotalsDTO `json:"month"`
	Year  CollectionTotalsDTO `json:"year"`
	Dues  []DueEntryDTO       `json:"dues"`
}

type ActivityDTO struct {
	ID   string `json:"id"`
	At   string `json:"at"`
	Text string `json:"text"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// MAPPERS
// =============================================================================

func toStudentDTO(st *ledger.Student, snap billing.Snapshot) StudentDTO {
	dto := StudentDTO{
		Roll:          st.Roll,
		Name:          st.Name,
		Father:        st.Father,
		StudentMobile: st.StudentMobile,
		ParentMobile:  st.ParentMobile,
		Aadhar:        st.Aadhar,
		Shift:         st.Shift,
		Photo:         st.Photo,
		FormPhoto:     st.FormPhoto,
		AdmissionDate: st.AdmissionDate.String(),
		FeeAmount:     st.FeeAmount.Float64(),
		Active:        st.Active,
		AssignedSeat:  st.AssignedSeat,
		Payments:      toPaymentDTOs(st.Payments),
		PastPayments:  toPaymentDTOs(st.PastHistory),
		Financials:    toFinancialsDTO(snap),
	}
	if st.DeactivatedAt != nil {
		dto.DeactivatedAt = strPtr(st.DeactivatedAt.String())
	}
	for _, fc := range st.FeeChanges {
		dto.FeeChanges = append(dto.FeeChanges, FeeChangeDTO{
			Date: fc.EffectiveOn.String(),
			Fee:  fc.Fee.Float64(),
		})
	}
	return dto
}

func toPaymentDTOs(payments []ledger.Payment) []PaymentDTO {
	dtos := make([]PaymentDTO, len(payments))
	for i, p := range payments {
		dtos[i] = PaymentDTO{
			ID:       p.ID,
			Amount:   p.Amount.Float64(),
			Discount: p.Discount.Float64(),
			Date:     p.Date.String(),
			Duration: p.Duration,
			Type:     p.Type,
			Method:   string(p.Method),
			Note:     p.Note,
			Photo:    p.Photo,
		}
	}
	return dtos
}

func toFinancialsDTO(snap billing.Snapshot) FinancialsDTO {
	dto := FinancialsDTO{
		TotalDues:  snap.TotalDues.Float64(),
		AmountPaid: snap.AmountPaid.Float64(),
		Overpaid:   snap.Overpaid.Float64(),
		DaysDue:    snap.DaysDue,
		PaidMonths: snap.PaidMonths,
	}
	if snap.PaidUntil != nil {
		dto.PaidUntil = strPtr(snap.PaidUntil.String())
	}
	if snap.DueSince != nil {
		dto.DueSince = strPtr(snap.DueSince.String())
	}
	return dto
}

func toSettingsDTO(cfg *ledger.FacilitySettings) SettingsDTO {
	return SettingsDTO{
		LibraryName: cfg.LibraryName,
		QRCode:      cfg.QRCode,
		WATemplate:  cfg.WATemplate,
	}
}

func toTotalsDTO(t ledger.CollectionTotals) CollectionTotalsDTO {
	return CollectionTotalsDTO{
		Total:  t.Total.Float64(),
		Cash:   t.Cash.Float64(),
		Online: t.Online.Float64(),
	}
}

func toActivityDTOs(activities []ledger.Activity) []ActivityDTO {
	dtos := make([]ActivityDTO, len(activities))
	for i, a := range activities {
		dtos[i] = ActivityDTO{ID: a.ID, At: a.At.UTC().Format(time.RFC3339), Text: a.Text}
	}
	return dtos
}

func strPtr(s string) *string {
	return &s
}
