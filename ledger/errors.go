/*
errors.go - Centralized error types for the entity layer

PURPOSE:
  All sentinel errors in one place. The HTTP layer maps these to status
  codes with errors.Is; structured errors carry context and Unwrap to a
  sentinel.
*/
package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrStudentNotFound is returned when a roll has no record.
	ErrStudentNotFound = errors.New("student not found")

	// ErrStudentExists is returned when enrolling an already-used roll.
	ErrStudentExists = errors.New("student already enrolled")

	// ErrStudentInactive is returned for operations requiring an active student.
	ErrStudentInactive = errors.New("student is inactive")

	// ErrStudentActive is returned when reactivating an active student.
	ErrStudentActive = errors.New("student is already active")

	// ErrSeatNotFound is returned when a seat id does not exist in the grid.
	ErrSeatNotFound = errors.New("seat not found")

	// ErrSeatOccupied is returned when assigning an occupied seat without force.
	ErrSeatOccupied = errors.New("seat is occupied")

	// ErrPaymentNotFound is returned when a payment id is unknown for the roll.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrNonPositiveAmount rejects payments with amount <= 0.
	ErrNonPositiveAmount = errors.New("payment amount must be positive")

	// ErrNegativeDiscount rejects negative discounts.
	ErrNegativeDiscount = errors.New("discount must not be negative")

	// ErrNonPositiveFee rejects fee amounts <= 0 before they reach the engine.
	ErrNonPositiveFee = errors.New("fee amount must be positive")

	// ErrRollRequired is returned when a roll number is missing.
	ErrRollRequired = errors.New("roll number required")

	// ErrNameRequired is returned when a student name is missing.
	ErrNameRequired = errors.New("student name required")

	// ErrUserNotFound is returned for unknown usernames.
	ErrUserNotFound = errors.New("user not found")

	// ErrBadCredentials is returned on a failed login or password check.
	ErrBadCredentials = errors.New("invalid credentials")

	// ErrBadSecurityAnswer is returned when a password-reset answer is wrong.
	ErrBadSecurityAnswer = errors.New("security answer incorrect")

	// ErrShiftNotFound is returned when a student references an unknown shift.
	ErrShiftNotFound = errors.New("time shift not found")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// SeatOccupiedError reports who holds the contested seat.
type SeatOccupiedError struct {
	SeatID   string
	Occupant string
}

func (e *SeatOccupiedError) Error() string {
	return fmt.Sprintf("seat %s is occupied by %s", e.SeatID, e.Occupant)
}

func (e *SeatOccupiedError) Unwrap() error { return ErrSeatOccupied }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound reports whether the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrStudentNotFound) ||
		errors.Is(err, ErrSeatNotFound) ||
		errors.Is(err, ErrPaymentNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrShiftNotFound)
}

// IsClientError reports whether the error is due to invalid input or a
// conflicting state, as opposed to a storage failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrStudentExists) ||
		errors.Is(err, ErrStudentInactive) ||
		errors.Is(err, ErrStudentActive) ||
		errors.Is(err, ErrSeatOccupied) ||
		errors.Is(err, ErrNonPositiveAmount) ||
		errors.Is(err, ErrNegativeDiscount) ||
		errors.Is(err, ErrNonPositiveFee) ||
		errors.Is(err, ErrRollRequired) ||
		errors.Is(err, ErrNameRequired) ||
		errors.Is(err, ErrBadSecurityAnswer)
}
