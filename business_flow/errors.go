// Package businessflow contains the core business logic and use cases for authentication workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Authentication errors
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrAccountNotFound      = errors.New("account not found")
	ErrAccountInactive      = errors.New("account is inactive")
	ErrIdentityMismatch     = errors.New("identity does not match linked account")
	ErrRegistrationRequired = errors.New("registration required")

	// Tailor directory errors
	ErrTailorNotFound = errors.New("tailor not found")

	// Booking errors
	ErrServiceNotFound         = errors.New("service not found")
	ErrServiceInactive         = errors.New("service is inactive")
	ErrBookingNotFound         = errors.New("booking not found")
	ErrBookingAccessDenied     = errors.New("booking access denied")
	ErrInvalidStatusTransition = errors.New("invalid booking status transition")
	ErrBookingAlreadyTerminal  = errors.New("booking is already completed or cancelled")
	ErrScheduleTimeInPast      = errors.New("scheduled time must be in the future")

	// Measurement preset errors
	ErrPresetNotFound     = errors.New("measurement preset not found")
	ErrPresetAccessDenied = errors.New("measurement preset access denied")

	// Review errors
	ErrReviewNotFound      = errors.New("review not found")
	ErrBookingNotCompleted = errors.New("booking is not completed")
	ErrBookingNotOwned     = errors.New("booking does not belong to this customer")
	ErrReviewAlreadyExists = errors.New("booking has already been reviewed")

	// Filter errors
	ErrInvalidPage     = errors.New("page must be at least 1")
	ErrInvalidPageSize = errors.New("page size must be between 1 and 100")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func IsInvalidCredentials(err error) bool {
	return errors.Is(err, ErrInvalidCredentials)
}

func IsAccountNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound)
}

func IsAccountInactive(err error) bool {
	return errors.Is(err, ErrAccountInactive)
}

func IsIdentityMismatch(err error) bool {
	return errors.Is(err, ErrIdentityMismatch)
}

func IsRegistrationRequired(err error) bool {
	return errors.Is(err, ErrRegistrationRequired)
}

func IsTailorNotFound(err error) bool {
	return errors.Is(err, ErrTailorNotFound)
}

func IsServiceNotFound(err error) bool {
	return errors.Is(err, ErrServiceNotFound)
}

func IsServiceInactive(err error) bool {
	return errors.Is(err, ErrServiceInactive)
}

func IsBookingNotFound(err error) bool {
	return errors.Is(err, ErrBookingNotFound)
}

func IsBookingAccessDenied(err error) bool {
	return errors.Is(err, ErrBookingAccessDenied)
}

func IsInvalidStatusTransition(err error) bool {
	return errors.Is(err, ErrInvalidStatusTransition)
}

func IsBookingAlreadyTerminal(err error) bool {
	return errors.Is(err, ErrBookingAlreadyTerminal)
}

func IsScheduleTimeInPast(err error) bool {
	return errors.Is(err, ErrScheduleTimeInPast)
}

func IsPresetNotFound(err error) bool {
	return errors.Is(err, ErrPresetNotFound)
}

func IsPresetAccessDenied(err error) bool {
	return errors.Is(err, ErrPresetAccessDenied)
}

func IsReviewNotFound(err error) bool {
	return errors.Is(err, ErrReviewNotFound)
}

func IsBookingNotCompleted(err error) bool {
	return errors.Is(err, ErrBookingNotCompleted)
}

func IsBookingNotOwned(err error) bool {
	return errors.Is(err, ErrBookingNotOwned)
}

func IsReviewAlreadyExists(err error) bool {
	return errors.Is(err, ErrReviewAlreadyExists)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}
