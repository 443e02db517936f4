// Package businessflow contains the core business logic and use cases for citizen service workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Staff-related errors
	ErrStaffNotFound      = errors.New("staff user not found")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrIncorrectPassword  = errors.New("incorrect password")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrCaptchaFailed      = errors.New("captcha verification failed")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session has expired")
	ErrNotAuthorized      = errors.New("not authorized for this operation")

	// Company/department errors
	ErrCompanyNotFound       = errors.New("company not found")
	ErrCompanyInactive       = errors.New("company is inactive")
	ErrDepartmentNotFound    = errors.New("department not found")
	ErrDepartmentInactive    = errors.New("department is inactive")
	ErrDepartmentNameTaken   = errors.New("department name already exists")
	ErrDepartmentWrongTenant = errors.New("department belongs to another company")

	// Grievance errors
	ErrGrievanceNotFound        = errors.New("grievance not found")
	ErrGrievanceSubjectRequired = errors.New("grievance subject is required")
	ErrGrievanceContentRequired = errors.New("grievance description is required")
	ErrInvalidStatusTransition  = errors.New("status transition not permitted")
	ErrUnknownStatus            = errors.New("unknown status")
	ErrAssigneeNotFound         = errors.New("assignee not found")
	ErrAssigneeWrongTenant      = errors.New("assignee belongs to another company")

	// Appointment errors
	ErrAppointmentNotFound   = errors.New("appointment not found")
	ErrPurposeRequired       = errors.New("appointment purpose is required")
	ErrScheduledTimeInPast   = errors.New("scheduled time must be in the future")
	ErrScheduledTimeRequired = errors.New("scheduled time is required")

	// Citizen errors
	ErrCitizenNotFound     = errors.New("citizen not found")
	ErrCitizenPhoneInvalid = errors.New("citizen phone number is invalid")

	// Intake errors
	ErrInvalidChannel    = errors.New("invalid intake channel")
	ErrUnknownTenant     = errors.New("no company registered for this phone number id")
	ErrVerifyTokenWrong  = errors.New("webhook verify token mismatch")
	ErrCacheNotAvailable = errors.New("cache not available")

	// Filter errors
	ErrInvalidPage           = errors.New("page must be at least 1")
	ErrInvalidPageSize       = errors.New("page size must be between 1 and 100")
	ErrStartDateAfterEndDate = errors.New("start date cannot be after end date")
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

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsStaffNotFound(err error) bool {
	return errors.Is(err, ErrStaffNotFound)
}

func IsAccountInactive(err error) bool {
	return errors.Is(err, ErrAccountInactive)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

func IsEmailAlreadyExists(err error) bool {
	return errors.Is(err, ErrEmailAlreadyExists)
}

func IsCaptchaFailed(err error) bool {
	return errors.Is(err, ErrCaptchaFailed)
}

func IsNotAuthorized(err error) bool {
	return errors.Is(err, ErrNotAuthorized)
}

func IsSessionNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}

func IsSessionExpired(err error) bool {
	return errors.Is(err, ErrSessionExpired)
}

func IsCompanyNotFound(err error) bool {
	return errors.Is(err, ErrCompanyNotFound)
}

func IsDepartmentNotFound(err error) bool {
	return errors.Is(err, ErrDepartmentNotFound)
}

func IsDepartmentInactive(err error) bool {
	return errors.Is(err, ErrDepartmentInactive)
}

func IsDepartmentWrongTenant(err error) bool {
	return errors.Is(err, ErrDepartmentWrongTenant)
}

func IsDepartmentNameTaken(err error) bool {
	return errors.Is(err, ErrDepartmentNameTaken)
}

func IsGrievanceNotFound(err error) bool {
	return errors.Is(err, ErrGrievanceNotFound)
}

func IsAppointmentNotFound(err error) bool {
	return errors.Is(err, ErrAppointmentNotFound)
}

func IsInvalidStatusTransition(err error) bool {
	return errors.Is(err, ErrInvalidStatusTransition)
}

func IsUnknownStatus(err error) bool {
	return errors.Is(err, ErrUnknownStatus)
}

func IsAssigneeNotFound(err error) bool {
	return errors.Is(err, ErrAssigneeNotFound)
}

func IsAssigneeWrongTenant(err error) bool {
	return errors.Is(err, ErrAssigneeWrongTenant)
}

func IsCitizenNotFound(err error) bool {
	return errors.Is(err, ErrCitizenNotFound)
}

func IsInvalidChannel(err error) bool {
	return errors.Is(err, ErrInvalidChannel)
}

func IsUnknownTenant(err error) bool {
	return errors.Is(err, ErrUnknownTenant)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}

func IsStartDateAfterEndDate(err error) bool {
	return errors.Is(err, ErrStartDateAfterEndDate)
}
