package domain

import (
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches AppErrors by code so a WithError copy still satisfies
// errors.Is against its template.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: 400,
	}

	ErrNameRequired = &AppError{
		Code:       "NAME_REQUIRED",
		Message:    "A non-empty name is required",
		StatusCode: 400,
	}

	ErrUserNotFound = &AppError{
		Code:       "USER_NOT_FOUND",
		Message:    "User not found",
		StatusCode: 404,
	}

	ErrNameTaken = &AppError{
		Code:       "NAME_TAKEN",
		Message:    "A user with this name already exists",
		StatusCode: 409,
	}

	ErrRegistrationBusy = &AppError{
		Code:       "REGISTRATION_IN_PROGRESS",
		Message:    "Another registration is already in progress",
		StatusCode: 409,
	}

	ErrNoOpenDraft = &AppError{
		Code:       "NO_OPEN_DRAFT",
		Message:    "No policy edit session is open",
		StatusCode: 409,
	}

	ErrInvalidPolicy = &AppError{
		Code:       "INVALID_POLICY",
		Message:    "Access policy failed validation",
		StatusCode: 422,
	}

	ErrBackendUnavailable = &AppError{
		Code:       "BACKEND_UNAVAILABLE",
		Message:    "Recognition backend is unreachable",
		StatusCode: 502,
	}

	ErrInvalidBackendResponse = &AppError{
		Code:       "INVALID_BACKEND_RESPONSE",
		Message:    "Recognition backend returned an unexpected response",
		StatusCode: 502,
	}
)
