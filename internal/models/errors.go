package models

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by services and handlers.
var (
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("invalid input")
	ErrDuplicate     = errors.New("already exists")
	ErrForbidden     = errors.New("forbidden")
	ErrProvider      = errors.New("AI provider error")
	ErrQuotaExceeded = errors.New("usage limit reached")
	ErrBusy          = errors.New("analysis already in progress")
)

// QuotaExceededError carries the usage figures shown to the user when the
// monthly limit blocks an AI call.
type QuotaExceededError struct {
	Usage int
	Limit int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("monthly AI usage limit reached (%d/%d)", e.Usage, e.Limit)
}

func (e *QuotaExceededError) Unwrap() error {
	return ErrQuotaExceeded
}

// Validationf builds an ErrValidation-wrapped error.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
