package domain

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrPreconditionFailed = errors.New("conditional write failed")
	ErrNoFieldsToUpdate   = &ValidationError{Reason: "No fields to update"}
)

// ValidationError carries a caller-facing reason. errors.Is(err, ErrValidation) holds for it.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid builds a ValidationError with the given reason.
func Invalid(reason string) error { return &ValidationError{Reason: reason} }
