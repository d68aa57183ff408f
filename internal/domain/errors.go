package domain

import (
	"errors"
	"fmt"
)

// Use-case level errors. The transport layer decides what they mean on the wire.
var (
	ErrValidation    = errors.New("validation failed")
	ErrDuplicateUser = errors.New("user already exists")
	ErrUserNotFound  = errors.New("user not found")
	ErrUnavailable   = errors.New("storage unavailable")
)

// Port level errors returned by UserRepository adapters.
var (
	ErrConflict = errors.New("conflict")
	ErrNotFound = errors.New("not found")
)

// ValidationReason 校验失败原因
type ValidationReason string

const (
	InvalidEmail ValidationReason = "invalid_email"
	EmptyName    ValidationReason = "empty_name"
	InvalidID    ValidationReason = "invalid_id"

	// PasswordTooLong is reported by hashers with an input limit (bcrypt: 72 bytes).
	PasswordTooLong ValidationReason = "password_too_long"
)

// ValidationError reports malformed input. errors.Is(err, ErrValidation) holds for it.
type ValidationError struct {
	Field  string
	Reason ValidationReason
	Value  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// UnavailableError wraps a raw storage failure.
type UnavailableError struct {
	Op  string
	Err error
}

// Unavailable wraps err unless it is nil or already wrapped.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	var ue *UnavailableError
	if errors.As(err, &ue) {
		return err
	}
	return &UnavailableError{Op: op, Err: err}
}

func (e *UnavailableError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%v: %v", ErrUnavailable, e.Err)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrUnavailable, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

func (e *UnavailableError) Is(target error) bool { return target == ErrUnavailable }
