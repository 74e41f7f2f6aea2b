package store

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by both store implementations. Handlers translate
// these into HTTP statuses; anything outside this set is treated as an
// internal failure and never detailed in a response body.
var (
	// ErrNotFound is returned when a record id does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a uniqueness rule is violated,
	// e.g. registering an email that already has an account.
	ErrConflict = errors.New("record already exists")

	// ErrInvalidOwner is returned by cart writes when neither a user id
	// nor a session id was supplied.
	ErrInvalidOwner = errors.New("cart owner missing: need a user id or session id")
)

// ValidationError marks input the store refuses to persist, such as an
// unknown product id or a quantity below one.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError.
func Validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
