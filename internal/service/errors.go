package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrValidation matches every business-rule violation.
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	// ErrInvalidState matches actions refused by the shift lifecycle. It is
	// also a validation error.
	ErrInvalidState = errors.New("invalid state")
	// ErrInsufficientStock is returned by inventory collaborators when a
	// transfer cannot be reserved.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// ValidationError carries a message meant for the operator. It matches
// ErrValidation under errors.Is.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

type stateError struct {
	action, state string
}

func (e *stateError) Error() string {
	return fmt.Sprintf("cannot %s a shift in state %s", e.action, e.state)
}

func (e *stateError) Is(target error) bool {
	return target == ErrValidation || target == ErrInvalidState
}

func invalidState(action, state string) error {
	return &stateError{action: action, state: state}
}

func notFound(what string, id interface{}) error {
	return fmt.Errorf("%s %v: %w", what, id, ErrNotFound)
}

// lookupErr turns a missing row into ErrNotFound and passes anything else
// through untouched.
func lookupErr(err error, what string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(what, id)
	}
	return err
}
