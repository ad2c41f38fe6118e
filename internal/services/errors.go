package service

import (
	"errors"
	"fmt"

	validator "github.com/zdziszkee/swift-codes-catalog/internal/validators"
)

var (
	ErrNotFound         = errors.New("swift code not found")
	ErrCountryNotFound  = errors.New("country not found")
	ErrAlreadyExists    = errors.New("swift code already exists")
	ErrValidationFailed = errors.New("validation failed")
)

// ErrorKind is the closed set of failures a service operation reports.
type ErrorKind int

const (
	KindNotFoundByID ErrorKind = iota + 1
	KindCountryNotFound
	KindConflict
	KindValidationFailed
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFoundByID:
		return "NotFoundById"
	case KindCountryNotFound:
		return "CountryNotFound"
	case KindConflict:
		return "Conflict"
	case KindValidationFailed:
		return "ValidationFailed"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindNotFoundByID:
		return ErrNotFound
	case KindCountryNotFound:
		return ErrCountryNotFound
	case KindConflict:
		return ErrAlreadyExists
	case KindValidationFailed:
		return ErrValidationFailed
	default:
		return nil
	}
}

// Error carries the offending code or country and, for validation failures,
// the rejected fields.
type Error struct {
	Kind        ErrorKind
	ID          string
	FieldErrors validator.FieldErrors
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindNotFoundByID:
		return fmt.Sprintf("swift code %s not found", e.ID)
	case KindCountryNotFound:
		return fmt.Sprintf("no swift codes found for country %s", e.ID)
	case KindConflict:
		return fmt.Sprintf("swift code %s already exists", e.ID)
	case KindValidationFailed:
		return fmt.Sprintf("validation failed for swift code %s: %s", e.ID, e.FieldErrors.Error())
	default:
		return e.Kind.String()
	}
}

// Is lets errors.Is match an *Error against the package sentinels.
func (e *Error) Is(target error) bool {
	return target != nil && e.Kind.sentinel() == target
}

// KindOf extracts the kind of a service error.
func KindOf(err error) (ErrorKind, bool) {
	var serviceErr *Error
	if errors.As(err, &serviceErr) {
		return serviceErr.Kind, true
	}
	return 0, false
}
