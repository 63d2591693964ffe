package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrUnitMismatch     = errors.New("unit mismatch")
	ErrIndexUnavailable = errors.New("search index unavailable")
	ErrConflict         = errors.New("concurrency conflict")
	ErrInvalidInput     = errors.New("invalid input")
)

// UnitMismatchError carries the unit already established for a product.
type UnitMismatchError struct {
	Product   string
	Expected  string
	Requested string
}

func (e *UnitMismatchError) Error() string {
	return fmt.Sprintf("unit mismatch for %q: expected %q, got %q", e.Product, e.Expected, e.Requested)
}

func (e *UnitMismatchError) Is(target error) bool {
	return target == ErrUnitMismatch
}

func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
