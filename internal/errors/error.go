// Package errors provides custom error types for product-related operations.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrProductNotFound is returned when no available product has the requested id.
	ErrProductNotFound = errors.New("product not found")
	// ErrPageOutOfRange is returned when the requested page lies beyond the last page.
	ErrPageOutOfRange = errors.New("page out of range")
	// ErrProductUnavailable is returned when removing a product that is already unavailable.
	ErrProductUnavailable = errors.New("product is already unavailable")
	// ErrInvalidPagination is returned when page or limit is not a positive integer.
	ErrInvalidPagination = errors.New("page and limit must be positive integers")
)

// PageOutOfRangeError carries the last valid page. It matches ErrPageOutOfRange with errors.Is.
type PageOutOfRangeError struct {
	LastPage int64
}

func (e *PageOutOfRangeError) Error() string {
	return fmt.Sprintf("page not found, last page should be #%d", e.LastPage)
}

func (e *PageOutOfRangeError) Is(target error) bool {
	return target == ErrPageOutOfRange
}
