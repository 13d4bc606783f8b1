package cart

import (
	"errors"
	"strings"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrItemUnavailable = errors.New("menu item is not available")
	ErrNoSession       = errors.New("no cart session")
)

// UnavailableError names the lines checkout took out of the cart because
// their dish was deleted or switched off. It matches ErrItemUnavailable.
type UnavailableError struct {
	Names []string
}

func (e *UnavailableError) Error() string {
	return "no longer available: " + strings.Join(e.Names, ", ")
}

func (e *UnavailableError) Unwrap() error { return ErrItemUnavailable }
