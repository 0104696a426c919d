package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every specific error below wraps exactly one of them.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
)

var (
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)
	ErrItemNotFound    = fmt.Errorf("item %w", ErrNotFound)
	ErrBookingNotFound = fmt.Errorf("booking %w", ErrNotFound)
	ErrOwnerHasNoItems = fmt.Errorf("owner items %w", ErrNotFound)

	ErrSelfBooking     = fmt.Errorf("%w: owner cannot book their own item", ErrValidation)
	ErrItemUnavailable = fmt.Errorf("%w: item is not available for booking", ErrValidation)
	ErrInvalidInterval = fmt.Errorf("%w: booking start must be before end", ErrValidation)
	ErrNotOwner        = fmt.Errorf("%w: only the item owner can approve or reject a booking", ErrValidation)
	ErrForbidden       = fmt.Errorf("%w: booking is visible only to its booker or the item owner", ErrValidation)
	ErrAlreadyResolved = fmt.Errorf("%w: booking is not waiting for approval", ErrValidation)

	ErrTimeOverlap = fmt.Errorf("%w: time overlaps an approved booking", ErrConflict)
)
