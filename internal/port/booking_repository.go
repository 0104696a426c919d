package port

import (
	"context"
	"errors"
	"time"

	"github.com/rl1809/shareit/internal/core/domain"
)

// ErrOptimisticLock is returned by UpdateBookingStatus when the stored booking
// no longer matches the expected version or is no longer WAITING.
var ErrOptimisticLock = errors.New("optimistic lock conflict")

type BookingRepository interface {
	// CreateBooking persists a new booking and assigns its ID
	CreateBooking(ctx context.Context, booking *domain.Booking) error

	// GetBooking retrieves a booking by ID, nil if it does not exist
	GetBooking(ctx context.Context, id int64) (*domain.Booking, error)

	// UpdateBookingStatus moves a WAITING booking to status with a version check for optimistic locking
	UpdateBookingStatus(ctx context.Context, booking domain.Booking, status domain.BookingStatus) error

	// ListApprovedByItem returns the APPROVED bookings of an item
	ListApprovedByItem(ctx context.Context, itemID int64) ([]domain.Booking, error)

	// ListByBooker returns the bookings made by a user, newest start first
	ListByBooker(ctx context.Context, bookerID int64) ([]domain.Booking, error)

	// ListByItems returns the bookings on any of the given items, newest start first
	ListByItems(ctx context.Context, itemIDs []int64) ([]domain.Booking, error)

	// ListAll returns every booking, newest start first
	ListAll(ctx context.Context) ([]domain.Booking, error)

	// HasCompletedBooking reports whether the user has an APPROVED booking on the item that ended before now
	HasCompletedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error)
}
