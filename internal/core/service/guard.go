package service

import (
	"context"

	"github.com/rl1809/shareit/internal/core/domain"
)

// GetBookingByID returns a booking to its booker or to the owner of the booked item.
func (s *BookingService) GetBookingByID(ctx context.Context, bookingID, requestingUserID int64) (domain.Booking, error) {
	if err := s.requireUser(ctx, requestingUserID); err != nil {
		return domain.Booking{}, err
	}

	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return domain.Booking{}, err
	}

	if booking.BookerID == requestingUserID {
		return *booking, nil
	}

	item, err := s.itemOf(ctx, booking)
	if err != nil {
		return domain.Booking{}, err
	}
	if item.OwnerID != requestingUserID {
		return domain.Booking{}, domain.ErrForbidden
	}

	return *booking, nil
}
