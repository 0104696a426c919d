package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rl1809/shareit/internal/port"
)

var _ port.CommentEligibility = (*BookingService)(nil)

// HasCompletedBooking reports whether userID has an approved booking on itemID
// that ended before now. The item module uses it to gate comments.
func (s *BookingService) HasCompletedBooking(ctx context.Context, userID, itemID int64, now time.Time) (bool, error) {
	ok, err := s.bookings.HasCompletedBooking(ctx, userID, itemID, now)
	if err != nil {
		return false, fmt.Errorf("check completed booking: %w", err)
	}
	return ok, nil
}

// Now exposes the service clock to transports that need a default instant.
func (s *BookingService) Now() time.Time {
	return s.clock.Now()
}
