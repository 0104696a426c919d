package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rl1809/shareit/internal/core/domain"
	"github.com/rl1809/shareit/internal/port"
)

// Resolve lets the item owner approve or reject a WAITING booking.
//
// Approval re-runs the overlap check under the item lock: creation only
// guards against APPROVED bookings, so two overlapping WAITING bookings may
// exist and only the first one approved can win. The status write itself is
// version-checked, so of two concurrent resolutions exactly one succeeds.
func (s *BookingService) Resolve(ctx context.Context, bookingID int64, approve bool, actingUserID int64) (domain.Booking, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return domain.Booking{}, err
	}

	item, err := s.itemOf(ctx, booking)
	if err != nil {
		return domain.Booking{}, err
	}
	if item.OwnerID != actingUserID {
		return domain.Booking{}, domain.ErrNotOwner
	}

	if err := s.requireUser(ctx, actingUserID); err != nil {
		return domain.Booking{}, err
	}

	target := domain.Decision(approve)
	if !booking.Status.CanTransitionTo(target) {
		return domain.Booking{}, domain.ErrAlreadyResolved
	}

	if target == domain.BookingStatusApproved {
		unlock, err := s.locker.Lock(ctx, booking.ItemID)
		if err != nil {
			return domain.Booking{}, fmt.Errorf("lock item %d: %w", booking.ItemID, err)
		}
		defer unlock()

		conflict, err := s.overlap.HasApprovedConflict(ctx, booking.ItemID, booking.Start, booking.End, booking.ID)
		if err != nil {
			return domain.Booking{}, err
		}
		if conflict {
			return domain.Booking{}, domain.ErrTimeOverlap
		}
	}

	if err := s.bookings.UpdateBookingStatus(ctx, *booking, target); err != nil {
		if errors.Is(err, port.ErrOptimisticLock) {
			return domain.Booking{}, domain.ErrAlreadyResolved
		}
		return domain.Booking{}, fmt.Errorf("update booking status: %w", err)
	}

	booking.Status = target
	booking.Version++

	s.metrics.IncBookingDecision(string(target))
	s.logger.Info("booking resolved",
		zap.Int64("booking_id", booking.ID),
		zap.String("status", string(target)),
		zap.Int64("owner_id", actingUserID),
	)
	return *booking, nil
}
