package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rl1809/shareit/internal/port"
)

// OverlapChecker detects time conflicts with already approved bookings.
type OverlapChecker struct {
	bookings port.BookingRepository
}

func NewOverlapChecker(bookings port.BookingRepository) *OverlapChecker {
	return &OverlapChecker{bookings: bookings}
}

// HasApprovedConflict reports whether an APPROVED booking of itemID, other
// than excludeID, intersects [start, end). Pass excludeID 0 to check all.
func (c *OverlapChecker) HasApprovedConflict(ctx context.Context, itemID int64, start, end time.Time, excludeID int64) (bool, error) {
	approved, err := c.bookings.ListApprovedByItem(ctx, itemID)
	if err != nil {
		return false, fmt.Errorf("list approved bookings: %w", err)
	}

	for _, b := range approved {
		if b.ID == excludeID {
			continue
		}
		if b.Overlaps(start, end) {
			return true, nil
		}
	}
	return false, nil
}
