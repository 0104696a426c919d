package service

import (
	"context"
	"fmt"

	"github.com/rl1809/shareit/internal/core/domain"
)

// Describe resolves the item and booker of each booking. Every distinct item
// and user is looked up once.
func (s *BookingService) Describe(ctx context.Context, bookings []domain.Booking) ([]domain.BookingView, error) {
	items := make(map[int64]domain.Item)
	users := make(map[int64]domain.User)

	views := make([]domain.BookingView, 0, len(bookings))
	for _, b := range bookings {
		item, ok := items[b.ItemID]
		if !ok {
			found, err := s.items.FindItem(ctx, b.ItemID)
			if err != nil {
				return nil, fmt.Errorf("find item: %w", err)
			}
			if found == nil {
				return nil, fmt.Errorf("booking %d: %w", b.ID, domain.ErrItemNotFound)
			}
			item = *found
			items[b.ItemID] = item
		}

		booker, ok := users[b.BookerID]
		if !ok {
			found, err := s.users.FindUser(ctx, b.BookerID)
			if err != nil {
				return nil, fmt.Errorf("find user: %w", err)
			}
			if found == nil {
				return nil, fmt.Errorf("booking %d: %w", b.ID, domain.ErrUserNotFound)
			}
			booker = *found
			users[b.BookerID] = booker
		}

		views = append(views, domain.NewBookingView(b, item, booker))
	}
	return views, nil
}

// DescribeOne is Describe for a single booking.
func (s *BookingService) DescribeOne(ctx context.Context, booking domain.Booking) (domain.BookingView, error) {
	views, err := s.Describe(ctx, []domain.Booking{booking})
	if err != nil {
		return domain.BookingView{}, err
	}
	return views[0], nil
}
