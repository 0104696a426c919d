package service

import (
	"context"
	"fmt"

	"github.com/rl1809/shareit/internal/core/domain"
)

// GetUserBookings lists the bookings made by userID that fall into state.
func (s *BookingService) GetUserBookings(ctx context.Context, userID int64, state domain.BookingState) ([]domain.Booking, error) {
	if !state.IsValid() {
		return nil, fmt.Errorf("%w: Unknown state: %s", domain.ErrValidation, state)
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	bookings, err := s.bookings.ListByBooker(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookings by booker: %w", err)
	}

	return s.filter(bookings, state), nil
}

// GetOwnerBookings lists the bookings on every item ownerID owns, whoever made
// them. An owner without items is reported as not found.
func (s *BookingService) GetOwnerBookings(ctx context.Context, ownerID int64, state domain.BookingState) ([]domain.Booking, error) {
	if !state.IsValid() {
		return nil, fmt.Errorf("%w: Unknown state: %s", domain.ErrValidation, state)
	}
	if err := s.requireUser(ctx, ownerID); err != nil {
		return nil, err
	}

	items, err := s.items.FindItemsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("find items by owner: %w", err)
	}
	if len(items) == 0 {
		return nil, domain.ErrOwnerHasNoItems
	}

	itemIDs := make([]int64, len(items))
	for i, item := range items {
		itemIDs[i] = item.ID
	}

	bookings, err := s.bookings.ListByItems(ctx, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("list bookings by items: %w", err)
	}

	return s.filter(bookings, state), nil
}

// GetAllBookings is the unscoped administrative listing. Access control is the caller's concern.
func (s *BookingService) GetAllBookings(ctx context.Context) ([]domain.Booking, error) {
	bookings, err := s.bookings.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	sortByStartDesc(bookings)
	return bookings, nil
}

func (s *BookingService) filter(bookings []domain.Booking, state domain.BookingState) []domain.Booking {
	out := domain.FilterByState(bookings, state, s.clock.Now())
	sortByStartDesc(out)
	return out
}
