package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/rl1809/shareit/internal/clock"
	"github.com/rl1809/shareit/internal/core/domain"
	"github.com/rl1809/shareit/internal/metrics"
	"github.com/rl1809/shareit/internal/port"
)

// BookingService runs the booking lifecycle: creation with conflict detection,
// owner approval, participant-scoped reads and state-filtered listings.
type BookingService struct {
	bookings port.BookingRepository
	users    port.UserDirectory
	items    port.ItemCatalog
	locker   port.ItemLocker
	overlap  *OverlapChecker
	clock    clock.Clock
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

type Option func(*BookingService)

func WithClock(c clock.Clock) Option {
	return func(s *BookingService) { s.clock = c }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *BookingService) { s.metrics = m }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *BookingService) { s.logger = l }
}

func NewBookingService(
	bookings port.BookingRepository,
	users port.UserDirectory,
	items port.ItemCatalog,
	locker port.ItemLocker,
	opts ...Option,
) *BookingService {
	s := &BookingService{
		bookings: bookings,
		users:    users,
		items:    items,
		locker:   locker,
		overlap:  NewOverlapChecker(bookings),
		clock:    clock.Real(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddBooking validates a booking request and stores it as WAITING. The
// conflict check and the insert run under the item lock so that two
// concurrent requests cannot both pass the check.
func (s *BookingService) AddBooking(ctx context.Context, start, end time.Time, itemID, bookerID int64) (domain.Booking, error) {
	booking, err := s.addBooking(ctx, start, end, itemID, bookerID)
	s.metrics.IncBookingCreated(resultLabel(err))
	if err != nil {
		return domain.Booking{}, err
	}

	s.logger.Info("booking created",
		zap.Int64("booking_id", booking.ID),
		zap.Int64("item_id", itemID),
		zap.Int64("booker_id", bookerID),
	)
	return booking, nil
}

func (s *BookingService) addBooking(ctx context.Context, start, end time.Time, itemID, bookerID int64) (domain.Booking, error) {
	if err := s.requireUser(ctx, bookerID); err != nil {
		return domain.Booking{}, err
	}

	item, err := s.items.FindItem(ctx, itemID)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("find item: %w", err)
	}
	if item == nil {
		return domain.Booking{}, domain.ErrItemNotFound
	}

	if item.OwnerID == bookerID {
		return domain.Booking{}, domain.ErrSelfBooking
	}
	if !item.Available {
		return domain.Booking{}, domain.ErrItemUnavailable
	}
	if !start.Before(end) {
		return domain.Booking{}, domain.ErrInvalidInterval
	}

	unlock, err := s.locker.Lock(ctx, itemID)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("lock item %d: %w", itemID, err)
	}
	defer unlock()

	conflict, err := s.overlap.HasApprovedConflict(ctx, itemID, start, end, 0)
	if err != nil {
		return domain.Booking{}, err
	}
	if conflict {
		return domain.Booking{}, domain.ErrTimeOverlap
	}

	booking := domain.Booking{
		Start:     start,
		End:       end,
		ItemID:    itemID,
		BookerID:  bookerID,
		Status:    domain.BookingStatusWaiting,
		CreatedAt: s.clock.Now(),
	}
	if err := s.bookings.CreateBooking(ctx, &booking); err != nil {
		return domain.Booking{}, fmt.Errorf("create booking: %w", err)
	}

	return booking, nil
}

func (s *BookingService) requireUser(ctx context.Context, userID int64) error {
	user, err := s.users.FindUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	return nil
}

func (s *BookingService) getBooking(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return nil, domain.ErrBookingNotFound
	}
	return booking, nil
}

func (s *BookingService) itemOf(ctx context.Context, booking *domain.Booking) (*domain.Item, error) {
	item, err := s.items.FindItem(ctx, booking.ItemID)
	if err != nil {
		return nil, fmt.Errorf("find item: %w", err)
	}
	if item == nil {
		return nil, domain.ErrItemNotFound
	}
	return item, nil
}

func sortByStartDesc(bookings []domain.Booking) {
	slices.SortStableFunc(bookings, func(a, b domain.Booking) int {
		return b.Start.Compare(a.Start)
	})
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "created"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	default:
		return "error"
	}
}
