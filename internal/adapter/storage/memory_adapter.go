package storage

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rl1809/shareit/internal/core/domain"
	"github.com/rl1809/shareit/internal/port"
)

// MemoryAdapter keeps users, items and bookings in process memory. IDs come
// from per-table monotonic counters owned by the adapter.
type MemoryAdapter struct {
	mu       sync.RWMutex
	users    map[int64]domain.User
	items    map[int64]domain.Item
	bookings map[int64]domain.Booking

	nextUserID    int64
	nextItemID    int64
	nextBookingID int64
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		users:    make(map[int64]domain.User),
		items:    make(map[int64]domain.Item),
		bookings: make(map[int64]domain.Booking),
	}
}

func (m *MemoryAdapter) AddUser(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextUserID++
	user.ID = m.nextUserID
	m.users[user.ID] = *user
	return nil
}

func (m *MemoryAdapter) AddItem(ctx context.Context, item *domain.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextItemID++
	item.ID = m.nextItemID
	m.items[item.ID] = *item
	return nil
}

func (m *MemoryAdapter) FindUser(ctx context.Context, id int64) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *MemoryAdapter) FindItem(ctx context.Context, id int64) (*domain.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	it, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

func (m *MemoryAdapter) FindItemsByOwner(ctx context.Context, ownerID int64) ([]domain.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []domain.Item
	for _, it := range m.items {
		if it.OwnerID == ownerID {
			out = append(out, it)
		}
	}
	slices.SortFunc(out, func(a, b domain.Item) int { return compareID(a.ID, b.ID) })
	return out, nil
}

func (m *MemoryAdapter) CreateBooking(ctx context.Context, booking *domain.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextBookingID++
	booking.ID = m.nextBookingID
	m.bookings[booking.ID] = *booking
	return nil
}

func (m *MemoryAdapter) GetBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.bookings[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (m *MemoryAdapter) UpdateBookingStatus(ctx context.Context, booking domain.Booking, status domain.BookingStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.bookings[booking.ID]
	if !ok || current.Version != booking.Version || current.Status != domain.BookingStatusWaiting {
		return port.ErrOptimisticLock
	}

	current.Status = status
	current.Version++
	m.bookings[booking.ID] = current
	return nil
}

func (m *MemoryAdapter) ListApprovedByItem(ctx context.Context, itemID int64) ([]domain.Booking, error) {
	return m.list(func(b domain.Booking) bool {
		return b.ItemID == itemID && b.Status == domain.BookingStatusApproved
	}), nil
}

func (m *MemoryAdapter) ListByBooker(ctx context.Context, bookerID int64) ([]domain.Booking, error) {
	return m.list(func(b domain.Booking) bool { return b.BookerID == bookerID }), nil
}

func (m *MemoryAdapter) ListByItems(ctx context.Context, itemIDs []int64) ([]domain.Booking, error) {
	return m.list(func(b domain.Booking) bool { return slices.Contains(itemIDs, b.ItemID) }), nil
}

func (m *MemoryAdapter) ListAll(ctx context.Context) ([]domain.Booking, error) {
	return m.list(func(domain.Booking) bool { return true }), nil
}

func (m *MemoryAdapter) HasCompletedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, b := range m.bookings {
		if b.BookerID == bookerID && b.ItemID == itemID && b.Completed(now) {
			return true, nil
		}
	}
	return false, nil
}

// list returns matching bookings ordered by start descending, then ID descending.
func (m *MemoryAdapter) list(keep func(domain.Booking) bool) []domain.Booking {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Booking, 0)
	for _, b := range m.bookings {
		if keep(b) {
			out = append(out, b)
		}
	}
	slices.SortFunc(out, func(a, b domain.Booking) int {
		if c := b.Start.Compare(a.Start); c != 0 {
			return c
		}
		return compareID(b.ID, a.ID)
	})
	return out
}

func compareID(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
