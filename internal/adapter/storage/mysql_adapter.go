package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rl1809/shareit/internal/core/domain"
	"github.com/rl1809/shareit/internal/port"
)

//go:embed schema.sql
var schemaSQL string

const bookingColumns = `id, start_date, end_date, item_id, booker_id, status, version, created_at`

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

// Migrate creates the tables if they do not exist.
func (m *MySQLAdapter) Migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (m *MySQLAdapter) AddUser(ctx context.Context, user *domain.User) error {
	result, err := m.db.ExecContext(ctx, `
		INSERT INTO users (name, email) VALUES (?, ?)`,
		user.Name, user.Email,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("user id: %w", err)
	}
	user.ID = id
	return nil
}

func (m *MySQLAdapter) AddItem(ctx context.Context, item *domain.Item) error {
	result, err := m.db.ExecContext(ctx, `
		INSERT INTO items (owner_id, name, description, available) VALUES (?, ?, ?, ?)`,
		item.OwnerID, item.Name, item.Description, item.Available,
	)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("item id: %w", err)
	}
	item.ID = id
	return nil
}

func (m *MySQLAdapter) FindUser(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	err := m.db.QueryRowContext(ctx, `
		SELECT id, name, email FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Name, &u.Email)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}

func (m *MySQLAdapter) FindItem(ctx context.Context, id int64) (*domain.Item, error) {
	var it domain.Item
	err := m.db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, description, available FROM items WHERE id = ?`, id,
	).Scan(&it.ID, &it.OwnerID, &it.Name, &it.Description, &it.Available)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query item: %w", err)
	}
	return &it, nil
}

func (m *MySQLAdapter) FindItemsByOwner(ctx context.Context, ownerID int64) ([]domain.Item, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, owner_id, name, description, available
		FROM items WHERE owner_id = ? ORDER BY id`, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		var it domain.Item
		if err := rows.Scan(&it.ID, &it.OwnerID, &it.Name, &it.Description, &it.Available); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

// CreateBooking inserts the booking while holding a row lock on its item.
func (m *MySQLAdapter) CreateBooking(ctx context.Context, booking *domain.Booking) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var itemID int64
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM items WHERE id = ? FOR UPDATE`, booking.ItemID,
	).Scan(&itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrItemNotFound
	}
	if err != nil {
		return fmt.Errorf("lock item: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO bookings (start_date, end_date, item_id, booker_id, status, version, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		booking.Start.UTC(), booking.End.UTC(), booking.ItemID, booking.BookerID,
		booking.Status, booking.Version, booking.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("booking id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	booking.ID = id
	return nil
}

func (m *MySQLAdapter) GetBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := scanBooking(m.db.QueryRowContext(ctx, `
		SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id,
	))

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query booking: %w", err)
	}
	return &b, nil
}

func (m *MySQLAdapter) UpdateBookingStatus(ctx context.Context, booking domain.Booking, status domain.BookingStatus) error {
	result, err := m.db.ExecContext(ctx, `
		UPDATE bookings
		SET status = ?, version = version + 1
		WHERE id = ? AND version = ? AND status = ?`,
		status, booking.ID, booking.Version, domain.BookingStatusWaiting,
	)
	if err != nil {
		return fmt.Errorf("update booking: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return port.ErrOptimisticLock
	}

	return nil
}

func (m *MySQLAdapter) ListApprovedByItem(ctx context.Context, itemID int64) ([]domain.Booking, error) {
	return m.queryBookings(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE item_id = ? AND status = ?
		ORDER BY start_date DESC, id DESC`,
		itemID, domain.BookingStatusApproved,
	)
}

func (m *MySQLAdapter) ListByBooker(ctx context.Context, bookerID int64) ([]domain.Booking, error) {
	return m.queryBookings(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE booker_id = ?
		ORDER BY start_date DESC, id DESC`,
		bookerID,
	)
}

func (m *MySQLAdapter) ListByItems(ctx context.Context, itemIDs []int64) ([]domain.Booking, error) {
	if len(itemIDs) == 0 {
		return []domain.Booking{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(itemIDs)), ",")
	args := make([]any, len(itemIDs))
	for i, id := range itemIDs {
		args[i] = id
	}

	return m.queryBookings(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE item_id IN (`+placeholders+`)
		ORDER BY start_date DESC, id DESC`,
		args...,
	)
}

func (m *MySQLAdapter) ListAll(ctx context.Context) ([]domain.Booking, error) {
	return m.queryBookings(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		ORDER BY start_date DESC, id DESC`,
	)
}

func (m *MySQLAdapter) HasCompletedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error) {
	var exists bool
	err := m.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE booker_id = ? AND item_id = ? AND status = ? AND end_date < ?
		)`,
		bookerID, itemID, domain.BookingStatusApproved, now.UTC(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query completed booking: %w", err)
	}
	return exists, nil
}

func (m *MySQLAdapter) queryBookings(ctx context.Context, query string, args ...any) ([]domain.Booking, error) {
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}
	return bookings, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (domain.Booking, error) {
	var b domain.Booking
	var status string
	err := row.Scan(&b.ID, &b.Start, &b.End, &b.ItemID, &b.BookerID, &status, &b.Version, &b.CreatedAt)
	if err != nil {
		return domain.Booking{}, err
	}
	b.Status = domain.BookingStatus(status)
	return b, nil
}
