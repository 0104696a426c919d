package port

import (
	"context"
	"time"

	"github.com/rl1809/shareit/internal/core/domain"
)

type UserDirectory interface {
	// FindUser retrieves a user by ID, nil if it does not exist
	FindUser(ctx context.Context, id int64) (*domain.User, error)
}

type ItemCatalog interface {
	// FindItem retrieves an item by ID, nil if it does not exist
	FindItem(ctx context.Context, id int64) (*domain.Item, error)

	// FindItemsByOwner returns the items owned by a user
	FindItemsByOwner(ctx context.Context, ownerID int64) ([]domain.Item, error)
}

// CommentEligibility is consumed by the item module to decide whether a user
// may leave a comment on an item.
type CommentEligibility interface {
	HasCompletedBooking(ctx context.Context, userID, itemID int64, now time.Time) (bool, error)
}
