package port

import "context"

type ItemLocker interface {
	// Lock blocks until the caller holds the exclusive lock for itemID or ctx is done.
	// The returned function releases the lock.
	Lock(ctx context.Context, itemID int64) (unlock func(), err error)
}
