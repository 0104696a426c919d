package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

var ErrLockTimeout = errors.New("item lock timeout")

// MySQLLocker serializes work on an item with MySQL named locks. A named lock
// belongs to a session, so the connection is pinned until unlock.
type MySQLLocker struct {
	db      *sql.DB
	timeout time.Duration
	logger  *zap.Logger
}

func NewMySQLLocker(db *sql.DB, timeout time.Duration, logger *zap.Logger) *MySQLLocker {
	return &MySQLLocker{db: db, timeout: timeout, logger: logger}
}

func (l *MySQLLocker) Lock(ctx context.Context, itemID int64) (func(), error) {
	conn, err := l.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	name := lockKey(itemID)
	seconds := int(l.timeout / time.Second)
	if seconds < 1 {
		seconds = 1
	}

	var got sql.NullInt64
	if err := conn.QueryRowContext(ctx, `SELECT GET_LOCK(?, ?)`, name, seconds).Scan(&got); err != nil {
		conn.Close()
		return nil, fmt.Errorf("get lock: %w", err)
	}
	if !got.Valid || got.Int64 != 1 {
		conn.Close()
		return nil, ErrLockTimeout
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if _, err := conn.ExecContext(releaseCtx, `SELECT RELEASE_LOCK(?)`, name); err != nil {
				l.logger.Warn("release item lock failed", zap.String("lock", name), zap.Error(err))
			}
			conn.Close()
		})
	}, nil
}
