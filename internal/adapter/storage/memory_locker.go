package storage

import (
	"context"
	"sync"
)

// MemoryLocker is an in-process ItemLocker: one mutex per item, created on
// demand and dropped when nobody holds or waits for it.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[int64]*itemLock
}

type itemLock struct {
	sem  chan struct{}
	refs int
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[int64]*itemLock)}
}

func (m *MemoryLocker) Lock(ctx context.Context, itemID int64) (func(), error) {
	m.mu.Lock()
	l, ok := m.locks[itemID]
	if !ok {
		l = &itemLock{sem: make(chan struct{}, 1)}
		m.locks[itemID] = l
	}
	l.refs++
	m.mu.Unlock()

	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		m.release(itemID, l)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-l.sem
			m.release(itemID, l)
		})
	}, nil
}

func (m *MemoryLocker) release(itemID int64, l *itemLock) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l.refs--
	if l.refs == 0 {
		delete(m.locks, itemID)
	}
}
