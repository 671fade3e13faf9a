package services

import (
	"context"
	"sync"
)

// fifoMutex is a mutual exclusion lock that grants ownership in arrival order.
// Unlock hands the lock directly to the oldest waiter.
type fifoMutex struct {
	mu      sync.Mutex
	locked  bool
	waiters []chan struct{}
}

// Lock blocks until the lock is acquired or ctx is done.
func (m *fifoMutex) Lock(ctx context.Context) error {
	m.mu.Lock()
	if !m.locked {
		m.locked = true
		m.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	m.waiters = append(m.waiters, ch)
	m.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		m.mu.Lock()
		for i, w := range m.waiters {
			if w == ch {
				m.waiters = append(m.waiters[:i], m.waiters[i+1:]...)
				m.mu.Unlock()
				return ctx.Err()
			}
		}
		m.mu.Unlock()
		// Ownership was handed over while we were giving up.
		m.Unlock()
		return ctx.Err()
	}
}

// Unlock releases the lock or passes it to the next waiter.
func (m *fifoMutex) Unlock() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.waiters) == 0 {
		m.locked = false
		return
	}
	next := m.waiters[0]
	m.waiters = m.waiters[1:]
	close(next)
}

// queued returns the number of waiters.
func (m *fifoMutex) queued() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.waiters)
}
