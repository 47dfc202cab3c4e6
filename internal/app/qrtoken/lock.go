package qrtoken

import "sync"

// codeLocks serializes code creation and rotation per restaurant, so two
// first-time callers cannot both create an active code. Entries are never
// evicted; the map is bounded by the restaurant population.
type codeLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newCodeLocks() *codeLocks {
	return &codeLocks{locks: make(map[string]*sync.Mutex)}
}

// Acquire locks the restaurant's code aggregate and returns the release
// function.
func (l *codeLocks) Acquire(restaurantID string) func() {
	l.mu.Lock()
	m, ok := l.locks[restaurantID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[restaurantID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
