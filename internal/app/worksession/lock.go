package worksession

import "sync"

// sessionLocks serializes clock operations per (restaurant, user). Entries
// are never evicted; the map is bounded by the active staff population.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sync.Mutex)}
}

// Acquire locks the (restaurantID, userID) aggregate and returns the release
// function.
func (l *sessionLocks) Acquire(restaurantID, userID string) func() {
	key := restaurantID + "/" + userID

	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
