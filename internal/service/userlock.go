package service

import "sync"

// userLocks hands out one mutex per user id. Entries are reference counted
// and removed when the last holder unlocks, so the map only holds users with
// in-flight operations.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*userLock)}
}

// lock blocks until the caller holds user's lock and returns the release func
func (l *userLocks) lock(user string) func() {
	l.mu.Lock()
	entry, ok := l.locks[user]
	if !ok {
		entry = &userLock{}
		l.locks[user] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, user)
		}
		l.mu.Unlock()
	}
}

// size returns the number of users with a live entry
func (l *userLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
