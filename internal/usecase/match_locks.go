package usecase

import "sync"

// MatchLocks serializes read-modify-write sequences per match inside one
// process. Entries are reference counted and dropped once unused, so the
// map only holds matches with work in flight. Cross-process races are caught
// by the version check in match.Repository.UpdateAtomic.
type MatchLocks struct {
	mu    sync.Mutex
	locks map[string]*matchLock
}

type matchLock struct {
	mu   sync.Mutex
	refs int
}

func NewMatchLocks() *MatchLocks {
	return &MatchLocks{locks: make(map[string]*matchLock)}
}

// Lock blocks until matchID is free and returns its release func.
func (l *MatchLocks) Lock(matchID string) func() {
	l.mu.Lock()
	entry, ok := l.locks[matchID]
	if !ok {
		entry = &matchLock{}
		l.locks[matchID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			entry.mu.Unlock()

			l.mu.Lock()
			entry.refs--
			if entry.refs == 0 {
				delete(l.locks, matchID)
			}
			l.mu.Unlock()
		})
	}
}

func (l *MatchLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
