package service

import "sync"

// dayLocks serializes events that target the same calendar day. The engine
// routines read-then-write multi-row state and are not safe to interleave;
// events for different days proceed in parallel. Lock entries are tiny and
// bounded by the number of distinct days seen, so nothing is ever evicted.
type dayLocks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func newDayLocks() *dayLocks {
	return &dayLocks{m: make(map[string]*sync.Mutex)}
}

// lock acquires the mutex for date and returns its unlock func.
func (l *dayLocks) lock(date string) func() {
	l.mu.Lock()
	dm, ok := l.m[date]
	if !ok {
		dm = &sync.Mutex{}
		l.m[date] = dm
	}
	l.mu.Unlock()

	dm.Lock()
	return dm.Unlock
}
