package services

import "sync"

// StudentLocks serializes load-mutate-persist sequences per student.
// Different students never contend.
type StudentLocks struct {
	mu    sync.Mutex
	locks map[string]*studentLock
}

type studentLock struct {
	mu   sync.Mutex
	refs int
}

func NewStudentLocks() *StudentLocks {
	return &StudentLocks{locks: make(map[string]*studentLock)}
}

// Lock blocks until username is free and returns the matching unlock.
func (l *StudentLocks) Lock(username string) func() {
	l.mu.Lock()
	sl, ok := l.locks[username]
	if !ok {
		sl = &studentLock{}
		l.locks[username] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.mu.Lock()
	return func() {
		sl.mu.Unlock()
		l.mu.Lock()
		sl.refs--
		if sl.refs == 0 {
			delete(l.locks, username)
		}
		l.mu.Unlock()
	}
}

// held returns the number of students with a lock taken or awaited.
func (l *StudentLocks) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
