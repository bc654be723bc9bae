package loader

import "sync"

// lockManager hands out one lock per proxy name. A lock is forgotten once nobody
// holds or waits for it.
type lockManager struct {
	mu    sync.Mutex
	locks map[string]*namedLock
}

type namedLock struct {
	sync.Mutex
	refs int
}

func newLockManager() *lockManager {
	return &lockManager{
		locks: make(map[string]*namedLock),
	}
}

// lock blocks until the lock of the name is held, and returns its release function.
func (lm *lockManager) lock(name string) (release func()) {
	lm.mu.Lock()
	l, exists := lm.locks[name]
	if !exists {
		l = &namedLock{}
		lm.locks[name] = l
	}
	l.refs++
	lm.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()

		lm.mu.Lock()
		defer lm.mu.Unlock()
		l.refs--
		if l.refs == 0 {
			delete(lm.locks, name)
		}
	}
}

func (lm *lockManager) size() int {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return len(lm.locks)
}
