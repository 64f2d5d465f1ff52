package service

import "sync"

// keyLocks hands out one RWMutex per importer key. Entries are dropped once
// nobody holds or waits on them.
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	sync.RWMutex
	refs int
}

func newKeyLocks() *keyLocks {
	return &keyLocks{locks: make(map[string]*keyLock)}
}

// Lock takes the exclusive lock for key and returns its release func.
func (k *keyLocks) Lock(key string) func() {
	l := k.acquire(key)
	l.Lock()
	return func() {
		l.Unlock()
		k.release(key, l)
	}
}

// RLock takes the shared lock for key and returns its release func.
func (k *keyLocks) RLock(key string) func() {
	l := k.acquire(key)
	l.RLock()
	return func() {
		l.RUnlock()
		k.release(key, l)
	}
}

func (k *keyLocks) acquire(key string) *keyLock {
	k.mu.Lock()
	defer k.mu.Unlock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{}
		k.locks[key] = l
	}
	l.refs++
	return l
}

func (k *keyLocks) release(key string, l *keyLock) {
	k.mu.Lock()
	defer k.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(k.locks, key)
	}
}

func (k *keyLocks) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}

// staleKeys tracks keys whose cache invalidation failed. The cache tier is
// bypassed for them until a cache write or delete succeeds.
type staleKeys struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func newStaleKeys() *staleKeys {
	return &staleKeys{keys: make(map[string]struct{})}
}

func (s *staleKeys) mark(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key] = struct{}{}
}

func (s *staleKeys) clear(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
}

func (s *staleKeys) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.keys[key]
	return ok
}
