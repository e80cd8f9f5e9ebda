package container

import "sync"

// keyedMutex serializes read-modify-write cycles per (user, context) stripe
// inside this process. The preference store has no compare-and-swap, so
// cross-process writers race last-writer-wins.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

// get returns the mutex for key, creating it on first use. Entries are never
// evicted; the population is bounded by active (user, context) pairs.
func (k *keyedMutex) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()

	lock, ok := k.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		k.locks[key] = lock
	}
	return lock
}

func stripeKey(userID, contextName string) string {
	return userID + "\x00" + contextName
}
