package engine

import "sync"

// keyedMutex serializes work per instance id. Entries are refcounted so the
// map does not grow with the number of instances ever seen.
type keyedMutex struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{
		entries: make(map[string]*lockEntry),
	}
}

func (km *keyedMutex) Lock(key string) {
	km.mu.Lock()
	entry, ok := km.entries[key]
	if !ok {
		entry = &lockEntry{}
		km.entries[key] = entry
	}
	entry.refs++
	km.mu.Unlock()
	entry.mu.Lock()
}

func (km *keyedMutex) Unlock(key string) {
	km.mu.Lock()
	entry := km.entries[key]
	entry.refs--
	if entry.refs == 0 {
		delete(km.entries, key)
	}
	km.mu.Unlock()
	entry.mu.Unlock()
}
