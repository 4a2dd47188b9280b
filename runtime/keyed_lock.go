package runtime

import (
	"slices"
	"sync"

	"github.com/samber/lo"
)

// keyedMutex serializes operations touching the same proto contact.
// Several keys are always acquired in ascending order.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedEntry)}
}

// Lock acquires every key and returns the release function.
func (k *keyedMutex) Lock(keys ...string) func() {
	keys = lo.Uniq(keys)
	slices.Sort(keys)
	entries := make([]*keyedEntry, 0, len(keys))
	for _, key := range keys {
		entry := k.acquire(key)
		entry.mu.Lock()
		entries = append(entries, entry)
	}
	return func() {
		for i := len(entries) - 1; i >= 0; i-- {
			entries[i].mu.Unlock()
			k.release(keys[i])
		}
	}
}

func (k *keyedMutex) acquire(key string) *keyedEntry {
	k.mu.Lock()
	defer k.mu.Unlock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &keyedEntry{}
		k.locks[key] = entry
	}
	entry.refs++
	return entry
}

func (k *keyedMutex) release(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	entry := k.locks[key]
	entry.refs--
	if entry.refs == 0 {
		delete(k.locks, key)
	}
}

func contactLockKey(accountID, address string) string {
	return accountID + "\x00" + address
}
