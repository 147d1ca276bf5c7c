package registrar

import (
	"sort"
	"sync"
)

// lockTable provides exclusive critical sections keyed by record key
// (course:NAME, student:USERNAME).
//
// Locks are acquired in sorted key order so two operations that share
// any key cannot deadlock against each other. Mutexes live for the
// table's lifetime; records are never deleted, so the table is bounded
// by the number of records ever touched.
//
// Thread-safety: acquire is safe from any goroutine.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]*sync.Mutex)}
}

// acquire locks all keys and returns a release function.
// Duplicate keys are collapsed; keys are locked in sorted order.
// The release function unlocks in reverse order.
func (t *lockTable) acquire(keys ...string) func() {
	sorted := dedupSorted(keys)

	ms := make([]*sync.Mutex, len(sorted))
	for i, k := range sorted {
		ms[i] = t.get(k)
	}
	for _, m := range ms {
		m.Lock()
	}
	return func() {
		for i := len(ms) - 1; i >= 0; i-- {
			ms[i].Unlock()
		}
	}
}

// get returns the mutex for a key, creating it on first use.
func (t *lockTable) get(key string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()

	m, ok := t.locks[key]
	if !ok {
		m = &sync.Mutex{}
		t.locks[key] = m
	}
	return m
}

// dedupSorted returns the unique keys in sorted order.
func dedupSorted(keys []string) []string {
	sorted := make([]string, len(keys))
	copy(sorted, keys)
	sort.Strings(sorted)

	out := sorted[:0]
	for i, k := range sorted {
		if i == 0 || k != sorted[i-1] {
			out = append(out, k)
		}
	}
	return out
}

// Record key constructors. Course names and usernames live in separate
// namespaces, so the prefix keeps a course and a student with the same
// name from sharing a lock.
func courseKey(name string) string      { return "course:" + name }
func studentKey(username string) string { return "student:" + username }
