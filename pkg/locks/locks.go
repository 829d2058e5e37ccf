// Package locks provides non-blocking per-key locks.
//
// The HTTP service uses them to allow at most one render per order id at a
// time: a second request for an order that is still rendering fails fast
// instead of queueing.
package locks

import (
	"slices"
	"sync"
)

// Keyed is a set of named locks. The zero value is ready to use.
type Keyed struct {
	m sync.Map
}

// TryAcquire takes the locks for every key, or none of them. It reports
// whether the locks were taken.
func (k *Keyed) TryAcquire(keys ...string) bool {
	keys = slices.Compact(slices.Sorted(slices.Values(keys)))
	var acquired []string
	for _, key := range keys {
		if _, loaded := k.m.LoadOrStore(key, struct{}{}); loaded {
			k.Release(acquired...)
			return false
		}
		acquired = append(acquired, key)
	}
	return true
}

// Release drops the locks for keys. Releasing a key that is not held is a
// no-op.
func (k *Keyed) Release(keys ...string) {
	for _, key := range keys {
		k.m.Delete(key)
	}
}
