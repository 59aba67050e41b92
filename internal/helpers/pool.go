package helpers

import (
	"fmt"
	"sync"
)

type PoolStats struct {
	Creates int
	Resets  int
	Hits    int
}

func (s PoolStats) String() string {
	return fmt.Sprint("creates: ", s.Creates, ", resets: ", s.Resets, ", hits: ", s.Hits)
}

// CreatePool returns get/release functions over a free list of *T. Released
// values are reset before reuse.
func CreatePool[T any](create func() T, reset func(*T)) (func() *T, func(*T), func() PoolStats) {
	available := make([]*T, 0, 256)
	stats := PoolStats{}

	lock := sync.Mutex{}

	var get = func() *T {
		lock.Lock()
		defer lock.Unlock()

		if n := len(available); n > 0 {
			result := available[n-1]
			available = available[:n-1]
			stats.Hits++
			return result
		}

		stats.Creates++
		result := create()
		return &result
	}

	var release = func(t *T) {
		reset(t)

		lock.Lock()
		defer lock.Unlock()

		stats.Resets++
		available = append(available, t)
	}

	var getStats = func() PoolStats {
		lock.Lock()
		defer lock.Unlock()
		return stats
	}

	return get, release, getStats
}
