package cache

import (
	"sync/atomic"
	"time"
)

// globalEpoch is the process-wide invalidation marker shared by every
// LocalCache. It belongs to the package, not to any instance: a global clear
// advances it, and each instance compares its remembered value on every read.
// Reads and advances are atomic; the one remaining race (an instance serving a
// stale entry while another advances the epoch) costs at most one read before
// the next access clears it.
var globalEpoch atomic.Int64

// advanceGlobalEpoch moves the shared epoch forward and returns the new value.
// The epoch is a unix-nano timestamp; if the clock has not advanced past the
// stored value the previous epoch plus one is used so the marker stays
// strictly monotonic.
func advanceGlobalEpoch() int64 {
	for {
		old := globalEpoch.Load()
		next := time.Now().UnixNano()
		if next <= old {
			next = old + 1
		}
		if globalEpoch.CompareAndSwap(old, next) {
			return next
		}
	}
}
