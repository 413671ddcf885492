package minirun

import (
	"runtime"
	"sync/atomic"
)

// spinLock provides mutual exclusion for critical sections that are a
// handful of loads and stores long. Contending goroutines yield the
// processor instead of sleeping, so the uncontended and lightly contended
// paths stay a single atomic operation. Fairness is not guaranteed.
type spinLock struct {
	noCopy noCopy
	v      atomic.Uint32
}

// lock acquires the spinLock, spinning until it is available.
func (l *spinLock) lock() {
	for !l.v.CompareAndSwap(0, 1) {
		runtime.Gosched()
	}
}

// unlock releases the spinLock.
func (l *spinLock) unlock() {
	l.v.Store(0)
}
