package application

import "sync"

// invoiceLocks serializes mutations of the same invoice within this
// process: confirmation never races an item insert or a payment change.
type invoiceLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newInvoiceLocks() *invoiceLocks {
	return &invoiceLocks{locks: map[int64]*sync.Mutex{}}
}

// Lock acquires the mutex for one invoice number and returns its unlock.
func (l *invoiceLocks) Lock(number int64) func() {
	l.mu.Lock()
	lock, ok := l.locks[number]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[number] = lock
	}
	l.mu.Unlock()
	lock.Lock()
	return lock.Unlock
}
