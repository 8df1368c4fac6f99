package payment

import "sync"

// invoiceLocks serializes charge attempts per invoice id within this process.
// The database CAS on the paid transition is the cross-process guarantee; the
// keyed mutex keeps concurrent local attempts from both reaching the gateway.
type invoiceLocks struct {
	mu      sync.Mutex
	entries map[int64]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newInvoiceLocks() *invoiceLocks {
	return &invoiceLocks{entries: make(map[int64]*lockEntry)}
}

// Lock acquires the mutex for the invoice and returns the matching unlock.
func (l *invoiceLocks) Lock(invoiceID int64) func() {
	l.mu.Lock()
	entry, ok := l.entries[invoiceID]
	if !ok {
		entry = &lockEntry{}
		l.entries[invoiceID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.entries, invoiceID)
		}
		l.mu.Unlock()
	}
}
