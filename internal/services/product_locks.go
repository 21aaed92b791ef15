// internal/services/product_locks.go
package services

import (
	"sync"

	"github.com/google/uuid"
)

// ProductLocks serializes stage mutations per product inside this process.
// Cross-process races are caught by the stage_version check.
type ProductLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*productLock
}

type productLock struct {
	mu      sync.Mutex
	holders int
}

func NewProductLocks() *ProductLocks {
	return &ProductLocks{locks: make(map[uuid.UUID]*productLock)}
}

// Lock blocks until the product is free and returns the unlock func.
func (p *ProductLocks) Lock(productID uuid.UUID) func() {
	p.mu.Lock()
	l, ok := p.locks[productID]
	if !ok {
		l = &productLock{}
		p.locks[productID] = l
	}
	l.holders++
	p.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		p.mu.Lock()
		l.holders--
		if l.holders == 0 {
			delete(p.locks, productID)
		}
		p.mu.Unlock()
	}
}
