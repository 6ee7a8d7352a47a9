// Package lock serializes mutations of a single product.
package lock

import (
	"context"
	"errors"
	"strconv"
	"sync"
)

var (
	ErrEmptyKey    = errors.New("lock_key_empty")
	ErrNotAcquired = errors.New("lock_not_acquired")
)

// Locker grants exclusive access to a key until the returned release is called.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// ProductKey is the lock key guarding one product's ledger.
func ProductKey(productID int64) string {
	return "stockroom:lock:product:" + strconv.FormatInt(productID, 10)
}

// CatalogKey guards product id allocation.
const CatalogKey = "stockroom:lock:catalog"

// KeyedMutex is an in-process Locker. Entries are dropped once no goroutine
// holds or waits on them.
type KeyedMutex struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{slots: make(map[string]*slot)}
}

func (k *KeyedMutex) Acquire(ctx context.Context, key string) (func(), error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	k.mu.Lock()
	s, ok := k.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		k.slots[key] = s
	}
	s.refs++
	k.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		k.unref(key, s)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.ch
			k.unref(key, s)
		})
	}, nil
}

func (k *KeyedMutex) unref(key string, s *slot) {
	k.mu.Lock()
	defer k.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(k.slots, key)
	}
}

// size reports tracked keys; tests use it to check cleanup.
func (k *KeyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.slots)
}

var _ Locker = (*KeyedMutex)(nil)
