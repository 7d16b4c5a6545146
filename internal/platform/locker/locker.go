package locker

import (
	"context"
	"errors"
	"sync"
)

var ErrLockTimeout = errors.New("lock acquisition timed out")

// Locker serializes work on a string key across callers.
type Locker interface {
	// Acquire blocks until key is held or ctx ends. The returned func releases it.
	Acquire(ctx context.Context, key string) (func(), error)
}

type memEntry struct {
	ch   chan struct{}
	refs int
}

// Memory is an in-process keyed mutex. Entries are dropped once unreferenced.
type Memory struct {
	mu   sync.Mutex
	keys map[string]*memEntry
}

func NewMemory() *Memory {
	return &Memory{keys: map[string]*memEntry{}}
}

func (m *Memory) Acquire(ctx context.Context, key string) (func(), error) {
	if ctx == nil {
		ctx = context.Background()
	}
	m.mu.Lock()
	e := m.keys[key]
	if e == nil {
		e = &memEntry{ch: make(chan struct{}, 1)}
		m.keys[key] = e
	}
	e.refs++
	m.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		m.release(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			m.release(key, e)
		})
	}, nil
}

func (m *Memory) release(key string, e *memEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.refs--
	if e.refs <= 0 {
		delete(m.keys, key)
	}
}

// Len reports the number of keys currently held or waited on.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.keys)
}
