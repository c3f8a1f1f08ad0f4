// Package keylock provides mutual exclusion scoped to string keys. It backs
// the per-(physician, competency) serialization of score recomputation:
// holders of different keys proceed in parallel, holders of the same key
// queue behind each other.
package keylock

import "sync"

const shardCount = 32

type shard struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// KeyLock is a sharded table of named mutexes. The zero value is not usable;
// construct with New.
type KeyLock struct {
	shards [shardCount]shard
}

func New() *KeyLock {
	kl := &KeyLock{}
	for i := range kl.shards {
		kl.shards[i].locks = make(map[string]*entry)
	}
	return kl
}

// Lock acquires the mutex for key and returns the unlock function. Entries
// are reference counted and removed once the last holder releases, so the
// table stays bounded by the number of keys currently in flight.
func (kl *KeyLock) Lock(key string) func() {
	s := &kl.shards[fnv32(key)%shardCount]

	s.mu.Lock()
	e, ok := s.locks[key]
	if !ok {
		e = &entry{}
		s.locks[key] = e
	}
	e.refs++
	s.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()
		s.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(s.locks, key)
		}
		s.mu.Unlock()
	}
}

func fnv32(s string) uint32 {
	const (
		offset = 2166136261
		prime  = 16777619
	)
	h := uint32(offset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= prime
	}
	return h
}
