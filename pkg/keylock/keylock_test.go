package keylock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLockSerializesSameKey(t *testing.T) {
	kl := New()

	const workers = 16
	const iterations = 100
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				unlock := kl.Lock("physician/competency")
				counter++
				unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, workers*iterations, counter)
}

func TestLockAllowsDifferentKeysConcurrently(t *testing.T) {
	kl := New()

	unlockA := kl.Lock("a")
	defer unlockA()

	// A different key must not block behind the held lock.
	done := make(chan struct{})
	go func() {
		unlockB := kl.Lock("b")
		unlockB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different key blocked")
	}
}

func TestLockEntriesAreReleased(t *testing.T) {
	kl := New()

	unlock := kl.Lock("transient")
	unlock()

	for i := range kl.shards {
		assert.Empty(t, kl.shards[i].locks, "shard %d", i)
	}
}

func TestLockReentryAfterRelease(t *testing.T) {
	kl := New()

	unlock := kl.Lock("key")
	unlock()

	unlock = kl.Lock("key")
	unlock()
}
