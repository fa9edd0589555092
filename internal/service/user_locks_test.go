package service

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestUserLocks_SerializesSameUser(t *testing.T) {
	locks := NewUserLocks()
	userID := uuid.New()

	const goroutines = 50
	counter := 0

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			unlock := locks.Lock(userID)
			defer unlock()
			counter++ // only safe if the lock actually serializes
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines, counter)
}

func TestUserLocks_IndependentUsers(t *testing.T) {
	locks := NewUserLocks()

	unlockA := locks.Lock(uuid.New())
	defer unlockA()

	// A second user's lock must not block behind the first.
	done := make(chan struct{})
	go func() {
		unlockB := locks.Lock(uuid.New())
		unlockB()
		close(done)
	}()
	<-done
}

func TestUserLocks_EntriesAreReclaimed(t *testing.T) {
	locks := NewUserLocks()
	userID := uuid.New()

	unlock := locks.Lock(userID)
	unlock()

	locks.mu.Lock()
	defer locks.mu.Unlock()
	assert.Empty(t, locks.locks)
}
