package lock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestUserLock_MutualExclusion tests that WithLock serializes writers on
// the same key.
func TestUserLock_MutualExclusion(t *testing.T) {
	ul := NewUserLock()

	const goroutines = 50
	const increments = 100
	counter := 0

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < increments; j++ {
				_ = ul.WithLock("user1", func() error {
					counter++
					return nil
				})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines*increments, counter)
}

// TestUserLock_IndependentKeys tests that different users do not block each
// other.
func TestUserLock_IndependentKeys(t *testing.T) {
	ul := NewUserLock()

	ul.Lock("user1")
	defer ul.Unlock("user1")

	// A different key must be acquirable while user1 is held.
	require.True(t, ul.TryLock("user2"))
	ul.Unlock("user2")
}

// TestUserLock_TryLock tests non-blocking acquisition.
func TestUserLock_TryLock(t *testing.T) {
	ul := NewUserLock()

	require.True(t, ul.TryLock("user1"))
	assert.False(t, ul.TryLock("user1"), "held lock must not be reacquired")
	ul.Unlock("user1")
	assert.True(t, ul.TryLock("user1"))
	ul.Unlock("user1")
}

// TestUserLock_WithLockError tests that the callback error propagates and
// the lock is released.
func TestUserLock_WithLockError(t *testing.T) {
	ul := NewUserLock()

	errCalled := ul.WithLock("user1", func() error {
		return assert.AnError
	})
	assert.ErrorIs(t, errCalled, assert.AnError)

	// The lock must be free again after the error.
	require.True(t, ul.TryLock("user1"))
	ul.Unlock("user1")
}
