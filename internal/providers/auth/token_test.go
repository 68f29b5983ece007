package auth

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenStoreSetOnce(t *testing.T) {
	store := NewTokenStore()
	assert.False(t, store.IsSet())
	assert.False(t, store.Verify("T1"))

	require.NoError(t, store.Set("T1"))
	assert.True(t, store.IsSet())

	// Resubmitting the same token succeeds
	require.NoError(t, store.Set("T1"))
	require.NoError(t, store.Set("  T1\n"))

	// A different token conflicts and leaves the stored one unchanged
	assert.ErrorIs(t, store.Set("T2"), ErrTokenConflict)
	assert.True(t, store.Verify("T1"))
	assert.False(t, store.Verify("T2"))
}

func TestTokenStoreRejectsEmpty(t *testing.T) {
	store := NewTokenStore()

	for _, token := range []string{"", "   ", "\t\n"} {
		assert.ErrorIs(t, store.Set(token), ErrInvalidToken)
	}
	assert.False(t, store.IsSet())
}

func TestTokenStoreVerify(t *testing.T) {
	store := NewTokenStore()
	require.NoError(t, store.Set(" secret "))

	tests := []struct {
		token string
		want  bool
	}{
		{"secret", true},
		{" secret ", false},
		{"Secret", false},
		{"secret2", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, store.Verify(tt.token), "token %q", tt.token)
	}
}

func TestTokenStoreConcurrentSet(t *testing.T) {
	store := NewTokenStore()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes = map[string]int{}
	)
	for _, token := range []string{"a", "b", "c", "d"} {
		token := token
		wg.Add(1)
		go func() {
			defer wg.Done()
			if store.Set(token) == nil {
				mu.Lock()
				successes[token]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, successes, 1, "exactly one token wins")
	for winner := range successes {
		assert.True(t, store.Verify(winner))
	}
}
