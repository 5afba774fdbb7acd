package otp

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeSuite(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("IssueAndVerifyOnce", func(t *testing.T) {
		svc := NewService(newStore(t), time.Minute, 3)
		code, err := svc.Issue(ctx, "checkout", "Alice@Example.com")
		require.NoError(t, err)
		assert.Len(t, code, 6)

		require.NoError(t, svc.Verify(ctx, "checkout", "alice@example.com", code))
		assert.ErrorIs(t, svc.Verify(ctx, "checkout", "alice@example.com", code), ErrInvalidCode)
	})

	t.Run("CheckDoesNotConsume", func(t *testing.T) {
		svc := NewService(newStore(t), time.Minute, 3)
		code, err := svc.Issue(ctx, "checkout", "frank@example.com")
		require.NoError(t, err)
		require.NoError(t, svc.Check(ctx, "checkout", "frank@example.com", code))
		require.NoError(t, svc.Check(ctx, "checkout", "frank@example.com", code))
		require.NoError(t, svc.Verify(ctx, "checkout", "frank@example.com", code))
		assert.ErrorIs(t, svc.Check(ctx, "checkout", "frank@example.com", code), ErrInvalidCode)
	})

	t.Run("PurposeIsolated", func(t *testing.T) {
		svc := NewService(newStore(t), time.Minute, 3)
		code, err := svc.Issue(ctx, "reset", "bob@example.com")
		require.NoError(t, err)
		assert.ErrorIs(t, svc.Verify(ctx, "checkout", "bob@example.com", code), ErrInvalidCode)
		assert.NoError(t, svc.Verify(ctx, "reset", "bob@example.com", code))
	})

	t.Run("AttemptsBurnCode", func(t *testing.T) {
		svc := NewService(newStore(t), time.Minute, 3)
		code, err := svc.Issue(ctx, "checkout", "carol@example.com")
		require.NoError(t, err)
		wrong := "000000"
		if code == wrong {
			wrong = "111111"
		}
		assert.ErrorIs(t, svc.Verify(ctx, "checkout", "carol@example.com", wrong), ErrInvalidCode)
		assert.ErrorIs(t, svc.Verify(ctx, "checkout", "carol@example.com", wrong), ErrInvalidCode)
		assert.ErrorIs(t, svc.Verify(ctx, "checkout", "carol@example.com", wrong), ErrTooManyAttempts)
		assert.ErrorIs(t, svc.Verify(ctx, "checkout", "carol@example.com", code), ErrInvalidCode)
	})

	t.Run("ReissueReplaces", func(t *testing.T) {
		svc := NewService(newStore(t), time.Minute, 3)
		first, err := svc.Issue(ctx, "checkout", "dan@example.com")
		require.NoError(t, err)
		second, err := svc.Issue(ctx, "checkout", "dan@example.com")
		require.NoError(t, err)
		if first != second {
			assert.ErrorIs(t, svc.Verify(ctx, "checkout", "dan@example.com", first), ErrInvalidCode)
		}
		assert.NoError(t, svc.Verify(ctx, "checkout", "dan@example.com", second))
	})

	t.Run("ConcurrentVerifySingleWinner", func(t *testing.T) {
		svc := NewService(newStore(t), time.Minute, 100)
		code, err := svc.Issue(ctx, "checkout", "erin@example.com")
		require.NoError(t, err)

		var wins atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if svc.Verify(ctx, "checkout", "erin@example.com", code) == nil {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), wins.Load())
	})
}

func TestMemoryStore(t *testing.T) {
	storeSuite(t, func(t *testing.T) Store { return NewMemoryStore() })
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now()
	s.now = func() time.Time { return now }
	svc := NewService(s, time.Minute, 3)

	code, err := svc.Issue(context.Background(), "checkout", "a@example.com")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	assert.ErrorIs(t, svc.Verify(context.Background(), "checkout", "a@example.com", code), ErrInvalidCode)
}

func TestVerifyRejectsMalformed(t *testing.T) {
	svc := NewService(NewMemoryStore(), time.Minute, 3)
	assert.ErrorIs(t, svc.Verify(context.Background(), "checkout", "a@example.com", "12"), ErrInvalidCode)
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}
	storeSuite(t, func(t *testing.T) Store {
		s, err := NewRedisStore(context.Background(), url)
		if err != nil {
			t.Skipf("redis unavailable: %v", err)
		}
		require.NoError(t, s.client.FlushDB(context.Background()).Err())
		t.Cleanup(func() { s.Close() })
		return s
	})
}
