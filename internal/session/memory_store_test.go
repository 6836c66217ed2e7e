package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, timeout, sweep time.Duration) *MemoryStore {
	t.Helper()
	store := NewMemoryStore(13, timeout, sweep)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestMemoryStore_CreateAndGet(t *testing.T) {
	req := require.New(t)
	store := newTestStore(t, time.Hour, time.Minute)

	sess, err := store.Create()
	req.NoError(err)
	req.Len(sess.Code, 6)
	req.Equal(13.0, sess.TaxPercent)
	req.Empty(sess.Orders)

	got, err := store.Get(sess.Code)
	req.NoError(err)
	req.Same(sess, got)
}

func TestMemoryStore_Get_Unknown(t *testing.T) {
	req := require.New(t)
	store := newTestStore(t, time.Hour, time.Minute)

	_, err := store.Get("NOPE42")
	req.ErrorIs(err, ErrNotFound)
}

func TestMemoryStore_Get_ExpiredEvictsAndNotifies(t *testing.T) {
	req := require.New(t)
	store := newTestStore(t, time.Hour, time.Minute)

	var expired []string
	store.OnExpire(func(code string) { expired = append(expired, code) })

	sess, err := store.Create()
	req.NoError(err)
	sess.CreatedAt = time.Now().Add(-2 * time.Hour)

	_, err = store.Get(sess.Code)
	req.ErrorIs(err, ErrExpired)
	req.Equal([]string{sess.Code}, expired)

	// Evicted: a second lookup is a plain miss.
	_, err = store.Get(sess.Code)
	req.ErrorIs(err, ErrNotFound)
}

func TestMemoryStore_GetOrCreate(t *testing.T) {
	req := require.New(t)
	store := newTestStore(t, time.Hour, time.Minute)

	sess, err := store.GetOrCreate("TABLE1")
	req.NoError(err)
	req.Equal("TABLE1", sess.Code)

	again, err := store.GetOrCreate("TABLE1")
	req.NoError(err)
	req.Same(sess, again)
}

func TestMemoryStore_GetOrCreate_ReplacesExpired(t *testing.T) {
	req := require.New(t)
	store := newTestStore(t, time.Hour, time.Minute)

	sess, err := store.GetOrCreate("TABLE1")
	req.NoError(err)
	sess.AddOrder("", "Pizza", 1, nil, "")
	sess.CreatedAt = time.Now().Add(-2 * time.Hour)

	fresh, err := store.GetOrCreate("TABLE1")
	req.NoError(err)
	req.NotSame(sess, fresh)
	req.Empty(fresh.Orders)
}

func TestMemoryStore_Delete(t *testing.T) {
	req := require.New(t)
	store := newTestStore(t, time.Hour, time.Minute)

	sess, err := store.Create()
	req.NoError(err)

	store.Delete(sess.Code)
	_, err = store.Get(sess.Code)
	req.ErrorIs(err, ErrNotFound)
}

func TestMemoryStore_SweepEvictsExpiredSessions(t *testing.T) {
	req := require.New(t)
	store := newTestStore(t, 50*time.Millisecond, 20*time.Millisecond)

	var mu sync.Mutex
	var expired []string
	store.OnExpire(func(code string) {
		mu.Lock()
		defer mu.Unlock()
		expired = append(expired, code)
	})

	sess, err := store.Create()
	req.NoError(err)

	req.Eventually(func() bool {
		_, err := store.Get(sess.Code)
		return errors.Is(err, ErrNotFound)
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	req.Contains(expired, sess.Code)
}
