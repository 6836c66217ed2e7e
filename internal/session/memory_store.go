package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"tabsync/internal/constants"
)

// MemoryStore is the default single-process session store.
type MemoryStore struct {
	sessions   sync.Map
	defaultTax float64
	timeout    time.Duration
	interval   time.Duration
	onExpire   func(code string)
	ctx        context.Context
	cancel     func()
	wg         sync.WaitGroup
}

func NewMemoryStore(defaultTax float64, timeout, sweepInterval time.Duration) *MemoryStore {
	ctx, cancel := context.WithCancel(context.Background())
	store := &MemoryStore{
		defaultTax: defaultTax,
		timeout:    timeout,
		interval:   sweepInterval,
		ctx:        ctx,
		cancel:     cancel,
	}
	store.startSweep()
	return store
}

func (st *MemoryStore) OnExpire(fn func(code string)) {
	st.onExpire = fn
}

// Create allocates a fresh session under a code not currently in use,
// regenerating on collision.
func (st *MemoryStore) Create() (*Session, error) {
	for range constants.MaxCodeAttempts {
		sess := NewSession(GenerateCode(), st.defaultTax)
		if _, loaded := st.sessions.LoadOrStore(sess.Code, sess); !loaded {
			log.Printf("💾 Session created: %s", sess.Code)
			return sess, nil
		}
	}
	return nil, errors.New("could not allocate a unique session code")
}

func (st *MemoryStore) Get(code string) (*Session, error) {
	val, ok := st.sessions.Load(code)
	if !ok {
		return nil, ErrNotFound
	}
	sess := val.(*Session)
	if sess.IsExpired(st.timeout) {
		st.sessions.Delete(code)
		if st.onExpire != nil {
			st.onExpire(code)
		}
		return nil, ErrExpired
	}
	return sess, nil
}

// GetOrCreate returns the session under the given code, creating an empty
// one if it is unknown or already expired.
func (st *MemoryStore) GetOrCreate(code string) (*Session, error) {
	fresh := NewSession(code, st.defaultTax)
	val, loaded := st.sessions.LoadOrStore(code, fresh)
	if !loaded {
		log.Printf("💾 Session created on join: %s", code)
		return fresh, nil
	}

	sess := val.(*Session)
	if sess.IsExpired(st.timeout) {
		st.sessions.Delete(code)
		if st.onExpire != nil {
			st.onExpire(code)
		}
		st.sessions.Store(code, fresh)
		return fresh, nil
	}
	return sess, nil
}

// Save exists for store symmetry; the memory store hands out shared pointers
// so mutations are already visible.
func (st *MemoryStore) Save(sess *Session) {
	st.sessions.Store(sess.Code, sess)
}

func (st *MemoryStore) Delete(code string) {
	st.sessions.Delete(code)
}

func (st *MemoryStore) Close() error {
	st.cancel()
	st.wg.Wait()
	return nil
}

func (st *MemoryStore) startSweep() {
	st.wg.Add(1)
	go func() {
		defer st.wg.Done()
		ticker := time.NewTicker(st.interval)
		defer ticker.Stop()

		for {
			select {
			case <-st.ctx.Done():
				return
			case <-ticker.C:
				st.sweepExpired()
			}
		}
	}()
}

func (st *MemoryStore) sweepExpired() {
	st.sessions.Range(func(key, value interface{}) bool {
		sess := value.(*Session)
		if sess.IsExpired(st.timeout) {
			code := key.(string)
			st.sessions.Delete(key)
			if st.onExpire != nil {
				st.onExpire(code)
			}
			log.Printf("🗑 Expired session cleaned up: %s", code)
		}
		return true
	})
}
