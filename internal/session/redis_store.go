package session

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"tabsync/internal/constants"
)

// RedisStore keeps session state in Redis with a TTL matching the session
// timeout. Connections still live in the in-process Registry; only the
// serializable state crosses the wire.
type RedisStore struct {
	client     *redis.Client
	defaultTax float64
	timeout    time.Duration
	interval   time.Duration
	onExpire   func(code string)
	ctx        context.Context
	cancel     func()
	wg         sync.WaitGroup
}

func NewRedisStore(host, port, username, password string, defaultTax float64, timeout, sweepInterval time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Username: username,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithCancel(context.Background())

	store := &RedisStore{
		client:     client,
		defaultTax: defaultTax,
		timeout:    timeout,
		interval:   sweepInterval,
		ctx:        ctx,
		cancel:     cancel,
	}

	if err := store.client.Ping(ctx).Err(); err != nil {
		cancel()
		return nil, err
	}

	store.startSweep()

	return store, nil
}

func (st *RedisStore) OnExpire(fn func(code string)) {
	st.onExpire = fn
}

func (st *RedisStore) Create() (*Session, error) {
	for range constants.MaxCodeAttempts {
		sess := NewSession(GenerateCode(), st.defaultTax)
		key := constants.RedisKeyPrefix + sess.Code
		data, err := json.Marshal(toData(sess))
		if err != nil {
			return nil, err
		}
		ok, err := st.client.SetNX(st.ctx, key, data, st.timeout).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			log.Printf("💾 Session created (Redis): %s", sess.Code)
			return sess, nil
		}
	}
	return nil, errors.New("could not allocate a unique session code")
}

func (st *RedisStore) Get(code string) (*Session, error) {
	key := constants.RedisKeyPrefix + code

	data, err := st.client.Get(st.ctx, key).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		log.Printf("Failed to get session from Redis: %v", err)
		return nil, ErrNotFound
	}

	var sd SessionData
	if err := json.Unmarshal([]byte(data), &sd); err != nil {
		log.Printf("Failed to unmarshal session: %v", err)
		return nil, ErrNotFound
	}

	sess := fromData(sd)
	if sess.IsExpired(st.timeout) {
		st.Delete(code)
		if st.onExpire != nil {
			st.onExpire(code)
		}
		return nil, ErrExpired
	}

	return sess, nil
}

func (st *RedisStore) GetOrCreate(code string) (*Session, error) {
	sess, err := st.Get(code)
	if err == nil {
		return sess, nil
	}

	fresh := NewSession(code, st.defaultTax)
	st.Save(fresh)
	log.Printf("💾 Session created on join (Redis): %s", code)
	return fresh, nil
}

func (st *RedisStore) Save(sess *Session) {
	data, err := json.Marshal(toData(sess))
	if err != nil {
		log.Printf("Failed to marshal session: %v", err)
		return
	}

	ttl := st.timeout - time.Since(sess.CreatedAt)
	if ttl <= 0 {
		return
	}

	key := constants.RedisKeyPrefix + sess.Code
	if err := st.client.Set(st.ctx, key, data, ttl).Err(); err != nil {
		log.Printf("Failed to save session to Redis: %v", err)
	}
}

func (st *RedisStore) Delete(code string) {
	key := constants.RedisKeyPrefix + code
	if err := st.client.Del(st.ctx, key).Err(); err != nil {
		log.Printf("Failed to delete session from Redis: %v", err)
	}
}

func (st *RedisStore) Close() error {
	st.cancel()
	st.wg.Wait()
	return st.client.Close()
}

func (st *RedisStore) startSweep() {
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

// sweepExpired catches sessions whose stored creation time has passed the
// timeout ahead of their Redis TTL. Keys already evicted by Redis surface as
// not-found on the next lookup instead.
func (st *RedisStore) sweepExpired() {
	pattern := constants.RedisKeyPrefix + "*"
	iter := st.client.Scan(st.ctx, 0, pattern, constants.RedisScanBatch).Iterator()

	for iter.Next(st.ctx) {
		key := iter.Val()
		code := key[len(constants.RedisKeyPrefix):]

		data, err := st.client.Get(st.ctx, key).Result()
		if err != nil {
			continue
		}
		var sd SessionData
		if err := json.Unmarshal([]byte(data), &sd); err != nil {
			continue
		}
		if fromData(sd).IsExpired(st.timeout) {
			st.Delete(code)
			if st.onExpire != nil {
				st.onExpire(code)
			}
			log.Printf("🗑 Expired session cleaned up (Redis): %s", code)
		}
	}

	if err := iter.Err(); err != nil {
		log.Printf("Redis scan error: %v", err)
	}
}

func toData(sess *Session) SessionData {
	return SessionData{
		Code:       sess.Code,
		CreatedAt:  sess.CreatedAt,
		TaxPercent: sess.TaxPercent,
		Orders:     sess.Orders,
	}
}

func fromData(sd SessionData) *Session {
	sess := &Session{
		Code:       sd.Code,
		CreatedAt:  sd.CreatedAt,
		TaxPercent: sd.TaxPercent,
		Orders:     sd.Orders,
	}
	if sess.Orders == nil {
		sess.Orders = []Order{}
	}
	return sess
}
