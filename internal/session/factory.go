package session

import (
	"log"

	"tabsync/internal/config"
)

// NewStore picks the session store backend: Redis when configured, otherwise
// the in-memory store. A failed Redis connection falls back to memory so the
// server always comes up.
func NewStore(cfg config.Config) (StoreInterface, error) {
	if cfg.RedisHost != "" {
		store, err := NewRedisStore(
			cfg.RedisHost, cfg.RedisPort, cfg.RedisUsername, cfg.RedisPassword,
			cfg.DefaultTaxPercent, cfg.SessionTimeout, cfg.SweepInterval,
		)
		if err != nil {
			log.Printf("⚠️  Redis connection failed: %v", err)
			log.Println("💾 Falling back to in-memory session store")
			return NewMemoryStore(cfg.DefaultTaxPercent, cfg.SessionTimeout, cfg.SweepInterval), nil
		}
		log.Printf("💾 Using Redis session store: %s:%s", cfg.RedisHost, cfg.RedisPort)
		return store, nil
	}

	log.Println("💾 Using in-memory session store")
	return NewMemoryStore(cfg.DefaultTaxPercent, cfg.SessionTimeout, cfg.SweepInterval), nil
}
