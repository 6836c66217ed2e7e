package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all tunable server settings. Every field has a sane default so
// the server runs with an empty environment.
type Config struct {
	Host string `envconfig:"HOST" default:"localhost:5000"`
	Port string `envconfig:"PORT" default:"5000"`

	// SESSION_TIMEOUT bounds the lifetime of a session from its creation,
	// regardless of activity. SWEEP_INTERVAL controls how often expired
	// sessions are reaped.
	SessionTimeout time.Duration `envconfig:"SESSION_TIMEOUT" default:"4h"`
	SweepInterval  time.Duration `envconfig:"SWEEP_INTERVAL" default:"10m"`

	MaxItemNameLength int     `envconfig:"MAX_ITEM_NAME_LENGTH" default:"25"`
	MaxNotesLength    int     `envconfig:"MAX_NOTES_LENGTH" default:"30"`
	MaxItemPrice      float64 `envconfig:"MAX_ITEM_PRICE" default:"50000"`
	DefaultTaxPercent float64 `envconfig:"DEFAULT_TAX_PERCENT" default:"13"`
	MaxTaxPercent     float64 `envconfig:"MAX_TAX_PERCENT" default:"50"`

	MaxConnectionsPerIP int `envconfig:"MAX_CONNECTIONS_PER_IP" default:"20"`

	// REDIS_HOST switches the session store to Redis. Empty means in-memory.
	RedisHost     string `envconfig:"REDIS_HOST"`
	RedisPort     string `envconfig:"REDIS_PORT" default:"6379"`
	RedisUsername string `envconfig:"REDIS_USERNAME"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
}

func Load() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
