package session

import (
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrExpired  = errors.New("session expired")
)

// SessionData is the serializable shape of a Session. Live connections are
// never part of it; they belong to the Registry.
type SessionData struct {
	Code       string    `json:"code"`
	CreatedAt  time.Time `json:"created_at"`
	TaxPercent float64   `json:"tax_percent"`
	Orders     []Order   `json:"orders"`
}

// StoreInterface is the session store contract. Get distinguishes unknown
// codes (ErrNotFound) from sessions found past their timeout (ErrExpired);
// an expired lookup evicts the session and fires the OnExpire callback.
type StoreInterface interface {
	Create() (*Session, error)
	Get(code string) (*Session, error)
	GetOrCreate(code string) (*Session, error)
	Save(sess *Session)
	Delete(code string)
	OnExpire(func(code string))
	Close() error
}
