package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Order is one line entry in a session's shared list. ID and Timestamp are
// assigned by the server and never change.
type Order struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Item      string    `json:"item"`
	Quantity  int       `json:"quantity"`
	Price     *float64  `json:"price,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	IsOrdered bool      `json:"isOrdered"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is one group-ordering context. All mutation goes through the
// message handlers, which serialize access per session via the registry's
// room lock; Session itself carries no locking.
type Session struct {
	Code       string
	CreatedAt  time.Time
	TaxPercent float64
	Orders     []Order
}

func NewSession(code string, defaultTax float64) *Session {
	return &Session{
		Code:       code,
		CreatedAt:  time.Now(),
		TaxPercent: defaultTax,
		Orders:     []Order{},
	}
}

func (s *Session) IsExpired(timeout time.Duration) bool {
	return time.Since(s.CreatedAt) > timeout
}

// AddOrder appends a new order with a fresh server-generated ID and
// timestamp, and returns it.
func (s *Session) AddOrder(name, item string, quantity int, price *float64, notes string) Order {
	order := Order{
		ID:        uuid.NewString(),
		Name:      name,
		Item:      item,
		Quantity:  quantity,
		Price:     price,
		Notes:     notes,
		IsOrdered: false,
		Timestamp: time.Now(),
	}
	s.Orders = append(s.Orders, order)
	return order
}

// RemoveOrder drops the order with the given ID. Removing an unknown ID is a
// no-op, not an error.
func (s *Session) RemoveOrder(orderID string) {
	s.Orders = lo.Reject(s.Orders, func(o Order, _ int) bool {
		return o.ID == orderID
	})
}

// ToggleOrder flips the ordered status of the order with the given ID and
// reports whether it was found.
func (s *Session) ToggleOrder(orderID string) bool {
	_, idx, found := lo.FindIndexOf(s.Orders, func(o Order) bool {
		return o.ID == orderID
	})
	if !found {
		return false
	}
	s.Orders[idx].IsOrdered = !s.Orders[idx].IsOrdered
	return true
}

func (s *Session) SetTax(taxPercent float64) {
	s.TaxPercent = taxPercent
}

// Snapshot returns a copy of the order list safe to hand to encoders outside
// the session's room lock.
func (s *Session) Snapshot() []Order {
	orders := make([]Order, len(s.Orders))
	copy(orders, s.Orders)
	return orders
}
