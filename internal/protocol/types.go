package protocol

import (
	"encoding/json"

	"tabsync/internal/constants"
	"tabsync/internal/session"
)

// Envelope is the inbound client message. TaxPercent and the order price are
// kept raw because clients send them as either numbers or strings.
type Envelope struct {
	Type       string          `json:"type"`
	SessionID  string          `json:"sessionId"`
	Order      *OrderPayload   `json:"order"`
	OrderID    string          `json:"orderId"`
	TaxPercent json.RawMessage `json:"taxPercent"`
}

type OrderPayload struct {
	Name     string          `json:"name"`
	Item     string          `json:"item"`
	Quantity int             `json:"quantity"`
	Price    json.RawMessage `json:"price"`
	Notes    string          `json:"notes"`
}

// OrdersMessage is the full-state snapshot pushed after every accepted
// mutation and on join.
type OrdersMessage struct {
	Type       string          `json:"type"`
	Orders     []session.Order `json:"orders"`
	TaxPercent float64         `json:"taxPercent"`
}

func NewOrdersMessage(orders []session.Order, taxPercent float64) OrdersMessage {
	if orders == nil {
		orders = []session.Order{}
	}
	return OrdersMessage{
		Type:       constants.MsgTypeOrders,
		Orders:     orders,
		TaxPercent: taxPercent,
	}
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewErrorMessage(message string) ErrorMessage {
	return ErrorMessage{Type: constants.MsgTypeError, Message: message}
}

type SessionExpiredMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewSessionExpiredMessage() SessionExpiredMessage {
	return SessionExpiredMessage{
		Type:    constants.MsgTypeSessionExpired,
		Message: constants.MsgSessionExpired,
	}
}
