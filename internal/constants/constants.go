package constants

import "time"

// Network defaults
const (
	DefaultHost     = "localhost:5000"
	DefaultPort     = "5000"
	WSBufferSize    = 4096
	MaxWSMessage    = 64 * 1024
	WriteTimeout    = 10 * time.Second
	ShutdownTimeout = 5 * time.Second
)

// Session codes
const (
	SessionCodeLen  = 6
	MaxCodeAttempts = 10
)

// API endpoints
const (
	EndpointSessions  = "/api/sessions"
	EndpointSessionBy = "/api/sessions/"
	EndpointWebSocket = "/ws"
)

// Inbound message types
const (
	MsgTypeJoin        = "join"
	MsgTypeAddOrder    = "add_order"
	MsgTypeRemoveOrder = "remove_order"
	MsgTypeToggleOrder = "toggle_order_status"
	MsgTypeSetTax      = "set_tax"
)

// Outbound message types
const (
	MsgTypeOrders         = "orders"
	MsgTypeError          = "error"
	MsgTypeSessionExpired = "session_expired"
)

// Messages
const (
	MsgMethodNotAllowed   = "Method not allowed"
	MsgSessionExpired     = "Session has expired"
	MsgOrderNotFound      = "Order not found"
	MsgItemNameTooLongFmt = "Item name must be %d characters or less"
	MsgNotesTooLongFmt    = "Notes must be %d characters or less"
	MsgInvalidPriceFmt    = "Invalid price. Must be between 0 and %g"
	MsgInvalidQuantity    = "Invalid quantity. Must be a positive integer"
	MsgInvalidTaxFmt      = "Invalid tax percent. Must be between 0 and %g"
)

// Redis
const (
	RedisKeyPrefix = "tabsync:session:"
	RedisScanBatch = 100
)

// StandardWebPorts are omitted from constructed URLs
var StandardWebPorts = map[string]bool{
	"80":  true,
	"443": true,
}
