package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"tabsync/internal/constants"
	"tabsync/internal/protocol"
	"tabsync/internal/security"
	"tabsync/internal/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  constants.WSBufferSize,
	WriteBufferSize: constants.WSBufferSize,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWebSocket upgrades the connection and runs its message loop until
// the client goes away. One session per connection, bound by the first join.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	clientIP := security.GetClientIP(r)

	if !s.ConnLimiter.TryConnect(clientIP) {
		http.Error(w, "Connection limit exceeded", http.StatusTooManyRequests)
		return
	}
	defer s.ConnLimiter.Disconnect(clientIP)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("❌ WebSocket upgrade error: %v", err)
		return
	}
	conn.SetReadLimit(constants.MaxWSMessage)

	client := session.NewClient(conn)
	code := ""

	defer func() {
		if code != "" {
			s.Registry.Leave(code, client)
		}
		client.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var env protocol.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			log.Printf("⚠️  Dropping malformed message from %s: %v", clientIP, err)
			continue
		}

		switch env.Type {
		case constants.MsgTypeJoin:
			code = s.handleJoin(client, code, env.SessionID)
		case constants.MsgTypeAddOrder:
			s.handleAddOrder(client, code, env.Order)
		case constants.MsgTypeRemoveOrder:
			s.handleRemoveOrder(code, env.OrderID)
		case constants.MsgTypeToggleOrder:
			s.handleToggleOrder(client, code, env.OrderID)
		case constants.MsgTypeSetTax:
			s.handleSetTax(client, code, env.TaxPercent)
		default:
			// Unknown message types are ignored: no error, no broadcast.
		}
	}
}

// handleJoin binds the connection to a session, creating it if unknown or
// expired, and sends the joiner (only) the current snapshot. Returns the
// code the connection is bound to afterwards.
func (s *Server) handleJoin(client *session.Client, current, target string) string {
	if target == "" {
		return current
	}

	if current != "" && current != target {
		s.Registry.Leave(current, client)
	}

	joined := current
	s.Registry.Do(target, func() {
		sess, err := s.Store.GetOrCreate(target)
		if err != nil {
			log.Printf("❌ Join failed for %s: %v", target, err)
			return
		}
		s.Registry.Join(target, client)
		client.Send(protocol.NewOrdersMessage(sess.Snapshot(), sess.TaxPercent))
		joined = target
	})

	if joined == target {
		log.Printf("🔌 Client joined session: %s (%d connected)", target, s.Registry.Members(target))
	}
	return joined
}

func (s *Server) handleAddOrder(client *session.Client, code string, payload *protocol.OrderPayload) {
	if code == "" {
		return
	}

	s.Registry.Do(code, func() {
		sess, err := s.Store.Get(code)
		if err != nil {
			return
		}

		validated, verr := s.Validator.ValidateOrder(payload)
		if verr != nil {
			client.Send(protocol.NewErrorMessage(verr.Error()))
			return
		}

		sess.AddOrder(validated.Name, validated.Item, validated.Quantity, validated.Price, validated.Notes)
		s.Store.Save(sess)
		s.broadcastState(code, sess)
	})
}

// handleRemoveOrder removes the order if present and broadcasts either way;
// removing an unknown id is not an error.
func (s *Server) handleRemoveOrder(code, orderID string) {
	if code == "" {
		return
	}

	s.Registry.Do(code, func() {
		sess, err := s.Store.Get(code)
		if err != nil {
			return
		}

		sess.RemoveOrder(orderID)
		s.Store.Save(sess)
		s.broadcastState(code, sess)
	})
}

func (s *Server) handleToggleOrder(client *session.Client, code, orderID string) {
	if code == "" {
		return
	}

	s.Registry.Do(code, func() {
		sess, err := s.Store.Get(code)
		if err != nil {
			return
		}

		if !sess.ToggleOrder(orderID) {
			client.Send(protocol.NewErrorMessage(constants.MsgOrderNotFound))
			return
		}
		s.Store.Save(sess)
		s.broadcastState(code, sess)
	})
}

func (s *Server) handleSetTax(client *session.Client, code string, raw json.RawMessage) {
	if code == "" {
		return
	}

	s.Registry.Do(code, func() {
		sess, err := s.Store.Get(code)
		if err != nil {
			return
		}

		tax, verr := s.Validator.ValidateTax(raw)
		if verr != nil {
			client.Send(protocol.NewErrorMessage(verr.Error()))
			return
		}

		sess.SetTax(tax)
		s.Store.Save(sess)
		s.broadcastState(code, sess)
	})
}

func (s *Server) broadcastState(code string, sess *session.Session) {
	s.Registry.Broadcast(code, protocol.NewOrdersMessage(sess.Snapshot(), sess.TaxPercent))
}
