package session

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"tabsync/internal/constants"
)

// Client wraps one WebSocket connection. Writes are serialized by the
// client's own mutex and carry a deadline so a stalled peer never wedges a
// broadcast.
type Client struct {
	conn   *websocket.Conn
	mu     sync.Mutex
	closed bool
}

func NewClient(conn *websocket.Conn) *Client {
	return &Client{conn: conn}
}

// Send marshals v and writes it to this client only.
func (c *Client) Send(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.write(data)
}

func (c *Client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return websocket.ErrCloseSent
	}
	c.conn.SetWriteDeadline(time.Now().Add(constants.WriteTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		c.conn.Close()
	}
}

type room struct {
	mu    sync.Mutex
	conns map[*Client]struct{}
}

// Registry tracks which clients belong to which session and fans state out
// to them. It also owns the per-session mutex that serializes mutations.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*room
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*room)}
}

func (r *Registry) getOrCreateRoom(code string) *room {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[code]
	if !ok {
		rm = &room{conns: make(map[*Client]struct{})}
		r.rooms[code] = rm
	}
	return rm
}

// Join registers a client for all future broadcasts of the session.
// Rejoining is idempotent.
func (r *Registry) Join(code string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[code]
	if !ok {
		rm = &room{conns: make(map[*Client]struct{})}
		r.rooms[code] = rm
	}
	rm.conns[c] = struct{}{}
}

// Leave removes a client from a session. The session itself is left to the
// expiry sweeper; only the empty room bookkeeping goes away.
func (r *Registry) Leave(code string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[code]
	if !ok {
		return
	}
	delete(rm.conns, c)
	if len(rm.conns) == 0 {
		delete(r.rooms, code)
	}
}

// Members reports how many clients are currently registered for a session.
func (r *Registry) Members(code string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rm, ok := r.rooms[code]
	if !ok {
		return 0
	}
	return len(rm.conns)
}

// Do runs fn under the session's room lock. Every state-changing message
// handler goes through here, which is what gives all members the same
// observed mutation order.
func (r *Registry) Do(code string, fn func()) {
	rm := r.getOrCreateRoom(code)

	rm.mu.Lock()
	defer rm.mu.Unlock()
	fn()
}

// Broadcast marshals v once and sends it to every client in the session.
// A client that fails to accept the write is dropped silently; the rest
// still get the message.
func (r *Registry) Broadcast(code string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("Broadcast marshal error: %v", err)
		return
	}

	for _, c := range r.members(code) {
		if err := c.write(data); err != nil {
			c.Close()
			r.Leave(code, c)
		}
	}
}

// CloseRoom notifies every member with v, closes their connections, and
// forgets the room. Used when a session expires. Taking the room lock first
// means eviction never interleaves with an in-flight mutation on the same
// session.
func (r *Registry) CloseRoom(code string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("CloseRoom marshal error: %v", err)
		return
	}

	r.mu.RLock()
	rm, ok := r.rooms[code]
	r.mu.RUnlock()
	if !ok {
		return
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	members := r.members(code)

	r.mu.Lock()
	delete(r.rooms, code)
	r.mu.Unlock()

	for _, c := range members {
		c.write(data)
		c.Close()
	}
}

func (r *Registry) members(code string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rm, ok := r.rooms[code]
	if !ok {
		return nil
	}
	members := make([]*Client, 0, len(rm.conns))
	for c := range rm.conns {
		members = append(members, c)
	}
	return members
}
