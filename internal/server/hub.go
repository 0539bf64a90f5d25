package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10

	// clientBuffer is how many frames a slow client may lag behind before
	// it is dropped.
	clientBuffer = 8
)

// hub fans rendered markup out to every connected websocket client.
type hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	last    string
}

type client struct {
	conn *websocket.Conn
	send chan string
}

func newHub() *hub {
	return &hub{clients: make(map[*client]struct{})}
}

// broadcast queues markup for every client without blocking. Clients whose
// buffer is full are disconnected.
func (h *hub) broadcast(markup string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = markup
	for c := range h.clients {
		select {
		case c.send <- markup:
		default:
			delete(h.clients, c)
			close(c.send)
		}
	}
}

// join registers conn and primes it with the latest markup.
func (h *hub) join(conn *websocket.Conn) *client {
	c := &client{conn: conn, send: make(chan string, clientBuffer)}
	h.mu.Lock()
	if h.last != "" {
		c.send <- h.last
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

func (h *hub) leave(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *hub) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

// writePump owns all writes to the connection.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case markup, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, []byte(markup)); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards client frames and returns when the connection drops.
func (c *client) readPump() {
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
