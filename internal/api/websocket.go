package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/FocuswithJustin/DataLens/core/value"
	"github.com/FocuswithJustin/DataLens/internal/logging"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsRequest is one conversion request over the socket.
type wsRequest struct {
	Input   string   `json:"input"`
	Formats []string `json:"formats,omitempty"`
}

// wsMessage is a server-to-client frame. Results stream one
// interpretation at a time, closed off by a "done" frame.
type wsMessage struct {
	Type   string        `json:"type"` // "result", "done", "error"
	Input  string        `json:"input,omitempty"`
	Result *value.Result `json:"result,omitempty"`
	Total  int           `json:"total,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// Hub tracks active WebSocket clients.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*client]struct{}
	register   chan *client
	unregister chan *client
}

// NewHub creates an empty hub. Run must be started for registration to
// proceed.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
	}
}

// Run handles client registration for the lifetime of the process.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			n := len(h.clients)
			h.mu.Unlock()
			logging.WebSocketEvent("client_connected", n)

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			logging.WebSocketEvent("client_disconnected", n)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan wsMessage
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("websocket upgrade failed", "error", err)
		return
	}

	c := &client{hub: s.hub, conn: conn, send: make(chan wsMessage, 64)}
	s.hub.register <- c

	go c.writePump()
	c.readPump(s)
}

// readPump reads conversion requests and streams results back. Each
// interpretation goes out as its own frame so slow conversions surface
// progressively.
func (c *client) readPump(s *Server) {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var req wsRequest
		if err := c.conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Error("websocket unexpected close", "error", err)
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))

		if req.Input == "" {
			c.send <- wsMessage{Type: "error", Error: "input is required"}
			continue
		}

		ctx, cancel := s.requestContext(context.Background())
		var results []value.Result
		if len(req.Formats) > 0 {
			results = s.eng.ConvertAllFiltered(ctx, req.Input, req.Formats)
		} else {
			results = s.eng.ConvertAll(ctx, req.Input)
		}
		cancel()

		for i := range results {
			c.send <- wsMessage{Type: "result", Input: req.Input, Result: &results[i]}
		}
		c.send <- wsMessage{Type: "done", Input: req.Input, Total: len(results)}
	}
}

// writePump serializes outbound frames and keeps the connection alive
// with pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
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
