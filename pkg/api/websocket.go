package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is handled by the router middleware
	},
}

// WSMessage is a request on the game channel.
type WSMessage struct {
	Type    string          `json:"type"`    // "roll", "move", "end_turn", "undo", "undo_all", "double", "respond", "next", "state", "moves", "ping"
	ID      string          `json:"id"`      // Request ID for correlating responses
	Payload json.RawMessage `json:"payload"` // Type-specific payload
}

// WSResponse is a reply or a push on the game channel.
type WSResponse struct {
	Type    string `json:"type"`              // "result", "state", "error", "pong"
	ID      string `json:"id,omitempty"`      // Request ID; empty for pushes
	Payload any    `json:"payload,omitempty"` // Response data
	Error   string `json:"error,omitempty"`   // Error message if any
	Code    string `json:"code,omitempty"`    // Error kind if any
}

// WSClient is one connection to a game table. Every change to the table,
// whoever made it, is pushed to the client as a "state" message.
type WSClient struct {
	ctx      context.Context
	conn     *websocket.Conn
	session  *Session
	handlers *Handlers
	sendChan chan WSResponse
}

// WebSocket handles GET /api/games/{id}/ws
func (h *Handlers) WebSocket(w http.ResponseWriter, r *http.Request) {
	s, err := h.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnw("websocket upgrade", "session", s.ID, "error", err)
		return
	}
	client := &WSClient{ctx: r.Context(), conn: conn, session: s, handlers: h, sendChan: make(chan WSResponse, 256)}
	go client.writePump()
	client.readPump()
}

// writePump owns all writes to the connection. After a failed write it
// keeps draining so senders never block.
func (c *WSClient) writePump() {
	defer c.conn.Close()
	broken := false
	for msg := range c.sendChan {
		if broken {
			continue
		}
		if err := c.conn.WriteJSON(msg); err != nil {
			broken = true
		}
	}
}

func (c *WSClient) readPump() {
	updates, cancel := c.session.Subscribe()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for snap := range updates {
			c.sendChan <- WSResponse{Type: "state", Payload: snap}
		}
	}()

	defer func() {
		cancel()
		wg.Wait()
		close(c.sendChan)
		c.conn.Close()
	}()

	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		c.handleMessage(msg)
	}
}

func (c *WSClient) handleMessage(msg WSMessage) {
	ctx := c.ctx
	switch msg.Type {
	case "ping":
		c.sendChan <- WSResponse{Type: "pong", ID: msg.ID}
	case "state":
		c.sendChan <- WSResponse{Type: "result", ID: msg.ID, Payload: c.session.Snapshot()}
	case "moves":
		var req struct {
			Die int `json:"die"`
		}
		if len(msg.Payload) > 0 {
			if err := json.Unmarshal(msg.Payload, &req); err != nil {
				c.sendError(msg.ID, invalidInput("invalid payload: %v", err))
				return
			}
		}
		resp, err := c.handlers.moves(ctx, c.session, req.Die)
		if err != nil {
			c.sendError(msg.ID, err)
			return
		}
		c.sendChan <- WSResponse{Type: "result", ID: msg.ID, Payload: resp}
	default:
		// A socket answers busy at once rather than stall its read loop.
		resp, err := c.handlers.run(ctx, c.session, msg.Type, msg.Payload, false)
		if err != nil {
			c.sendError(msg.ID, err)
			return
		}
		c.sendChan <- WSResponse{Type: "result", ID: msg.ID, Payload: resp}
	}
}

func (c *WSClient) sendError(id string, err error) {
	_, code := errorStatus(err)
	c.sendChan <- WSResponse{Type: "error", ID: id, Error: err.Error(), Code: code}
}
