package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"LevenSearch/internal/protocol"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 8192
)

// handleWebSocket upgrades the connection and serves protocol requests on
// it until the peer goes away, at which point the session is reset.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	e, err := s.lookup(ps.ByName("id"))
	if err != nil {
		writeErr(w, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &wsClient{
		conn:    conn,
		entry:   e,
		send:    make(chan *protocol.Response, 16),
		server:  s,
		session: e.handler.Session().ID(),
	}
	s.logger.Info("control surface connected", "session", c.session, "remote", r.RemoteAddr)

	go c.writePump()
	c.readPump()
}

type wsClient struct {
	conn    *websocket.Conn
	entry   *entry
	send    chan *protocol.Response
	server  *Server
	session string
}

// readPump handles requests in arrival order. Requests on one socket are
// never processed concurrently.
func (c *wsClient) readPump() {
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		if _, err := c.entry.handler.Handle(context.Background(), protocol.Reset()); err != nil {
			c.server.logger.Warn("reset on disconnect failed", "session", c.session, "error", err)
		}
		close(c.send)
		c.conn.Close()
		c.server.logger.Info("control surface disconnected", "session", c.session)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.server.logger.Warn("websocket read error", "session", c.session, "error", err)
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))

		var req protocol.Request
		if err := json.Unmarshal(message, &req); err != nil {
			c.send <- protocol.ErrorResponse(err)
			continue
		}

		resp, err := c.entry.handler.Handle(ctx, req)
		if err != nil {
			c.server.logger.Debug("request failed", "session", c.session, "command", req.Command, "error", err)
			resp = protocol.ErrorResponse(err)
		}
		c.send <- resp
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case resp, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(resp); err != nil {
				c.server.logger.Warn("websocket write failed", "session", c.session, "error", err)
				c.conn.Close()
				drain(c.send)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.conn.Close()
				drain(c.send)
				return
			}
		}
	}
}

// drain discards responses until readPump closes the channel, so that it
// never blocks on a dead writer.
func drain(ch <-chan *protocol.Response) {
	for range ch {
	}
}
