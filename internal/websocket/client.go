package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024

	handleTimeout = 10 * time.Second
)

// Client is one player's connection. Identity is taken from the join-game
// message; until then the connection can only join.
type Client struct {
	hub        *Hub
	dispatcher *Dispatcher
	conn       *websocket.Conn
	send       chan []byte
	logger     *zap.Logger

	gameCode   string
	playerID   string
	playerName string

	mu     sync.Mutex
	closed bool
}

func NewClient(hub *Hub, dispatcher *Dispatcher, conn *websocket.Conn, logger *zap.Logger) *Client {
	return &Client{
		hub:        hub,
		dispatcher: dispatcher,
		conn:       conn,
		send:       make(chan []byte, 256),
		logger:     logger,
	}
}

func (c *Client) PlayerID() string   { return c.playerID }
func (c *Client) PlayerName() string { return c.playerName }
func (c *Client) GameCode() string   { return c.gameCode }

func (c *Client) ReadPump() {
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
		c.dispatcher.HandleDisconnect(ctx, c)
		cancel()
		c.close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("websocket read error", zap.Error(err))
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Debug("malformed websocket message", zap.Error(err))
			continue
		}

		c.handleMessage(&msg)
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
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

func (c *Client) handleMessage(msg *Message) {
	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	switch msg.Type {
	case MessageTypeJoinGame:
		var payload JoinGamePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.GameCode == "" || payload.PlayerID == "" {
			c.sendError("INVALID_PAYLOAD", "invalid join payload")
			return
		}
		c.gameCode = payload.GameCode
		c.playerID = payload.PlayerID
		c.playerName = payload.PlayerName
		c.dispatcher.HandleJoin(ctx, c, payload.GameCode)

	case MessageTypeGameAction:
		c.dispatcher.HandleAction(ctx, c, msg.Payload)

	case MessageTypeSendMessage:
		var payload SendMessagePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.sendError("INVALID_PAYLOAD", "invalid chat payload")
			return
		}
		c.dispatcher.HandleChat(ctx, c, payload.Content)

	case MessageTypeGetMessages:
		c.dispatcher.HandleGetMessages(ctx, c)
	}
}

func (c *Client) sendError(code, message string) {
	msg, _ := NewMessage(MessageTypeError, ErrorPayload{Code: code, Message: message})
	c.Send(msg)
}

// Send queues a message for the write pump. A connection that cannot keep up
// gets dropped rather than blocking a broadcast.
func (c *Client) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Warn("failed to marshal message", zap.Error(err))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		c.conn.Close()
	}
}

func (c *Client) close() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
	c.mu.Unlock()
	c.conn.Close()
}
