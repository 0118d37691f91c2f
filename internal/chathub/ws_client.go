package chathub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
	sendBufferSize = 256
)

// FrameHandler processes frames read from a WebSocket client.
type FrameHandler interface {
	HandleFrame(c *WebSocketClient, frame InboundFrame)
	// ClientGone is called once when the read loop ends.
	ClientGone(c *WebSocketClient)
}

// WebSocketClient implements Client over a gorilla/websocket connection.
type WebSocketClient struct {
	UserID  string
	RoomID  uint
	Conn    *websocket.Conn
	Handler FrameHandler

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func NewWebSocketClient(conn *websocket.Conn, roomID uint, userID string, handler FrameHandler) *WebSocketClient {
	return &WebSocketClient{
		UserID:  userID,
		RoomID:  roomID,
		Conn:    conn,
		Handler: handler,
		send:    make(chan []byte, sendBufferSize),
	}
}

func (c *WebSocketClient) GetUserID() string { return c.UserID }
func (c *WebSocketClient) GetRoomID() uint   { return c.RoomID }

// Send queues payload without blocking.
func (c *WebSocketClient) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClientClosed
	}
	select {
	case c.send <- payload:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Run запускає 'pumps' для WebSocket
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close закриває Send канал (що зупинить writePump)
func (c *WebSocketClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *WebSocketClient) readPump() {
	defer func() {
		if c.Handler != nil {
			c.Handler.ClientGone(c)
		}
		c.Close()
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error reading message: %v", err)
			}
			break
		}

		var frame InboundFrame
		if err := json.Unmarshal(message, &frame); err != nil {
			log.Printf("Error decoding JSON from user %s in chat %d: %v", c.UserID, c.RoomID, err)
			continue // Пропускаємо невірне повідомлення
		}

		if c.Handler != nil {
			c.Handler.HandleFrame(c, frame)
		}
	}
}

// writePump читає повідомлення з каналу send і записує їх у WebSocket.
// Кожна подія йде окремим фреймом.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Канал закрито, закриваємо з'єднання WS
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Printf("Error writing to user %s in chat %d: %v", c.UserID, c.RoomID, err)
				return
			}

		case <-ticker.C:
			// Надсилаємо Ping для підтримки з'єднання активним
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ClosePolicyViolation writes a 1008 close frame with reason and closes conn.
// Used to reject a connection after the upgrade.
func ClosePolicyViolation(conn *websocket.Conn, reason string) {
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason)
	if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait)); err != nil {
		log.Printf("WARN: failed to send close frame: %v", err)
	}
	conn.Close()
}
