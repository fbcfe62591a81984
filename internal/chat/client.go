package chat

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxFrameSize = 64 * 1024
)

// Client is one live connection scoped to a single property. The property
// binding is fixed at construction; a reconnecting user gets a fresh Client
// and a fresh history replay.
type Client struct {
	ID         uuid.UUID
	UserID     string
	PropertyID int64

	conn *websocket.Conn
	send chan []byte

	// closed is guarded by the coordinator lock. Once set, send is closed and
	// enqueue drops everything.
	closed bool
}

// NewClient wraps an accepted connection. conn may be nil in tests; the pumps
// are only started for real connections.
func NewClient(conn *websocket.Conn, userID string, propertyID int64) *Client {
	if conn != nil {
		conn.SetReadLimit(maxFrameSize)
	}
	return &Client{
		ID:         uuid.New(),
		UserID:     userID,
		PropertyID: propertyID,
		conn:       conn,
		send:       make(chan []byte, 256),
	}
}

// Outbox exposes the delivery stream, read side only.
func (c *Client) Outbox() <-chan []byte {
	return c.send
}

// enqueue hands a payload to the write pump without blocking. A full queue or
// a closed client drops the payload: delivery is fire-and-forget.
func (c *Client) enqueue(payload []byte) {
	if c.closed {
		return
	}
	select {
	case c.send <- payload:
	default:
		log.Printf("chat: client %s queue full, dropping frame", c.ID)
	}
}

// ReadPump consumes frames until the connection dies, dispatching each one to
// the coordinator. Frame-level errors are logged and the connection stays
// open; only transport errors end the loop.
func (c *Client) ReadPump(co *Coordinator) {
	defer func() {
		co.Unregister(c.ID)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("chat: client %s read error: %v", c.ID, err)
			}
			return
		}
		if err := co.HandleInbound(c, raw); err != nil {
			log.Printf("chat: client %s frame dropped: %v", c.ID, err)
		}
	}
}

// WritePump drains the send queue onto the wire and keeps the connection alive
// with pings. It exits when the coordinator closes the queue.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
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
