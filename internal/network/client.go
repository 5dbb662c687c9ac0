package network

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from the peer.
	pongWait = 60 * time.Second

	// Must be shorter than pongWait.
	pingPeriod = (pongWait * 9) / 10

	sendBufferSize = 256
)

// Client is one websocket connection as seen by the hub.
type Client struct {
	id   string
	conn *websocket.Conn
	hub  *Hub
	log  *zap.Logger

	// Buffered outbound queue drained by writeLoop. Owned by the hub
	// goroutine: only it sends on or closes this channel.
	send   chan Message
	closed bool
}

func newClient(conn *websocket.Conn, hub *Hub) *Client {
	id := uuid.NewString()
	return &Client{
		id:   id,
		conn: conn,
		hub:  hub,
		log:  hub.log.With(zap.String("conn", id)),
		send: make(chan Message, sendBufferSize),
	}
}

func (c *Client) ID() string { return c.id }

func (c *Client) RemoteAddr() string {
	if c.conn == nil {
		return ""
	}
	return c.conn.RemoteAddr().String()
}

// Deliver never blocks: a slow or gone client loses the message, everyone
// else still gets theirs.
func (c *Client) Deliver(msg Message) bool {
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		c.log.Warn("send buffer full, dropping message", zap.String("type", msg.Type))
		return false
	}
}

func (c *Client) close() {
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) readLoop() {
	defer func() {
		c.hub.enqueueUnregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("unexpected close", zap.Error(err))
			}
			return
		}
		if !c.hub.enqueueMessage(c, msg) {
			return
		}
	}
}

// writeLoop pumps messages from the send channel to the websocket.
func (c *Client) writeLoop() {
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
				// O canal 'send' foi fechado pelo Hub.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				c.log.Warn("write failed", zap.Error(err))
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
