package signaling

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/seismic-health/telemed-signaling/pkg/util"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. SDP offers run to a few KB.
	maxMessageSize = 64 * 1024
)

// Client binds a websocket connection to a Peer and pumps messages between
// the socket and the controller loop.
type Client struct {
	peer       *Peer
	conn       *websocket.Conn
	controller *Controller
	send       chan *Message

	mu     sync.Mutex
	closed bool
}

// NewClient registers a new connection with the controller and starts its
// read and write pumps.
func NewClient(id string, conn *websocket.Conn, controller *Controller) *Client {
	c := &Client{
		conn:       conn,
		controller: controller,
		send:       make(chan *Message, 100),
	}
	c.peer = NewPeer(id, c)

	controller.Register(c.peer)

	go c.readPump()
	go c.writePump()
	return c
}

// Deliver queues a message for the peer. Never blocks: if the buffer is full
// the message is dropped, since a stalled reader must not stall the room.
func (c *Client) Deliver(msg *Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	select {
	case c.send <- msg:
	default:
		util.Warn("Send buffer full for peer %s, dropping %s", c.peer.ID, msg.Type)
	}
}

// Close tears the connection down and unregisters the peer exactly once,
// no matter how many times the transport signals it.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()

	c.controller.Unregister(c.peer)
	c.conn.Close()
}

// readPump pumps messages from the websocket into the controller loop.
func (c *Client) readPump() {
	defer c.Close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				util.Error("Read error for peer %s: %v", c.peer.ID, err)
			} else {
				util.Debug("Connection closed for peer %s: %v", c.peer.ID, err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			util.Warn("Peer %s sent invalid JSON: %v", c.peer.ID, err)
			c.Deliver(&Message{Type: EventError, Reason: "invalid JSON"})
			continue
		}

		c.controller.Submit(c.peer, &msg)
	}
}

// writePump pumps messages from the send buffer to the websocket and keeps
// the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
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
				util.Debug("Write error for peer %s: %v", c.peer.ID, err)
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
