package websocket

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// The feed is server to client; inbound frames are only pongs and closes
	maxInboundSize = 512

	// DefaultOutboundBuffer is how many events may queue for one connection
	DefaultOutboundBuffer = 64
)

// Conn is a Subscriber backed by a websocket connection
type Conn struct {
	id     string
	userID string
	ws     *websocket.Conn
	hub    *Hub
	out    chan []byte

	mu     sync.Mutex
	closed bool
}

var _ Subscriber = (*Conn)(nil)

// NewConn wraps an upgraded connection for one user's feed
func NewConn(ws *websocket.Conn, userID string, hub *Hub) *Conn {
	return &Conn{
		id:     uuid.New().String(),
		userID: userID,
		ws:     ws,
		hub:    hub,
		out:    make(chan []byte, DefaultOutboundBuffer),
	}
}

// ID returns the connection's unique identifier
func (c *Conn) ID() string { return c.id }

// UserID returns the user whose ledger the connection follows
func (c *Conn) UserID() string { return c.userID }

// Deliver queues one encoded event without blocking
func (c *Conn) Deliver(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrSubscriberClosed
	}
	select {
	case c.out <- data:
		return nil
	default:
		return ErrSubscriberSlow
	}
}

// Close stops the writer and closes the socket. Safe to call more than once.
func (c *Conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.out)
	c.mu.Unlock()

	return c.ws.Close()
}

// Serve subscribes the connection and pumps the feed until the peer goes away
// or the hub drops it. It blocks; run it in its own goroutine.
func (c *Conn) Serve() {
	if err := c.hub.Subscribe(c); err != nil {
		log.Warn().Err(err).Str("user_id", c.userID).Msg("Failed to subscribe to ledger feed")
		_ = c.Close()
		return
	}
	defer func() {
		c.hub.Unsubscribe(c)
		_ = c.Close()
	}()

	readerDone := make(chan struct{})
	go c.drain(readerDone)
	c.write(readerDone)
}

// drain consumes inbound frames so pongs and close frames are processed
func (c *Conn) drain(done chan<- struct{}) {
	defer close(done)

	c.ws.SetReadLimit(maxInboundSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("user_id", c.userID).Str("conn_id", c.id).Msg("Ledger feed closed unexpectedly")
			}
			return
		}
	}
}

func (c *Conn) write(readerDone <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-c.out:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "feed dropped"))
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn().Err(err).Str("user_id", c.userID).Str("conn_id", c.id).Msg("Ledger feed write failed")
				return
			}

		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-readerDone:
			return
		}
	}
}
