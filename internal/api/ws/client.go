package ws

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/neonchat/chat-server/internal/api/metrics"
	"github.com/neonchat/chat-server/internal/core/domain"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 256
)

var errClientClosed = errors.New("client connection closed")
var errSendBufferFull = errors.New("client send buffer full")

// Client owns one WebSocket connection's outbound side. Events queued with
// Send are drained by the write pump; the queue never blocks the caller, so
// one slow recipient cannot stall a broadcast.
type Client struct {
	conn *websocket.Conn
	send chan domain.Event
	log  zerolog.Logger

	mu     sync.Mutex
	closed bool
}

func NewClient(conn *websocket.Conn, log zerolog.Logger) *Client {
	return &Client{
		conn: conn,
		send: make(chan domain.Event, sendBuffer),
		log:  log,
	}
}

// Send queues an event for delivery. It satisfies domain.EventSink. A full
// buffer or a closed connection drops the event and reports the failure to
// the caller; the caller decides whether that matters.
func (c *Client) Send(evt domain.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errClientClosed
	}

	select {
	case c.send <- evt:
		return nil
	default:
		metrics.BroadcastDroppedTotal.Inc()
		return errSendBufferFull
	}
}

// Close marks the client closed and shuts down the write pump. Safe to call
// more than once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// WritePump drains the send queue onto the wire and keeps the connection
// alive with periodic pings. Run in its own goroutine; returns when the
// client is closed or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case evt, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(evt); err != nil {
				c.log.Debug().Err(err).Msg("write failed, closing connection")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
