package realtime

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second

	// sendBuffer bounds how far a slow client may fall behind before the
	// connection is dropped instead of stalling the dispatcher.
	sendBuffer = 128
)

// ErrConnectionClosed is returned by Send once the connection has been closed.
var ErrConnectionClosed = errors.New("realtime: connection closed")

// Connection wraps one websocket to the chatroom endpoint and serializes
// outbound writes through a buffered channel. Safe for concurrent use.
type Connection struct {
	ID       string
	UserID   string
	UserRole string

	ws    *websocket.Conn
	send  chan []byte
	once  sync.Once
	close chan struct{}
}

// NewConnection constructs a Connection for the given authenticated principal.
// Each browser tab gets its own Connection; one user may hold several.
func NewConnection(userID, userRole string, ws *websocket.Conn) *Connection {
	return &Connection{
		ID:       uuid.NewString(),
		UserID:   userID,
		UserRole: userRole,
		ws:       ws,
		send:     make(chan []byte, sendBuffer),
		close:    make(chan struct{}),
	}
}

// Start launches the write loop. It must be called exactly once per connection.
func (c *Connection) Start() {
	go c.writeLoop()
}

// Open reports whether the transport still accepts outbound payloads.
func (c *Connection) Open() bool {
	select {
	case <-c.close:
		return false
	default:
		return true
	}
}

// Send enqueues payload for delivery. A connection that cannot keep up has
// its buffer overflow and is closed rather than blocking the caller.
func (c *Connection) Send(payload []byte) error {
	select {
	case <-c.close:
		return ErrConnectionClosed
	case c.send <- payload:
		return nil
	default:
		c.Close(websocket.CloseGoingAway, "send buffer full")
		return errors.New("realtime: send buffer exceeded")
	}
}

// Close terminates the connection and stops the write loop. Safe to call
// multiple times; only the first call takes effect.
func (c *Connection) Close(code int, reason string) {
	c.once.Do(func() {
		// c.send is never closed: a concurrent Send racing with close
		// would panic on a closed channel. The write loop exits via
		// c.close instead.
		close(c.close)
		_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
		_ = c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
		_ = c.ws.Close()
	})
}

func (c *Connection) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.close:
			return
		case msg := <-c.send:
			if err := c.writeMessage(msg); err != nil {
				c.Close(websocket.CloseAbnormalClosure, "write failed")
				return
			}
		case <-ticker.C:
			if err := c.writePing(); err != nil {
				c.Close(websocket.CloseAbnormalClosure, "ping failed")
				return
			}
		}
	}
}

func (c *Connection) writeMessage(payload []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.TextMessage, payload)
}

func (c *Connection) writePing() error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.PingMessage, nil)
}
