package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"dm-service/internal/models"
	"dm-service/internal/presence"
)

// ConnInfo describes a websocket connection for observability events.
type ConnInfo struct {
	ConnID      string
	UserID      int
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}

// Client is the opaque connection handle the presence registry owns for a
// user. Writes are serialized; gorilla/websocket permits one writer at a
// time.
type Client struct {
	conn *websocket.Conn
	info ConnInfo
	mu   sync.Mutex
}

// NewClient wraps an upgraded connection.
func NewClient(conn *websocket.Conn, info ConnInfo) *Client {
	return &Client{conn: conn, info: info}
}

// Push writes one event to the peer. Delivery is best effort; callers do
// not retry.
func (c *Client) Push(event models.PushEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// Info returns the connection metadata captured at handshake time.
func (c *Client) Info() ConnInfo {
	return c.info
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

var _ presence.Handle = (*Client)(nil)
