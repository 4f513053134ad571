package remote

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/san-kum/obsview/internal/dynamo"
	"go.uber.org/zap"
)

const DefaultTimeout = 5 * time.Second

// Client is a dynamo.Stepper backed by a websocket connection. Calls are
// serialized; each Step is one request and one reply.
type Client struct {
	mu      sync.Mutex
	conn    *websocket.Conn
	timeout time.Duration
	log     *zap.Logger
}

type ClientConfig struct {
	Timeout time.Duration
	Logger  *zap.Logger
}

// Dial connects to a stepper server at url (ws:// or wss://).
func Dial(ctx context.Context, url string, cfg ClientConfig) (*Client, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, http.Header{})
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial stepper %s: %w", url, err)
	}

	c := &Client{conn: conn, timeout: cfg.Timeout, log: cfg.Logger}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	c.log.Info("connected to stepper", zap.String("url", url))
	return c, nil
}

func (c *Client) Step(obs dynamo.Observation, a dynamo.Action) (dynamo.Observation, float64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	deadline := time.Now().Add(c.timeout)
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return dynamo.Observation{}, 0, false, err
	}
	if err := c.conn.WriteMessage(websocket.BinaryMessage, EncodeRequest(obs, a)); err != nil {
		return dynamo.Observation{}, 0, false, fmt.Errorf("send step: %w", err)
	}

	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return dynamo.Observation{}, 0, false, err
	}
	kind, payload, err := c.conn.ReadMessage()
	if err != nil {
		return dynamo.Observation{}, 0, false, fmt.Errorf("read step: %w", err)
	}
	if kind != websocket.BinaryMessage {
		return dynamo.Observation{}, 0, false, fmt.Errorf("%w: message type %d", ErrShortReply, kind)
	}
	return DecodeReply(payload)
}

// Close sends a normal closure and releases the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return c.conn.Close()
}
