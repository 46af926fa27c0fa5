package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"

	charmlog "github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"tint/internal/logger"
	"tint/internal/version"
	"tint/pkg/tinttypes"
)

// MessageHandler applies inbound wire messages and yields acknowledgments.
// The page agent satisfies it.
type MessageHandler interface {
	HandleRaw(data []byte) tinttypes.Ack
}

// ClientOptions configures an attach client.
type ClientOptions struct {
	// Addr is the daemon's host:port.
	Addr string

	// Label names this context in daemon listings.
	Label string

	// Handler applies inbound messages. Required.
	Handler MessageHandler

	// OnMessage, when set, observes each successfully applied message.
	OnMessage func(tinttypes.Message)

	// Log overrides the component logger.
	Log *charmlog.Logger
}

// Client is the page-context side of the attach protocol: it dials the
// daemon, applies every inbound message through its handler, and
// acknowledges each one.
type Client struct {
	contextID string
	handler   MessageHandler
	onMessage func(tinttypes.Message)
	log       *charmlog.Logger

	writeMu sync.Mutex
	conn    *websocket.Conn

	closeOnce sync.Once
}

// Attach dials the daemon and performs the handshake. The returned client
// is registered on the daemon but not yet reading; call Run.
func Attach(ctx context.Context, opts ClientOptions) (*Client, error) {
	if opts.Handler == nil {
		return nil, fmt.Errorf("attach: a message handler is required")
	}

	componentLog := opts.Log
	if componentLog == nil {
		componentLog = logger.NewStyledLogger("Attach")
	}

	u := url.URL{Scheme: "ws", Host: opts.Addr, Path: "/ws/attach"}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u.String(), err)
	}

	if err := writeDeadlined(conn, Hello{Protocol: version.ProtocolVersion, Label: opts.Label}); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("send hello: %w", err)
	}

	var welcome Welcome
	if err := conn.ReadJSON(&welcome); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("read welcome: %w", err)
	}
	if welcome.Error != "" {
		_ = conn.Close()
		return nil, fmt.Errorf("attach refused: %s", welcome.Error)
	}

	componentLog.Info("Attached to daemon",
		"context", welcome.ContextID, "protocol", welcome.Protocol)

	return &Client{
		contextID: welcome.ContextID,
		handler:   opts.Handler,
		onMessage: opts.OnMessage,
		log:       componentLog,
		conn:      conn,
	}, nil
}

// ContextID returns the daemon-assigned context ID.
func (c *Client) ContextID() string {
	return c.contextID
}

// Run applies inbound messages until the context is canceled or the
// connection closes. A clean daemon-side close returns nil.
func (c *Client) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = c.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Info("Daemon closed the connection")
				return nil
			}
			return fmt.Errorf("connection lost: %w", err)
		}

		ack := c.handler.HandleRaw(data)
		if ack.Success && c.onMessage != nil {
			var msg tinttypes.Message
			if json.Unmarshal(data, &msg) == nil {
				c.onMessage(msg)
			}
		}

		if err := c.writeJSON(ack); err != nil {
			return fmt.Errorf("send ack: %w", err)
		}
	}
}

func (c *Client) writeJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return writeDeadlined(c.conn, v)
}

// Close tells the daemon this context is leaving and closes the connection.
// Safe to call more than once.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		_ = c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()
		err = c.conn.Close()
	})
	return err
}
