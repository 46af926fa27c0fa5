package hub

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"tint/internal/logger"
	"tint/internal/prefs"
	"tint/internal/version"
	"tint/pkg/tinttypes"
)

const (
	// handshakeTimeout bounds how long a new connection may take to say hello.
	handshakeTimeout = 10 * time.Second

	// writeWait bounds every outbound frame.
	writeWait = 10 * time.Second
)

// Hello is the first frame an attaching context sends.
type Hello struct {
	// Protocol is the client's protocol version. Majors must match.
	Protocol string `json:"protocol"`

	// Label names the context in listings.
	Label string `json:"label,omitempty"`
}

// Welcome is the daemon's reply to a hello. A non-empty Error means the
// attach was refused and the connection closes right after.
type Welcome struct {
	ContextID string `json:"contextId,omitempty"`
	Protocol  string `json:"protocol,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Gateway upgrades HTTP requests into attached page contexts. The flow is
// hello, protocol gate, welcome, then an immediate full applySettings so
// the new context converges without waiting for the next change.
type Gateway struct {
	hub        *Hub
	controller *prefs.Controller
	upgrader   websocket.Upgrader
	log        *charmlog.Logger
}

// NewGateway creates the attach endpoint handler.
func NewGateway(h *Hub, controller *prefs.Controller) *Gateway {
	return &Gateway{
		hub:        h,
		controller: controller,
		upgrader: websocket.Upgrader{
			// The daemon is a local control plane; contexts attach from the
			// same machine, so origin checks would only get in the way.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log: logger.NewStyledLogger("Gateway"),
	}
}

// ServeHTTP handles one attach request.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Warn("Upgrade failed", "error", err)
		return
	}

	_ = conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	var hello Hello
	if err := conn.ReadJSON(&hello); err != nil {
		g.log.Warn("Handshake read failed", "error", err)
		_ = conn.Close()
		return
	}
	_ = conn.SetReadDeadline(time.Time{})

	compatible, err := version.IsProtocolCompatible(hello.Protocol)
	if err != nil || !compatible {
		reason := fmt.Sprintf("incompatible protocol %q, daemon speaks %s",
			hello.Protocol, version.ProtocolVersion)
		g.log.Warn("Refusing attach", "label", hello.Label, "protocol", hello.Protocol)
		_ = writeDeadlined(conn, Welcome{Error: reason})
		_ = conn.Close()
		return
	}

	id := g.hub.NextID()
	ctx := newWSContext(id, hello.Label, conn, func() { g.hub.Unregister(id) })

	// Register first so a context that has seen its welcome is always
	// listed and focused.
	g.hub.Register(ctx)
	if err := ctx.writeJSON(Welcome{ContextID: id, Protocol: version.ProtocolVersion}); err != nil {
		g.log.Warn("Welcome write failed", "context", id, "error", err)
		ctx.drop()
		return
	}

	go ctx.readAcks()

	// Full sync on attach
	if err := ctx.Send(tinttypes.NewApplyMessage(g.controller.Settings().Partial())); err != nil {
		g.log.Warn("Initial sync failed", "context", id, "error", err)
	}
}

// wsContext is one attached websocket connection. Writes serialize through
// a per-connection mutex so broadcaster goroutines and the gateway never
// interleave frames.
type wsContext struct {
	id     string
	label  string
	detach func()
	log    *charmlog.Logger

	writeMu sync.Mutex
	conn    *websocket.Conn

	closeOnce sync.Once
}

func newWSContext(id, label string, conn *websocket.Conn, detach func()) *wsContext {
	return &wsContext{
		id:     id,
		label:  label,
		detach: detach,
		log:    logger.NewStyledLogger("Context"),
		conn:   conn,
	}
}

// ID implements PageContext.ID.
func (c *wsContext) ID() string {
	return c.id
}

// Label implements PageContext.Label.
func (c *wsContext) Label() string {
	return c.label
}

// Send implements PageContext.Send. A failed write means the connection is
// dead, so the context detaches itself right away instead of lingering in
// the directory.
func (c *wsContext) Send(msg tinttypes.Message) error {
	if err := c.writeJSON(msg); err != nil {
		c.drop()
		return err
	}
	logger.ContextSend(c.id, string(msg.Action))
	return nil
}

func (c *wsContext) writeJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return writeDeadlined(c.conn, v)
}

// Close implements io.Closer, letting the hub close the connection on
// shutdown.
func (c *wsContext) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.conn.Close()
	})
	return err
}

// drop closes the connection and removes the context from the hub.
func (c *wsContext) drop() {
	_ = c.Close()
	if c.detach != nil {
		c.detach()
	}
}

// readAcks consumes acknowledgment frames until the connection dies, then
// detaches the context. Acks are consumed for logging only; a rejected
// message is never retried.
func (c *wsContext) readAcks() {
	defer c.drop()

	for {
		var ack tinttypes.Ack
		if err := c.conn.ReadJSON(&ack); err != nil {
			c.log.Debug("Connection closed", "context", c.id, "error", err)
			return
		}
		if ack.Success {
			c.log.Debug("Message acknowledged", "context", c.id)
		} else {
			c.log.Warn("Context rejected message", "context", c.id, "error", ack.Error)
		}
	}
}

func writeDeadlined(conn *websocket.Conn, v any) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}
