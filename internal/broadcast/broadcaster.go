package broadcast

import (
	"sync"

	charmlog "github.com/charmbracelet/log"

	"tint/internal/logger"
	"tint/internal/prefs"
	"tint/pkg/tinttypes"
)

// Options carries the broadcaster's injected collaborators.
type Options struct {
	// Store is the shared durable store page contexts read on attach. May be
	// nil when the controller's own store is the only persistence. Pointing
	// both at the same store is fine: the second write is idempotent.
	Store tinttypes.Store

	// Directory enumerates the attached page contexts.
	Directory tinttypes.ContextDirectory

	// Log overrides the component logger.
	Log *charmlog.Logger
}

// DeliveryReport summarizes one ApplyToAll run.
type DeliveryReport struct {
	// Delivered counts contexts that accepted the message.
	Delivered int `json:"delivered"`

	// Failed counts contexts whose send errored.
	Failed int `json:"failed"`
}

// Broadcaster is the sending half of the relay. It subscribes to the
// controller's dimension-change events; on each it writes the changed
// dimension to the shared store and forwards a single-dimension message to
// the focused page context. Delivery is fire-and-forget: a failed send is
// logged and the contexts stay divergent until the next explicit sync.
type Broadcaster struct {
	controller *prefs.Controller
	cfg        tinttypes.Config
	store      tinttypes.Store
	directory  tinttypes.ContextDirectory
	log        *charmlog.Logger

	subs []*prefs.Subscription

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// New creates a broadcaster and subscribes it to the controller's three
// dimension-change events. Lifecycle events are not relayed; a reset reaches
// the page as its three individual dimension messages.
func New(controller *prefs.Controller, opts Options) *Broadcaster {
	componentLog := opts.Log
	if componentLog == nil {
		componentLog = logger.NewStyledLogger("Broadcaster")
	}

	b := &Broadcaster{
		controller: controller,
		cfg:        controller.Config(),
		store:      opts.Store,
		directory:  opts.Directory,
		log:        componentLog,
	}

	for _, d := range tinttypes.AllDimensions() {
		dim := d
		sub := controller.Subscribe(tinttypes.EventKindForDimension(dim), func(e tinttypes.Event) {
			b.relay(dim, e.Settings.Get(dim))
		})
		b.subs = append(b.subs, sub)
	}

	return b
}

// relay handles one dimension change: store write first, then the send, in
// one background goroutine so the controller's call path never blocks on
// either.
func (b *Broadcaster) relay(d tinttypes.Dimension, value string) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.wg.Add(1)
	b.mu.Unlock()

	go func() {
		defer b.wg.Done()

		if b.store != nil {
			key := b.cfg.KeyFor(d)
			if err := b.store.Set(key, value); err != nil {
				b.log.Warn("Shared store write failed", "key", key, "error", err)
			} else {
				logger.StoreOperation("set", key)
			}
		}

		b.sendToFocused(d, value)
	}()
}

// sendToFocused forwards one dimension change to the focused context, if
// any. The acknowledgment travels back on the context's own connection and
// is consumed for logging there.
func (b *Broadcaster) sendToFocused(d tinttypes.Dimension, value string) {
	if b.directory == nil {
		return
	}

	focused, ok := b.directory.Focused()
	if !ok {
		b.log.Debug("No focused context, skipping send", "dimension", string(d))
		return
	}

	msg := tinttypes.NewSetMessage(d, value)
	if err := focused.Send(msg); err != nil {
		b.log.Warn("Send to focused context failed",
			"context", focused.ID(), "dimension", string(d), "error", err)
		return
	}
	logger.ContextSend(focused.ID(), string(msg.Action), "value", value)
}

// ApplyToAll pushes the full current triple to every attached context as an
// applySettings message. Each send failure is isolated: it is counted,
// logged, and the remaining contexts still get theirs.
func (b *Broadcaster) ApplyToAll() DeliveryReport {
	var report DeliveryReport
	if b.directory == nil {
		return report
	}

	msg := tinttypes.NewApplyMessage(b.controller.Settings().Partial())

	for _, ctx := range b.directory.List() {
		if err := ctx.Send(msg); err != nil {
			report.Failed++
			b.log.Warn("Apply to context failed", "context", ctx.ID(), "error", err)
			continue
		}
		report.Delivered++
		logger.ContextSend(ctx.ID(), string(msg.Action))
	}

	b.log.Info("Applied settings to all contexts",
		"delivered", report.Delivered, "failed", report.Failed)
	return report
}

// Flush blocks until in-flight relays finished. Test hook.
func (b *Broadcaster) Flush() {
	b.wg.Wait()
}

// Close unsubscribes from the controller and drains in-flight relays.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	for _, sub := range b.subs {
		sub.Unsubscribe()
	}
	b.wg.Wait()
}
