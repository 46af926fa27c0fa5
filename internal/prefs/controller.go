// Package prefs implements the preference controller, the single source of
// truth for Tint's theme, font, and font size. Every trigger — control
// signals, the HTTP API, relayed page messages, keyboard chords — funnels
// through one convergence path: mutate memory, apply to the surface, resync
// the bound control, persist in the background, then notify observers.
package prefs

import (
	"sync"

	charmlog "github.com/charmbracelet/log"

	"tint/internal/logger"
	"tint/pkg/tinttypes"
)

// Options carries the controller's injected collaborators. Store and
// Applicator are required in practice but a nil Store degrades to
// defaults-only operation and a nil Applicator skips surface updates,
// matching the failure semantics for an unavailable backend.
type Options struct {
	// Store persists preference values. May be nil.
	Store tinttypes.Store

	// Applicator renders preference values. May be nil.
	Applicator tinttypes.Applicator

	// Schemes supplies the system dark/light signal for "auto". May be nil.
	Schemes tinttypes.SchemeSource

	// Log overrides the component logger. Nil uses the global logger with
	// a Controller prefix.
	Log *charmlog.Logger
}

// Controller owns the resolved preference triple.
type Controller struct {
	cfg        tinttypes.Config
	store      tinttypes.Store
	applicator tinttypes.Applicator
	schemes    tinttypes.SchemeSource
	log        *charmlog.Logger
	notifier   *Notifier

	// opMu serializes whole operations so events leave in call order.
	opMu sync.Mutex

	// stateMu guards the fields below and nothing else, so observers may
	// read current state from inside a handler.
	stateMu  sync.RWMutex
	settings tinttypes.Settings
	controls map[tinttypes.Dimension]tinttypes.Control
	unbinds  map[tinttypes.Dimension]func()
	started  bool

	schemeUnsub func()
	storeUnsub  func()

	persistWG sync.WaitGroup
}

// New creates a controller. Initial state is resolved per dimension: the
// stored value if present and non-empty, the configured default otherwise.
// A store read failure is logged and treated as absent. Nothing is applied
// or emitted until Start or the first ApplyAll.
func New(cfg tinttypes.Config, opts Options) *Controller {
	cfg = cfg.Normalize()

	componentLog := opts.Log
	if componentLog == nil {
		componentLog = logger.NewStyledLogger("Controller")
	}

	c := &Controller{
		cfg:        cfg,
		store:      opts.Store,
		applicator: opts.Applicator,
		schemes:    opts.Schemes,
		log:        componentLog,
		notifier:   NewNotifier(),
		settings:   cfg.Defaults(),
		controls:   make(map[tinttypes.Dimension]tinttypes.Control),
		unbinds:    make(map[tinttypes.Dimension]func()),
	}

	c.loadInitial()

	if cfg.AutoDetectSystemTheme && c.schemes != nil {
		c.schemeUnsub = c.schemes.Subscribe(c.handleSchemeChange)
	}
	if cfg.WatchStore && c.store != nil {
		c.storeUnsub = c.store.OnChange(c.handleStoreChange)
	}

	return c
}

func (c *Controller) loadInitial() {
	if c.store == nil {
		return
	}

	stored, err := c.store.Get(c.cfg.StorageKeys())
	if err != nil {
		c.log.Warn("Store read failed, using defaults", "error", err)
		return
	}

	for _, d := range tinttypes.AllDimensions() {
		if v := stored[c.cfg.KeyFor(d)]; v != "" {
			c.settings = c.settings.With(d, v)
		}
	}
}

// Config returns the normalized controller configuration.
func (c *Controller) Config() tinttypes.Config {
	return c.cfg
}

// Subscribe registers a handler for one event kind.
func (c *Controller) Subscribe(kind tinttypes.EventKind, handler Handler) *Subscription {
	return c.notifier.Subscribe(kind, handler)
}

// SubscribeAll registers a handler for every event kind.
func (c *Controller) SubscribeAll(handler Handler) *Subscription {
	return c.notifier.SubscribeAll(handler)
}

// GetDimension returns the current value for a dimension from memory.
func (c *Controller) GetDimension(d tinttypes.Dimension) string {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.settings.Get(d)
}

// Settings returns the current resolved triple from memory.
func (c *Controller) Settings() tinttypes.Settings {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.settings
}

// Start applies the resolved state to the surface, syncs bound controls,
// and emits initialized. Calling Start again is a no-op.
func (c *Controller) Start() {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.stateMu.Lock()
	alreadyStarted := c.started
	c.started = true
	c.stateMu.Unlock()

	if alreadyStarted {
		return
	}

	c.applyAllLocked()
	c.notifier.Emit(tinttypes.Event{Kind: tinttypes.EventInitialized, Settings: c.Settings()})
}

// SetDimension changes one preference value. Synchronously it mutates
// memory, applies the value to the surface, and resyncs the bound control
// when its displayed value differs; the change event carries the full
// triple. Persistence is fire-and-forget: a store failure is logged and
// never rolls back memory.
func (c *Controller) SetDimension(d tinttypes.Dimension, value string) {
	if !d.Valid() {
		c.log.Warn("Ignoring unknown dimension", "dimension", string(d))
		return
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()
	c.setDimensionLocked(d, value)
}

// setDimensionLocked runs the convergence path. Callers hold opMu.
func (c *Controller) setDimensionLocked(d tinttypes.Dimension, value string) {
	c.stateMu.Lock()
	c.settings = c.settings.With(d, value)
	snapshot := c.settings
	control := c.controls[d]
	c.stateMu.Unlock()

	logger.PreferenceChange(string(d), value)

	if c.applicator != nil {
		c.applicator.Apply(d, value)
	}

	if control != nil && control.Value() != value {
		control.SetValue(value)
	}

	c.persist(c.cfg.KeyFor(d), value)

	c.notifier.Emit(tinttypes.Event{Kind: tinttypes.EventKindForDimension(d), Settings: snapshot})
}

// persist writes one key in the background.
func (c *Controller) persist(key, value string) {
	if c.store == nil {
		return
	}

	c.persistWG.Add(1)
	go func() {
		defer c.persistWG.Done()
		if err := c.store.Set(key, value); err != nil {
			c.log.Warn("Store write failed", "key", key, "error", err)
			return
		}
		logger.StoreOperation("set", key)
	}()
}

// Flush blocks until all pending background store writes finished.
func (c *Controller) Flush() {
	c.persistWG.Wait()
}

// ApplyAll re-applies the full triple to the surface and resyncs every
// bound control. It is idempotent and emits no change events; the first
// call counts as Start and emits initialized.
func (c *Controller) ApplyAll() {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.stateMu.Lock()
	first := !c.started
	c.started = true
	c.stateMu.Unlock()

	c.applyAllLocked()

	if first {
		c.notifier.Emit(tinttypes.Event{Kind: tinttypes.EventInitialized, Settings: c.Settings()})
	}
}

// applyAllLocked applies and resyncs all dimensions. Callers hold opMu.
func (c *Controller) applyAllLocked() {
	c.stateMu.RLock()
	snapshot := c.settings
	controls := make(map[tinttypes.Dimension]tinttypes.Control, len(c.controls))
	for d, ctl := range c.controls {
		controls[d] = ctl
	}
	c.stateMu.RUnlock()

	for _, d := range tinttypes.AllDimensions() {
		value := snapshot.Get(d)
		if c.applicator != nil {
			c.applicator.Apply(d, value)
		}
		if ctl := controls[d]; ctl != nil && ctl.Value() != value {
			ctl.SetValue(value)
		}
	}
}

// Reset restores the configured defaults. Each dimension goes through the
// normal set path and emits its own change event, then one aggregate reset
// event follows. Exactly four events, always in dimension order.
func (c *Controller) Reset() {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	defaults := c.cfg.Defaults()
	for _, d := range tinttypes.AllDimensions() {
		c.setDimensionLocked(d, defaults.Get(d))
	}

	c.notifier.Emit(tinttypes.Event{Kind: tinttypes.EventReset, Settings: c.Settings()})
}

// ClearPersisted removes the preference keys from the store without
// touching memory: current values stay live until the next restart. The
// removal is fire-and-forget and best-effort.
func (c *Controller) ClearPersisted() {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	if c.store != nil {
		keys := c.cfg.StorageKeys()
		c.persistWG.Add(1)
		go func() {
			defer c.persistWG.Done()
			if err := c.store.Remove(keys); err != nil {
				c.log.Warn("Store clear failed", "error", err)
				return
			}
			logger.StoreOperation("remove", c.cfg.StoragePrefix+"-*", "count", len(keys))
		}()
	}

	c.notifier.Emit(tinttypes.Event{Kind: tinttypes.EventStorageCleared, Settings: c.Settings()})
}

// ToggleTheme flips the theme through the normal set path: dark becomes
// light and every other value, including "auto" and custom themes, becomes
// dark. The keyboard chord lands here.
func (c *Controller) ToggleTheme() {
	next := tinttypes.ThemeDark
	if c.GetDimension(tinttypes.DimensionTheme) == tinttypes.ThemeDark {
		next = tinttypes.ThemeLight
	}
	c.SetDimension(tinttypes.DimensionTheme, next)
}

// BindControl attaches an in-page control for one dimension. The control's
// change signal feeds SetDimension; the controller pushes value updates
// back with SetValue, which must not re-fire the signal. A nil control is
// tolerated and leaves the dimension unbound. Binding again replaces the
// previous binding.
func (c *Controller) BindControl(d tinttypes.Dimension, control tinttypes.Control) {
	if control == nil || !d.Valid() {
		return
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.stateMu.Lock()
	if unbind := c.unbinds[d]; unbind != nil {
		unbind()
	}
	c.controls[d] = control
	c.unbinds[d] = control.OnChange(func(value string) {
		c.SetDimension(d, value)
	})
	current := c.settings.Get(d)
	c.stateMu.Unlock()

	// Converge the control's displayed value right away
	if control.Value() != current {
		control.SetValue(current)
	}
}

// Teardown unbinds controls, drops the system-scheme and store watches,
// drains pending writes, and emits destroyed. The controller must not be
// used afterwards.
func (c *Controller) Teardown() {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.stateMu.Lock()
	for d, unbind := range c.unbinds {
		if unbind != nil {
			unbind()
		}
		delete(c.unbinds, d)
		delete(c.controls, d)
	}
	c.stateMu.Unlock()

	if c.schemeUnsub != nil {
		c.schemeUnsub()
		c.schemeUnsub = nil
	}
	if c.storeUnsub != nil {
		c.storeUnsub()
		c.storeUnsub = nil
	}

	c.persistWG.Wait()

	c.notifier.Emit(tinttypes.Event{Kind: tinttypes.EventDestroyed, Settings: c.Settings()})
}

// handleSchemeChange reacts to the system dark/light signal. Only the
// rendering changes, and only while the theme value is exactly "auto": the
// theme dimension is re-applied so the applicator resolves the new scheme.
// No themeChanged event fires because the nominal value did not change.
func (c *Controller) handleSchemeChange(s tinttypes.Scheme) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.stateMu.RLock()
	current := c.settings.Theme
	c.stateMu.RUnlock()

	if current != tinttypes.ThemeAuto {
		return
	}

	c.log.Debug("System scheme changed, repainting auto theme", "scheme", string(s))
	if c.applicator != nil {
		c.applicator.Apply(tinttypes.DimensionTheme, current)
	}
}

// handleStoreChange adopts external store writes when watching is enabled.
// Only dimension keys with a non-empty value that differs from memory pass
// through; removals never mutate memory, mirroring ClearPersisted.
func (c *Controller) handleStoreChange(changed map[string]string) {
	for _, d := range tinttypes.AllDimensions() {
		value, ok := changed[c.cfg.KeyFor(d)]
		if !ok || value == "" {
			continue
		}
		if c.GetDimension(d) == value {
			continue
		}
		c.log.Debug("Adopting external store change", "dimension", string(d), "value", value)
		c.SetDimension(d, value)
	}
}
