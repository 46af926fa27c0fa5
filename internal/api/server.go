// Package api exposes the daemon's control surface over HTTP. Preference
// reads and writes, theme catalog queries, context focus, keyboard chords,
// and a server-sent event stream all route through one Server registered on
// a standard mux. Page contexts attach over WebSocket via the hub gateway;
// everything else speaks JSON here.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"tint/internal/broadcast"
	"tint/internal/hub"
	"tint/internal/logger"
	"tint/internal/prefs"
	"tint/internal/shortcut"
	"tint/internal/theme"
	"tint/internal/version"
	"tint/pkg/tinttypes"
)

// eventBuffer is the per-stream event queue. A consumer that stalls longer
// than the buffer loses frames rather than blocking the controller.
const eventBuffer = 16

// keepAliveInterval paces SSE comment frames so idle streams survive proxies.
const keepAliveInterval = 25 * time.Second

// Options carries the server's collaborators. Controller is required; a nil
// Broadcaster makes apply a local-only operation and a nil Gateway leaves
// the WebSocket attach route unregistered.
type Options struct {
	Controller  *prefs.Controller
	Broadcaster *broadcast.Broadcaster
	Hub         *hub.Hub
	Catalog     *theme.Catalog
	Schemes     tinttypes.SchemeSource
	Shortcuts   *shortcut.Registry
	Gateway     http.Handler
	Log         *log.Logger
}

// Server handles the control-surface routes.
type Server struct {
	controller *prefs.Controller
	caster     *broadcast.Broadcaster
	hub        *hub.Hub
	catalog    *theme.Catalog
	schemes    tinttypes.SchemeSource
	shortcuts  *shortcut.Registry
	gateway    http.Handler
	log        *log.Logger
}

// NewServer wires a server from its collaborators.
func NewServer(opts Options) *Server {
	componentLog := opts.Log
	if componentLog == nil {
		componentLog = logger.NewStyledLogger("API")
	}
	return &Server{
		controller: opts.Controller,
		caster:     opts.Broadcaster,
		hub:        opts.Hub,
		catalog:    opts.Catalog,
		schemes:    opts.Schemes,
		shortcuts:  opts.Shortcuts,
		gateway:    opts.Gateway,
		log:        componentLog,
	}
}

// Register mounts every route on mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/preferences", s.handlePreferences)
	mux.HandleFunc("/api/preferences/", s.handlePreferenceSub)
	mux.HandleFunc("/api/storage", s.handleStorage)
	mux.HandleFunc("/api/themes", s.handleThemes)
	mux.HandleFunc("/api/themes/", s.handleThemeCSS)
	mux.HandleFunc("/api/contexts", s.handleContexts)
	mux.HandleFunc("/api/contexts/", s.handleContextFocus)
	mux.HandleFunc("/api/events", s.handleEvents)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/shortcuts", s.handleShortcuts)
	mux.HandleFunc("/api/shortcuts/", s.handleShortcutTrigger)
	mux.HandleFunc("/api/scheme", s.handleScheme)
	if s.gateway != nil {
		mux.Handle("/ws/attach", s.gateway)
	}
}

// ApplyResult reports an apply fan-out: the triple that was applied and the
// per-context delivery counts.
type ApplyResult struct {
	Settings tinttypes.Settings `json:"settings"`
	broadcast.DeliveryReport
}

type dimensionValue struct {
	Dimension tinttypes.Dimension `json:"dimension"`
	Value     string              `json:"value"`
}

type valueBody struct {
	Value string `json:"value"`
}

type triggerResult struct {
	Triggered bool               `json:"triggered"`
	Settings  tinttypes.Settings `json:"settings"`
}

type schemeBody struct {
	Scheme tinttypes.Scheme `json:"scheme"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok", "version": version.GetVersion()}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePreferences(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.controller.Settings())

	case http.MethodPut:
		var partial tinttypes.PartialSettings
		if err := json.NewDecoder(r.Body).Decode(&partial); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		for _, d := range tinttypes.AllDimensions() {
			if value, ok := partial.Get(d); ok {
				s.controller.SetDimension(d, value)
			}
		}
		writeJSON(w, http.StatusOK, s.controller.Settings())

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut)
	}
}

// handlePreferenceSub serves both the verb routes (toggle, apply, reset) and
// the per-dimension value routes under /api/preferences/.
func (s *Server) handlePreferenceSub(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/preferences/")
	if rest == "" {
		http.NotFound(w, r)
		return
	}

	switch rest {
	case "toggle":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, http.MethodPost)
			return
		}
		s.controller.ToggleTheme()
		writeJSON(w, http.StatusOK, s.controller.Settings())
		return

	case "apply":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, http.MethodPost)
			return
		}
		s.controller.ApplyAll()
		result := ApplyResult{Settings: s.controller.Settings()}
		if s.caster != nil {
			result.DeliveryReport = s.caster.ApplyToAll()
		}
		writeJSON(w, http.StatusOK, result)
		return

	case "reset":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, http.MethodPost)
			return
		}
		s.controller.Reset()
		writeJSON(w, http.StatusOK, s.controller.Settings())
		return
	}

	dimension, err := tinttypes.ParseDimension(rest)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, dimensionValue{
			Dimension: dimension,
			Value:     s.controller.GetDimension(dimension),
		})

	case http.MethodPut:
		var body valueBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		if body.Value == "" {
			writeError(w, http.StatusBadRequest, "missing value")
			return
		}
		s.controller.SetDimension(dimension, body.Value)
		writeJSON(w, http.StatusOK, dimensionValue{
			Dimension: dimension,
			Value:     s.controller.GetDimension(dimension),
		})

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut)
	}
}

func (s *Server) handleStorage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, http.MethodDelete)
		return
	}
	s.controller.ClearPersisted()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleThemes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, s.catalog.List())
}

// handleThemeCSS serves /api/themes/{name}/css. Font and size default to the
// controller's current values; ?font= and ?size= override them.
func (s *Server) handleThemeCSS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/themes/")
	name, sub, found := strings.Cut(rest, "/")
	if !found || sub != "css" || name == "" {
		http.NotFound(w, r)
		return
	}

	t, ok := s.catalog.Lookup(name)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown theme %q", name))
		return
	}

	q := r.URL.Query()
	font := q.Get("font")
	if font == "" {
		font = s.controller.GetDimension(tinttypes.DimensionFont)
	}
	size := q.Get("size")
	if size == "" {
		size = s.controller.GetDimension(tinttypes.DimensionFontSize)
	}

	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprint(w, theme.RenderCSS(t, font, size)); err != nil {
		s.log.Warn("css write failed", "theme", name, "error", err)
	}
}

func (s *Server) handleContexts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, s.hub.Infos())
}

// handleContextFocus serves POST /api/contexts/{id}/focus.
func (s *Server) handleContextFocus(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/contexts/")
	id, sub, found := strings.Cut(rest, "/")
	if !found || sub != "focus" || id == "" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	if err := s.hub.SetFocused(id); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleEvents streams controller events as server-sent events. Each frame
// carries the event kind and the full triple. Slow consumers drop frames
// instead of stalling the controller.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events := make(chan tinttypes.Event, eventBuffer)
	sub := s.controller.SubscribeAll(func(e tinttypes.Event) {
		select {
		case events <- e:
		default:
			s.log.Debug("event stream lagging, frame dropped", "kind", e.Kind)
		}
	})
	defer sub.Unsubscribe()

	// Snapshot frame so a consumer converges without waiting for a change.
	fmt.Fprintf(w, "data: %s\n\n", mustJSON(tinttypes.Event{
		Kind:     tinttypes.EventInitialized,
		Settings: s.controller.Settings(),
	}))
	flusher.Flush()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case e := <-events:
			fmt.Fprintf(w, "data: %s\n\n", mustJSON(e))
			flusher.Flush()
		case <-keepAlive.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		}
	}
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	info, err := version.GetInfo()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleShortcuts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, s.shortcuts.Bindings())
}

// handleShortcutTrigger serves POST /api/shortcuts/{chord}. A malformed
// chord is a bad request, an unbound one a miss; handler errors surface as
// server errors.
func (s *Server) handleShortcutTrigger(w http.ResponseWriter, r *http.Request) {
	chord := strings.TrimPrefix(r.URL.Path, "/api/shortcuts/")
	if chord == "" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	matched, err := s.shortcuts.Trigger(chord)
	switch {
	case !matched && err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
	case !matched:
		writeError(w, http.StatusNotFound, fmt.Sprintf("no binding for chord %q", chord))
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, triggerResult{
			Triggered: true,
			Settings:  s.controller.Settings(),
		})
	}
}

// handleScheme reads and, when the source supports it, overrides the system
// scheme signal. Overriding is a diagnostics affordance for hosts that feed
// the OS signal in themselves.
func (s *Server) handleScheme(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, schemeBody{Scheme: s.schemes.Current()})

	case http.MethodPut:
		var body schemeBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		if body.Scheme != tinttypes.SchemeLight && body.Scheme != tinttypes.SchemeDark {
			writeError(w, http.StatusBadRequest, `scheme must be "light" or "dark"`)
			return
		}
		settable, ok := s.schemes.(interface{ Set(tinttypes.Scheme) })
		if !ok {
			writeError(w, http.StatusConflict, "scheme source is read-only")
			return
		}
		settable.Set(body.Scheme)
		writeJSON(w, http.StatusOK, schemeBody{Scheme: s.schemes.Current()})

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	w.WriteHeader(http.StatusMethodNotAllowed)
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte(`{"error":"marshal failed"}`)
	}
	return b
}
