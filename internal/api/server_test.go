package api

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tint/internal/broadcast"
	"tint/internal/hub"
	"tint/internal/prefs"
	"tint/internal/scheme"
	"tint/internal/shortcut"
	"tint/internal/store"
	"tint/internal/testutils"
	"tint/internal/theme"
	"tint/pkg/tinttypes"
)

type apiRig struct {
	t          *testing.T
	controller *prefs.Controller
	store      *store.MemoryStore
	applicator *testutils.RecordingApplicator
	schemes    *scheme.Static
	hub        *hub.Hub
	shortcuts  *shortcut.Registry
	caster     *broadcast.Broadcaster
	events     *testutils.EventCollector
	server     *httptest.Server
}

func newAPIRig(t *testing.T, withCaster bool) *apiRig {
	t.Helper()
	testutils.ResetCounters()

	rig := &apiRig{
		t:          t,
		store:      store.NewMemoryStore(),
		applicator: testutils.NewRecordingApplicator(),
		schemes:    scheme.NewStatic(tinttypes.SchemeLight),
		events:     testutils.NewEventCollector(),
	}
	rig.controller = prefs.New(tinttypes.Config{AutoDetectSystemTheme: true}, prefs.Options{
		Store:      rig.store,
		Applicator: rig.applicator,
		Schemes:    rig.schemes,
	})
	rig.controller.SubscribeAll(rig.events.Collect)

	rig.hub = hub.New(hub.Options{NewID: testutils.SequentialUUID, Now: testutils.SequentialClock})

	rig.shortcuts = shortcut.NewRegistry()
	require.NoError(t, rig.shortcuts.RegisterDefaults(func() error {
		rig.controller.ToggleTheme()
		return nil
	}))

	if withCaster {
		rig.caster = broadcast.New(rig.controller, broadcast.Options{
			Store:     rig.store,
			Directory: rig.hub,
		})
	}

	rig.controller.Start()
	rig.events.Clear()
	rig.applicator.Clear()

	srv := NewServer(Options{
		Controller:  rig.controller,
		Broadcaster: rig.caster,
		Hub:         rig.hub,
		Catalog:     theme.NewCatalog(),
		Schemes:     rig.schemes,
		Shortcuts:   rig.shortcuts,
	})
	mux := http.NewServeMux()
	srv.Register(mux)
	rig.server = httptest.NewServer(mux)
	t.Cleanup(func() {
		rig.server.Close()
		if rig.caster != nil {
			rig.caster.Close()
		}
		rig.controller.Teardown()
		rig.controller.Flush()
	})
	return rig
}

// do issues a request against the test server and returns status and body.
func (r *apiRig) do(method, path, body string) (int, []byte) {
	r.t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, r.server.URL+path, reader)
	require.NoError(r.t, err)

	resp, err := r.server.Client().Do(req)
	require.NoError(r.t, err)
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	require.NoError(r.t, err)
	return resp.StatusCode, data
}

func TestServer_Health(t *testing.T) {
	rig := newAPIRig(t, false)

	status, body := rig.do(http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, status)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.NotEmpty(t, resp["version"])
}

func TestServer_GetPreferences(t *testing.T) {
	rig := newAPIRig(t, false)

	status, body := rig.do(http.MethodGet, "/api/preferences", "")
	require.Equal(t, http.StatusOK, status)

	var settings tinttypes.Settings
	require.NoError(t, json.Unmarshal(body, &settings))
	testutils.NewAssertionHelpers(t).AssertSettings(settings, "light", "system", "medium")
}

func TestServer_PutPreferences_Partial(t *testing.T) {
	rig := newAPIRig(t, false)

	status, body := rig.do(http.MethodPut, "/api/preferences", `{"theme":"dark","fontSize":"large"}`)
	require.Equal(t, http.StatusOK, status)

	var settings tinttypes.Settings
	require.NoError(t, json.Unmarshal(body, &settings))
	testutils.NewAssertionHelpers(t).AssertSettings(settings, "dark", "system", "large")

	value, ok := rig.applicator.LastFor(tinttypes.DimensionTheme)
	require.True(t, ok)
	assert.Equal(t, "dark", value)

	// Absent dimensions stay untouched; present ones fire in dimension order.
	testutils.NewAssertionHelpers(t).AssertEventKinds(rig.events.Events(),
		tinttypes.EventThemeChanged, tinttypes.EventFontSizeChanged)
}

func TestServer_PutPreferences_InvalidJSON(t *testing.T) {
	rig := newAPIRig(t, false)

	status, body := rig.do(http.MethodPut, "/api/preferences", `{"theme":`)
	require.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "invalid json")
	assert.Empty(t, rig.events.Events())
}

func TestServer_DimensionRoutes(t *testing.T) {
	rig := newAPIRig(t, false)

	type dimResp struct {
		Dimension string `json:"dimension"`
		Value     string `json:"value"`
	}

	t.Run("get single value", func(t *testing.T) {
		status, body := rig.do(http.MethodGet, "/api/preferences/theme", "")
		require.Equal(t, http.StatusOK, status)

		var resp dimResp
		require.NoError(t, json.Unmarshal(body, &resp))
		assert.Equal(t, "theme", resp.Dimension)
		assert.Equal(t, "light", resp.Value)
	})

	t.Run("put single value", func(t *testing.T) {
		status, body := rig.do(http.MethodPut, "/api/preferences/font", `{"value":"serif"}`)
		require.Equal(t, http.StatusOK, status)

		var resp dimResp
		require.NoError(t, json.Unmarshal(body, &resp))
		assert.Equal(t, "serif", resp.Value)
		assert.Equal(t, "serif", rig.controller.GetDimension(tinttypes.DimensionFont))
	})

	t.Run("kebab-case alias", func(t *testing.T) {
		status, body := rig.do(http.MethodGet, "/api/preferences/font-size", "")
		require.Equal(t, http.StatusOK, status)

		var resp dimResp
		require.NoError(t, json.Unmarshal(body, &resp))
		assert.Equal(t, "fontSize", resp.Dimension)
		assert.Equal(t, "medium", resp.Value)
	})

	t.Run("unknown dimension", func(t *testing.T) {
		status, body := rig.do(http.MethodGet, "/api/preferences/contrast", "")
		require.Equal(t, http.StatusBadRequest, status)
		assert.Contains(t, string(body), "unknown preference dimension")
	})

	t.Run("missing value", func(t *testing.T) {
		status, body := rig.do(http.MethodPut, "/api/preferences/theme", `{}`)
		require.Equal(t, http.StatusBadRequest, status)
		assert.Contains(t, string(body), "missing value")
	})
}

func TestServer_Toggle(t *testing.T) {
	rig := newAPIRig(t, false)

	status, body := rig.do(http.MethodPost, "/api/preferences/toggle", "")
	require.Equal(t, http.StatusOK, status)

	var settings tinttypes.Settings
	require.NoError(t, json.Unmarshal(body, &settings))
	assert.Equal(t, "dark", settings.Theme)

	status, body = rig.do(http.MethodPost, "/api/preferences/toggle", "")
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &settings))
	assert.Equal(t, "light", settings.Theme)

	testutils.NewAssertionHelpers(t).AssertEventKinds(rig.events.Events(),
		tinttypes.EventThemeChanged, tinttypes.EventThemeChanged)
}

func TestServer_Reset(t *testing.T) {
	rig := newAPIRig(t, false)
	rig.controller.SetDimension(tinttypes.DimensionTheme, "dark")
	rig.events.Clear()

	status, body := rig.do(http.MethodPost, "/api/preferences/reset", "")
	require.Equal(t, http.StatusOK, status)

	var settings tinttypes.Settings
	require.NoError(t, json.Unmarshal(body, &settings))
	testutils.NewAssertionHelpers(t).AssertSettings(settings, "light", "system", "medium")

	testutils.NewAssertionHelpers(t).AssertEventKinds(rig.events.Events(),
		tinttypes.EventThemeChanged,
		tinttypes.EventFontChanged,
		tinttypes.EventFontSizeChanged,
		tinttypes.EventReset)
}

func TestServer_DeleteStorage(t *testing.T) {
	rig := newAPIRig(t, false)
	rig.controller.SetDimension(tinttypes.DimensionTheme, "dark")
	rig.controller.Flush()

	status, _ := rig.do(http.MethodDelete, "/api/storage", "")
	require.Equal(t, http.StatusNoContent, status)

	values, err := rig.store.Get([]string{"tint-theme"})
	require.NoError(t, err)
	assert.Empty(t, values)
	assert.Equal(t, "dark", rig.controller.GetDimension(tinttypes.DimensionTheme))
}

func TestServer_Themes(t *testing.T) {
	rig := newAPIRig(t, false)

	status, body := rig.do(http.MethodGet, "/api/themes", "")
	require.Equal(t, http.StatusOK, status)

	var infos []tinttypes.ThemeInfo
	require.NoError(t, json.Unmarshal(body, &infos))

	schemes := make(map[string]string)
	for _, info := range infos {
		schemes[info.Name] = info.Scheme
	}
	assert.Contains(t, schemes, "light")
	assert.Contains(t, schemes, "dim")
	assert.Contains(t, schemes, "solarized")
	assert.Equal(t, "dark", schemes["dark"])
}

func TestServer_ThemeCSS(t *testing.T) {
	rig := newAPIRig(t, false)

	t.Run("current preferences", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, rig.server.URL+"/api/themes/dark/css", nil)
		require.NoError(t, err)
		resp, err := rig.server.Client().Do(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Type"), "text/css")

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		css := string(body)
		assert.Contains(t, css, ":root {")
		assert.Contains(t, css, "--tint-bg:")
		assert.Contains(t, css, "--tint-font-size: 16px;")
	})

	t.Run("query overrides", func(t *testing.T) {
		status, body := rig.do(http.MethodGet, "/api/themes/light/css?size=large", "")
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, string(body), "--tint-font-size: 18px;")
	})

	t.Run("unknown theme", func(t *testing.T) {
		status, body := rig.do(http.MethodGet, "/api/themes/nope/css", "")
		require.Equal(t, http.StatusNotFound, status)
		assert.Contains(t, string(body), "unknown theme")
	})

	t.Run("missing css segment", func(t *testing.T) {
		status, _ := rig.do(http.MethodGet, "/api/themes/dark", "")
		require.Equal(t, http.StatusNotFound, status)
	})
}

func TestServer_Contexts(t *testing.T) {
	rig := newAPIRig(t, false)
	rig.hub.Register(testutils.NewMockPageContext("ctx-1", "reader"))
	rig.hub.Register(testutils.NewMockPageContext("ctx-2", "editor"))

	status, body := rig.do(http.MethodGet, "/api/contexts", "")
	require.Equal(t, http.StatusOK, status)

	var infos []tinttypes.ContextInfo
	require.NoError(t, json.Unmarshal(body, &infos))
	require.Len(t, infos, 2)
	assert.Equal(t, "reader", infos[0].Label)
	assert.False(t, infos[0].Focused)
	assert.True(t, infos[1].Focused)

	status, _ = rig.do(http.MethodPost, "/api/contexts/ctx-1/focus", "")
	require.Equal(t, http.StatusNoContent, status)

	focused, ok := rig.hub.Focused()
	require.True(t, ok)
	assert.Equal(t, "ctx-1", focused.ID())

	status, body = rig.do(http.MethodPost, "/api/contexts/ghost/focus", "")
	require.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, string(body), "unknown context")

	status, _ = rig.do(http.MethodPost, "/api/contexts/ctx-1", "")
	require.Equal(t, http.StatusNotFound, status)
}

func TestServer_Apply_FansOutToContexts(t *testing.T) {
	rig := newAPIRig(t, true)

	ok1 := testutils.NewMockPageContext("ctx-1", "reader")
	ok2 := testutils.NewMockPageContext("ctx-2", "editor")
	failing := testutils.NewMockPageContext("ctx-3", "preview")
	failing.SetSendError(io.ErrClosedPipe)
	rig.hub.Register(ok1)
	rig.hub.Register(ok2)
	rig.hub.Register(failing)

	status, body := rig.do(http.MethodPost, "/api/preferences/apply", "")
	require.Equal(t, http.StatusOK, status)

	var result struct {
		Settings  tinttypes.Settings `json:"settings"`
		Delivered int                `json:"delivered"`
		Failed    int                `json:"failed"`
	}
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, 2, result.Delivered)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, "light", result.Settings.Theme)

	for _, ctx := range []*testutils.MockPageContext{ok1, ok2} {
		received := ctx.Received()
		require.Len(t, received, 1)
		assert.Equal(t, tinttypes.ActionApplySettings, received[0].Action)
		value, present := received[0].Settings.Get(tinttypes.DimensionTheme)
		require.True(t, present)
		assert.Equal(t, "light", value)
	}
	assert.Equal(t, 1, failing.Attempts())
	assert.Empty(t, failing.Received())
}

func TestServer_Apply_WithoutBroadcaster(t *testing.T) {
	rig := newAPIRig(t, false)

	status, body := rig.do(http.MethodPost, "/api/preferences/apply", "")
	require.Equal(t, http.StatusOK, status)

	var result struct {
		Delivered int `json:"delivered"`
		Failed    int `json:"failed"`
	}
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Zero(t, result.Delivered)
	assert.Zero(t, result.Failed)
}

func TestServer_Events_StreamsControllerEvents(t *testing.T) {
	rig := newAPIRig(t, false)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rig.server.URL+"/api/events", nil)
	require.NoError(t, err)
	resp, err := rig.server.Client().Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	scanner := bufio.NewScanner(resp.Body)
	nextEvent := func() tinttypes.Event {
		t.Helper()
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			var e tinttypes.Event
			require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &e))
			return e
		}
		t.Fatalf("stream ended before an event arrived: %v", scanner.Err())
		return tinttypes.Event{}
	}

	// The stream opens with a snapshot of the current triple.
	snapshot := nextEvent()
	assert.Equal(t, tinttypes.EventInitialized, snapshot.Kind)
	assert.Equal(t, "light", snapshot.Settings.Theme)

	rig.controller.SetDimension(tinttypes.DimensionTheme, "dark")

	change := nextEvent()
	assert.Equal(t, tinttypes.EventThemeChanged, change.Kind)
	assert.Equal(t, "dark", change.Settings.Theme)
}

func TestServer_Version(t *testing.T) {
	rig := newAPIRig(t, false)

	status, body := rig.do(http.MethodGet, "/api/version", "")
	require.Equal(t, http.StatusOK, status)

	var info struct {
		Version  string `json:"version"`
		Protocol string `json:"protocol"`
	}
	require.NoError(t, json.Unmarshal(body, &info))
	assert.NotEmpty(t, info.Version)
	assert.Equal(t, "1.0.0", info.Protocol)
}

func TestServer_Shortcuts(t *testing.T) {
	rig := newAPIRig(t, false)

	t.Run("list bindings", func(t *testing.T) {
		status, body := rig.do(http.MethodGet, "/api/shortcuts", "")
		require.Equal(t, http.StatusOK, status)

		var bindings []shortcut.Binding
		require.NoError(t, json.Unmarshal(body, &bindings))
		require.Len(t, bindings, 1)
		assert.Equal(t, "mod+shift+t", bindings[0].Chord)
	})

	t.Run("trigger toggles theme", func(t *testing.T) {
		status, body := rig.do(http.MethodPost, "/api/shortcuts/ctrl+shift+t", "")
		require.Equal(t, http.StatusOK, status)

		var result struct {
			Triggered bool               `json:"triggered"`
			Settings  tinttypes.Settings `json:"settings"`
		}
		require.NoError(t, json.Unmarshal(body, &result))
		assert.True(t, result.Triggered)
		assert.Equal(t, "dark", result.Settings.Theme)

		testutils.NewAssertionHelpers(t).AssertEventKinds(rig.events.Events(),
			tinttypes.EventThemeChanged)
	})

	t.Run("unbound chord", func(t *testing.T) {
		status, body := rig.do(http.MethodPost, "/api/shortcuts/mod+q", "")
		require.Equal(t, http.StatusNotFound, status)
		assert.Contains(t, string(body), "no binding for chord")
	})

	t.Run("malformed chord", func(t *testing.T) {
		status, body := rig.do(http.MethodPost, "/api/shortcuts/ctrl+shift", "")
		require.Equal(t, http.StatusBadRequest, status)
		assert.Contains(t, string(body), "has no key")
	})

	t.Run("wrong method", func(t *testing.T) {
		status, _ := rig.do(http.MethodGet, "/api/shortcuts/mod+shift+t", "")
		require.Equal(t, http.StatusMethodNotAllowed, status)
	})
}

func TestServer_Scheme(t *testing.T) {
	rig := newAPIRig(t, false)

	status, body := rig.do(http.MethodGet, "/api/scheme", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"scheme":"light"}`, string(body))

	// With the theme on auto, overriding the scheme repaints without a
	// change event.
	rig.controller.SetDimension(tinttypes.DimensionTheme, "auto")
	rig.events.Clear()
	rig.applicator.Clear()

	status, body = rig.do(http.MethodPut, "/api/scheme", `{"scheme":"dark"}`)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"scheme":"dark"}`, string(body))

	assert.Equal(t, 1, rig.applicator.CountFor(tinttypes.DimensionTheme))
	assert.Empty(t, rig.events.Events())

	status, body = rig.do(http.MethodPut, "/api/scheme", `{"scheme":"blue"}`)
	require.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), `scheme must be "light" or "dark"`)
}

func TestServer_Scheme_ReadOnlySource(t *testing.T) {
	rig := newAPIRig(t, false)

	srv := NewServer(Options{
		Controller: rig.controller,
		Schemes:    scheme.TerminalResolver(),
	})
	mux := http.NewServeMux()
	srv.Register(mux)
	ts := httptest.NewServer(mux)
	defer ts.Close()

	req, err := http.NewRequest(http.MethodPut, ts.URL+"/api/scheme", strings.NewReader(`{"scheme":"dark"}`))
	require.NoError(t, err)
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusConflict, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "read-only")
}

func TestServer_MethodNotAllowed(t *testing.T) {
	rig := newAPIRig(t, false)

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"delete preferences", http.MethodDelete, "/api/preferences"},
		{"get storage", http.MethodGet, "/api/storage"},
		{"post themes", http.MethodPost, "/api/themes"},
		{"put version", http.MethodPut, "/api/version"},
		{"delete contexts", http.MethodDelete, "/api/contexts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := rig.do(tt.method, tt.path, "")
			assert.Equal(t, http.StatusMethodNotAllowed, status)
		})
	}
}
