// Package client is the tint CLI's typed view of the daemon's control API.
// Every method maps to one HTTP route; error responses come back as plain Go
// errors carrying the daemon's message.
package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"tint/internal/shortcut"
	"tint/internal/version"
	"tint/pkg/tinttypes"
)

const requestTimeout = 10 * time.Second

// Client talks to a tintd control API.
type Client struct {
	base string
	http *http.Client
}

// New creates a client for the daemon at addr. A bare host:port gets an
// http scheme.
func New(addr string) *Client {
	base := addr
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return &Client{
		base: strings.TrimSuffix(base, "/"),
		http: &http.Client{Timeout: requestTimeout},
	}
}

// Host returns the daemon's host:port for protocols other than HTTP, such
// as the WebSocket attach.
func (c *Client) Host() string {
	u, err := url.Parse(c.base)
	if err != nil || u.Host == "" {
		return strings.TrimPrefix(c.base, "http://")
	}
	return u.Host
}

// Health is the daemon liveness response.
type Health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// DimensionValue is one dimension's wire pair.
type DimensionValue struct {
	Dimension tinttypes.Dimension `json:"dimension"`
	Value     string              `json:"value"`
}

// ApplyReport is the result of an apply fan-out.
type ApplyReport struct {
	Settings  tinttypes.Settings `json:"settings"`
	Delivered int                `json:"delivered"`
	Failed    int                `json:"failed"`
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

// Health checks daemon liveness.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var h Health
	err := c.do(ctx, http.MethodGet, "/api/health", nil, &h)
	return h, err
}

// Preferences returns the daemon's current triple.
func (c *Client) Preferences(ctx context.Context) (tinttypes.Settings, error) {
	var s tinttypes.Settings
	err := c.do(ctx, http.MethodGet, "/api/preferences", nil, &s)
	return s, err
}

// SetPreferences applies the dimensions present in partial and returns the
// resulting triple.
func (c *Client) SetPreferences(ctx context.Context, partial tinttypes.PartialSettings) (tinttypes.Settings, error) {
	var s tinttypes.Settings
	err := c.do(ctx, http.MethodPut, "/api/preferences", partial, &s)
	return s, err
}

// Dimension reads one dimension's current value.
func (c *Client) Dimension(ctx context.Context, d tinttypes.Dimension) (DimensionValue, error) {
	var dv DimensionValue
	err := c.do(ctx, http.MethodGet, "/api/preferences/"+string(d), nil, &dv)
	return dv, err
}

// SetDimension writes one dimension. The dimension name may use any accepted
// spelling; the daemon validates it.
func (c *Client) SetDimension(ctx context.Context, dimension, value string) (DimensionValue, error) {
	var dv DimensionValue
	err := c.do(ctx, http.MethodPut, "/api/preferences/"+url.PathEscape(dimension), valueBody{Value: value}, &dv)
	return dv, err
}

// Toggle flips the theme between light and dark.
func (c *Client) Toggle(ctx context.Context) (tinttypes.Settings, error) {
	var s tinttypes.Settings
	err := c.do(ctx, http.MethodPost, "/api/preferences/toggle", nil, &s)
	return s, err
}

// Apply re-applies the full triple locally and fans it out to every
// attached context.
func (c *Client) Apply(ctx context.Context) (ApplyReport, error) {
	var report ApplyReport
	err := c.do(ctx, http.MethodPost, "/api/preferences/apply", nil, &report)
	return report, err
}

// Reset restores configured defaults.
func (c *Client) Reset(ctx context.Context) (tinttypes.Settings, error) {
	var s tinttypes.Settings
	err := c.do(ctx, http.MethodPost, "/api/preferences/reset", nil, &s)
	return s, err
}

// ClearStorage removes persisted values without touching live state.
func (c *Client) ClearStorage(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/storage", nil, nil)
}

// Themes lists the daemon's theme catalog.
func (c *Client) Themes(ctx context.Context) ([]tinttypes.ThemeInfo, error) {
	var infos []tinttypes.ThemeInfo
	err := c.do(ctx, http.MethodGet, "/api/themes", nil, &infos)
	return infos, err
}

// ThemeCSS fetches a theme's rendered CSS. Empty font or size fall back to
// the daemon's current values.
func (c *Client) ThemeCSS(ctx context.Context, name, font, size string) (string, error) {
	q := url.Values{}
	if font != "" {
		q.Set("font", font)
	}
	if size != "" {
		q.Set("size", size)
	}
	path := "/api/themes/" + url.PathEscape(name) + "/css"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	return c.text(ctx, path)
}

// Contexts lists attached page contexts.
func (c *Client) Contexts(ctx context.Context) ([]tinttypes.ContextInfo, error) {
	var infos []tinttypes.ContextInfo
	err := c.do(ctx, http.MethodGet, "/api/contexts", nil, &infos)
	return infos, err
}

// Focus marks one context as the receiver of single dimension changes.
func (c *Client) Focus(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/api/contexts/"+url.PathEscape(id)+"/focus", nil, nil)
}

// Version returns the daemon's build and protocol versions.
func (c *Client) Version(ctx context.Context) (*version.Info, error) {
	var info version.Info
	if err := c.do(ctx, http.MethodGet, "/api/version", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Shortcuts lists registered keyboard chords.
func (c *Client) Shortcuts(ctx context.Context) ([]shortcut.Binding, error) {
	var bindings []shortcut.Binding
	err := c.do(ctx, http.MethodGet, "/api/shortcuts", nil, &bindings)
	return bindings, err
}

// TriggerShortcut fires the binding for chord and returns the resulting
// triple.
func (c *Client) TriggerShortcut(ctx context.Context, chord string) (tinttypes.Settings, error) {
	var result triggerResult
	err := c.do(ctx, http.MethodPost, "/api/shortcuts/"+url.PathEscape(chord), nil, &result)
	return result.Settings, err
}

// Scheme reads the daemon's current system scheme signal.
func (c *Client) Scheme(ctx context.Context) (tinttypes.Scheme, error) {
	var body schemeBody
	err := c.do(ctx, http.MethodGet, "/api/scheme", nil, &body)
	return body.Scheme, err
}

// SetScheme overrides the daemon's scheme signal. Fails when the daemon's
// source is read-only.
func (c *Client) SetScheme(ctx context.Context, s tinttypes.Scheme) error {
	return c.do(ctx, http.MethodPut, "/api/scheme", schemeBody{Scheme: s}, nil)
}

// Events subscribes to the daemon's event stream. The first frame is a
// snapshot of the current triple. The events channel closes when the stream
// ends; a terminal failure arrives on the error channel first.
func (c *Client) Events(ctx context.Context) (<-chan tinttypes.Event, <-chan error) {
	events := make(chan tinttypes.Event)
	errs := make(chan error, 1)

	go func() {
		defer close(events)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/api/events", nil)
		if err != nil {
			errs <- err
			return
		}
		req.Header.Set("Accept", "text/event-stream")

		// The stream is long-lived, so it bypasses the request timeout.
		resp, err := (&http.Client{}).Do(req)
		if err != nil {
			errs <- friendlyDialError(err, c.base)
			return
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode >= 400 {
			errs <- decodeError(resp)
			return
		}

		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			data, found := strings.CutPrefix(scanner.Text(), "data: ")
			if !found {
				continue
			}
			var e tinttypes.Event
			if err := json.Unmarshal([]byte(data), &e); err != nil {
				continue
			}
			select {
			case events <- e:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil && ctx.Err() == nil {
			errs <- fmt.Errorf("event stream: %w", err)
		}
	}()

	return events, errs
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, bodyReader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return friendlyDialError(err, c.base)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) text(ctx context.Context, path string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", friendlyDialError(err, c.base)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", decodeError(resp)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	return string(data), nil
}

// decodeError turns a non-2xx response into an error carrying the daemon's
// message when one is present.
func decodeError(resp *http.Response) error {
	var apiErr struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
		return errors.New(apiErr.Error)
	}
	return fmt.Errorf("daemon returned %s", resp.Status)
}

func friendlyDialError(err error, base string) error {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return fmt.Errorf("no daemon listening at %s (start one with tintd)", base)
	}
	return err
}
