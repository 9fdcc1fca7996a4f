package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/harnessviz/pkg/cache"
	"github.com/matzehuels/harnessviz/pkg/config"
	"github.com/matzehuels/harnessviz/pkg/observability"
	"github.com/matzehuels/harnessviz/pkg/pipeline"
)

const twoHarnesses = `
metadata:
  title: power
connectors:
  J1: {pincount: 2}
  J2: {pincount: 2}
cables:
  W1: {colors: [RD, BK], gauge: 0.25 mm2, length: 0.2}
connections:
  - [J1, W1, J2]
---
metadata:
  title: broken
connectors:
  X1: {pincount: 2}
cables:
  W1: {wirecount: 3}
connections:
  - [X1, W1]
`

const single = `
connectors:
  X1: {pincount: 1}
  X2: {pincount: 1}
cables:
  W1: {colors: [BU]}
connections:
  - [X1, W1, X2]
`

func newTestServer(t *testing.T, c cache.Cache, keyer cache.Keyer) *httptest.Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	s := New(pipeline.NewRunner(c, keyer, logger), config.Default(), logger)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/yaml", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body["status"] != "ok" {
		t.Errorf("body = %v, %v", body, err)
	}
}

func TestBuildIsolatesFailures(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	resp := post(t, ts.URL+"/v1/build", twoHarnesses)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body buildBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Harnesses) != 2 {
		t.Fatalf("harnesses = %d, want 2", len(body.Harnesses))
	}

	ok := body.Harnesses[0]
	if ok.Name != "power" || ok.Error != nil {
		t.Fatalf("first harness = %+v", ok)
	}
	if len(ok.Links) != 2 || ok.Stats == nil || ok.Stats.Links != 2 {
		t.Errorf("links = %d, stats = %+v", len(ok.Links), ok.Stats)
	}
	if !strings.Contains(ok.DOT, `graph "power"`) {
		t.Error("dot missing graph header")
	}
	if len(ok.BOM) == 0 {
		t.Error("bom is empty")
	}

	bad := body.Harnesses[1]
	if bad.Name != "broken" || bad.Error == nil {
		t.Fatalf("second harness = %+v", bad)
	}
	if bad.Error.Code != "RESOLUTION_ERROR" || bad.Error.Harness != "broken" {
		t.Errorf("error = %+v", bad.Error)
	}
	if bad.Error.Row == nil || *bad.Error.Row != 0 {
		t.Errorf("error row = %v, want 0", bad.Error.Row)
	}
	if len(body.SharedBOM) == 0 {
		t.Error("shared bom missing for a multi-harness body")
	}
}

func TestBuildRejectsBadInput(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   string
	}{
		{"invalid yaml", "/v1/build", "connectors: [", http.StatusBadRequest, "INVALID_FORMAT"},
		{"empty body", "/v1/build", "", http.StatusBadRequest, "INVALID_INPUT"},
		{"bad override", "/v1/build?length_unit=kg", single, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad color mode", "/v1/render?color_mode=rainbow", single, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad format", "/v1/render?format=bmp", single, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown harness", "/v1/render?harness=nope", single, http.StatusNotFound, "FILE_NOT_FOUND"},
		{"first harness by default", "/v1/render?format=gv", twoHarnesses, http.StatusOK, ""},
		{"schema", "/v1/render", "connectors:\n  X1: {pincount: 1}\nconnections:\n  - [X1, W9]\n", http.StatusUnprocessableEntity, "SCHEMA_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts.URL+tt.path, tt.body)
			if resp.StatusCode != tt.status {
				b, _ := io.ReadAll(resp.Body)
				t.Fatalf("status = %d, want %d: %s", resp.StatusCode, tt.status, b)
			}
			if tt.code == "" {
				return
			}
			var e errorBody
			if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
				t.Fatal(err)
			}
			if e.Code != tt.code {
				t.Errorf("code = %s, want %s (%s)", e.Code, tt.code, e.Message)
			}
		})
	}
}

func TestRenderFormats(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	tests := []struct {
		query       string
		contentType string
		contains    string
	}{
		{"", "image/svg+xml", "<svg"},
		{"?format=gv", "text/vnd.graphviz; charset=utf-8", `"X1":"p1r":e -- "W1":"w1":w`},
		{"?format=tsv", "text/tab-separated-values; charset=utf-8", "Description"},
		{"?format=json", "application/json", `"nodes"`},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			resp := post(t, ts.URL+"/v1/render"+tt.query, single)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			if got := resp.Header.Get("Content-Type"); got != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", got, tt.contentType)
			}
			b, _ := io.ReadAll(resp.Body)
			if !strings.Contains(string(b), tt.contains) {
				t.Errorf("body missing %q:\n%s", tt.contains, b)
			}
		})
	}
}

func TestRenderSelectsHarness(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	resp := post(t, ts.URL+"/v1/render?format=gv&harness=power", twoHarnesses)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	b, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(b), `graph "power"`) {
		t.Errorf("rendered the wrong harness:\n%s", b)
	}

	resp = post(t, ts.URL+"/v1/render?format=gv&harness=broken", twoHarnesses)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("broken harness status = %d, want 422", resp.StatusCode)
	}
}

func TestRenderCachedInRedis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: mr.Addr()})
	if err != nil {
		t.Fatal(err)
	}
	ts := newTestServer(t, rc, cache.NewScopedKeyer(cache.NewDefaultKeyer(), "api:"))

	first := post(t, ts.URL+"/v1/render", single)
	if first.StatusCode != http.StatusOK || first.Header.Get("X-Cache") != "" {
		t.Fatalf("first render: status %d, X-Cache %q", first.StatusCode, first.Header.Get("X-Cache"))
	}
	second := post(t, ts.URL+"/v1/render", single)
	if second.Header.Get("X-Cache") != "HIT" {
		t.Error("second render should come from the cache")
	}

	keys := mr.Keys()
	if len(keys) != 1 || !strings.HasPrefix(keys[0], "harnessviz:api:artifact:") {
		t.Errorf("redis keys = %v", keys)
	}

	refreshed := post(t, ts.URL+"/v1/render?refresh=true", single)
	if refreshed.Header.Get("X-Cache") != "" {
		t.Error("refresh should bypass the cache")
	}
}

func TestBodyTooLarge(t *testing.T) {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	s := New(pipeline.NewRunner(nil, nil, logger), config.Default(), logger)

	req := httptest.NewRequest(http.MethodPost, "/v1/build", strings.NewReader(strings.Repeat("#", MaxBodyBytes+1)))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

// recordingHooks captures HTTP hook calls.
type recordingHooks struct {
	observability.NoopHTTPHooks
	mu       sync.Mutex
	statuses map[string]int
}

func (h *recordingHooks) OnResponse(_ context.Context, method, path string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.statuses[method+" "+path] = status
}

func TestHTTPHooks(t *testing.T) {
	hooks := &recordingHooks{statuses: make(map[string]int)}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	ts := newTestServer(t, nil, nil)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	post(t, ts.URL+"/v1/render?format=bmp", single)

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if got := hooks.statuses["GET /healthz"]; got != http.StatusOK {
		t.Errorf("healthz status = %d", got)
	}
	if got := hooks.statuses["POST /v1/render"]; got != http.StatusBadRequest {
		t.Errorf("render status = %d", got)
	}
}

func TestStatusOfPlainError(t *testing.T) {
	if got := statusOf(io.EOF); got != http.StatusInternalServerError {
		t.Errorf("statusOf(io.EOF) = %d", got)
	}
	if b := toErrorBody(io.EOF); b.Code != "INTERNAL_ERROR" || b.Row != nil {
		t.Errorf("toErrorBody(io.EOF) = %+v", b)
	}
}
