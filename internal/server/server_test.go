package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/raysh454/promptlab/internal/catalog"
	"github.com/raysh454/promptlab/internal/display"
	"github.com/raysh454/promptlab/internal/loader"
	"github.com/raysh454/promptlab/internal/server"
	"github.com/raysh454/promptlab/internal/testutil"
	"github.com/raysh454/promptlab/internal/webclient"
)

func newTestServer(t *testing.T) *server.Server {
	t.Helper()

	store, err := catalog.NewStore(context.Background(), catalog.Config{Driver: catalog.DriverMemory}, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	s, err := server.NewServer(server.Config{ListenAddr: ":0"}, store, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}

func do(t *testing.T, s http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode JSON response: %v (body: %s)", err, rec.Body.String())
	}
}

// ─── CORS ──────────────────────────────────────────────────────────────

func TestServer_CORS_HeaderPresent(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/problems/story_001")

	if origin := rec.Header().Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Errorf("expected CORS origin *, got %q", origin)
	}
}

func TestServer_CORS_Preflight(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := do(t, s, http.MethodOptions, "/api/problems/story_001")

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), "GET") {
		t.Errorf("expected GET in allowed methods, got %q", rec.Header().Get("Access-Control-Allow-Methods"))
	}
}

// ─── Problems ──────────────────────────────────────────────────────────

func TestServer_GetProblem(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/problems/story_001?mode=guided")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("expected JSON content type, got %q", ct)
	}
	var p map[string]any
	decodeJSON(t, rec, &p)
	if p["id"] != "story_001" || p["expected_output_type"] != "text" {
		t.Errorf("unexpected problem: %v", p)
	}
}

func TestServer_GetProblem_SameForEveryMode(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	guided := do(t, s, http.MethodGet, "/api/problems/story_001?mode=guided").Body.String()
	evaluation := do(t, s, http.MethodGet, "/api/problems/story_001?mode=evaluation").Body.String()

	if guided != evaluation {
		t.Errorf("mode changed the problem body")
	}
}

func TestServer_GetProblem_NotFound(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/problems/missing_999")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var body server.ErrorResponse
	decodeJSON(t, rec, &body)
	if body.Detail != "problem not found" {
		t.Errorf("unexpected detail %q", body.Detail)
	}
}

func TestServer_ListProblems(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/problems")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var ps []catalog.Problem
	decodeJSON(t, rec, &ps)
	if len(ps) != 5 {
		t.Errorf("expected 5 problems, got %d", len(ps))
	}
}

// ─── Request IDs and metrics ───────────────────────────────────────────

func TestServer_RequestIDEchoedOrAssigned(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/problems/story_001", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("expected echoed request id, got %q", got)
	}

	rec = do(t, s, http.MethodGet, "/api/problems/story_001")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected a generated request id")
	}
}

func TestServer_MetricsCountRequests(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	do(t, s, http.MethodGet, "/api/problems/story_001?mode=guided")
	do(t, s, http.MethodGet, "/api/problems/missing?mode=free-text")

	rec := do(t, s, http.MethodGet, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`promptlab_http_requests_total{method="GET",route="/api/problems/{id}",status="200"} 1`,
		`promptlab_http_requests_total{method="GET",route="/api/problems/{id}",status="404"} 1`,
		`promptlab_problem_lookups_total{mode="guided",result="found"} 1`,
		`promptlab_problem_lookups_total{mode="other",result="not_found"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

// ─── Test page and docs ────────────────────────────────────────────────

func TestServer_IndexPageHasModeSelectorAndResult(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	if err != nil {
		t.Fatalf("parse page: %v", err)
	}
	var modes []string
	doc.Find("select#mode option").Each(func(_ int, sel *goquery.Selection) {
		v, _ := sel.Attr("value")
		modes = append(modes, v)
	})
	if strings.Join(modes, ",") != "guided,evaluation" {
		t.Errorf("unexpected mode options %v", modes)
	}
	if doc.Find("#result").Length() != 1 {
		t.Error("missing #result output area")
	}
	if src, _ := doc.Find("script[src]").Attr("src"); src != "/static/loader.js" {
		t.Errorf("unexpected script src %q", src)
	}
	if !strings.Contains(doc.Find("script:not([src])").Text(), `"story_001"`) {
		t.Error("page does not carry the problem id")
	}
}

func TestServer_ServesLoaderScript(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/static/loader.js")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "encodeURIComponent(mode)") {
		t.Error("script does not encode the mode")
	}
}

func TestServer_SwaggerDoc(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/swagger/doc.json")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var doc map[string]any
	decodeJSON(t, rec, &doc)
	paths, _ := doc["paths"].(map[string]any)
	if _, ok := paths["/api/problems/{id}"]; !ok {
		t.Errorf("doc lacks problem path: %v", paths)
	}
}

// ─── End to end with the loader ────────────────────────────────────────

func TestServer_LoaderRendersServedProblem(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(newTestServer(t))
	defer ts.Close()

	wc, err := webclient.NewNetHTTPClient(webclient.Config{}, &testutil.DummyLogger{}, ts.Client())
	if err != nil {
		t.Fatalf("NewNetHTTPClient: %v", err)
	}
	var out display.TextArea
	l, err := loader.New(loader.Config{BaseURL: ts.URL}, wc, display.StaticMode("guided"), &out, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("loader.New: %v", err)
	}

	o := l.Load(context.Background())
	if !o.OK() {
		t.Fatalf("load failed: %v", o.Err)
	}

	resp, err := http.Get(ts.URL + "/api/problems/story_001")
	if err != nil {
		t.Fatalf("direct get: %v", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	want, err := loader.Render(raw)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out.Text() != want {
		t.Errorf("display differs from rendered API body:\n%s\nvs\n%s", out.Text(), want)
	}
	if !strings.HasPrefix(out.Text(), "{\n  \"id\": \"story_001\",") {
		t.Errorf("unexpected rendering: %q", out.Text())
	}
}

func TestServer_LoaderRendersNotFoundDetail(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(newTestServer(t))
	defer ts.Close()

	wc, _ := webclient.NewNetHTTPClient(webclient.Config{}, nil, ts.Client())
	var out display.TextArea
	l, err := loader.New(loader.Config{BaseURL: ts.URL, ProblemID: "nope"}, wc, display.StaticMode("guided"), &out, nil)
	if err != nil {
		t.Fatalf("loader.New: %v", err)
	}

	o := l.Load(context.Background())
	if !o.OK() || o.StatusCode != http.StatusNotFound {
		t.Fatalf("expected rendered 404, got status %d err %v", o.StatusCode, o.Err)
	}
	if out.Text() != "{\n  \"detail\": \"problem not found\"\n}" {
		t.Errorf("unexpected display %q", out.Text())
	}
}
