package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/flemzord/notekeeper/internal/journal"
	"github.com/flemzord/notekeeper/internal/security"
)

func okHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, body)
	})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestGateway(cfg Config, opts Options) *Gateway {
	if opts.MCP == nil {
		opts.MCP = okHandler("mcp")
	}
	if opts.Logger == nil {
		opts.Logger = discardLogger()
	}
	return New(cfg, opts)
}

func do(t *testing.T, h http.Handler, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	t.Parallel()

	g := newTestGateway(Config{BearerToken: "s3cret"}, Options{
		HomeRoot: "/home/alice",
		Tools:    func() []string { return []string{"read_notes"} },
	})

	rr := do(t, g.Handler(), http.MethodGet, "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" || resp.HomeRoot != "/home/alice" || len(resp.Tools) != 1 {
		t.Errorf("health = %+v", resp)
	}
}

func TestMCPEndpoint_Auth(t *testing.T) {
	t.Parallel()

	var events []security.AuditEvent
	audit := security.NewAuditLogger(security.AuditLoggerConfig{
		OnEvent: func(e security.AuditEvent) { events = append(events, e) },
	})
	g := newTestGateway(Config{BearerToken: "s3cret"}, Options{Audit: audit})
	h := g.Handler()

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{name: "no token", want: http.StatusUnauthorized},
		{name: "wrong token", token: "nope", want: http.StatusUnauthorized},
		{name: "prefix of token", token: "s3c", want: http.StatusUnauthorized},
		{name: "valid token", token: "s3cret", want: http.StatusOK},
	}
	for _, tt := range tests {
		rr := do(t, h, http.MethodPost, "/mcp", tt.token)
		if rr.Code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.name, rr.Code, tt.want)
		}
	}
	if len(events) != 3 {
		t.Errorf("audit events = %d, want 3", len(events))
	}
	if got := g.Counters().Snapshot().AuthFailures; got != 3 {
		t.Errorf("auth failures = %d, want 3", got)
	}
}

func TestMCPEndpoint_NoAuthConfigured(t *testing.T) {
	t.Parallel()

	g := newTestGateway(Config{Endpoint: "/rpc"}, Options{})
	rr := do(t, g.Handler(), http.MethodPost, "/rpc", "")
	if rr.Code != http.StatusOK || rr.Body.String() != "mcp" {
		t.Errorf("status = %d body = %q", rr.Code, rr.Body.String())
	}
}

func TestMetricsRoute(t *testing.T) {
	t.Parallel()

	g := newTestGateway(Config{BearerToken: "s3cret"}, Options{Metrics: okHandler("metrics")})
	rr := do(t, g.Handler(), http.MethodGet, "/metrics", "")
	if rr.Code != http.StatusOK || rr.Body.String() != "metrics" {
		t.Errorf("status = %d body = %q", rr.Code, rr.Body.String())
	}

	bare := newTestGateway(Config{}, Options{})
	if rr := do(t, bare.Handler(), http.MethodGet, "/metrics", ""); rr.Code != http.StatusNotFound {
		t.Errorf("unmounted /metrics status = %d, want 404", rr.Code)
	}
}

func TestStatus(t *testing.T) {
	t.Parallel()

	g := newTestGateway(Config{}, Options{Tools: func() []string { return []string{"a"} }})
	h := g.Handler()
	do(t, h, http.MethodGet, "/health", "")

	rr := do(t, h, http.MethodGet, "/status", "")
	var resp StatusResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Endpoint != "/mcp" || resp.Counters.Requests != 2 {
		t.Errorf("status = %+v", resp)
	}
}

func TestJournalRoute(t *testing.T) {
	t.Parallel()

	store := journal.NewMemStore()
	ctx := context.Background()
	for i := range 3 {
		_ = store.Append(ctx, journal.NewEntry("append_note", fmt.Sprintf("f%d.txt", i), "/h", "ok", 2))
	}
	g := newTestGateway(Config{BearerToken: "s3cret"}, Options{Journal: store})
	h := g.Handler()

	if rr := do(t, h, http.MethodGet, "/api/journal", ""); rr.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d", rr.Code)
	}
	if rr := do(t, h, http.MethodGet, "/api/journal?n=abc", "s3cret"); rr.Code != http.StatusBadRequest {
		t.Errorf("bad n status = %d", rr.Code)
	}

	rr := do(t, h, http.MethodGet, "/api/journal?n=2", "s3cret")
	var entries []JournalEntry
	if err := json.NewDecoder(rr.Body).Decode(&entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 2 || entries[0].Filename != "f2.txt" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestStartStop(t *testing.T) {
	t.Parallel()

	g := newTestGateway(Config{Bind: "127.0.0.1:0", ShutdownTimeout: time.Second}, Options{})
	if err := g.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := g.Start(context.Background()); err == nil {
		t.Error("second Start should fail")
	}

	resp, err := http.Get("http://" + g.Addr().String() + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"status":"ok"`) {
		t.Errorf("health = %d %s", resp.StatusCode, body)
	}

	if err := g.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if _, err := http.Get("http://" + g.Addr().String() + "/health"); err == nil {
		t.Error("server still reachable after Stop")
	}
}

func TestStop_NotStarted(t *testing.T) {
	t.Parallel()

	if err := newTestGateway(Config{}, Options{}).Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}
