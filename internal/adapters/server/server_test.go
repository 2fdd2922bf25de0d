package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/evanschultz/minik/internal/adapters/server/common"
)

// stubBoards is a minimal board service for composition tests.
type stubBoards struct{}

// ListProjects returns one fixture group.
func (stubBoards) ListProjects(context.Context) ([]common.ProjectGroup, error) {
	return []common.ProjectGroup{{Owner: "acme"}}, nil
}

// Board returns an empty board.
func (stubBoards) Board(context.Context, common.BoardRequest) (common.Board, error) {
	return common.Board{}, nil
}

// MoveItem returns an empty board.
func (stubBoards) MoveItem(context.Context, common.MoveItemRequest) (common.Board, error) {
	return common.Board{}, nil
}

// ToggleColumn returns no hidden columns.
func (stubBoards) ToggleColumn(context.Context, common.ToggleColumnRequest) (common.ColumnVisibility, error) {
	return common.ColumnVisibility{}, nil
}

// TestNewHandlerRoutes verifies health and API mounts.
func TestNewHandlerRoutes(t *testing.T) {
	handler, cfg, err := NewHandler(Config{APIEndpoint: "api/v1/"}, Dependencies{Boards: stubBoards{}})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	if cfg.APIEndpoint != "/api/v1" || cfg.MCPEndpoint != "/mcp" || cfg.HTTPBind != defaultBindAddress {
		t.Fatalf("unexpected normalized config %#v", cfg)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d, want %d", rec.Code, http.StatusOK)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("projects status = %d, want %d", rec.Code, http.StatusOK)
	}
	var got struct {
		Groups []common.ProjectGroup `json:"groups"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(got.Groups) != 1 || got.Groups[0].Owner != "acme" {
		t.Fatalf("unexpected groups %#v", got.Groups)
	}
}

// fakePinger answers readiness pings with err.
type fakePinger struct {
	err error
}

// Ping returns the configured error.
func (f fakePinger) Ping(context.Context) error {
	return f.err
}

// TestHealthAndReadiness verifies liveness identity and settings-store readiness.
func TestHealthAndReadiness(t *testing.T) {
	handler, _, err := NewHandler(Config{ServerVersion: "1.2.3"}, Dependencies{Boards: stubBoards{}, Settings: fakePinger{}})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	var health healthStatus
	if err := json.NewDecoder(rec.Body).Decode(&health); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if health.Status != "ok" || health.Service != "minik" || health.Version != "1.2.3" {
		t.Fatalf("unexpected health payload %#v", health)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("readyz status = %d, want %d", rec.Code, http.StatusOK)
	}

	handler, _, err = NewHandler(Config{}, Dependencies{Boards: stubBoards{}, Settings: fakePinger{err: errors.New("database is closed")}})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
	var ready healthStatus
	if err := json.NewDecoder(rec.Body).Decode(&ready); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if ready.Status != "unavailable" || !strings.Contains(ready.Error, "database is closed") {
		t.Fatalf("unexpected readiness payload %#v", ready)
	}
}

// TestNewHandlerValidation verifies missing services and endpoint collisions fail.
func TestNewHandlerValidation(t *testing.T) {
	if _, _, err := NewHandler(Config{}, Dependencies{}); err == nil {
		t.Fatalf("expected error for missing boards dependency")
	}
	if _, _, err := NewHandler(Config{APIEndpoint: "/x", MCPEndpoint: "x/"}, Dependencies{Boards: stubBoards{}}); err == nil {
		t.Fatalf("expected error for colliding endpoints")
	}
}

// TestRunStopsOnCancel verifies graceful shutdown once the context ends.
func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Run(ctx, Config{HTTPBind: "127.0.0.1:0"}, Dependencies{Boards: stubBoards{}}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

// TestNormalizeEndpoint verifies endpoint path cleanup.
func TestNormalizeEndpoint(t *testing.T) {
	cases := map[string]string{
		"":       "/fallback",
		"/":      "/fallback",
		"mcp":    "/mcp",
		"/a/b/":  "/a/b",
		"  /x  ": "/x",
	}
	for in, want := range cases {
		if got := normalizeEndpoint(in, "/fallback"); got != want {
			t.Fatalf("normalizeEndpoint(%q) = %q, want %q", in, got, want)
		}
	}
}
