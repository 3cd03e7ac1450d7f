package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"atelier-learning-service/internal/app"
	"atelier-learning-service/internal/auth"
	"atelier-learning-service/internal/domain"
	"atelier-learning-service/internal/infra/memory"
)

func TestWebSocketToggleFlow(t *testing.T) {
	authService, catalog, progressRepo, feed := newTestDeps(t)
	wsHandler := NewWSHandler(authService, catalog, progressRepo, feed)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/progress", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	_, token, err := authService.SignUp(context.Background(), "alice@example.com", "pw", "Alice")
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}

	u := "ws" + server.URL[len("http"):] + "/ws/progress?moduleId=m1&token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Initial snapshot arrives first; nothing is completed yet.
	msgType, payload := readNext(conn, t, "progress")
	if completed, ok := payload["completed"].([]any); ok && len(completed) != 0 {
		t.Fatalf("expected empty initial snapshot, got %v", completed)
	}
	if msgType != "progress" {
		t.Fatalf("expected progress, got %s", msgType)
	}

	toggle := map[string]any{
		"type":    "toggle",
		"payload": map[string]any{"lessonId": "l1"},
	}
	if err := conn.WriteJSON(toggle); err != nil {
		t.Fatalf("write toggle: %v", err)
	}

	resultSeen := false
	progressSeen := false
	for i := 0; i < 4 && !(resultSeen && progressSeen); i++ {
		typ, payload := readNext(conn, t, "")
		switch typ {
		case "toggleResult":
			if payload["completed"] != true {
				t.Fatalf("expected completed toggle result, got %v", payload)
			}
			resultSeen = true
		case "progress":
			if completed, ok := payload["completed"].([]any); ok && len(completed) == 1 {
				progressSeen = true
			}
		}
	}
	if !resultSeen || !progressSeen {
		t.Fatalf("expected toggleResult and updated progress, got result=%v progress=%v", resultSeen, progressSeen)
	}
}

func TestWebSocketRejectsBadToken(t *testing.T) {
	authService, catalog, progressRepo, feed := newTestDeps(t)
	wsHandler := NewWSHandler(authService, catalog, progressRepo, feed)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/progress", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws/progress?moduleId=m1&token=bogus"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %+v", resp)
	}
}

func TestWebSocketUnknownModuleIsNotFound(t *testing.T) {
	authService, catalog, progressRepo, feed := newTestDeps(t)
	wsHandler := NewWSHandler(authService, catalog, progressRepo, feed)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/progress", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	_, token, err := authService.SignUp(context.Background(), "bob@example.com", "pw", "Bob")
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}

	u := "ws" + server.URL[len("http"):] + "/ws/progress?moduleId=ghost&token=" + token
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %+v", resp)
	}
}

func newTestDeps(t *testing.T) (*auth.Service, *app.Catalog, app.ProgressRepository, app.ProgressFeed) {
	t.Helper()
	catalogStore := memory.NewCatalogStore(
		[]domain.Module{{ID: "m1", Title: "Plumbing Fundamentals", Category: "Plumbing", CreatedAt: time.Now()}},
		[]domain.Lesson{
			{ID: "l1", ModuleID: "m1", Title: "Tools", OrderIndex: 1},
			{ID: "l2", ModuleID: "m1", Title: "Pipes", OrderIndex: 2},
		},
		nil,
	)
	authService := auth.NewService(memory.NewUserStore(), "test-secret", time.Hour)
	return authService, app.NewCatalog(catalogStore), memory.NewProgressStore(), memory.NewFeedBus()
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}
