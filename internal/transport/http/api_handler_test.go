package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"atelier-learning-service/internal/domain"
)

func newAPIServer(t *testing.T) (*httptest.Server, func(email string) string) {
	t.Helper()
	authService, catalog, progressRepo, _ := newTestDeps(t)
	apiHandler := NewAPIHandler(catalog, progressRepo, authService)

	mux := http.NewServeMux()
	apiHandler.Register(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	signUp := func(email string) string {
		body, _ := json.Marshal(map[string]string{
			"email": email, "password": "pw", "displayName": "Tester",
		})
		resp, err := http.Post(server.URL+"/api/auth/signup", "application/json", bytes.NewReader(body))
		if err != nil {
			t.Fatalf("sign up: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("sign up status %d", resp.StatusCode)
		}
		var out struct {
			Token string `json:"token"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatalf("decode sign up: %v", err)
		}
		return out.Token
	}
	return server, signUp
}

func TestListModulesWithFilter(t *testing.T) {
	server, _ := newAPIServer(t)

	resp, err := http.Get(server.URL + "/api/modules?search=plumbing")
	if err != nil {
		t.Fatalf("get modules: %v", err)
	}
	defer resp.Body.Close()
	var modules []domain.Module
	if err := json.NewDecoder(resp.Body).Decode(&modules); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(modules) != 1 || modules[0].ID != "m1" {
		t.Fatalf("expected m1, got %v", modules)
	}

	resp2, err := http.Get(server.URL + "/api/modules?category=Carpentry")
	if err != nil {
		t.Fatalf("get modules: %v", err)
	}
	defer resp2.Body.Close()
	var empty []domain.Module
	if err := json.NewDecoder(resp2.Body).Decode(&empty); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no matches, got %v", empty)
	}
}

func TestModuleDetailNotFound(t *testing.T) {
	server, _ := newAPIServer(t)

	resp, err := http.Get(server.URL + "/api/modules/ghost")
	if err != nil {
		t.Fatalf("get detail: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestQuizForModuleWithoutQuestions(t *testing.T) {
	server, _ := newAPIServer(t)

	resp, err := http.Get(server.URL + "/api/modules/m1/quiz")
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for quizless module, got %d", resp.StatusCode)
	}
}

func TestProgressRequiresAuth(t *testing.T) {
	server, signUp := newAPIServer(t)

	resp, err := http.Get(server.URL + "/api/progress")
	if err != nil {
		t.Fatalf("get progress: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}

	token := signUp("eve@example.com")
	req, _ := http.NewRequest(http.MethodGet, server.URL+"/api/progress", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	authed, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get progress: %v", err)
	}
	defer authed.Body.Close()
	if authed.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", authed.StatusCode)
	}
	var rows []domain.ModuleProgress
	if err := json.NewDecoder(authed.Body).Decode(&rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no progress rows, got %v", rows)
	}
}

func TestRecordQuizScore(t *testing.T) {
	server, signUp := newAPIServer(t)
	token := signUp("frank@example.com")

	body := bytes.NewReader([]byte(`{"score":2}`))
	req, _ := http.NewRequest(http.MethodPost, server.URL+"/api/modules/m1/quiz/score", body)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("record score: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	listReq, _ := http.NewRequest(http.MethodGet, server.URL+"/api/progress", nil)
	listReq.Header.Set("Authorization", "Bearer "+token)
	listResp, err := http.DefaultClient.Do(listReq)
	if err != nil {
		t.Fatalf("list progress: %v", err)
	}
	defer listResp.Body.Close()
	var rows []domain.ModuleProgress
	if err := json.NewDecoder(listResp.Body).Decode(&rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 1 || rows[0].Score != 2 || rows[0].ModuleID != "m1" {
		t.Fatalf("expected recorded score, got %v", rows)
	}
}
