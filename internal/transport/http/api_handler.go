package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"atelier-learning-service/internal/app"
	"atelier-learning-service/internal/auth"
	"atelier-learning-service/internal/domain"
)

// APIHandler exposes the catalogue, auth, and dashboard endpoints as JSON.
type APIHandler struct {
	catalog  *app.Catalog
	progress app.ProgressRepository
	auth     *auth.Service
}

func NewAPIHandler(catalog *app.Catalog, progress app.ProgressRepository, authService *auth.Service) *APIHandler {
	return &APIHandler{catalog: catalog, progress: progress, auth: authService}
}

// Register mounts all routes on the mux.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/modules", h.listModules)
	mux.HandleFunc("GET /api/modules/{id}", h.moduleDetail)
	mux.HandleFunc("GET /api/modules/{id}/quiz", h.quizQuestions)
	mux.HandleFunc("POST /api/modules/{id}/quiz/score", h.recordQuizScore)
	mux.HandleFunc("POST /api/auth/signup", h.signUp)
	mux.HandleFunc("POST /api/auth/signin", h.signIn)
	mux.HandleFunc("GET /api/progress", h.listProgress)
}

func (h *APIHandler) listModules(w http.ResponseWriter, r *http.Request) {
	modules, err := h.catalog.ListModules(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to load modules")
		return
	}
	search := r.URL.Query().Get("search")
	category := r.URL.Query().Get("category")
	writeJSON(w, http.StatusOK, app.FilterModules(modules, search, category))
}

func (h *APIHandler) moduleDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := h.catalog.ModuleDetail(r.Context(), r.PathValue("id"))
	if errors.Is(err, domain.ErrModuleNotFound) {
		writeError(w, http.StatusNotFound, "module not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to load module")
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *APIHandler) quizQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.catalog.QuizQuestions(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to load quiz")
		return
	}
	if len(questions) == 0 {
		// A module without questions has no quiz, which is distinct from a
		// transport failure.
		writeError(w, http.StatusNotFound, domain.ErrNoQuiz.Error())
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

func (h *APIHandler) recordQuizScore(w http.ResponseWriter, r *http.Request) {
	session, ok := h.bearerSession(w, r)
	if !ok {
		return
	}
	var body struct {
		Score int `json:"score"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Score < 0 {
		writeError(w, http.StatusBadRequest, "invalid score payload")
		return
	}
	if err := h.progress.UpsertQuizScore(r.Context(), session.UserID, r.PathValue("id"), body.Score); err != nil {
		writeError(w, http.StatusBadGateway, "failed to record score")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) signUp(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		DisplayName string `json:"displayName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	session, token, err := h.auth.SignUp(r.Context(), body.Email, body.Password, body.DisplayName)
	if errors.Is(err, domain.ErrEmailTaken) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, signedSession{Session: session, Token: token})
}

func (h *APIHandler) signIn(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	session, token, err := h.auth.SignIn(r.Context(), body.Email, body.Password)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusBadGateway, "sign-in failed")
		return
	}
	writeJSON(w, http.StatusOK, signedSession{Session: session, Token: token})
}

func (h *APIHandler) listProgress(w http.ResponseWriter, r *http.Request) {
	session, ok := h.bearerSession(w, r)
	if !ok {
		return
	}
	rows, err := h.progress.ListModuleProgress(r.Context(), session.UserID)
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to load progress")
		return
	}
	if rows == nil {
		rows = []domain.ModuleProgress{}
	}
	writeJSON(w, http.StatusOK, rows)
}

type signedSession struct {
	Session auth.Session `json:"session"`
	Token   string       `json:"token"`
}

func (h *APIHandler) bearerSession(w http.ResponseWriter, r *http.Request) (auth.Session, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return auth.Session{}, false
	}
	session, err := h.auth.Verify(token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return auth.Session{}, false
	}
	return session, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorPayload{Message: message})
}
