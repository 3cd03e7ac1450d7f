package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"atelier-learning-service/internal/app"
	"atelier-learning-service/internal/auth"
	"atelier-learning-service/internal/domain"
)

// WSHandler streams lesson-progress snapshots for one module view and accepts
// toggle commands over the same connection.
type WSHandler struct {
	auth     *auth.Service
	catalog  *app.Catalog
	progress app.ProgressRepository
	feed     app.ProgressFeed
	upgrader websocket.Upgrader
}

func NewWSHandler(authService *auth.Service, catalog *app.Catalog, progress app.ProgressRepository, feed app.ProgressFeed) *WSHandler {
	return &WSHandler{
		auth:     authService,
		catalog:  catalog,
		progress: progress,
		feed:     feed,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type togglePayload struct {
	LessonID string `json:"lessonId"`
}

type toggleResult struct {
	LessonID  string `json:"lessonId"`
	Completed bool   `json:"completed"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and wires it into one module's progress view.
// The store (and its feed subscription) lives exactly as long as the socket.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	moduleID := r.URL.Query().Get("moduleId")
	token := r.URL.Query().Get("token")
	if moduleID == "" || token == "" {
		http.Error(w, "missing moduleId or token", http.StatusBadRequest)
		return
	}

	session, err := h.auth.Verify(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	detail, err := h.catalog.ModuleDetail(r.Context(), moduleID)
	if errors.Is(err, domain.ErrModuleNotFound) {
		http.Error(w, "module not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "module lookup failed", http.StatusBadGateway)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	store := app.NewProgressStore(session, moduleID, len(detail.Lessons), h.progress, h.feed)
	defer store.Close()
	if err := store.Start(r.Context()); err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	updates, cancelWatch := store.Watch()
	defer cancelWatch()

	go func() {
		// Bulk read merges with whatever the feed delivered first; an error
		// fails open to an empty set and is reported on the socket below.
		if err := store.Load(r.Context()); err != nil && !errors.Is(err, domain.ErrStoreClosed) {
			log.Printf("progress load failed (fail-open): %v", err)
		}
	}()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case snapshot, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "progress", Payload: snapshot}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "toggle":
			var payload togglePayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.LessonID == "" {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid toggle payload"}}
				continue
			}
			completed, err := store.Toggle(r.Context(), payload.LessonID)
			if err != nil {
				// Optimistic state already moved; surface the write failure.
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
			}
			send <- outboundMessage[any]{Type: "toggleResult", Payload: toggleResult{
				LessonID:  payload.LessonID,
				Completed: completed,
			}}
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}
