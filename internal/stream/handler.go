package stream

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/coder/websocket"
	"github.com/gorilla/mux"

	"github.com/softrender/softrender/internal/engine"
	"github.com/softrender/softrender/internal/scenes"
	"github.com/softrender/softrender/internal/typeid"
)

type SceneLoader interface {
	Engine(ctx context.Context, sceneID string) (*engine.Engine, error)
}

type TokenValidator interface {
	Enabled() bool
	ValidateToken(token string) (string, error)
}

type Handler struct {
	hub     *Hub
	scenes  SceneLoader
	auth    TokenValidator
	origins []string
}

// NewHandler creates the websocket handler for GET /ws/scenes/{sceneId}.
// origins are full URLs such as http://localhost:5173.
func NewHandler(hub *Hub, scenes SceneLoader, auth TokenValidator, origins []string) *Handler {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
		} else {
			patterns = append(patterns, o)
		}
	}
	return &Handler{hub: hub, scenes: scenes, auth: auth, origins: patterns}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sceneID := mux.Vars(r)["sceneId"]

	// Browsers cannot set headers on websocket requests, so the token
	// comes in the query string.
	if h.auth != nil && h.auth.Enabled() {
		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
		if _, err := h.auth.ValidateToken(token); err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
	}

	eng, err := h.scenes.Engine(r.Context(), sceneID)
	if err != nil {
		if errors.Is(err, scenes.ErrNotFound) {
			http.Error(w, "scene not found", http.StatusNotFound)
			return
		}
		slog.Error("load scene for stream", "error", err, "scene", sceneID)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.origins,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	client := NewClient(h.hub, conn, eng, sceneID, typeid.NewClientID())
	h.hub.Register(client)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}
