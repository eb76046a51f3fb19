package websocket

import (
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/Techne-Finance/techne-sub000/internal/api/auth"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin перевіряється на рівні CORS middleware
		return true
	},
}

// Handler handles WebSocket upgrade requests
type Handler struct {
	hub        *Hub
	jwtManager *auth.JWTManager
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, jwtManager *auth.JWTManager) *Handler {
	return &Handler{
		hub:        hub,
		jwtManager: jwtManager,
	}
}

// ServeStream handles WebSocket connections for live pool refresh events.
// Токен передається через query параметр, бо браузерний WebSocket API
// не підтримує кастомні headers.
func (h *Handler) ServeStream(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.jwtManager.ValidateToken(token)
	if err != nil {
		http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
		return
	}

	// Upgrade HTTP connection to WebSocket
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.hub.log.Warn("WebSocket upgrade error: %v", err)
		return
	}

	client := NewClient(conn, h.hub, fmt.Sprintf("user-%d", claims.UserID))

	// Register client with hub
	h.hub.register <- client

	// Start client pumps
	client.Run()

	h.hub.log.Info("✅ WebSocket client connected: %s", claims.Email)
}

// GetHub returns the WebSocket hub
func (h *Handler) GetHub() *Hub {
	return h.hub
}
