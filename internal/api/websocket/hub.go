package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/Techne-Finance/techne-sub000/internal/logger"
)

// Hub manages all active WebSocket connections
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Broadcast messages to all clients
	broadcast chan *Message

	log *logger.Logger

	// Mutex for thread-safe operations
	mu sync.RWMutex
}

// Message represents a WebSocket message
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewHub creates a new Hub
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 256), // Buffered channel
		log:        log.Named("ws"),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Info("🔌 WebSocket client connected. Total clients: %d", total)

			// Send welcome message
			h.sendToClient(client, &Message{
				Type:      "connected",
				Data:      map[string]interface{}{"message": "Connected to pools stream"},
				Timestamp: time.Now(),
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.log.Info("🔌 WebSocket client disconnected. Total clients: %d", len(h.clients))
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
					// Message sent successfully
				default:
					// Client's send buffer is full, close connection
					close(client.send)
					delete(h.clients, client)
					h.log.Warn("⚠️ Client send buffer full, disconnecting")
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast sends a message to all connected clients
func (h *Hub) Broadcast(messageType string, data interface{}) {
	message := &Message{
		Type:      messageType,
		Data:      data,
		Timestamp: time.Now(),
	}

	select {
	case h.broadcast <- message:
		// Message queued successfully
	default:
		h.log.Warn("⚠️ Broadcast channel full, message dropped")
	}
}

// sendToClient sends a message to a specific client
func (h *Hub) sendToClient(client *Client, message *Message) {
	select {
	case client.send <- message:
		// Message sent
	default:
		// Client buffer full, skip
		h.log.Warn("⚠️ Client buffer full, message skipped")
	}
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// MarshalJSON formats the timestamp as RFC3339
func (m *Message) MarshalJSON() ([]byte, error) {
	type Alias Message
	return json.Marshal(&struct {
		Timestamp string `json:"timestamp"`
		*Alias
	}{
		Timestamp: m.Timestamp.Format(time.RFC3339),
		Alias:     (*Alias)(m),
	})
}
