package stream

import (
	"log/slog"
	"sync"

	"github.com/softrender/softrender/internal/document"
)

// Hub tracks the clients watching each scene so document changes can be
// pushed to them.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]map[string]*Client // sceneID -> clientID -> client
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[string]*Client)}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.SceneID]
	if !ok {
		room = make(map[string]*Client)
		h.rooms[client.SceneID] = room
	}
	room[client.ClientID] = client
	h.mu.Unlock()

	slog.Info("client joined", "client", client.ClientID, "scene", client.SceneID)
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.SceneID]
	if !ok || room[client.ClientID] != client {
		h.mu.Unlock()
		return
	}
	delete(room, client.ClientID)
	close(client.reload)
	if len(room) == 0 {
		delete(h.rooms, client.SceneID)
	}
	h.mu.Unlock()

	slog.Info("client left", "client", client.ClientID, "scene", client.SceneID)
}

// Reload hands doc to every client of sceneID and returns how many there
// were. A client that has not picked up an earlier reload gets the newer
// document instead.
func (h *Hub) Reload(sceneID string, doc *document.Document) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	room := h.rooms[sceneID]
	for _, c := range room {
		select {
		case <-c.reload:
		default:
		}
		c.reload <- doc
	}
	return len(room)
}

// Count returns the number of clients watching sceneID.
func (h *Hub) Count(sceneID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[sceneID])
}

// Stop disconnects every client.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sceneID, room := range h.rooms {
		for _, c := range room {
			close(c.reload)
		}
		delete(h.rooms, sceneID)
	}
}
