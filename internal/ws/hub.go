package ws

import (
	"encoding/json"
	"sync"

	"github.com/valorin/storefront-backend/internal/app/model"
	"github.com/valorin/storefront-backend/pkg/logger"
)

// Event is the envelope pushed to connected storefront UIs.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

const (
	EventCartUpdated     = "cart_updated"
	EventWishlistUpdated = "wishlist_updated"
)

// Hub fans cart and wishlist updates out to every connected client. It
// implements the store subscriber contract so the stores stay unaware of
// the transport.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		broadcast:  make(chan []byte, 256),
	}
}

// Run processes register, unregister and broadcast events. Call it once
// from a dedicated goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			logger.Info("WebSocket client registered", map[string]interface{}{
				"total_clients": total,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			logger.Info("WebSocket client unregistered", map[string]interface{}{
				"total_clients": total,
			})

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Send buffer full, drop the client asynchronously
					go h.Unregister(client)
					logger.Warn("Client send buffer full, disconnecting", nil)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// publish marshals an event and queues it for broadcast. Slow consumers
// never block the stores: if the queue is full the event is dropped and
// clients catch up from the next snapshot.
func (h *Hub) publish(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal event", err, map[string]interface{}{
			"type": event.Type,
		})
		return
	}

	select {
	case h.broadcast <- data:
	default:
		logger.Warn("Broadcast channel full, event dropped", map[string]interface{}{
			"type": event.Type,
		})
	}
}

// CartUpdated pushes a fresh cart snapshot to every client.
func (h *Hub) CartUpdated(state model.CartState) {
	h.publish(Event{
		Type: EventCartUpdated,
		Data: map[string]interface{}{
			"line_items":     state.LineItems,
			"remote_cart_id": state.RemoteCartID,
			"checkout_url":   state.CheckoutURL,
			"total_items":    state.TotalItems(),
			"is_open":        state.IsOpen,
			"is_loading":     state.IsLoading,
			"is_syncing":     state.IsSyncing,
		},
	})
}

// WishlistUpdated pushes the current wishlist to every client.
func (h *Hub) WishlistUpdated(items []model.WishlistItem) {
	h.publish(Event{
		Type: EventWishlistUpdated,
		Data: map[string]interface{}{
			"items": items,
			"count": len(items),
		},
	})
}
