package simbackend

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/fleetrent/fleetrent-client/internal/rental"
)

// ChangeEvent is one notice on the reservation change feed.
type ChangeEvent struct {
	Type          string        `json:"type"`
	ReservationID int64         `json:"reservationId"`
	Status        rental.Status `json:"status"`
}

const EventReservationChanged = "reservation_changed"

// Hub fans reservation change notices out to connected feed subscribers.
// Single-instance: the simulator never runs more than one copy.
type Hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[*websocket.Conn]bool)}
}

// Add registers a subscriber connection.
func (h *Hub) Add(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = true
	h.mu.Unlock()
}

// Remove drops a subscriber connection.
func (h *Hub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
}

// Broadcast sends the event to every subscriber. Dead connections are
// dropped on write failure.
func (h *Hub) Broadcast(ev ChangeEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode change event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Warn().Err(err).Msg("Dropping dead feed subscriber")
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

// Count returns the number of connected subscribers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}
