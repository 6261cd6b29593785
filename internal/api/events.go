package api

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/intecsystems/nda-survey/internal/models"
)

// Event types broadcast to admin review clients.
const (
	EventSurveyCreated = "survey.created"
	EventSurveyStatus  = "survey.status"
)

// Event is a survey lifecycle notification pushed over the admin
// websocket. It carries just enough for the dashboard to decide whether
// to refresh, not the full record.
type Event struct {
	Type     string              `json:"type"`
	ID       string              `json:"id"`
	Status   models.SurveyStatus `json:"status"`
	BankName string              `json:"bankName"`
	At       time.Time           `json:"at"`
}

// NewEvent builds an event from a survey record
func NewEvent(eventType string, s *models.Survey) Event {
	return Event{
		Type:     eventType,
		ID:       s.ID,
		Status:   s.Status,
		BankName: s.NdaDetails.BankName,
		At:       time.Now().UTC(),
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// EventHub fans survey events out to connected websocket clients. Slow
// clients are dropped rather than blocking the broadcaster.
type EventHub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]chan Event
}

// NewEventHub creates an empty hub
func NewEventHub() *EventHub {
	return &EventHub{
		clients: make(map[*websocket.Conn]chan Event),
	}
}

// Broadcast queues an event for every connected client
func (h *EventHub) Broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn, ch := range h.clients {
		select {
		case ch <- event:
		default:
			slog.Warn("dropping event for slow websocket client", "remote_addr", conn.RemoteAddr().String())
		}
	}
}

// ClientCount returns the number of connected clients
func (h *EventHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *EventHub) register(conn *websocket.Conn) chan Event {
	ch := make(chan Event, 16)
	h.mu.Lock()
	h.clients[conn] = ch
	h.mu.Unlock()
	return ch
}

func (h *EventHub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	if ch, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		close(ch)
	}
	h.mu.Unlock()
}

func (s *Server) handleEventsWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	ch := s.events.register(conn)
	defer s.events.unregister(conn)

	slog.Info("admin events websocket connected", "remote_addr", conn.RemoteAddr().String())

	// Drain client frames so pings and close messages are processed
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			slog.Info("admin events websocket disconnected", "remote_addr", conn.RemoteAddr().String())
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				slog.Debug("failed to send event", "error", err)
				return
			}
		}
	}
}
