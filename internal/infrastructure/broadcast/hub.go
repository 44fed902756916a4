package broadcast

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"sentinlk/internal/domain"
	"sentinlk/internal/ports"
)

const writeTimeout = 5 * time.Second

// Hub fans accepted signals out to live websocket subscribers. Delivery is
// best-effort: a dead subscriber is pruned and never blocks the others or
// the pipeline.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu          sync.Mutex
	subscribers map[*websocket.Conn]struct{}
}

var _ ports.Broadcaster = (*Hub)(nil)

// NewHub builds an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:      logger,
		subscribers: map[*websocket.Conn]struct{}{},
	}
}

// ServeHTTP upgrades the request and keeps the connection registered until
// the subscriber goes away. Inbound frames are drained and discarded.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		if h.logger != nil {
			h.logger.Warn("websocket upgrade failed", "error", err)
		}
		return
	}

	h.register(conn)
	if h.logger != nil {
		h.logger.Info("dashboard connected", "subscribers", h.Subscribers())
	}

	go func() {
		defer h.unregister(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Publish pushes one signal to every subscriber, dropping the ones that fail.
func (h *Hub) Publish(ctx context.Context, signal domain.Signal) error {
	payload := map[string]any{
		"link":       signal.Link,
		"timestamp":  signal.Timestamp,
		"source":     signal.Source,
		"headline":   signal.Headline,
		"risk_score": signal.RiskScore,
		"priority":   signal.Priority,
		"reason":     signal.Reason,
		"vectors":    signal.Vectors,
	}

	for _, conn := range h.snapshot() {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(payload); err != nil {
			h.unregister(conn)
			if h.logger != nil {
				h.logger.Debug("pruned dead subscriber", "error", err)
			}
		}
	}

	return nil
}

// Subscribers reports the current connection count.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.subscribers {
		_ = conn.Close()
	}
	h.subscribers = map[*websocket.Conn]struct{}{}
}

func (h *Hub) register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribers[conn] = struct{}{}
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subscribers[conn]; ok {
		delete(h.subscribers, conn)
		_ = conn.Close()
	}
}

func (h *Hub) snapshot() []*websocket.Conn {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns := make([]*websocket.Conn, 0, len(h.subscribers))
	for conn := range h.subscribers {
		conns = append(conns, conn)
	}
	return conns
}
