package feed

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"task-tracking/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/redis/go-redis/v9"
)

const channelName = "task_updates"

// Update is the event pushed to live task-list subscribers after a
// transition commits.
type Update struct {
	TaskID       string    `json:"task_id"`
	TrackingCode string    `json:"tracking_code"`
	BookingID    uint      `json:"booking_id"`
	ProviderID   uint      `json:"provider_id"`
	Status       string    `json:"status"`
	Note         string    `json:"note"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Hub fans committed task updates out to websocket subscribers, keyed by
// provider id. With REDIS_ADDR set, updates travel through a redis pub/sub
// channel so every app instance sees them; without it the hub broadcasts
// in-process only.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[uint]map[*websocket.Conn]struct{}
	rdb         *redis.Client
}

func NewHub() *Hub {
	h := &Hub{
		subscribers: make(map[uint]map[*websocket.Conn]struct{}),
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		h.rdb = redis.NewClient(&redis.Options{Addr: addr})
		go h.listen(context.Background())
		logger.Success("Task feed bridged over redis at " + addr)
	}

	return h
}

// Subscribe registers a provider's websocket connection.
func (h *Hub) Subscribe(providerID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subscribers[providerID] == nil {
		h.subscribers[providerID] = make(map[*websocket.Conn]struct{})
	}
	h.subscribers[providerID][conn] = struct{}{}
}

// Unsubscribe drops a connection. Safe to call twice.
func (h *Hub) Unsubscribe(providerID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.subscribers[providerID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.subscribers, providerID)
		}
	}
}

// Publish delivers an update to subscribers. Best effort: feed delivery
// failures are logged, never surfaced to the transition caller.
func (h *Hub) Publish(u Update) {
	if h.rdb != nil {
		payload, err := json.Marshal(u)
		if err != nil {
			logger.Error("Failed to marshal feed update", err)
			return
		}
		if err := h.rdb.Publish(context.Background(), channelName, payload).Err(); err != nil {
			logger.Error("Failed to publish feed update to redis", err)
			h.broadcast(u)
		}
		return
	}

	h.broadcast(u)
}

func (h *Hub) listen(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, channelName)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var u Update
		if err := json.Unmarshal([]byte(msg.Payload), &u); err != nil {
			logger.Error("Failed to decode feed update from redis", err)
			continue
		}
		h.broadcast(u)
	}
}

func (h *Hub) broadcast(u Update) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.subscribers[u.ProviderID]))
	for conn := range h.subscribers[u.ProviderID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.WriteJSON(u); err != nil {
			h.Unsubscribe(u.ProviderID, conn)
			conn.Close()
		}
	}
}
