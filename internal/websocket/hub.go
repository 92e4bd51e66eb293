package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"docqa-be/internal/dto"
	"docqa-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "docqa:answers"

// clusterFrame is what instances exchange over redis. Origin lets an
// instance skip frames it published itself.
type clusterFrame struct {
	Origin   string          `json:"origin"`
	ThreadId string          `json:"thread_id"`
	Message  json.RawMessage `json:"message"`
}

// Hub tracks the sockets listening on each thread and fans answers out to
// them, across instances when redis is configured.
type Hub struct {
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	stopped    chan struct{}

	rdb        *redis.Client
	instanceID string
	logger     logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stopped:    make(chan struct{}),
		rdb:        rdb,
		instanceID: uuid.NewString(),
		logger:     log,
	}
}

// Run owns client membership until ctx ends, then closes every socket's
// outbound queue.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)
	if h.rdb != nil {
		go h.subscribe(ctx)
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			set, ok := h.clients[client.threadID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.threadID] = set
			}
			set[client] = struct{}{}
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"thread_id": client.threadID})

		case client := <-h.unregister:
			h.mu.Lock()
			if set, ok := h.clients[client.threadID]; ok {
				if _, ok := set[client]; ok {
					delete(set, client)
					close(client.send)
				}
				if len(set) == 0 {
					delete(h.clients, client.threadID)
				}
			}
			h.mu.Unlock()
			h.logger.Info("Hub", "Client unregistered", map[string]interface{}{"thread_id": client.threadID})

		case <-ctx.Done():
			h.mu.Lock()
			for thread, set := range h.clients {
				for client := range set {
					close(client.send)
				}
				delete(h.clients, thread)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Register hands a client to the hub. It reports false if the hub has
// stopped or ctx ended first.
func (h *Hub) Register(ctx context.Context, c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-ctx.Done():
		return false
	case <-h.stopped:
		return false
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.stopped:
	}
}

// Listeners reports how many local sockets follow threadID.
func (h *Hub) Listeners(threadID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[threadID])
}

// Deliver sends msg to every socket on its thread, here and on peers.
func (h *Hub) Deliver(ctx context.Context, msg dto.WsAnswerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Hub", "Failed to encode answer", map[string]interface{}{"error": err.Error()})
		return
	}

	h.deliverLocal(msg.ThreadId, data)

	if h.rdb == nil {
		return
	}
	frame, _ := json.Marshal(clusterFrame{Origin: h.instanceID, ThreadId: msg.ThreadId, Message: data})
	if err := h.rdb.Publish(ctx, clusterChannel, frame).Err(); err != nil {
		h.logger.Warn("Hub", "Cluster publish failed", map[string]interface{}{
			"thread_id": msg.ThreadId,
			"error":     err.Error(),
		})
	}
}

// reply sends msg to a single client if it is still registered.
func (h *Hub) reply(c *Client, msg dto.WsAnswerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c.threadID][c]; !ok {
		return
	}
	h.offer(c, data)
}

func (h *Hub) deliverLocal(threadID string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[threadID] {
		h.offer(client, data)
	}
}

// offer must be called with h.mu held.
func (h *Hub) offer(c *Client, data []byte) {
	select {
	case c.send <- data:
	default:
		h.logger.Warn("Hub", "Client send buffer full, dropping frame", map[string]interface{}{"thread_id": c.threadID})
	}
}

func (h *Hub) subscribe(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var frame clusterFrame
			if err := json.Unmarshal([]byte(msg.Payload), &frame); err != nil {
				h.logger.Warn("Hub", "Dropping malformed cluster frame", map[string]interface{}{"error": err.Error()})
				continue
			}
			if frame.Origin == h.instanceID {
				continue
			}
			h.deliverLocal(frame.ThreadId, frame.Message)
		}
	}
}
