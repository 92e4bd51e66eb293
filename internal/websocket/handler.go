package websocket

import (
	"context"
	"sync"

	"docqa-be/internal/service"
	"docqa-be/pkg/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// Handler upgrades /ws/chat/:threadId and runs the socket against chat.
type Handler struct {
	hub  *Hub
	chat service.IChatService
}

func NewHandler(hub *Hub, chat service.IChatService) *Handler {
	return &Handler{hub: hub, chat: chat}
}

func (h *Handler) RegisterRoutes(r fiber.Router, guard fiber.Handler) {
	r.Get("/ws/chat/:threadId", guard, h.Upgrade)
}

func (h *Handler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	threadID := store.NormalizeThreadID(c.Params("threadId"))

	return websocket.New(func(conn *websocket.Conn) {
		h.hub.logger.Info("Handler", "Starting chat socket", map[string]interface{}{"thread_id": threadID})
		ServeWs(h.hub, h.chat, conn, threadID)
		h.hub.logger.Info("Handler", "Chat socket ended", map[string]interface{}{"thread_id": threadID})
	})(c)
}

// ServeWs runs a client until its peer disconnects. The connection is only
// valid while this call is active, so it waits for the workers to finish.
func ServeWs(hub *Hub, chat service.IChatService, conn *websocket.Conn, threadID string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := newClient(hub, conn, threadID)
	if !hub.Register(ctx, client) {
		return
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		client.writePump()
	}()
	go func() {
		defer wg.Done()
		client.askWorker(ctx, chat)
	}()

	client.readPump()
	cancel()
	hub.Unregister(client)
	_ = conn.Close()
	wg.Wait()
}
