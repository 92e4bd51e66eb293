package websocket

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"docqa-be/internal/dto"
	"docqa-be/internal/service"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
	sendBuffer     = 64
	questionQueue  = 8
)

type inboundFrame struct {
	Question string `json:"question"`
}

// parseQuestion accepts either {"question": "..."} or the bare question text.
func parseQuestion(raw []byte) string {
	var frame inboundFrame
	if err := json.Unmarshal(raw, &frame); err == nil {
		return strings.TrimSpace(frame.Question)
	}
	return strings.TrimSpace(string(raw))
}

// Client is one socket following a thread. Questions it sends are answered
// in arrival order.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	threadID  string
	send      chan []byte
	questions chan string
}

func newClient(hub *Hub, conn *websocket.Conn, threadID string) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		threadID:  threadID,
		send:      make(chan []byte, sendBuffer),
		questions: make(chan string, questionQueue),
	}
}

// readPump queues questions until the peer goes away. It closes the
// question queue on exit.
func (c *Client) readPump() {
	defer close(c.questions)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("Client", "Socket closed unexpectedly", map[string]interface{}{
					"thread_id": c.threadID,
					"error":     err.Error(),
				})
			}
			return
		}

		question := parseQuestion(raw)
		if question == "" {
			c.hub.reply(c, dto.WsAnswerMessage{ThreadId: c.threadID, Error: "question is required"})
			continue
		}

		select {
		case c.questions <- question:
		default:
			c.hub.reply(c, dto.WsAnswerMessage{ThreadId: c.threadID, Question: question, Error: "too many pending questions"})
		}
	}
}

// askWorker answers queued questions one at a time and broadcasts each
// answer to the thread.
func (c *Client) askWorker(ctx context.Context, chat service.IChatService) {
	for question := range c.questions {
		answer, err := chat.Ask(ctx, &dto.AskRequest{ThreadId: c.threadID, Question: question})
		if err != nil {
			c.hub.reply(c, dto.WsAnswerMessage{ThreadId: c.threadID, Question: question, Error: err.Error()})
			continue
		}
		c.hub.Deliver(ctx, dto.WsAnswerMessage{
			ThreadId:  c.threadID,
			Question:  question,
			Reasoning: answer.Reasoning,
			Response:  answer.Response,
		})
	}
}

// writePump drains the outbound queue until the hub closes it.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
