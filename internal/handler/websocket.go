package handler

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gleam/dashboard/internal/dto"
	"github.com/gleam/dashboard/internal/middleware"
	"github.com/gleam/dashboard/internal/service"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// ============================================================================
// WEBSOCKET HUB
// ============================================================================

// Client is one websocket connection watching a forum thread.
type Client struct {
	Conn     *websocket.Conn
	ThreadID string
	UserID   string
	Send     chan []byte
}

// Hub fans thread events out to the clients watching that thread.
type Hub struct {
	// Clients grouped by thread ID
	threads map[string]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	broadcast  chan *BroadcastMessage

	mu sync.RWMutex
}

// BroadcastMessage is an event for every watcher of one thread.
type BroadcastMessage struct {
	ThreadID string
	Event    dto.WSEvent
}

func NewHub() *Hub {
	return &Hub{
		threads:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *BroadcastMessage, 256),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			watchers, ok := h.threads[client.ThreadID]
			if !ok {
				watchers = make(map[*Client]struct{})
				h.threads[client.ThreadID] = watchers
			}
			watchers[client] = struct{}{}
			h.mu.Unlock()
			log.Printf("[WS] User %s watching thread %s", client.UserID, client.ThreadID)

		case client := <-h.unregister:
			h.mu.Lock()
			if watchers, ok := h.threads[client.ThreadID]; ok {
				if _, ok := watchers[client]; ok {
					delete(watchers, client)
					close(client.Send)
				}
				if len(watchers) == 0 {
					delete(h.threads, client.ThreadID)
				}
			}
			h.mu.Unlock()
			log.Printf("[WS] User %s left thread %s", client.UserID, client.ThreadID)

		case msg := <-h.broadcast:
			data, err := json.Marshal(msg.Event)
			if err != nil {
				log.Printf("[WS] Error marshaling event: %v", err)
				continue
			}

			h.mu.RLock()
			for client := range h.threads[msg.ThreadID] {
				select {
				case client.Send <- data:
				default:
					// Buffer full, skip
				}
			}
			h.mu.RUnlock()
		}
	}
}

// BroadcastToThread queues event for every client watching threadID.
func (h *Hub) BroadcastToThread(threadID string, event dto.WSEvent) {
	h.broadcast <- &BroadcastMessage{ThreadID: threadID, Event: event}
}

// Watchers returns how many clients are connected to the thread.
func (h *Hub) Watchers(threadID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.threads[threadID])
}

// ============================================================================
// WEBSOCKET HANDLER
// ============================================================================

type WebSocketHandler struct {
	Hub   *Hub
	forum *service.ForumService
}

// NewWebSocketHandler expects forum to broadcast through hub.
func NewWebSocketHandler(hub *Hub, forum *service.ForumService) *WebSocketHandler {
	return &WebSocketHandler{Hub: hub, forum: forum}
}

// HandleThread streams live updates for the thread in the :id route param. The thread is
// polled upstream for as long as at least one client stays connected.
func (h *WebSocketHandler) HandleThread(c *websocket.Conn) {
	threadID := c.Params("id")
	userID, _ := c.Locals("userID").(string)
	token, _ := c.Locals("upstreamToken").(string)
	if threadID == "" || userID == "" {
		c.Close()
		return
	}

	client := &Client{
		Conn:     c,
		ThreadID: threadID,
		UserID:   userID,
		Send:     make(chan []byte, 64),
	}

	h.Hub.register <- client
	h.forum.Watch(threadID, token)
	defer h.forum.Unwatch(threadID)

	if snap, ok := h.forum.Snapshot(threadID); ok {
		h.sendDirect(client, dto.WSEvent{
			Type:    service.EventThreadUpdated,
			Payload: dto.WSThreadUpdated{ThreadID: dto.ID(threadID), Thread: *snap},
		})
	}

	go h.writePump(client)
	h.readPump(client)
}

func (h *WebSocketHandler) sendDirect(client *Client, event dto.WSEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	select {
	case client.Send <- data:
	default:
	}
}

// readPump pumps messages from the WebSocket connection to the hub
func (h *WebSocketHandler) readPump(client *Client) {
	defer func() {
		h.Hub.unregister <- client
		client.Conn.Close()
	}()

	for {
		_, message, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] Error reading message: %v", err)
			}
			break
		}

		var msg struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}

		if msg.Type == "ping" {
			h.sendDirect(client, dto.WSEvent{Type: "pong"})
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (h *WebSocketHandler) writePump(client *Client) {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send:
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			// Send ping to keep connection alive
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ============================================================================
// FIBER UPGRADE HANDLER
// ============================================================================

// WebSocketUpgrade rejects plain HTTP requests. It runs after the auth middleware, whose
// locals are carried into the websocket connection.
func (h *WebSocketHandler) WebSocketUpgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			if middleware.GetUserID(c) == "" {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse(
					"UNAUTHORIZED", "Token diperlukan untuk WebSocket",
				))
			}
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}
