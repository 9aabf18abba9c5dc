package chatws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/acoder25/Electronics-marketplace/internal/models"
	websocket "github.com/gofiber/contrib/websocket"
)

// Hub is the presence registry: at most one live connection per user id.
// Fiber handlers run on OS threads, so the map is mutex-guarded; identity is
// checked on removal so a stale disconnect can never evict a newer connection
// for the same user.
type Hub struct {
	mu      sync.Mutex
	clients map[int64]*Client
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID int64
	send   chan []byte
	closed bool // guarded by hub.mu
}

type sender interface {
	SendMessage(
		ctx context.Context,
		senderID int64,
		receiverID int64,
		productID *int64,
		body string,
	) (*models.Message, error)
}

// InboundFrame is what a connected client sends to start a delivery.
type InboundFrame struct {
	ReceiverID int64  `json:"receiverId"`
	Message    string `json:"message"`
	ProductID  *int64 `json:"productId"`
}

// Event is the push frame a receiver sees. The sender never receives an echo
// of its own message; its client reflects the send optimistically.
type Event struct {
	Type      string `json:"type"`
	SenderID  int64  `json:"senderId,omitempty"`
	Message   string `json:"message"`
	ProductID *int64 `json:"productId,omitempty"`
	Timestamp string `json:"timestamp"`
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[int64]*Client),
	}
}

func NewClient(hub *Hub, conn *websocket.Conn, userID int64) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, 32),
	}
}

// Register maps the user id to this client, replacing any previous handle.
// The superseded handle is abandoned, not closed; it is released when its own
// read loop ends and unregisters it.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.userID] = client
}

// Unregister removes the mapping only if it still points at this exact
// client, then releases the client's send channel either way so its write
// pump exits.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.clients[client.userID]; ok && current == client {
		delete(h.clients, client.userID)
	}
	if !client.closed {
		client.closed = true
		close(client.send)
	}
}

// Lookup reports the live client for a user id; nil means offline.
func (h *Hub) Lookup(userID int64) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.clients[userID]
}

// Deliver pushes an event to the receiver if they are online. Delivery is
// best-effort: an offline receiver or a full send buffer drops the push and
// the receiver catches up from the store on its next pull.
func (h *Hub) Deliver(receiverID int64, event *Event) bool {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("chat hub encode event: %v", err)
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[receiverID]
	if !ok || client.closed {
		return false
	}

	select {
	case client.send <- payload:
		return true
	default:
		return false
	}
}

// ReadPump handles one inbound frame to completion (persist, then a single
// push attempt) before reading the next. Malformed frames are logged and
// dropped; they never terminate the connection.
func (c *Client) ReadPump(service sender) {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var frame InboundFrame
		if err := json.Unmarshal(payload, &frame); err != nil {
			log.Printf("chat ws: dropping malformed frame from user %d: %v", c.userID, err)
			c.writeError("invalid message payload")
			continue
		}

		message, err := service.SendMessage(
			context.Background(),
			c.userID,
			frame.ReceiverID,
			frame.ProductID,
			frame.Message,
		)
		if err != nil {
			c.writeError("failed to send message")
			continue
		}

		c.hub.Deliver(message.ReceiverID, &Event{
			Type:      "message",
			SenderID:  message.SenderID,
			Message:   message.Body,
			ProductID: message.ProductID,
			Timestamp: message.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
}

func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

func (c *Client) writeError(message string) {
	payload, err := json.Marshal(Event{
		Type:      "error",
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}

	c.hub.mu.Lock()
	defer c.hub.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}
