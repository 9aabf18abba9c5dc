package chatclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	websocket "github.com/fasthttp/websocket"
)

// SendFrame is the message a client submits, over the live connection or the
// HTTP fallback. Both routes accept the same shape.
type SendFrame struct {
	ReceiverID int64  `json:"receiverId"`
	Message    string `json:"message"`
	ProductID  *int64 `json:"productId,omitempty"`
}

// PushEvent is a frame arriving on the live connection: type "message" for a
// delivery, type "error" when the server rejected one of our live sends.
type PushEvent struct {
	Type      string `json:"type"`
	SenderID  int64  `json:"senderId"`
	Message   string `json:"message"`
	ProductID *int64 `json:"productId,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Client talks to the marketplace chat API for one user. Pulls go over HTTP;
// pushes arrive over an optional live WebSocket connection. When the live
// connection is down the client keeps working in pull-only mode and sends fall
// back to HTTP, so a send never silently disappears.
type Client struct {
	baseURL string
	token   string
	selfID  int64
	http    *http.Client
	session *Session

	mu   sync.Mutex
	conn *websocket.Conn
	live bool
}

func New(baseURL string, token string, selfID int64) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		selfID:  selfID,
		http:    &http.Client{Timeout: 10 * time.Second},
		session: NewSession(selfID),
	}
}

func (c *Client) Session() *Session {
	return c.session
}

// Live reports whether the push connection is up. False means pull-only mode.
func (c *Client) Live() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.live
}

// Connect dials the live endpoint and starts merging pushes into the session.
// On dial failure the client stays in pull-only mode and the error is
// returned for the caller to surface. onPush, when non-nil, runs after each
// merged push.
func (c *Client) Connect(onPush func(PushEvent)) error {
	wsURL, err := c.liveURL()
	if err != nil {
		return err
	}

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("dial live connection: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.live = true
	c.mu.Unlock()

	go c.readLoop(conn, onPush)
	return nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.live = false
	c.mu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.Close()
}

func (c *Client) readLoop(conn *websocket.Conn, onPush func(PushEvent)) {
	defer func() {
		c.mu.Lock()
		if c.conn == conn {
			c.conn = nil
			c.live = false
		}
		c.mu.Unlock()
		conn.Close()
	}()

	for {
		var event PushEvent
		if err := conn.ReadJSON(&event); err != nil {
			return
		}

		switch event.Type {
		case "message":
			c.session.MergePush(Message{
				SenderID:   event.SenderID,
				ReceiverID: c.selfID,
				ProductID:  event.ProductID,
				Body:       event.Message,
				CreatedAt:  event.Timestamp,
			})
		case "error":
			// A rejected live send; nothing to merge, handed to the
			// callback below.
		default:
			continue
		}

		if onPush != nil {
			onPush(event)
		}
	}
}

// Send submits a message. The live connection is preferred; in pull-only mode
// it posts to the HTTP route, which persists through the same path. The sent
// message is reflected into the local session either way.
func (c *Client) Send(receiverID int64, body string, productID *int64) error {
	frame := SendFrame{ReceiverID: receiverID, Message: body, ProductID: productID}

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn != nil {
		if err := conn.WriteJSON(frame); err == nil {
			c.session.MergePush(Message{
				SenderID:   c.selfID,
				ReceiverID: receiverID,
				ProductID:  productID,
				Body:       body,
				CreatedAt:  time.Now().UTC().Format(time.RFC3339),
			})
			return nil
		}

		// The connection cannot transmit; drop it so Live() reports
		// pull-only mode, and fall back to HTTP below.
		c.mu.Lock()
		if c.conn == conn {
			c.conn = nil
			c.live = false
		}
		c.mu.Unlock()
		conn.Close()
	}

	payload, err := json.Marshal(frame)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/api/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return apiError(resp)
	}

	var envelope struct {
		Message Message `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return err
	}

	c.session.MergePush(envelope.Message)
	return nil
}

// PullConversations fetches the conversation list and replaces the cached
// copy. A failed pull leaves the cache untouched.
func (c *Client) PullConversations() ([]ConversationSummary, error) {
	var envelope struct {
		Conversations []ConversationSummary `json:"conversations"`
	}
	if err := c.get("/api/v1/conversations", &envelope); err != nil {
		return nil, err
	}

	c.session.SetConversations(envelope.Conversations)
	return envelope.Conversations, nil
}

// PullThread fetches the full history with a counterpart and replaces the
// cached thread. A failed pull leaves the cache untouched.
func (c *Client) PullThread(counterpartID int64) ([]Message, error) {
	var envelope struct {
		Messages []Message `json:"messages"`
	}
	path := "/api/v1/messages/" + strconv.FormatInt(counterpartID, 10)
	if err := c.get(path, &envelope); err != nil {
		return nil, err
	}

	c.session.MergePull(counterpartID, envelope.Messages)
	return envelope.Messages, nil
}

func (c *Client) get(path string, out any) error {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) liveURL() (string, error) {
	parsed, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}

	switch parsed.Scheme {
	case "http":
		parsed.Scheme = "ws"
	case "https":
		parsed.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}

	parsed.Path = strings.TrimRight(parsed.Path, "/") + "/api/v1/ws"
	parsed.RawQuery = url.Values{"token": {c.token}}.Encode()
	return parsed.String(), nil
}

func apiError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

	var envelope struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &envelope) == nil && envelope.Error != "" {
		return fmt.Errorf("server: %s (status %d)", envelope.Error, resp.StatusCode)
	}
	return errors.New("server returned status " + strconv.Itoa(resp.StatusCode))
}
