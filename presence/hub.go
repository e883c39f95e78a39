package presence

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Client is one authenticated websocket connection. A user may hold several
// connections (multiple tabs); the user counts as online while at least one
// remains.
type Client struct {
	Hub      *Hub
	Conn     *websocket.Conn
	Send     chan []byte
	UserID   int
	Username string

	mu       sync.Mutex
	isClosed bool
}

type Message struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	UserID    int         `json:"user_id,omitempty"`
	Username  string      `json:"username,omitempty"`
	Status    string      `json:"status,omitempty"`
	Timestamp string      `json:"timestamp,omitempty"`
}

type OnlineUser struct {
	UserID      int       `json:"user_id"`
	Username    string    `json:"username"`
	ConnectedAt time.Time `json:"connected_at"`
}

type userEntry struct {
	clients     map[*Client]bool
	connectedAt time.Time
}

// Hub tracks who is online and broadcasts status changes. All bookkeeping
// happens in Run; handlers only push into the Register/Unregister channels.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	mu    sync.RWMutex
	users map[int]*userEntry
}

func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		users:      make(map[int]*userEntry),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			entry, ok := h.users[client.UserID]
			if !ok {
				entry = &userEntry{clients: make(map[*Client]bool), connectedAt: time.Now()}
				h.users[client.UserID] = entry
			}
			entry.clients[client] = true
			wentOnline := !ok
			h.mu.Unlock()

			log.Printf("presence: user %d (%s) registered, connections: %d", client.UserID, client.Username, len(entry.clients))
			if wentOnline {
				h.broadcastStatus(client.UserID, client.Username, "online")
			}

		case client := <-h.Unregister:
			h.mu.Lock()
			wentOffline := false
			if entry, ok := h.users[client.UserID]; ok {
				if _, okClient := entry.clients[client]; okClient {
					client.closeSend()
					delete(entry.clients, client)
					if len(entry.clients) == 0 {
						delete(h.users, client.UserID)
						wentOffline = true
					}
				}
			}
			h.mu.Unlock()

			if wentOffline {
				log.Printf("presence: user %d (%s) went offline", client.UserID, client.Username)
				h.broadcastStatus(client.UserID, client.Username, "offline")
			}
		}
	}
}

// IsOnline reports whether the user has at least one live connection.
func (h *Hub) IsOnline(userID int) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.users[userID]
	return ok
}

// OnlineUsers snapshots the online map for the online_users_list message.
func (h *Hub) OnlineUsers() []OnlineUser {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]OnlineUser, 0, len(h.users))
	for id, entry := range h.users {
		var username string
		for c := range entry.clients {
			username = c.Username
			break
		}
		out = append(out, OnlineUser{UserID: id, Username: username, ConnectedAt: entry.connectedAt})
	}
	return out
}

func (h *Hub) broadcastStatus(userID int, username, status string) {
	msg := Message{
		Type:      "user_status_change",
		UserID:    userID,
		Username:  username,
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("presence: failed to marshal status message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, entry := range h.users {
		for client := range entry.clients {
			client.send(data)
		}
	}
}

func (c *Client) send(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isClosed {
		return
	}
	select {
	case c.Send <- data:
	default:
		// Channel full; drop rather than block the hub.
	}
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isClosed {
		close(c.Send)
		c.isClosed = true
	}
}

// ReadPump consumes client messages: ping and get_online_users, anything
// else is ignored.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("presence: read error for user %d: %v", c.UserID, err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Printf("presence: bad message from user %d: %v", c.UserID, err)
			continue
		}

		switch msg.Type {
		case "ping":
			if data, err := json.Marshal(Message{Type: "pong"}); err == nil {
				c.send(data)
			}
		case "get_online_users":
			data, err := json.Marshal(Message{Type: "online_users_list", Payload: c.Hub.OnlineUsers()})
			if err == nil {
				c.send(data)
			}
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("presence: write error for user %d: %v", c.UserID, err)
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
