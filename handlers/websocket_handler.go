package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"transcendence/middleware"
	"transcendence/presence"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin checks belong in the reverse proxy for this deployment.
		return true
	},
}

type WebSocketHandler struct {
	hub  *presence.Hub
	auth *middleware.Authenticator
}

func NewWebSocketHandler(hub *presence.Hub, auth *middleware.Authenticator) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, auth: auth}
}

// ServeWs upgrades the presence connection. Browsers cannot set headers on
// websocket requests, so the token is also accepted as a query parameter.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		header := r.Header.Get("Authorization")
		token = strings.TrimPrefix(header, "Bearer ")
	}
	if token == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	claims, err := h.auth.ParseToken(token)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	userID, err := middleware.UserIDFromContext(middleware.ContextWithClaims(r.Context(), claims))
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	username, _ := claims["name"].(string)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("failed to upgrade presence connection for user %d: %v", userID, err)
		return
	}

	client := &presence.Client{
		Hub:      h.hub,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		UserID:   userID,
		Username: username,
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
