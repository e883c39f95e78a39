package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"transcendence/game"
	"transcendence/middleware"
)

const gameWriteWait = 10 * time.Second

// GameHandler streams a pong match over a websocket: one frame message per
// engine tick out, key-state messages in. The client reports the finished
// result to the match or tournament endpoints itself.
type GameHandler struct {
	auth *middleware.Authenticator
}

func NewGameHandler(auth *middleware.Authenticator) *GameHandler {
	return &GameHandler{auth: auth}
}

type gameClientMessage struct {
	Type string `json:"type"`
	Side string `json:"side,omitempty"`
	Up   bool   `json:"up,omitempty"`
	Down bool   `json:"down,omitempty"`
}

type gameServerMessage struct {
	Type       string      `json:"type"`
	Frame      *game.Frame `json:"frame,omitempty"`
	Winner     string      `json:"winner,omitempty"`
	LeftScore  int         `json:"left_score,omitempty"`
	RightScore int         `json:"right_score,omitempty"`
}

// ServeGame upgrades the connection and plays one match. mode=ai gives the
// right paddle to the CPU; any other value leaves both seats to the client.
func (h *GameHandler) ServeGame(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if _, err := h.auth.ParseToken(token); err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("failed to upgrade game connection: %v", err)
		return
	}
	defer conn.Close()

	aiOpponent := r.URL.Query().Get("mode") == "ai"
	runner := game.NewRunner(aiOpponent)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Reader: key states until the client goes away.
	go func() {
		defer cancel()
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var msg gameClientMessage
			if err := json.Unmarshal(raw, &msg); err != nil {
				continue
			}
			if msg.Type != "input" {
				continue
			}
			switch msg.Side {
			case "left":
				runner.SetInput(game.SideLeft, msg.Up, msg.Down)
			case "right":
				runner.SetInput(game.SideRight, msg.Up, msg.Down)
			}
		}
	}()

	// Writer: frames as they are produced. The frame channel closes when the
	// match loop returns, which ends this goroutine; the result below is only
	// written after it has ended, keeping a single writer on the connection.
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for frame := range runner.Frames() {
			f := frame
			conn.SetWriteDeadline(time.Now().Add(gameWriteWait))
			if err := conn.WriteJSON(gameServerMessage{Type: "frame", Frame: &f}); err != nil {
				cancel()
				return
			}
		}
	}()

	result, err := runner.Run(ctx)
	<-writerDone
	if err != nil {
		// Client disconnected mid-match; nothing to report.
		return
	}

	conn.SetWriteDeadline(time.Now().Add(gameWriteWait))
	if err := conn.WriteJSON(gameServerMessage{
		Type:       "result",
		Winner:     result.Winner.String(),
		LeftScore:  result.LeftScore,
		RightScore: result.RightScore,
	}); err != nil {
		log.Printf("failed to write game result: %v", err)
	}
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "match finished"))
}
