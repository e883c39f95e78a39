package presence

import (
	"encoding/json"
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func testClient(hub *Hub, userID int, username string) *Client {
	return &Client{
		Hub:      hub,
		Send:     make(chan []byte, 16),
		UserID:   userID,
		Username: username,
	}
}

func TestHubPresenceTracking(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	first := testClient(hub, 1, "alice")
	hub.Register <- first
	waitFor(t, func() bool { return hub.IsOnline(1) }, "user 1 never came online")

	// A second connection for the same user keeps them online when one drops.
	second := testClient(hub, 1, "alice")
	hub.Register <- second
	hub.Unregister <- second
	waitFor(t, func() bool { return hub.IsOnline(1) }, "user 1 went offline with a live connection")

	hub.Unregister <- first
	waitFor(t, func() bool { return !hub.IsOnline(1) }, "user 1 still online after last disconnect")
}

func TestHubBroadcastsStatusChanges(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	watcher := testClient(hub, 1, "alice")
	hub.Register <- watcher
	waitFor(t, func() bool { return hub.IsOnline(1) }, "watcher never registered")

	newcomer := testClient(hub, 2, "bob")
	hub.Register <- newcomer

	// The watcher also receives its own online broadcast; skip to bob's.
	deadline := time.After(time.Second)
	for {
		select {
		case raw := <-watcher.Send:
			var msg Message
			if err := json.Unmarshal(raw, &msg); err != nil {
				t.Fatalf("bad broadcast payload: %v", err)
			}
			if msg.UserID != 2 {
				continue
			}
			if msg.Type != "user_status_change" || msg.Status != "online" {
				t.Errorf("broadcast %+v, want user 2 online", msg)
			}
			return
		case <-deadline:
			t.Fatal("no status broadcast received")
		}
	}
}

func TestHubOnlineUsers(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	hub.Register <- testClient(hub, 1, "alice")
	hub.Register <- testClient(hub, 2, "bob")
	waitFor(t, func() bool { return hub.IsOnline(1) && hub.IsOnline(2) }, "users never registered")

	users := hub.OnlineUsers()
	if len(users) != 2 {
		t.Fatalf("got %d online users, want 2", len(users))
	}
	names := make(map[int]string, len(users))
	for _, u := range users {
		names[u.UserID] = u.Username
	}
	if names[1] != "alice" || names[2] != "bob" {
		t.Errorf("online users %v", names)
	}
}
