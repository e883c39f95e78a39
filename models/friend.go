package models

import "time"

type Friend struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	FriendID  int       `json:"friend_id"`
	CreatedAt time.Time `json:"created_at"`
}

// FriendInfo is a friend list entry enriched with presence.
type FriendInfo struct {
	ID          int       `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	AvatarKey   *string   `json:"-"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	Online      bool      `json:"online"`
	LastSeen    time.Time `json:"last_seen"`
}
