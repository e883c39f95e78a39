package models

import "time"

type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"display_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	AvatarKey    *string   `json:"-"`
	AvatarURL    *string   `json:"avatar_url,omitempty"`
	TOTPSecret   *string   `json:"-"`
	TwoFAEnabled bool      `json:"twofa_enabled"`
	LastSeen     time.Time `json:"last_seen"`
	CreatedAt    time.Time `json:"created_at"`
}

type Credentials struct {
	Username string `json:"username"` // username or email
	Password string `json:"password"`
	OTP      string `json:"otp,omitempty"`
}
