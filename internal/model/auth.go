package model

import "time"

type AuthRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	Message string `json:"message"`
}

type LoginResponse struct {
	Message     string `json:"message"`
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

type LogoutResponse struct {
	Message  string `json:"message"`
	LogoutAt string `json:"logout_at"`
}

type AuthMeResponse struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

// AuthUser is the caller identity admitted by the auth middleware.
type AuthUser struct {
	ID        int64
	Username  string
	TokenID   string
	ExpiresAt time.Time
}

type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
