package domain

import "time"

// UserSession records an issued access token. The ID is the token's jti.
type UserSession struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
