package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*User, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, rawToken string) error
	Authenticate(ctx context.Context, rawToken string) (*Session, error)
	CurrentUser(ctx context.Context, userID snowflake.ID) (*User, error)
}

type CreateUserRequest struct {
	Username string
	Password string
	Role     string
}

type LoginRequest struct {
	Username  string
	Password  string
	UserAgent string
	IPAddress string
}

type LoginResult struct {
	User      *User
	RawToken  string
	ExpiresAt time.Time
	SessionID snowflake.ID
}

// PostAuthHook runs after a successful login or logout. The timelog
// module registers one to open and close shift rows; there is no
// implicit event bus.
type PostAuthHook interface {
	OnLogin(ctx context.Context, userID snowflake.ID, at time.Time) error
	OnLogout(ctx context.Context, userID snowflake.ID, at time.Time) error
}
