package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/kahera/kahera/internal/auth/domain"
	"github.com/kahera/kahera/internal/auth/repository"
	"github.com/kahera/kahera/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type recordingHook struct {
	mu      sync.Mutex
	logins  []snowflake.ID
	logouts []snowflake.ID
}

func (h *recordingHook) OnLogin(_ context.Context, userID snowflake.ID, _ time.Time) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.logins = append(h.logins, userID)
	return nil
}

func (h *recordingHook) OnLogout(_ context.Context, userID snowflake.ID, _ time.Time) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.logouts = append(h.logouts, userID)
	return nil
}

func newTestService(t *testing.T, hooks ...domain.PostAuthHook) domain.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Session{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Cfg:   config.Config{SessionTTLHours: 12},
		GenID: node,
		Repo:  repository.Provide(),
		Hooks: hooks,
	})
}

func TestCreateUser_NormalizesAndValidates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, domain.CreateUserRequest{
		Username: "  Aling.Nena ",
		Password: "kapehan2026",
	})
	require.NoError(t, err)
	assert.Equal(t, "aling.nena", user.Username)
	assert.Equal(t, domain.RoleCashier, user.Role)
	assert.NotEqual(t, "kapehan2026", user.PasswordHash)

	_, err = svc.CreateUser(ctx, domain.CreateUserRequest{Username: "aling.nena", Password: "kapehan2026"})
	assert.ErrorIs(t, err, domain.ErrUserExists)

	_, err = svc.CreateUser(ctx, domain.CreateUserRequest{Username: "x", Password: "short"})
	assert.ErrorIs(t, err, domain.ErrInvalidPassword)

	_, err = svc.CreateUser(ctx, domain.CreateUserRequest{Username: "y", Password: "longenough", Role: "supervisor"})
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}

func TestLoginLogout_RunsHooks(t *testing.T) {
	hook := &recordingHook{}
	svc := newTestService(t, hook)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, domain.CreateUserRequest{
		Username: "cashier1",
		Password: "password123",
		Role:     domain.RoleCashier,
	})
	require.NoError(t, err)

	result, err := svc.Login(ctx, domain.LoginRequest{Username: "Cashier1", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.RawToken)
	assert.True(t, result.ExpiresAt.After(time.Now()))
	require.Len(t, hook.logins, 1)
	assert.Equal(t, user.ID, hook.logins[0])

	session, err := svc.Authenticate(ctx, result.RawToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.UserID)

	require.NoError(t, svc.Logout(ctx, result.RawToken))
	require.Len(t, hook.logouts, 1)
	assert.Equal(t, user.ID, hook.logouts[0])

	_, err = svc.Authenticate(ctx, result.RawToken)
	assert.ErrorIs(t, err, domain.ErrSessionRevoked)
}

func TestLogin_BadCredentials(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, domain.CreateUserRequest{Username: "owner", Password: "correcthorse"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, domain.LoginRequest{Username: "owner", Password: "wrong"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, domain.LoginRequest{Username: "ghost", Password: "whatever"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthenticate_RejectsGarbageTokens(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Authenticate(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidSession)

	_, err = svc.Authenticate(ctx, "not-a-real-token")
	assert.ErrorIs(t, err, domain.ErrInvalidSession)
}
