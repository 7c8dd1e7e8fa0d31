package seed

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/kahera/kahera/internal/auth/domain"
	"github.com/kahera/kahera/internal/auth/password"
	"github.com/kahera/kahera/internal/config"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EnsureAdminUser creates the bootstrap admin on first boot. It is a
// no-op when the username already exists or no bootstrap credentials
// are configured.
func EnsureAdminUser(conn *gorm.DB, cfg config.Config, genID *snowflake.Node) error {
	if cfg.BootstrapAdminUsername == "" || cfg.BootstrapAdminPassword == "" {
		return nil
	}

	var existing authdomain.User
	err := conn.Where("username = ?", cfg.BootstrapAdminUsername).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := password.Hash(cfg.BootstrapAdminPassword)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	user := authdomain.User{
		ID:           genID.Generate(),
		Username:     cfg.BootstrapAdminUsername,
		PasswordHash: hash,
		Role:         authdomain.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := conn.Create(&user).Error; err != nil {
		return err
	}

	zap.L().Info("bootstrap admin created", zap.String("username", user.Username))
	return nil
}
