package service

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/kahera/kahera/internal/auth/domain"
	"github.com/kahera/kahera/internal/timelog/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
}

func New(p Params) *Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("timelog.service"),
		genID: p.GenID,
	}
}

// AsService re-types the concrete service for consumers of the listing
// interface.
func AsService(s *Service) domain.Service {
	return s
}

// AsPostAuthHook registers the service into the auth hook group so
// logins open a shift row and logouts close it.
func AsPostAuthHook(s *Service) authdomain.PostAuthHook {
	return s
}

func (s *Service) OnLogin(ctx context.Context, userID snowflake.ID, at time.Time) error {
	row := domain.TimeLog{
		ID:        s.genID.Generate().Int64(),
		UserID:    userID.Int64(),
		StartTime: at.UTC(),
		Status:    domain.StatusLoggedIn,
	}
	return s.db.WithContext(ctx).Create(&row).Error
}

// OnLogout closes the most recent open shift. A logout without an open
// shift is logged and swallowed; it happens when sessions expire
// server-side.
func (s *Service) OnLogout(ctx context.Context, userID snowflake.ID, at time.Time) error {
	var open domain.TimeLog
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID.Int64(), domain.StatusLoggedIn).
		Order("start_time DESC").
		First(&open).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Warn("logout without open shift", zap.Int64("user_id", userID.Int64()))
			return nil
		}
		return err
	}

	end := at.UTC()
	return s.db.WithContext(ctx).Model(&open).Updates(map[string]interface{}{
		"end_time": end,
		"status":   domain.StatusLoggedOut,
	}).Error
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.TimeLog, int64, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PerPage < 1 || req.PerPage > 100 {
		req.PerPage = 10
	}

	query := s.db.WithContext(ctx).Model(&domain.TimeLog{})
	if req.UserID != nil {
		query = query.Where("user_id = ?", *req.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []domain.TimeLog
	err := query.
		Order("start_time DESC").
		Offset((req.Page - 1) * req.PerPage).
		Limit(req.PerPage).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
