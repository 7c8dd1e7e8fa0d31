package auth

import (
	"github.com/kahera/kahera/internal/auth/repository"
	"github.com/kahera/kahera/internal/auth/service"
	"github.com/kahera/kahera/internal/auth/session"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(session.NewManager),
)
