package dashboard

import (
	"github.com/kahera/kahera/internal/dashboard/service"
	"go.uber.org/fx"
)

var Module = fx.Module("dashboard",
	fx.Provide(service.New),
)
