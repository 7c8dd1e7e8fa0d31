package timelog

import (
	"github.com/kahera/kahera/internal/timelog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("timelog",
	fx.Provide(
		service.New,
		service.AsService,
		fx.Annotate(
			service.AsPostAuthHook,
			fx.ResultTags(`group:"auth.hooks"`),
		),
	),
)
