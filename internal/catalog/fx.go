package catalog

import (
	"github.com/kahera/kahera/internal/catalog/repository"
	"github.com/kahera/kahera/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
