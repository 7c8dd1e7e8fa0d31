package sale

import (
	"github.com/kahera/kahera/internal/sale/repository"
	"github.com/kahera/kahera/internal/sale/service"
	"go.uber.org/fx"
)

var Module = fx.Module("sale",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
