package factor

import (
	"github.com/sandistd/carbon-footprint-app/internal/factor/repository"
	"github.com/sandistd/carbon-footprint-app/internal/factor/service"
	"go.uber.org/fx"
)

var Module = fx.Module("factor.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
