package emission

import (
	"github.com/sandistd/carbon-footprint-app/internal/emission/repository"
	"github.com/sandistd/carbon-footprint-app/internal/emission/service"
	"go.uber.org/fx"
)

var Module = fx.Module("emission.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
