package stakeholder

import (
	"github.com/sandistd/carbon-footprint-app/internal/stakeholder/repository"
	"github.com/sandistd/carbon-footprint-app/internal/stakeholder/service"
	"go.uber.org/fx"
)

var Module = fx.Module("stakeholder.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
