package report

import (
	"github.com/sandistd/carbon-footprint-app/internal/report/cache"
	"github.com/sandistd/carbon-footprint-app/internal/report/pdf"
	"github.com/sandistd/carbon-footprint-app/internal/report/service"
	"go.uber.org/fx"
)

var Module = fx.Module("report.service",
	cache.Module,
	fx.Provide(service.New),
	fx.Provide(pdf.NewRenderer),
)
