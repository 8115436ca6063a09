package service

import (
	"context"
	"strings"

	"github.com/sandistd/carbon-footprint-app/internal/clock"
	"github.com/sandistd/carbon-footprint-app/internal/config"
	emissiondomain "github.com/sandistd/carbon-footprint-app/internal/emission/domain"
	"github.com/sandistd/carbon-footprint-app/internal/observability/metrics"
	"github.com/sandistd/carbon-footprint-app/internal/report/aggregate"
	"github.com/sandistd/carbon-footprint-app/internal/report/cache"
	"github.com/sandistd/carbon-footprint-app/internal/report/domain"
	"github.com/sandistd/carbon-footprint-app/internal/scope"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Records shown alongside a single-scope dashboard.
const recordPreviewSize = 10

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Clock     clock.Clock
	Repo      emissiondomain.Repository
	Reporting *config.ReportingConfigHolder
	Cache     domain.Cache     `optional:"true"`
	Metrics   *metrics.Metrics `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	clock     clock.Clock
	repo      emissiondomain.Repository
	reporting *config.ReportingConfigHolder
	cache     domain.Cache
	metrics   *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("report.service"),
		clock:     p.Clock,
		repo:      p.Repo,
		reporting: p.Reporting,
		cache:     p.Cache,
		metrics:   p.Metrics,
	}
}

func (s *Service) BuildDashboardReport(ctx context.Context, filter domain.DashboardFilter) (domain.DashboardReport, error) {
	filter, scopes, err := normalize(filter)
	if err != nil {
		return domain.DashboardReport{}, err
	}

	ctx, span := otel.Tracer("carbon/report").Start(ctx, "report.BuildDashboardReport")
	defer span.End()
	span.SetAttributes(attribute.String("carbon.scope", filter.Scope))

	now := s.clock.Now()
	key := cache.Key(filter, now.Year())
	var generation int64
	if s.cache != nil {
		generation = s.cache.Generation(ctx)
		if cached, ok := s.cache.Get(ctx, generation, key); ok {
			s.metrics.RecordReportCacheHit(ctx)
			span.SetAttributes(attribute.Bool("carbon.cache_hit", true))
			return *cached, nil
		}
	}

	report, err := s.build(ctx, filter, scopes)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build dashboard report")
		s.log.Error("build dashboard report", zap.String("scope", filter.Scope), zap.Error(err))
		return domain.DashboardReport{}, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, generation, key, report)
	}
	s.metrics.RecordReportBuilt(ctx, filter.Scope)
	return report, nil
}

func (s *Service) build(ctx context.Context, filter domain.DashboardFilter, scopes []scope.Scope) (domain.DashboardReport, error) {
	now := s.clock.Now()
	currentYear := now.Year()
	cfg := s.reporting.Get()
	policy := aggregate.TrajectoryPolicy{
		BaselineYear:       cfg.BaselineYear,
		TargetYear:         cfg.TargetYear,
		ReductionFraction:  cfg.ReductionFraction,
		FallbackBaseline:   cfg.FallbackBaseline,
		TreatZeroAsMissing: cfg.TreatZeroAsMissing,
	}

	criteria := emissiondomain.FilterCriteria{
		Department: filter.Department,
		DateFrom:   filter.DateFrom,
		DateTo:     filter.DateTo,
	}
	var filtered []emissiondomain.Record
	for _, sc := range scopes {
		records, err := s.repo.ListRecords(ctx, s.db, sc, criteria)
		if err != nil {
			return domain.DashboardReport{}, err
		}
		filtered = append(filtered, records...)
	}

	monthlyYear := currentYear
	if filter.Year != nil {
		monthlyYear = *filter.Year
	}
	calendar, err := s.calendarRecords(ctx, policy, monthlyYear)
	if err != nil {
		return domain.DashboardReport{}, err
	}

	departments, err := s.repo.ListDepartments(ctx, s.db)
	if err != nil {
		return domain.DashboardReport{}, err
	}
	years, err := s.repo.ListAvailableYears(ctx, s.db)
	if err != nil {
		return domain.DashboardReport{}, err
	}

	totals := aggregate.ScopeTotals(filtered, scopes)
	report := domain.DashboardReport{
		Filters:          filter,
		PerScopeTotals:   totals,
		GrandTotal:       aggregate.GrandTotal(totals),
		TargetTrajectory: aggregate.BuildTrajectory(calendar, policy, currentYear),
		MonthlyYear:      monthlyYear,
		MonthlyTrend:     aggregate.MonthlyTrend(calendar, monthlyYear),
		Departments:      departments,
		AvailableYears:   years,
		GeneratedAt:      now,
	}
	if filter.Year != nil {
		report.PieByYear = aggregate.YearlyPie(calendar, *filter.Year)
		report.DepartmentBreakdown = aggregate.DepartmentBreakdown(calendar, *filter.Year)
	}
	if len(scopes) == 1 {
		report.Records = filtered
		if len(report.Records) > recordPreviewSize {
			report.Records = report.Records[:recordPreviewSize]
		}
	}
	return report, nil
}

// calendarRecords loads every scope's records for the years the charts need.
// Chart figures ignore the department and date filters.
func (s *Service) calendarRecords(ctx context.Context, policy aggregate.TrajectoryPolicy, years ...int) ([]emissiondomain.Record, error) {
	first, last := policy.BaselineYear, policy.TargetYear
	if last < first {
		last = first
	}
	for _, y := range years {
		first = min(first, y)
		last = max(last, y)
	}
	from, _ := emissiondomain.YearRange(first)
	_, to := emissiondomain.YearRange(last)
	criteria := emissiondomain.FilterCriteria{DateFrom: &from, DateTo: &to}

	var out []emissiondomain.Record
	for _, sc := range scope.All {
		records, err := s.repo.ListRecords(ctx, s.db, sc, criteria)
		if err != nil {
			return nil, err
		}
		out = append(out, records...)
	}
	return out, nil
}

func normalize(filter domain.DashboardFilter) (domain.DashboardFilter, []scope.Scope, error) {
	raw := strings.ToLower(strings.TrimSpace(filter.Scope))
	scopes := scope.All
	if raw == "" || raw == domain.ScopeAll {
		filter.Scope = domain.ScopeAll
	} else {
		sc, err := scope.Parse(raw)
		if err != nil {
			return filter, nil, domain.ErrInvalidScope
		}
		filter.Scope = string(sc)
		scopes = []scope.Scope{sc}
	}

	if filter.Department != nil {
		dept := strings.TrimSpace(*filter.Department)
		if dept == "" {
			filter.Department = nil
		} else {
			filter.Department = &dept
		}
	}
	if filter.Year != nil && (*filter.Year < 1900 || *filter.Year > 9999) {
		return filter, nil, domain.ErrInvalidYear
	}
	if filter.DateFrom != nil {
		d := emissiondomain.DateOnly(*filter.DateFrom)
		filter.DateFrom = &d
	}
	if filter.DateTo != nil {
		d := emissiondomain.DateOnly(*filter.DateTo)
		filter.DateTo = &d
	}
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateTo.Before(*filter.DateFrom) {
		return filter, nil, domain.ErrInvalidDateRange
	}
	return filter, scopes, nil
}
