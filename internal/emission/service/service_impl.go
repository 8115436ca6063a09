package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sandistd/carbon-footprint-app/internal/clock"
	"github.com/sandistd/carbon-footprint-app/internal/config"
	"github.com/sandistd/carbon-footprint-app/internal/emission/calculator"
	"github.com/sandistd/carbon-footprint-app/internal/emission/domain"
	"github.com/sandistd/carbon-footprint-app/internal/events"
	obscontext "github.com/sandistd/carbon-footprint-app/internal/observability/context"
	"github.com/sandistd/carbon-footprint-app/internal/observability/metrics"
	reportdomain "github.com/sandistd/carbon-footprint-app/internal/report/domain"
	"github.com/sandistd/carbon-footprint-app/internal/scope"
	"github.com/sandistd/carbon-footprint-app/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// decimal(15,2) upper bound, shared by activity and emission result.
	maxActivityValue  = 9999999999999.99
	maxEmissionResult = maxActivityValue
	maxUnitLength     = 50
	maxLocationLength = 255
	publishTimeout    = 5 * time.Second
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      domain.Repository
	Reporting *config.ReportingConfigHolder
	Cache     reportdomain.Cache `optional:"true"`
	Publisher events.Publisher   `optional:"true"`
	Metrics   *metrics.Metrics   `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      domain.Repository
	reporting *config.ReportingConfigHolder
	cache     reportdomain.Cache
	publisher events.Publisher
	metrics   *metrics.Metrics
}

func New(p Params) domain.Service {
	publisher := p.Publisher
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("emission.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		reporting: p.Reporting,
		cache:     p.Cache,
		publisher: publisher,
		metrics:   p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRecordRequest) (domain.Record, error) {
	record, err := s.validate(req)
	if err != nil {
		return domain.Record{}, err
	}

	now := s.clock.Now()
	record.ID = s.genID.Generate()
	record.CreatedAt = now
	record.UpdatedAt = now
	if record.CreatedBy == nil {
		if actor := obscontext.ActorFromContext(ctx); actor != "" {
			record.CreatedBy = &actor
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.resolve(ctx, tx, &record); err != nil {
			return err
		}
		return s.repo.CreateRecord(ctx, tx, &record)
	})
	if err != nil {
		return domain.Record{}, err
	}

	s.log.Info("emission record created",
		zap.String("scope", string(record.Scope)),
		zap.String("record_id", record.ID.String()),
		zap.Float64("emission_result", record.EmissionResult),
	)
	s.afterWrite(ctx, events.TypeRecordCreated, record, record.EmissionResult)
	return record, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRecordRequest) (domain.Record, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return domain.Record{}, err
	}
	record, err := s.validate(req.CreateRecordRequest)
	if err != nil {
		return domain.Record{}, err
	}

	var previous float64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindRecord(ctx, tx, record.Scope, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotFound
		}

		previous = existing.EmissionResult
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
		record.UpdatedAt = s.clock.Now()
		if record.CreatedBy == nil {
			record.CreatedBy = existing.CreatedBy
		}
		if err := s.resolve(ctx, tx, &record); err != nil {
			return err
		}
		return s.repo.UpdateRecord(ctx, tx, &record)
	})
	if err != nil {
		return domain.Record{}, err
	}

	s.log.Info("emission record updated",
		zap.String("scope", string(record.Scope)),
		zap.String("record_id", record.ID.String()),
		zap.Float64("emission_result", record.EmissionResult),
	)
	s.afterWrite(ctx, events.TypeRecordUpdated, record, record.EmissionResult-previous)
	return record, nil
}

func (s *Service) Delete(ctx context.Context, rawScope, rawID string) error {
	sc, err := scope.Parse(rawScope)
	if err != nil {
		return domain.ErrInvalidScope
	}
	id, err := parseID(rawID)
	if err != nil {
		return err
	}

	var deleted domain.Record
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindRecord(ctx, tx, sc, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotFound
		}
		deleted = *existing
		return s.repo.DeleteRecord(ctx, tx, sc, id)
	})
	if err != nil {
		return err
	}

	s.log.Info("emission record deleted",
		zap.String("scope", string(sc)),
		zap.String("record_id", id.String()),
	)
	s.afterWrite(ctx, events.TypeRecordDeleted, deleted, -deleted.EmissionResult)
	return nil
}

func (s *Service) Get(ctx context.Context, rawScope, rawID string) (domain.Record, error) {
	sc, err := scope.Parse(rawScope)
	if err != nil {
		return domain.Record{}, domain.ErrInvalidScope
	}
	id, err := parseID(rawID)
	if err != nil {
		return domain.Record{}, err
	}

	record, err := s.repo.FindRecord(ctx, s.db, sc, id)
	if err != nil {
		return domain.Record{}, err
	}
	if record == nil {
		return domain.Record{}, domain.ErrNotFound
	}
	return *record, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRecordRequest) (domain.ListRecordResponse, error) {
	sc, err := scope.Parse(req.Scope)
	if err != nil {
		return domain.ListRecordResponse{}, domain.ErrInvalidScope
	}

	var filter domain.FilterCriteria
	if raw := strings.TrimSpace(req.FactorID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			return domain.ListRecordResponse{}, domain.ErrInvalidEmissionFactor
		}
		filter.FactorID = &id
	}
	if dept := strings.TrimSpace(req.Department); dept != "" {
		filter.Department = &dept
	}
	if category := strings.TrimSpace(req.Category); category != "" {
		filter.Category = &category
	}
	filter.DateFrom = req.DateFrom
	filter.DateTo = req.DateTo

	page := pagination.Pagination{PageToken: req.PageToken, PageSize: req.PageSize}
	records, err := s.repo.ListRecordsPage(ctx, s.db, sc, filter, page)
	if err != nil {
		return domain.ListRecordResponse{}, err
	}

	limit := page.Limit()
	pageInfo := pagination.BuildCursorPageInfo(records, limit, func(r domain.Record) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:   r.ID.String(),
			Date: r.MeasurementDate.Format(time.DateOnly),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if len(records) > limit {
		records = records[:limit]
	}

	return domain.ListRecordResponse{PageInfo: pageInfo, Records: records}, nil
}

func (s *Service) Categories() []string {
	return domain.ValueChainCategories()
}

func (s *Service) Departments(ctx context.Context) ([]string, error) {
	return s.repo.ListDepartments(ctx, s.db)
}

func (s *Service) AvailableYears(ctx context.Context) ([]int, error) {
	return s.repo.ListAvailableYears(ctx, s.db)
}

// resolve loads the record's factor and stakeholder inside tx and stores the
// recalculated emission result on the record.
func (s *Service) resolve(ctx context.Context, tx *gorm.DB, record *domain.Record) error {
	factor, err := s.repo.GetFactor(ctx, tx, record.EmissionFactorID)
	if err != nil {
		return err
	}
	if factor == nil {
		return domain.ErrInvalidEmissionFactor
	}
	if factor.Scope != record.Scope {
		return domain.ErrFactorScopeMismatch
	}
	record.Factor = factor

	record.Stakeholder = nil
	if record.StakeholderID != nil {
		stakeholder, err := s.repo.GetStakeholder(ctx, tx, *record.StakeholderID)
		if err != nil {
			return err
		}
		if stakeholder == nil {
			return domain.ErrInvalidStakeholder
		}
		record.Stakeholder = stakeholder
	}

	policy := calculator.Policy{ClampNegativeNetActivity: s.reporting.Get().ClampNegativeNetActivity}
	calculator.Recalculate(record, factor, policy)
	if math.Abs(record.EmissionResult) > maxEmissionResult {
		return domain.ErrInvalidEmissionResult
	}
	return nil
}

// afterWrite runs the side effects of a committed change. deltaKg is the
// change in stored emissions. Failures are logged and never undo the write.
func (s *Service) afterWrite(ctx context.Context, eventType events.Type, record domain.Record, deltaKg float64) {
	action := strings.TrimPrefix(string(eventType), "emission.")
	s.metrics.RecordWrite(ctx, string(record.Scope), action)
	s.metrics.RecordEmissionDelta(ctx, string(record.Scope), deltaKg)

	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	evt := events.NewRecordEvent(eventType, record, s.clock.Now())
	if err := s.publisher.Publish(pubCtx, evt); err != nil {
		s.metrics.RecordEventFailed(ctx, string(eventType))
		s.log.Warn("publish record event",
			zap.String("event_id", evt.ID),
			zap.String("event_type", string(eventType)),
			zap.String("record_id", record.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *Service) validate(req domain.CreateRecordRequest) (domain.Record, error) {
	sc, err := scope.Parse(req.Scope)
	if err != nil {
		return domain.Record{}, domain.ErrInvalidScope
	}

	factorID, err := snowflake.ParseString(strings.TrimSpace(req.EmissionFactorID))
	if err != nil || factorID == 0 {
		return domain.Record{}, domain.ErrInvalidEmissionFactor
	}

	var stakeholderID *snowflake.ID
	if raw := strings.TrimSpace(req.StakeholderID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil || id == 0 {
			return domain.Record{}, domain.ErrInvalidStakeholder
		}
		stakeholderID = &id
	}

	if req.MeasurementDate.IsZero() {
		return domain.Record{}, domain.ErrInvalidMeasurementDate
	}

	if !validAmount(req.ActivityValue) {
		return domain.Record{}, domain.ErrInvalidActivityValue
	}

	unit := strings.TrimSpace(req.ActivityUnit)
	if unit == "" || len(unit) > maxUnitLength {
		return domain.Record{}, domain.ErrInvalidActivityUnit
	}

	location := strings.TrimSpace(req.Location)
	if len(location) > maxLocationLength {
		return domain.Record{}, domain.ErrInvalidLocation
	}

	record := domain.Record{
		Scope:            sc,
		EmissionFactorID: factorID,
		StakeholderID:    stakeholderID,
		MeasurementDate:  domain.DateOnly(req.MeasurementDate),
		ActivityValue:    req.ActivityValue,
		ActivityUnit:     unit,
		Location:         optionalString(location),
		Notes:            optionalString(req.Notes),
		CreatedBy:        optionalString(req.CreatedBy),
	}

	switch sc {
	case scope.Energy:
		if !validAmount(req.RecValue) {
			return domain.Record{}, domain.ErrInvalidRecValue
		}
		record.RecValue = req.RecValue
	case scope.ValueChain:
		category := strings.TrimSpace(req.Category)
		if !domain.IsValueChainCategory(category) {
			return domain.Record{}, domain.ErrInvalidCategory
		}
		record.Category = category
	}

	return record, nil
}

func validAmount(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0 && v <= maxActivityValue
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
