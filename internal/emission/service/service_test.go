package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sandistd/carbon-footprint-app/internal/clock"
	"github.com/sandistd/carbon-footprint-app/internal/config"
	"github.com/sandistd/carbon-footprint-app/internal/emission/domain"
	"github.com/sandistd/carbon-footprint-app/internal/emission/repository"
	"github.com/sandistd/carbon-footprint-app/internal/events"
	factordomain "github.com/sandistd/carbon-footprint-app/internal/factor/domain"
	"github.com/sandistd/carbon-footprint-app/internal/migration"
	reportdomain "github.com/sandistd/carbon-footprint-app/internal/report/domain"
	"github.com/sandistd/carbon-footprint-app/internal/scope"
	stakeholderdomain "github.com/sandistd/carbon-footprint-app/internal/stakeholder/domain"
	"github.com/sandistd/carbon-footprint-app/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, evt events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type spyCache struct {
	invalidations int
}

func (c *spyCache) Generation(context.Context) int64 { return int64(c.invalidations) }

func (c *spyCache) Get(context.Context, int64, string) (*reportdomain.DashboardReport, bool) {
	return nil, false
}

func (c *spyCache) Set(context.Context, int64, string, reportdomain.DashboardReport) {}

func (c *spyCache) Invalidate(context.Context) { c.invalidations++ }

type fixture struct {
	db        *gorm.DB
	svc       domain.Service
	node      *snowflake.Node
	clock     *clock.FakeClock
	publisher *recordingPublisher
	cache     *spyCache
	reporting *config.ReportingConfigHolder
}

func setup(t *testing.T) *fixture {
	t.Helper()

	conn := db.NewTest(t, migration.Models()...)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	f := &fixture{
		db:        conn,
		node:      node,
		clock:     clock.NewFakeClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)),
		publisher: &recordingPublisher{},
		cache:     &spyCache{},
		reporting: config.NewStaticReportingConfigHolder(config.DefaultReportingConfig()),
	}
	f.svc = New(Params{
		DB:        conn,
		Log:       zap.NewNop(),
		GenID:     node,
		Clock:     f.clock,
		Repo:      repository.Provide(),
		Reporting: f.reporting,
		Cache:     f.cache,
		Publisher: f.publisher,
	})
	return f
}

func (f *fixture) factor(t *testing.T, s scope.Scope, value float64) factordomain.EmissionFactor {
	t.Helper()
	item := factordomain.EmissionFactor{
		ID:        f.node.Generate(),
		Name:      "factor " + string(s),
		Scope:     s,
		Factor:    value,
		Unit:      "kg CO2eq/unit",
		IsActive:  true,
		CreatedAt: f.clock.Now(),
		UpdatedAt: f.clock.Now(),
	}
	require.NoError(t, f.db.Create(&item).Error)
	return item
}

func (f *fixture) stakeholder(t *testing.T, email string, department *string) stakeholderdomain.Stakeholder {
	t.Helper()
	item := stakeholderdomain.Stakeholder{
		ID:            f.node.Generate(),
		Name:          email,
		Email:         email,
		Department:    department,
		ReceiveAlerts: true,
		CreatedAt:     f.clock.Now(),
		UpdatedAt:     f.clock.Now(),
	}
	require.NoError(t, f.db.Create(&item).Error)
	return item
}

func date(value string) time.Time {
	d, err := time.Parse(time.DateOnly, value)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCreateEnergyRecord(t *testing.T) {
	f := setup(t)
	grid := f.factor(t, scope.Energy, 0.78)
	dept := "Operations"
	owner := f.stakeholder(t, "ops@example.com", &dept)

	rec, err := f.svc.Create(context.Background(), domain.CreateRecordRequest{
		Scope:            "scope_2",
		EmissionFactorID: grid.ID.String(),
		StakeholderID:    owner.ID.String(),
		MeasurementDate:  date("2025-03-15"),
		ActivityValue:    1000,
		ActivityUnit:     "KWh",
		RecValue:         200,
	})
	require.NoError(t, err)
	assert.Equal(t, 624.0, rec.EmissionResult)
	assert.Equal(t, scope.Energy, rec.Scope)

	stored, err := f.svc.Get(context.Background(), "scope_2", rec.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 624.0, stored.EmissionResult)
	assert.Equal(t, 200.0, stored.RecValue)
	assert.Equal(t, date("2025-03-15"), stored.MeasurementDate)
	require.NotNil(t, stored.Factor)
	assert.Equal(t, grid.ID, stored.Factor.ID)
	assert.Equal(t, "Operations", stored.Department())

	assert.Equal(t, 1, f.cache.invalidations)
	require.Len(t, f.publisher.events, 1)
	evt := f.publisher.events[0]
	assert.Equal(t, events.TypeRecordCreated, evt.Type)
	assert.Equal(t, "ops@example.com", evt.StakeholderEmail)
	assert.True(t, evt.ReceiveAlerts)
	assert.Equal(t, 624.0, evt.EmissionResultKg)
}

func TestCreateEnergyRecordNegativeNet(t *testing.T) {
	f := setup(t)
	grid := f.factor(t, scope.Energy, 0.78)

	req := domain.CreateRecordRequest{
		Scope:            "scope_2",
		EmissionFactorID: grid.ID.String(),
		MeasurementDate:  date("2025-03-15"),
		ActivityValue:    1000,
		ActivityUnit:     "KWh",
		RecValue:         1200,
	}
	rec, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, -156.0, rec.EmissionResult)

	cfg := config.DefaultReportingConfig()
	cfg.ClampNegativeNetActivity = true
	f.svc.(*Service).reporting = config.NewStaticReportingConfigHolder(cfg)

	clamped, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Zero(t, clamped.EmissionResult)
}

func TestCreateDirectAndValueChainRecords(t *testing.T) {
	f := setup(t)
	diesel := f.factor(t, scope.Direct, 2.68)
	transport := f.factor(t, scope.ValueChain, 0.15)

	direct, err := f.svc.Create(context.Background(), domain.CreateRecordRequest{
		Scope:            "scope_1",
		EmissionFactorID: diesel.ID.String(),
		MeasurementDate:  date("2025-01-10"),
		ActivityValue:    100,
		ActivityUnit:     "Liter",
	})
	require.NoError(t, err)
	assert.Equal(t, 268.0, direct.EmissionResult)

	chain, err := f.svc.Create(context.Background(), domain.CreateRecordRequest{
		Scope:            "scope_3",
		EmissionFactorID: transport.ID.String(),
		MeasurementDate:  date("2025-01-11"),
		ActivityValue:    123.4,
		ActivityUnit:     "Km",
		Category:         domain.CategoryUpstreamDistribution,
	})
	require.NoError(t, err)
	assert.Equal(t, 18.51, chain.EmissionResult)
	assert.Equal(t, domain.CategoryUpstreamDistribution, chain.Category)
}

func TestCreateValidation(t *testing.T) {
	f := setup(t)
	diesel := f.factor(t, scope.Direct, 2.68)
	grid := f.factor(t, scope.Energy, 0.78)
	transport := f.factor(t, scope.ValueChain, 0.15)
	heavy := f.factor(t, scope.Direct, 999999.9999)

	valid := domain.CreateRecordRequest{
		Scope:            "scope_1",
		EmissionFactorID: diesel.ID.String(),
		MeasurementDate:  date("2025-01-10"),
		ActivityValue:    10,
		ActivityUnit:     "Liter",
	}

	tests := []struct {
		name   string
		mutate func(*domain.CreateRecordRequest)
		want   error
	}{
		{"unknown scope", func(r *domain.CreateRecordRequest) { r.Scope = "scope_9" }, domain.ErrInvalidScope},
		{"malformed factor", func(r *domain.CreateRecordRequest) { r.EmissionFactorID = "abc" }, domain.ErrInvalidEmissionFactor},
		{"missing factor", func(r *domain.CreateRecordRequest) { r.EmissionFactorID = f.node.Generate().String() }, domain.ErrInvalidEmissionFactor},
		{"factor of another scope", func(r *domain.CreateRecordRequest) { r.EmissionFactorID = grid.ID.String() }, domain.ErrFactorScopeMismatch},
		{"missing stakeholder", func(r *domain.CreateRecordRequest) { r.StakeholderID = f.node.Generate().String() }, domain.ErrInvalidStakeholder},
		{"zero date", func(r *domain.CreateRecordRequest) { r.MeasurementDate = time.Time{} }, domain.ErrInvalidMeasurementDate},
		{"negative activity", func(r *domain.CreateRecordRequest) { r.ActivityValue = -1 }, domain.ErrInvalidActivityValue},
		{"blank unit", func(r *domain.CreateRecordRequest) { r.ActivityUnit = "  " }, domain.ErrInvalidActivityUnit},
		{"result exceeds column", func(r *domain.CreateRecordRequest) {
			r.EmissionFactorID = heavy.ID.String()
			r.ActivityValue = 1e8
		}, domain.ErrInvalidEmissionResult},
		{"negative rec", func(r *domain.CreateRecordRequest) {
			r.Scope = "scope_2"
			r.EmissionFactorID = grid.ID.String()
			r.RecValue = -5
		}, domain.ErrInvalidRecValue},
		{"unknown category", func(r *domain.CreateRecordRequest) {
			r.Scope = "scope_3"
			r.EmissionFactorID = transport.ID.String()
			r.Category = "Kategori 1: Barang Dibeli"
		}, domain.ErrInvalidCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			_, err := f.svc.Create(context.Background(), req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	var count int64
	require.NoError(t, f.db.Table(scope.Direct.Table()).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, f.publisher.events)
}

func TestUpdateRecalculates(t *testing.T) {
	f := setup(t)
	diesel := f.factor(t, scope.Direct, 2.68)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, domain.CreateRecordRequest{
		Scope:            "scope_1",
		EmissionFactorID: diesel.ID.String(),
		MeasurementDate:  date("2025-01-10"),
		ActivityValue:    100,
		ActivityUnit:     "Liter",
		CreatedBy:        "alice",
	})
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	updated, err := f.svc.Update(ctx, domain.UpdateRecordRequest{
		ID: created.ID.String(),
		CreateRecordRequest: domain.CreateRecordRequest{
			Scope:            "scope_1",
			EmissionFactorID: diesel.ID.String(),
			MeasurementDate:  date("2025-01-12"),
			ActivityValue:    50,
			ActivityUnit:     "Liter",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 134.0, updated.EmissionResult)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
	require.NotNil(t, updated.CreatedBy)
	assert.Equal(t, "alice", *updated.CreatedBy)

	stored, err := f.svc.Get(ctx, "scope_1", created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 134.0, stored.EmissionResult)
	assert.Equal(t, date("2025-01-12"), stored.MeasurementDate)

	_, err = f.svc.Update(ctx, domain.UpdateRecordRequest{
		ID:                  f.node.Generate().String(),
		CreateRecordRequest: domain.CreateRecordRequest{Scope: "scope_1", EmissionFactorID: diesel.ID.String(), MeasurementDate: date("2025-01-12"), ActivityValue: 1, ActivityUnit: "Liter"},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.Len(t, f.publisher.events, 2)
	assert.Equal(t, events.TypeRecordUpdated, f.publisher.events[1].Type)
}

func TestDeleteRecord(t *testing.T) {
	f := setup(t)
	diesel := f.factor(t, scope.Direct, 2.68)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, domain.CreateRecordRequest{
		Scope:            "scope_1",
		EmissionFactorID: diesel.ID.String(),
		MeasurementDate:  date("2025-01-10"),
		ActivityValue:    1,
		ActivityUnit:     "Liter",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, "scope_1", created.ID.String()))
	_, err = f.svc.Get(ctx, "scope_1", created.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, f.svc.Delete(ctx, "scope_1", created.ID.String()), domain.ErrNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, "scope_1", "nope"), domain.ErrInvalidID)
	assert.ErrorIs(t, f.svc.Delete(ctx, "scope_x", created.ID.String()), domain.ErrInvalidScope)

	require.Len(t, f.publisher.events, 2)
	assert.Equal(t, events.TypeRecordDeleted, f.publisher.events[1].Type)
	assert.Equal(t, 2, f.cache.invalidations)
}

func TestPublishFailureKeepsWrite(t *testing.T) {
	f := setup(t)
	diesel := f.factor(t, scope.Direct, 2.68)
	f.publisher.err = errors.New("broker down")

	rec, err := f.svc.Create(context.Background(), domain.CreateRecordRequest{
		Scope:            "scope_1",
		EmissionFactorID: diesel.ID.String(),
		MeasurementDate:  date("2025-01-10"),
		ActivityValue:    1,
		ActivityUnit:     "Liter",
	})
	require.NoError(t, err)

	_, err = f.svc.Get(context.Background(), "scope_1", rec.ID.String())
	assert.NoError(t, err)
}

func TestListPaginatesAndFilters(t *testing.T) {
	f := setup(t)
	diesel := f.factor(t, scope.Direct, 2.68)
	gasoline := f.factor(t, scope.Direct, 2.31)
	ops := "Operations"
	finance := "Finance"
	opsOwner := f.stakeholder(t, "ops@example.com", &ops)
	financeOwner := f.stakeholder(t, "fin@example.com", &finance)
	ctx := context.Background()

	create := func(factorID snowflake.ID, owner snowflake.ID, day string) domain.Record {
		rec, err := f.svc.Create(ctx, domain.CreateRecordRequest{
			Scope:            "scope_1",
			EmissionFactorID: factorID.String(),
			StakeholderID:    owner.String(),
			MeasurementDate:  date(day),
			ActivityValue:    10,
			ActivityUnit:     "Liter",
		})
		require.NoError(t, err)
		return rec
	}
	newest := create(diesel.ID, opsOwner.ID, "2025-03-01")
	middle := create(gasoline.ID, financeOwner.ID, "2025-02-01")
	oldest := create(diesel.ID, opsOwner.ID, "2025-01-01")

	first, err := f.svc.List(ctx, domain.ListRecordRequest{Scope: "scope_1", PageSize: 2})
	require.NoError(t, err)
	require.Len(t, first.Records, 2)
	assert.Equal(t, newest.ID, first.Records[0].ID)
	assert.Equal(t, middle.ID, first.Records[1].ID)
	assert.True(t, first.HasMore)
	require.NotEmpty(t, first.NextPageToken)

	second, err := f.svc.List(ctx, domain.ListRecordRequest{Scope: "scope_1", PageSize: 2, PageToken: first.NextPageToken})
	require.NoError(t, err)
	require.Len(t, second.Records, 1)
	assert.Equal(t, oldest.ID, second.Records[0].ID)
	assert.False(t, second.HasMore)

	byDept, err := f.svc.List(ctx, domain.ListRecordRequest{Scope: "scope_1", Department: "Finance"})
	require.NoError(t, err)
	require.Len(t, byDept.Records, 1)
	assert.Equal(t, middle.ID, byDept.Records[0].ID)

	byFactor, err := f.svc.List(ctx, domain.ListRecordRequest{Scope: "scope_1", FactorID: diesel.ID.String()})
	require.NoError(t, err)
	assert.Len(t, byFactor.Records, 2)

	from := date("2025-02-01")
	to := date("2025-03-01")
	byRange, err := f.svc.List(ctx, domain.ListRecordRequest{Scope: "scope_1", DateFrom: &from, DateTo: &to})
	require.NoError(t, err)
	assert.Len(t, byRange.Records, 2)

	_, err = f.svc.List(ctx, domain.ListRecordRequest{Scope: "scope_1", PageToken: "!!"})
	assert.ErrorIs(t, err, domain.ErrInvalidPageToken)
}

func TestDepartmentsAndYears(t *testing.T) {
	f := setup(t)
	diesel := f.factor(t, scope.Direct, 2.68)
	grid := f.factor(t, scope.Energy, 0.78)
	ops := "Operations"
	finance := "Finance"
	f.stakeholder(t, "ops@example.com", &ops)
	f.stakeholder(t, "fin@example.com", &finance)
	f.stakeholder(t, "none@example.com", nil)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, domain.CreateRecordRequest{Scope: "scope_1", EmissionFactorID: diesel.ID.String(), MeasurementDate: date("2024-05-01"), ActivityValue: 1, ActivityUnit: "Liter"})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, domain.CreateRecordRequest{Scope: "scope_2", EmissionFactorID: grid.ID.String(), MeasurementDate: date("2025-05-01"), ActivityValue: 1, ActivityUnit: "KWh"})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, domain.CreateRecordRequest{Scope: "scope_1", EmissionFactorID: diesel.ID.String(), MeasurementDate: date("2025-12-31"), ActivityValue: 1, ActivityUnit: "Liter"})
	require.NoError(t, err)

	departments, err := f.svc.Departments(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Finance", "Operations"}, departments)

	years, err := f.svc.AvailableYears(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{2024, 2025}, years)

	assert.Len(t, f.svc.Categories(), 6)
}
