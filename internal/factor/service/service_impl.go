package service

import (
	"context"
	"math"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/sandistd/carbon-footprint-app/internal/clock"
	"github.com/sandistd/carbon-footprint-app/internal/factor/domain"
	"github.com/sandistd/carbon-footprint-app/internal/scope"
	"github.com/sandistd/carbon-footprint-app/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// decimal(10,4) upper bound.
const maxFactor = 999999.9999

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("factor.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateFactorRequest) (domain.EmissionFactor, error) {
	factor, err := s.validate(req)
	if err != nil {
		return domain.EmissionFactor{}, err
	}

	now := s.clock.Now()
	factor.ID = s.genID.Generate()
	factor.CreatedAt = now
	factor.UpdatedAt = now

	if err := s.repo.Insert(ctx, s.db, &factor); err != nil {
		return domain.EmissionFactor{}, err
	}

	s.log.Info("emission factor created",
		zap.String("factor_id", factor.ID.String()),
		zap.String("scope", string(factor.Scope)),
	)
	return factor, nil
}

func (s *Service) List(ctx context.Context, req domain.ListFactorRequest) ([]domain.EmissionFactor, error) {
	filter := domain.ListFactorFilter{ActiveOnly: req.ActiveOnly}
	if raw := strings.TrimSpace(req.Scope); raw != "" {
		sc, err := scope.Parse(raw)
		if err != nil {
			return nil, domain.ErrInvalidScope
		}
		filter.Scope = sc
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.EmissionFactor{}
	}
	return items, nil
}

func (s *Service) GetByID(ctx context.Context, rawID string) (domain.EmissionFactor, error) {
	id, err := parseID(rawID)
	if err != nil {
		return domain.EmissionFactor{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.EmissionFactor{}, err
	}
	if item == nil {
		return domain.EmissionFactor{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateFactorRequest) (domain.EmissionFactor, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return domain.EmissionFactor{}, err
	}

	updated, err := s.validate(req.CreateFactorRequest)
	if err != nil {
		return domain.EmissionFactor{}, err
	}

	var out domain.EmissionFactor
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotFound
		}

		updated.ID = existing.ID
		updated.CreatedAt = existing.CreatedAt
		updated.UpdatedAt = s.clock.Now()
		if req.IsActive == nil {
			updated.IsActive = existing.IsActive
		}
		if err := s.repo.Update(ctx, tx, &updated); err != nil {
			return err
		}
		out = updated
		return nil
	})
	if err != nil {
		return domain.EmissionFactor{}, err
	}
	return out, nil
}

// Delete removes a factor that no record references. Retiring a factor that
// is in use is done by deactivating it instead.
func (s *Service) Delete(ctx context.Context, rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotFound
		}

		refs, err := s.repo.CountReferences(ctx, tx, id)
		if err != nil {
			return err
		}
		if refs > 0 {
			return domain.ErrFactorInUse
		}

		if err := s.repo.Delete(ctx, tx, id); err != nil {
			if db.IsForeignKeyErr(err) {
				return domain.ErrFactorInUse
			}
			return err
		}
		s.log.Info("emission factor deleted", zap.String("factor_id", id.String()))
		return nil
	})
}

func (s *Service) validate(req domain.CreateFactorRequest) (domain.EmissionFactor, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.EmissionFactor{}, domain.ErrInvalidName
	}

	sc, err := scope.Parse(req.Scope)
	if err != nil {
		return domain.EmissionFactor{}, domain.ErrInvalidScope
	}

	if math.IsNaN(req.Factor) || math.IsInf(req.Factor, 0) || req.Factor < 0 || req.Factor > maxFactor {
		return domain.EmissionFactor{}, domain.ErrInvalidFactor
	}

	unit := strings.TrimSpace(req.Unit)
	if unit == "" {
		return domain.EmissionFactor{}, domain.ErrInvalidUnit
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	return domain.EmissionFactor{
		Name:        name,
		Scope:       sc,
		Category:    optionalString(req.Category),
		Factor:      req.Factor,
		Unit:        unit,
		Description: optionalString(req.Description),
		Source:      optionalString(req.Source),
		IsActive:    active,
	}, nil
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
