package service

import (
	"context"
	"net/mail"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/sandistd/carbon-footprint-app/internal/clock"
	"github.com/sandistd/carbon-footprint-app/internal/stakeholder/domain"
	"github.com/sandistd/carbon-footprint-app/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

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
		log:   p.Log.Named("stakeholder.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateStakeholderRequest) (domain.Stakeholder, error) {
	stakeholder, err := validate(req)
	if err != nil {
		return domain.Stakeholder{}, err
	}

	now := s.clock.Now()
	stakeholder.ID = s.genID.Generate()
	stakeholder.CreatedAt = now
	stakeholder.UpdatedAt = now

	if err := s.repo.Insert(ctx, s.db, &stakeholder); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Stakeholder{}, domain.ErrEmailTaken
		}
		return domain.Stakeholder{}, err
	}
	return stakeholder, nil
}

func (s *Service) List(ctx context.Context, req domain.ListStakeholderRequest) ([]domain.Stakeholder, error) {
	items, err := s.repo.List(ctx, s.db, domain.ListStakeholderFilter{
		Search: strings.TrimSpace(req.Search),
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Stakeholder{}
	}
	return items, nil
}

func (s *Service) GetByID(ctx context.Context, rawID string) (domain.Stakeholder, error) {
	id, err := parseID(rawID)
	if err != nil {
		return domain.Stakeholder{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Stakeholder{}, err
	}
	if item == nil {
		return domain.Stakeholder{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateStakeholderRequest) (domain.Stakeholder, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return domain.Stakeholder{}, err
	}

	updated, err := validate(req.CreateStakeholderRequest)
	if err != nil {
		return domain.Stakeholder{}, err
	}

	var out domain.Stakeholder
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
		if err := s.repo.Update(ctx, tx, &updated); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrEmailTaken
			}
			return err
		}
		out = updated
		return nil
	})
	if err != nil {
		return domain.Stakeholder{}, err
	}
	return out, nil
}

// Delete refuses to remove a stakeholder while any emission record points at it.
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
			s.log.Info("stakeholder delete rejected",
				zap.String("stakeholder_id", id.String()),
				zap.Int64("references", refs),
			)
			return domain.ErrStakeholderInUse
		}

		if err := s.repo.Delete(ctx, tx, id); err != nil {
			if db.IsForeignKeyErr(err) {
				return domain.ErrStakeholderInUse
			}
			return err
		}
		return nil
	})
}

func validate(req domain.CreateStakeholderRequest) (domain.Stakeholder, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Stakeholder{}, domain.ErrInvalidName
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return domain.Stakeholder{}, domain.ErrInvalidEmail
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return domain.Stakeholder{}, domain.ErrInvalidEmail
	}

	return domain.Stakeholder{
		Name:          name,
		Email:         email,
		Position:      optionalString(req.Position),
		Department:    optionalString(req.Department),
		ReceiveAlerts: req.ReceiveAlerts,
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
