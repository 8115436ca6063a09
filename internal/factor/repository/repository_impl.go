package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/sandistd/carbon-footprint-app/internal/factor/domain"
	"github.com/sandistd/carbon-footprint-app/internal/scope"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, factor *domain.EmissionFactor) error {
	return db.WithContext(ctx).Create(factor).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.EmissionFactor, error) {
	var factor domain.EmissionFactor
	err := db.WithContext(ctx).Where("id = ?", id).Take(&factor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &factor, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFactorFilter) ([]domain.EmissionFactor, error) {
	var factors []domain.EmissionFactor
	stmt := db.WithContext(ctx).Model(&domain.EmissionFactor{})
	if filter.Scope != "" {
		stmt = stmt.Where("scope = ?", filter.Scope)
	}
	if filter.ActiveOnly {
		stmt = stmt.Where("is_active = ?", true)
	}
	err := stmt.
		Order("scope asc, name asc").
		Find(&factors).Error
	if err != nil {
		return nil, err
	}
	return factors, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, factor *domain.EmissionFactor) error {
	return db.WithContext(ctx).Save(factor).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&domain.EmissionFactor{}).Error
}

func (r *repo) CountReferences(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	var total int64
	for _, s := range scope.All {
		var count int64
		err := db.WithContext(ctx).
			Table(s.Table()).
			Where("emission_factor_id = ?", id).
			Count(&count).Error
		if err != nil {
			return 0, err
		}
		total += count
	}
	return total, nil
}
