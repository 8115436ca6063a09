package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/sandistd/carbon-footprint-app/internal/scope"
	"github.com/sandistd/carbon-footprint-app/internal/stakeholder/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, stakeholder *domain.Stakeholder) error {
	return db.WithContext(ctx).Create(stakeholder).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Stakeholder, error) {
	var stakeholder domain.Stakeholder
	err := db.WithContext(ctx).Where("id = ?", id).Take(&stakeholder).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &stakeholder, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListStakeholderFilter) ([]domain.Stakeholder, error) {
	var stakeholders []domain.Stakeholder
	stmt := db.WithContext(ctx).Model(&domain.Stakeholder{})
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		stmt = stmt.Where(
			"name LIKE ? OR email LIKE ? OR department LIKE ? OR position LIKE ?",
			like, like, like, like,
		)
	}
	err := stmt.
		Order("id desc").
		Find(&stakeholders).Error
	if err != nil {
		return nil, err
	}
	return stakeholders, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, stakeholder *domain.Stakeholder) error {
	return db.WithContext(ctx).Save(stakeholder).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Stakeholder{}).Error
}

func (r *repo) CountReferences(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	var total int64
	for _, s := range scope.All {
		var count int64
		err := db.WithContext(ctx).
			Table(s.Table()).
			Where("stakeholder_id = ?", id).
			Count(&count).Error
		if err != nil {
			return 0, err
		}
		total += count
	}
	return total, nil
}
