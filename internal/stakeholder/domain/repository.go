package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, stakeholder *Stakeholder) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Stakeholder, error)
	List(ctx context.Context, db *gorm.DB, filter ListStakeholderFilter) ([]Stakeholder, error)
	Update(ctx context.Context, db *gorm.DB, stakeholder *Stakeholder) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	CountReferences(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)
}
