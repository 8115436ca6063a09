package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, factor *EmissionFactor) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*EmissionFactor, error)
	List(ctx context.Context, db *gorm.DB, filter ListFactorFilter) ([]EmissionFactor, error)
	Update(ctx context.Context, db *gorm.DB, factor *EmissionFactor) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	CountReferences(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)
}
