package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	factordomain "github.com/sandistd/carbon-footprint-app/internal/factor/domain"
	"github.com/sandistd/carbon-footprint-app/internal/scope"
	stakeholderdomain "github.com/sandistd/carbon-footprint-app/internal/stakeholder/domain"
	"github.com/sandistd/carbon-footprint-app/pkg/db/pagination"
	"gorm.io/gorm"
)

// Repository is the record store. Listings come back with their factor and
// stakeholder attached.
type Repository interface {
	GetFactor(ctx context.Context, db *gorm.DB, id snowflake.ID) (*factordomain.EmissionFactor, error)
	GetStakeholder(ctx context.Context, db *gorm.DB, id snowflake.ID) (*stakeholderdomain.Stakeholder, error)
	ListRecords(ctx context.Context, db *gorm.DB, s scope.Scope, filter FilterCriteria) ([]Record, error)
	ListRecordsPage(ctx context.Context, db *gorm.DB, s scope.Scope, filter FilterCriteria, page pagination.Pagination) ([]Record, error)
	FindRecord(ctx context.Context, db *gorm.DB, s scope.Scope, id snowflake.ID) (*Record, error)
	CreateRecord(ctx context.Context, db *gorm.DB, record *Record) error
	UpdateRecord(ctx context.Context, db *gorm.DB, record *Record) error
	DeleteRecord(ctx context.Context, db *gorm.DB, s scope.Scope, id snowflake.ID) error
	ListDepartments(ctx context.Context, db *gorm.DB) ([]string, error)
	ListAvailableYears(ctx context.Context, db *gorm.DB) ([]int, error)
}
