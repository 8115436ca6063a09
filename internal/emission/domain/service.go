package domain

import (
	"context"
	"errors"
	"time"

	"github.com/sandistd/carbon-footprint-app/pkg/db/pagination"
)

type CreateRecordRequest struct {
	Scope            string
	EmissionFactorID string
	StakeholderID    string
	MeasurementDate  time.Time
	ActivityValue    float64
	ActivityUnit     string
	RecValue         float64
	Category         string
	Location         string
	Notes            string
	CreatedBy        string
}

type UpdateRecordRequest struct {
	ID string
	CreateRecordRequest
}

type ListRecordRequest struct {
	Scope      string
	PageToken  string
	PageSize   int
	FactorID   string
	Department string
	Category   string
	DateFrom   *time.Time
	DateTo     *time.Time
}

type ListRecordResponse struct {
	pagination.PageInfo
	Records []Record `json:"records"`
}

type Service interface {
	Create(context.Context, CreateRecordRequest) (Record, error)
	Update(context.Context, UpdateRecordRequest) (Record, error)
	Delete(ctx context.Context, scope, id string) error
	Get(ctx context.Context, scope, id string) (Record, error)
	List(context.Context, ListRecordRequest) (ListRecordResponse, error)
	Categories() []string
	Departments(context.Context) ([]string, error)
	AvailableYears(context.Context) ([]int, error)
}

var (
	ErrInvalidID              = errors.New("invalid_id")
	ErrInvalidScope           = errors.New("invalid_scope")
	ErrInvalidEmissionFactor  = errors.New("invalid_emission_factor")
	ErrFactorScopeMismatch    = errors.New("invalid_emission_factor_scope")
	ErrInvalidStakeholder     = errors.New("invalid_stakeholder")
	ErrInvalidMeasurementDate = errors.New("invalid_measurement_date")
	ErrInvalidActivityValue   = errors.New("invalid_activity_value")
	ErrInvalidActivityUnit    = errors.New("invalid_activity_unit")
	ErrInvalidRecValue        = errors.New("invalid_rec_value")
	ErrInvalidEmissionResult  = errors.New("invalid_emission_result")
	ErrInvalidLocation        = errors.New("invalid_location")
	ErrInvalidCategory        = errors.New("invalid_category")
	ErrInvalidPageToken       = errors.New("invalid_page_token")
	ErrNotFound               = errors.New("not_found")
)
