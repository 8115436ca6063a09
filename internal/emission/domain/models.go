package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	factordomain "github.com/sandistd/carbon-footprint-app/internal/factor/domain"
	"github.com/sandistd/carbon-footprint-app/internal/scope"
	stakeholderdomain "github.com/sandistd/carbon-footprint-app/internal/stakeholder/domain"
)

// Record is an emission measurement of any scope. RecValue is only
// meaningful for the energy scope and Category only for the value chain.
type Record struct {
	Scope            scope.Scope   `json:"scope"`
	ID               snowflake.ID  `json:"id"`
	EmissionFactorID snowflake.ID  `json:"emission_factor_id"`
	StakeholderID    *snowflake.ID `json:"stakeholder_id,omitempty"`
	MeasurementDate  time.Time     `json:"measurement_date"`
	ActivityValue    float64       `json:"activity_value"`
	ActivityUnit     string        `json:"activity_unit"`
	RecValue         float64       `json:"rec_value,omitempty"`
	Category         string        `json:"category,omitempty"`
	EmissionResult   float64       `json:"emission_result"`
	Location         *string       `json:"location,omitempty"`
	Notes            *string       `json:"notes,omitempty"`
	CreatedBy        *string       `json:"created_by,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`

	Factor      *factordomain.EmissionFactor   `json:"emission_factor,omitempty"`
	Stakeholder *stakeholderdomain.Stakeholder `json:"stakeholder,omitempty"`
}

// Department is the stakeholder's department, empty when the record has no
// stakeholder or the stakeholder has none.
func (r Record) Department() string {
	return r.Stakeholder.DepartmentName()
}

// RecordBase holds the columns every scope table shares.
type RecordBase struct {
	ID               snowflake.ID  `gorm:"primaryKey;autoIncrement:false"`
	EmissionFactorID snowflake.ID  `gorm:"not null;index"`
	StakeholderID    *snowflake.ID `gorm:"index"`
	MeasurementDate  time.Time     `gorm:"type:date;not null;index"`
	ActivityValue    float64       `gorm:"type:decimal(15,2);not null"`
	ActivityUnit     string        `gorm:"size:50;not null"`
	EmissionResult   float64       `gorm:"type:decimal(15,2);not null"`
	Location         *string       `gorm:"size:255"`
	Notes            *string       `gorm:"type:text"`
	CreatedBy        *string       `gorm:"size:255"`
	CreatedAt        time.Time     `gorm:"not null"`
	UpdatedAt        time.Time     `gorm:"not null"`
}

func (b RecordBase) record(s scope.Scope) Record {
	return Record{
		Scope:            s,
		ID:               b.ID,
		EmissionFactorID: b.EmissionFactorID,
		StakeholderID:    b.StakeholderID,
		MeasurementDate:  b.MeasurementDate.UTC(),
		ActivityValue:    b.ActivityValue,
		ActivityUnit:     b.ActivityUnit,
		EmissionResult:   b.EmissionResult,
		Location:         b.Location,
		Notes:            b.Notes,
		CreatedBy:        b.CreatedBy,
		CreatedAt:        b.CreatedAt.UTC(),
		UpdatedAt:        b.UpdatedAt.UTC(),
	}
}

func baseOf(r Record) RecordBase {
	return RecordBase{
		ID:               r.ID,
		EmissionFactorID: r.EmissionFactorID,
		StakeholderID:    r.StakeholderID,
		MeasurementDate:  r.MeasurementDate,
		ActivityValue:    r.ActivityValue,
		ActivityUnit:     r.ActivityUnit,
		EmissionResult:   r.EmissionResult,
		Location:         r.Location,
		Notes:            r.Notes,
		CreatedBy:        r.CreatedBy,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

// Row is a persisted scope table row.
type Row interface {
	TableName() string
	Record() Record
}

type DirectEmission struct {
	RecordBase
}

func (DirectEmission) TableName() string { return scope.Direct.Table() }

func (e DirectEmission) Record() Record { return e.RecordBase.record(scope.Direct) }

type EnergyEmission struct {
	RecordBase
	RecValue float64 `gorm:"type:decimal(15,2);not null;default:0"`
}

func (EnergyEmission) TableName() string { return scope.Energy.Table() }

func (e EnergyEmission) Record() Record {
	rec := e.RecordBase.record(scope.Energy)
	rec.RecValue = e.RecValue
	return rec
}

type ValueChainEmission struct {
	RecordBase
	Category string `gorm:"size:255;not null;index"`
}

func (ValueChainEmission) TableName() string { return scope.ValueChain.Table() }

func (e ValueChainEmission) Record() Record {
	rec := e.RecordBase.record(scope.ValueChain)
	rec.Category = e.Category
	return rec
}

// NewRow returns an empty row pointer for the scope table, nil for an
// unknown scope.
func NewRow(s scope.Scope) Row {
	switch s {
	case scope.Direct:
		return &DirectEmission{}
	case scope.Energy:
		return &EnergyEmission{}
	case scope.ValueChain:
		return &ValueChainEmission{}
	default:
		return nil
	}
}

// RowFromRecord maps a record onto the row type of its scope.
func RowFromRecord(r Record) Row {
	base := baseOf(r)
	switch r.Scope {
	case scope.Direct:
		return &DirectEmission{RecordBase: base}
	case scope.Energy:
		return &EnergyEmission{RecordBase: base, RecValue: r.RecValue}
	case scope.ValueChain:
		return &ValueChainEmission{RecordBase: base, Category: r.Category}
	default:
		return nil
	}
}

// Scope 3 reporting categories accepted for value chain records.
const (
	CategoryUpstreamDistribution   = "Kategori 4: Distribusi Hulu"
	CategoryOperationalWaste       = "Kategori 5: Limbah Operasional"
	CategoryBusinessTravel         = "Kategori 6: Perjalanan Bisnis"
	CategoryEmployeeCommuting      = "Kategori 7: Perjalanan Pulang-Pergi Karyawan"
	CategoryDownstreamDistribution = "Kategori 9: Distribusi Hilir"
	CategoryDownstreamLeasedAssets = "Kategori 13: Aset Sewa Hilir"
)

var valueChainCategories = []string{
	CategoryUpstreamDistribution,
	CategoryOperationalWaste,
	CategoryBusinessTravel,
	CategoryEmployeeCommuting,
	CategoryDownstreamDistribution,
	CategoryDownstreamLeasedAssets,
}

func ValueChainCategories() []string {
	out := make([]string, len(valueChainCategories))
	copy(out, valueChainCategories)
	return out
}

func IsValueChainCategory(category string) bool {
	for _, c := range valueChainCategories {
		if c == category {
			return true
		}
	}
	return false
}
