package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sandistd/carbon-footprint-app/internal/scope"
)

// EmissionFactor converts one unit of activity into kilograms of CO2eq.
type EmissionFactor struct {
	ID          snowflake.ID `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name        string       `gorm:"size:255;not null" json:"name"`
	Scope       scope.Scope  `gorm:"size:16;not null;index" json:"scope"`
	Category    *string      `gorm:"size:255" json:"category,omitempty"`
	Factor      float64      `gorm:"type:decimal(10,4);not null" json:"factor"`
	Unit        string       `gorm:"size:100;not null" json:"unit"`
	Description *string      `gorm:"type:text" json:"description,omitempty"`
	Source      *string      `gorm:"size:255" json:"source,omitempty"`
	IsActive    bool         `gorm:"not null" json:"is_active"`
	CreatedAt   time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null" json:"updated_at"`
}

func (EmissionFactor) TableName() string {
	return "emission_factors"
}
