package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Stakeholder struct {
	ID            snowflake.ID `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name          string       `gorm:"size:255;not null" json:"name"`
	Email         string       `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Position      *string      `gorm:"size:255" json:"position,omitempty"`
	Department    *string      `gorm:"size:255;index" json:"department,omitempty"`
	ReceiveAlerts bool         `gorm:"not null" json:"receive_alerts"`
	CreatedAt     time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null" json:"updated_at"`
}

func (Stakeholder) TableName() string {
	return "stakeholders"
}

// DepartmentName returns the grouping label, empty when unset.
func (s *Stakeholder) DepartmentName() string {
	if s == nil || s.Department == nil {
		return ""
	}
	return *s.Department
}
