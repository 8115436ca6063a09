package events

import (
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sandistd/carbon-footprint-app/internal/emission/domain"
)

type Type string

const (
	TypeRecordCreated Type = "emission.created"
	TypeRecordUpdated Type = "emission.updated"
	TypeRecordDeleted Type = "emission.deleted"
)

// Event describes a change to an emission record. Consumers use the
// stakeholder fields to decide who receives an alert.
type Event struct {
	ID               string    `json:"id"`
	Type             Type      `json:"type"`
	Scope            string    `json:"scope"`
	RecordID         string    `json:"record_id"`
	FactorID         string    `json:"emission_factor_id"`
	StakeholderID    string    `json:"stakeholder_id,omitempty"`
	StakeholderEmail string    `json:"stakeholder_email,omitempty"`
	Department       string    `json:"department,omitempty"`
	ReceiveAlerts    bool      `json:"receive_alerts"`
	MeasurementDate  string    `json:"measurement_date"`
	EmissionResultKg float64   `json:"emission_result_kg"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// NewRecordEvent builds an event for record r. The id is a ULID so events
// sort by the time they were raised.
func NewRecordEvent(t Type, r domain.Record, at time.Time) Event {
	at = at.UTC()
	evt := Event{
		ID:               ulid.MustNew(ulid.Timestamp(at), ulid.DefaultEntropy()).String(),
		Type:             t,
		Scope:            string(r.Scope),
		RecordID:         r.ID.String(),
		FactorID:         r.EmissionFactorID.String(),
		Department:       r.Department(),
		MeasurementDate:  r.MeasurementDate.Format(time.DateOnly),
		EmissionResultKg: r.EmissionResult,
		OccurredAt:       at,
	}
	if r.StakeholderID != nil {
		evt.StakeholderID = r.StakeholderID.String()
	}
	if r.Stakeholder != nil {
		evt.StakeholderEmail = r.Stakeholder.Email
		evt.ReceiveAlerts = r.Stakeholder.ReceiveAlerts
	}
	return evt
}
