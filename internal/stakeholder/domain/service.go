package domain

import (
	"context"
	"errors"
)

type ListStakeholderRequest struct {
	Search string
}

type ListStakeholderFilter struct {
	Search string
}

type CreateStakeholderRequest struct {
	Name          string
	Email         string
	Position      string
	Department    string
	ReceiveAlerts bool
}

type UpdateStakeholderRequest struct {
	ID string
	CreateStakeholderRequest
}

type Service interface {
	Create(context.Context, CreateStakeholderRequest) (Stakeholder, error)
	List(context.Context, ListStakeholderRequest) ([]Stakeholder, error)
	GetByID(context.Context, string) (Stakeholder, error)
	Update(context.Context, UpdateStakeholderRequest) (Stakeholder, error)
	Delete(context.Context, string) error
}

var (
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidName      = errors.New("invalid_name")
	ErrInvalidEmail     = errors.New("invalid_email")
	ErrNotFound         = errors.New("not_found")
	ErrEmailTaken       = errors.New("email_taken")
	ErrStakeholderInUse = errors.New("stakeholder_in_use")
)
