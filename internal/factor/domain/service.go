package domain

import (
	"context"
	"errors"

	"github.com/sandistd/carbon-footprint-app/internal/scope"
)

type ListFactorRequest struct {
	Scope      string
	ActiveOnly bool
}

type ListFactorFilter struct {
	Scope      scope.Scope
	ActiveOnly bool
}

type CreateFactorRequest struct {
	Name        string
	Scope       string
	Category    string
	Factor      float64
	Unit        string
	Description string
	Source      string
	IsActive    *bool
}

type UpdateFactorRequest struct {
	ID string
	CreateFactorRequest
}

type Service interface {
	Create(context.Context, CreateFactorRequest) (EmissionFactor, error)
	List(context.Context, ListFactorRequest) ([]EmissionFactor, error)
	GetByID(context.Context, string) (EmissionFactor, error)
	Update(context.Context, UpdateFactorRequest) (EmissionFactor, error)
	Delete(context.Context, string) error
}

var (
	ErrInvalidID     = errors.New("invalid_id")
	ErrInvalidName   = errors.New("invalid_name")
	ErrInvalidScope  = errors.New("invalid_scope")
	ErrInvalidFactor = errors.New("invalid_factor")
	ErrInvalidUnit   = errors.New("invalid_unit")
	ErrNotFound      = errors.New("not_found")
	ErrFactorInUse   = errors.New("factor_in_use")
)
