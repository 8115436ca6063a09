package domain

import (
	"context"
	"errors"
)

type Service interface {
	BuildDashboardReport(context.Context, DashboardFilter) (DashboardReport, error)
}

// Cache stores built reports keyed by filter. Entries are written under the
// generation read before the report was built, so Invalidate, which bumps
// the generation, hides every report built from older data.
type Cache interface {
	Generation(ctx context.Context) int64
	Get(ctx context.Context, generation int64, key string) (*DashboardReport, bool)
	Set(ctx context.Context, generation int64, key string, report DashboardReport)
	Invalidate(ctx context.Context)
}

var (
	ErrInvalidScope     = errors.New("invalid_scope")
	ErrInvalidYear      = errors.New("invalid_year")
	ErrInvalidDateRange = errors.New("invalid_date_range")
)
