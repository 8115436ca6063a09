package domain

import (
	"time"

	emissiondomain "github.com/sandistd/carbon-footprint-app/internal/emission/domain"
	"github.com/sandistd/carbon-footprint-app/internal/scope"
)

// ScopeAll selects every scope in a dashboard report.
const ScopeAll = "all"

// DashboardFilter selects what a dashboard report covers. Scope, Department
// and the date range only narrow the per-scope totals. Year drives the pie
// and department breakdown and, when set, the monthly trend.
type DashboardFilter struct {
	Scope      string     `json:"scope"`
	Department *string    `json:"department"`
	DateFrom   *time.Time `json:"start_date"`
	DateTo     *time.Time `json:"end_date"`
	Year       *int       `json:"year"`
}

type ScopeTotal struct {
	Scope scope.Scope `json:"scope"`
	Label string      `json:"label"`
	Total float64     `json:"total"`
	Count int         `json:"count"`
}

type PieSlice struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Color string  `json:"color"`
}

// TrajectoryPoint is one year of the reduction pathway. Actual is nil when
// the year has no usable measurement.
type TrajectoryPoint struct {
	Year   int      `json:"year"`
	Target float64  `json:"target"`
	Actual *float64 `json:"actual"`
}

type DepartmentTotal struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type MonthlyTotal struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
}

// Trajectory is the reduction pathway from the baseline year to the target year.
type Trajectory struct {
	BaselineYear int               `json:"baseline_year"`
	TargetYear   int               `json:"target_year"`
	Baseline     float64           `json:"baseline"`
	Target       float64           `json:"target"`
	Points       []TrajectoryPoint `json:"points"`
}

// DashboardReport is the read model behind the dashboard. Every mass is in
// metric tons.
type DashboardReport struct {
	Filters             DashboardFilter         `json:"filters"`
	PerScopeTotals      []ScopeTotal            `json:"per_scope_totals"`
	GrandTotal          float64                 `json:"grand_total"`
	PieByYear           []PieSlice              `json:"pie_by_year"`
	TargetTrajectory    Trajectory              `json:"target_trajectory"`
	DepartmentBreakdown []DepartmentTotal       `json:"department_breakdown"`
	MonthlyYear         int                     `json:"monthly_year"`
	MonthlyTrend        []MonthlyTotal          `json:"monthly_trend"`
	Departments         []string                `json:"departments"`
	AvailableYears      []int                   `json:"available_years"`
	Records             []emissiondomain.Record `json:"records,omitempty"`
	GeneratedAt         time.Time               `json:"generated_at"`
}

// Total returns the per-scope total for s and whether it was included.
func (r DashboardReport) Total(s scope.Scope) (ScopeTotal, bool) {
	for _, t := range r.PerScopeTotals {
		if t.Scope == s {
			return t, true
		}
	}
	return ScopeTotal{}, false
}
