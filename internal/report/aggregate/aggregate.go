// Package aggregate folds emission records into dashboard figures. Inputs
// are kilograms and every output is metric tons rounded to two decimals.
// All functions are pure and treat an empty input as zero.
package aggregate

import (
	"sort"
	"time"

	emissiondomain "github.com/sandistd/carbon-footprint-app/internal/emission/domain"
	"github.com/sandistd/carbon-footprint-app/internal/report/domain"
	"github.com/sandistd/carbon-footprint-app/internal/scope"
	"github.com/sandistd/carbon-footprint-app/pkg/units"
)

// UnassignedDepartment labels records whose stakeholder has no department.
const UnassignedDepartment = "N/A"

// TrajectoryPolicy parameterises the reduction pathway.
type TrajectoryPolicy struct {
	BaselineYear       int
	TargetYear         int
	ReductionFraction  float64
	FallbackBaseline   float64
	TreatZeroAsMissing bool
}

// TotalTons sums the emission results of records and converts them to tons.
func TotalTons(records []emissiondomain.Record) float64 {
	return units.KgToTons(sumKg(records))
}

func sumKg(records []emissiondomain.Record) float64 {
	values := make([]float64, 0, len(records))
	for _, r := range records {
		values = append(values, r.EmissionResult)
	}
	return units.Sum(values...)
}

// ScopeTotals totals each requested scope over the records of that scope.
func ScopeTotals(records []emissiondomain.Record, scopes []scope.Scope) []domain.ScopeTotal {
	byScope := groupByScope(records)
	out := make([]domain.ScopeTotal, 0, len(scopes))
	for _, s := range scopes {
		rs := byScope[s]
		out = append(out, domain.ScopeTotal{
			Scope: s,
			Label: s.Label(),
			Total: TotalTons(rs),
			Count: len(rs),
		})
	}
	return out
}

// GrandTotal adds already converted scope totals.
func GrandTotal(totals []domain.ScopeTotal) float64 {
	values := make([]float64, 0, len(totals))
	for _, t := range totals {
		values = append(values, t.Total)
	}
	return units.Sum(values...)
}

// YearlyPie always returns one slice per scope, zero valued when the scope
// has nothing in year.
func YearlyPie(records []emissiondomain.Record, year int) []domain.PieSlice {
	byScope := groupByScope(InYear(records, year))
	out := make([]domain.PieSlice, 0, len(scope.All))
	for _, s := range scope.All {
		out = append(out, domain.PieSlice{
			Name:  s.Label(),
			Value: TotalTons(byScope[s]),
			Color: s.Color(),
		})
	}
	return out
}

// DepartmentBreakdown totals year across every scope by stakeholder
// department. Only departments with a positive kilogram total are listed,
// so a department below 5 kg appears with a value of 0.
func DepartmentBreakdown(records []emissiondomain.Record, year int) []domain.DepartmentTotal {
	groups := make(map[string][]emissiondomain.Record)
	for _, r := range InYear(records, year) {
		name := r.Department()
		if name == "" {
			name = UnassignedDepartment
		}
		groups[name] = append(groups[name], r)
	}

	out := make([]domain.DepartmentTotal, 0, len(groups))
	for name, rs := range groups {
		if sumKg(rs) <= 0 {
			continue
		}
		out = append(out, domain.DepartmentTotal{Name: name, Value: TotalTons(rs)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// MonthlyTrend returns twelve entries, January first, for year.
func MonthlyTrend(records []emissiondomain.Record, year int) []domain.MonthlyTotal {
	var months [12][]emissiondomain.Record
	for _, r := range InYear(records, year) {
		m := r.MeasurementDate.Month() - 1
		months[m] = append(months[m], r)
	}

	out := make([]domain.MonthlyTotal, 0, 12)
	for i, rs := range months {
		out = append(out, domain.MonthlyTotal{
			Month: time.Month(i + 1).String()[:3],
			Total: TotalTons(rs),
		})
	}
	return out
}

// TargetFor is the linear pathway value for year y given a baseline in tons.
func TargetFor(baseline float64, y int, p TrajectoryPolicy) float64 {
	span := p.TargetYear - p.BaselineYear
	if span <= 0 {
		return units.Round2(baseline * (1 - p.ReductionFraction))
	}
	reductionPerYear := (baseline - baseline*(1-p.ReductionFraction)) / float64(span)
	return units.Round2(baseline - float64(y-p.BaselineYear)*reductionPerYear)
}

// BuildTrajectory computes the pathway from the baseline year to the target
// year. The baseline is the measured baseline-year total, or the policy
// fallback when nothing was measured. Actuals are reported up to
// currentYear; an empty past year is reported as missing when the policy
// says so.
func BuildTrajectory(records []emissiondomain.Record, p TrajectoryPolicy, currentYear int) domain.Trajectory {
	byYear := make(map[int][]emissiondomain.Record)
	for _, r := range records {
		y := r.MeasurementDate.Year()
		byYear[y] = append(byYear[y], r)
	}

	baseline := TotalTons(byYear[p.BaselineYear])
	if baseline == 0 {
		baseline = p.FallbackBaseline
	}

	last := p.TargetYear
	if last < p.BaselineYear {
		last = p.BaselineYear
	}

	points := make([]domain.TrajectoryPoint, 0, last-p.BaselineYear+1)
	for y := p.BaselineYear; y <= last; y++ {
		point := domain.TrajectoryPoint{Year: y, Target: TargetFor(baseline, y, p)}
		if y <= currentYear {
			actual := TotalTons(byYear[y])
			if actual != 0 || y == currentYear || !p.TreatZeroAsMissing {
				point.Actual = &actual
			}
		}
		points = append(points, point)
	}

	return domain.Trajectory{
		BaselineYear: p.BaselineYear,
		TargetYear:   p.TargetYear,
		Baseline:     units.Round2(baseline),
		Target:       units.Round2(baseline * (1 - p.ReductionFraction)),
		Points:       points,
	}
}

// InYear keeps the records measured in year.
func InYear(records []emissiondomain.Record, year int) []emissiondomain.Record {
	out := make([]emissiondomain.Record, 0, len(records))
	for _, r := range records {
		if r.MeasurementDate.Year() == year {
			out = append(out, r)
		}
	}
	return out
}

func groupByScope(records []emissiondomain.Record) map[scope.Scope][]emissiondomain.Record {
	out := make(map[scope.Scope][]emissiondomain.Record, len(scope.All))
	for _, r := range records {
		out[r.Scope] = append(out[r.Scope], r)
	}
	return out
}
