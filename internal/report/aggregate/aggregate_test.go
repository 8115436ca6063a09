package aggregate

import (
	"testing"
	"time"

	emissiondomain "github.com/sandistd/carbon-footprint-app/internal/emission/domain"
	"github.com/sandistd/carbon-footprint-app/internal/scope"
	stakeholderdomain "github.com/sandistd/carbon-footprint-app/internal/stakeholder/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(s scope.Scope, date string, kg float64, department *string) emissiondomain.Record {
	d, err := time.Parse(time.DateOnly, date)
	if err != nil {
		panic(err)
	}
	r := emissiondomain.Record{Scope: s, MeasurementDate: d, EmissionResult: kg}
	if department != nil {
		r.Stakeholder = &stakeholderdomain.Stakeholder{Department: department}
	}
	return r
}

func strPtr(s string) *string { return &s }

func defaultPolicy() TrajectoryPolicy {
	return TrajectoryPolicy{
		BaselineYear:       2024,
		TargetYear:         2030,
		ReductionFraction:  0.45,
		FallbackBaseline:   752733.86,
		TreatZeroAsMissing: true,
	}
}

func TestScopeTotalsAndGrandTotal(t *testing.T) {
	records := []emissiondomain.Record{
		record(scope.Direct, "2024-01-10", 60000, nil),
		record(scope.Direct, "2024-02-10", 40000, nil),
		record(scope.Energy, "2024-03-10", 200000, nil),
		record(scope.ValueChain, "2024-04-10", 300000, nil),
	}

	totals := ScopeTotals(records, scope.All)
	require.Len(t, totals, 3)
	assert.Equal(t, 100.0, totals[0].Total)
	assert.Equal(t, 2, totals[0].Count)
	assert.Equal(t, "Scope 1", totals[0].Label)
	assert.Equal(t, 200.0, totals[1].Total)
	assert.Equal(t, 300.0, totals[2].Total)
	assert.Equal(t, 600.0, GrandTotal(totals))

	onlyEnergy := ScopeTotals(records, []scope.Scope{scope.Energy})
	require.Len(t, onlyEnergy, 1)
	assert.Equal(t, 200.0, GrandTotal(onlyEnergy))
}

func TestTotalTonsRounding(t *testing.T) {
	records := []emissiondomain.Record{
		record(scope.Direct, "2024-01-10", 268, nil),
		record(scope.Direct, "2024-01-11", 18.51, nil),
	}
	assert.Equal(t, 0.29, TotalTons(records))
	assert.Equal(t, 0.0, TotalTons(nil))
}

func TestYearlyPie(t *testing.T) {
	records := []emissiondomain.Record{
		record(scope.Direct, "2025-01-10", 1500, nil),
		record(scope.ValueChain, "2025-06-10", 2500, nil),
		record(scope.Energy, "2024-06-10", 9000, nil),
	}

	pie := YearlyPie(records, 2025)
	require.Len(t, pie, 3)
	assert.Equal(t, "Scope 1", pie[0].Name)
	assert.Equal(t, "#f97316", pie[0].Color)
	assert.Equal(t, 1.5, pie[0].Value)
	assert.Equal(t, "Scope 2", pie[1].Name)
	assert.Equal(t, "#eab308", pie[1].Color)
	assert.Equal(t, 0.0, pie[1].Value)
	assert.Equal(t, "#22c55e", pie[2].Color)
	assert.Equal(t, 2.5, pie[2].Value)

	empty := YearlyPie(nil, 2019)
	require.Len(t, empty, 3)
	for _, slice := range empty {
		assert.Zero(t, slice.Value)
	}
}

func TestDepartmentBreakdown(t *testing.T) {
	ops := strPtr("Operations")
	records := []emissiondomain.Record{
		record(scope.Direct, "2025-01-10", 500, ops),
		record(scope.Energy, "2025-02-10", 500, ops),
		record(scope.ValueChain, "2025-03-10", 2000, nil),
		record(scope.Direct, "2025-03-11", 1000, nil),
		record(scope.Direct, "2025-04-10", 4, strPtr("Tiny")),
		record(scope.Direct, "2024-04-10", 99000, strPtr("Finance")),
		record(scope.Energy, "2025-05-10", -10, strPtr("Credits")),
	}
	records[3].Stakeholder = &stakeholderdomain.Stakeholder{}

	breakdown := DepartmentBreakdown(records, 2025)
	require.Len(t, breakdown, 3)
	assert.Equal(t, UnassignedDepartment, breakdown[0].Name)
	assert.Equal(t, 3.0, breakdown[0].Value)
	assert.Equal(t, "Operations", breakdown[1].Name)
	assert.Equal(t, 1.0, breakdown[1].Value)
	assert.Equal(t, "Tiny", breakdown[2].Name)
	assert.Equal(t, 0.0, breakdown[2].Value)

	assert.Empty(t, DepartmentBreakdown(nil, 2025))
}

func TestMonthlyTrend(t *testing.T) {
	records := []emissiondomain.Record{
		record(scope.Direct, "2025-01-31", 1000, nil),
		record(scope.Energy, "2025-01-01", 250, nil),
		record(scope.ValueChain, "2025-03-15", 750, nil),
		record(scope.Direct, "2024-03-15", 5000, nil),
	}

	trend := MonthlyTrend(records, 2025)
	require.Len(t, trend, 12)
	assert.Equal(t, "Jan", trend[0].Month)
	assert.Equal(t, 1.25, trend[0].Total)
	assert.Equal(t, "Feb", trend[1].Month)
	assert.Equal(t, 0.0, trend[1].Total)
	assert.Equal(t, 0.75, trend[2].Total)
	assert.Equal(t, "Dec", trend[11].Month)

	var sum float64
	for _, m := range MonthlyTrend(nil, 2025) {
		sum += m.Total
	}
	assert.Zero(t, sum)
}

func TestMonthlyTrendSumsToYearTotal(t *testing.T) {
	kgs := []float64{1234.56, 0.4, 4.99, 771.11, 5.01, 99999.99, 12.34, 0.01, 2500.5, 333.33, 6.66, 18.18, 4444.44, 0.06}
	var records []emissiondomain.Record
	for i, kg := range kgs {
		date := time.Date(2025, time.Month(i%12+1), 1+i, 0, 0, 0, 0, time.UTC).Format(time.DateOnly)
		records = append(records, record(scope.All[i%len(scope.All)], date, kg, nil))
	}
	records = append(records, record(scope.Direct, "2024-06-01", 777.77, nil))

	var monthly float64
	for _, m := range MonthlyTrend(records, 2025) {
		monthly += m.Total
	}
	yearTotal := TotalTons(InYear(records, 2025))
	assert.InDelta(t, yearTotal, monthly, 12*0.005)
	assert.NotEqual(t, yearTotal, TotalTons(records))
}

func TestBuildTrajectoryFallbackBaseline(t *testing.T) {
	traj := BuildTrajectory(nil, defaultPolicy(), 2025)

	assert.Equal(t, 752733.86, traj.Baseline)
	assert.Equal(t, 414003.62, traj.Target)
	require.Len(t, traj.Points, 7)
	assert.Equal(t, 2024, traj.Points[0].Year)
	assert.Equal(t, 752733.86, traj.Points[0].Target)
	assert.Equal(t, 696278.82, traj.Points[1].Target)
	assert.Equal(t, 2030, traj.Points[6].Year)
	assert.Equal(t, 414003.62, traj.Points[6].Target)

	assert.Nil(t, traj.Points[0].Actual)
	require.NotNil(t, traj.Points[1].Actual)
	assert.Zero(t, *traj.Points[1].Actual)
	for _, p := range traj.Points[2:] {
		assert.Nil(t, p.Actual, "year %d", p.Year)
	}
}

func TestBuildTrajectoryMeasuredBaseline(t *testing.T) {
	records := []emissiondomain.Record{
		record(scope.Direct, "2024-05-01", 600000, nil),
		record(scope.Energy, "2024-06-01", 400000, nil),
		record(scope.Direct, "2026-01-01", 900000, nil),
	}

	traj := BuildTrajectory(records, defaultPolicy(), 2026)

	assert.Equal(t, 1000.0, traj.Baseline)
	assert.Equal(t, 550.0, traj.Target)
	assert.Equal(t, 850.0, traj.Points[2].Target)

	require.NotNil(t, traj.Points[0].Actual)
	assert.Equal(t, 1000.0, *traj.Points[0].Actual)
	assert.Nil(t, traj.Points[1].Actual)
	require.NotNil(t, traj.Points[2].Actual)
	assert.Equal(t, 900.0, *traj.Points[2].Actual)
	assert.Nil(t, traj.Points[3].Actual)
}

func TestBuildTrajectoryZeroAsMeasured(t *testing.T) {
	policy := defaultPolicy()
	policy.TreatZeroAsMissing = false

	traj := BuildTrajectory(nil, policy, 2026)

	for _, p := range traj.Points[:3] {
		require.NotNil(t, p.Actual, "year %d", p.Year)
		assert.Zero(t, *p.Actual)
	}
	assert.Nil(t, traj.Points[3].Actual)
}

func TestBuildTrajectoryDegenerateSpan(t *testing.T) {
	policy := defaultPolicy()
	policy.TargetYear = policy.BaselineYear

	traj := BuildTrajectory(nil, policy, 2025)

	require.Len(t, traj.Points, 1)
	assert.Equal(t, 414003.62, traj.Points[0].Target)
}
