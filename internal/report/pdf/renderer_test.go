package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/sandistd/carbon-footprint-app/internal/report/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	year := 2025
	actual := 512.5
	dept := "Operations"
	report := domain.DashboardReport{
		Filters: domain.DashboardFilter{Scope: "all", Department: &dept, Year: &year},
		PerScopeTotals: []domain.ScopeTotal{
			{Label: "Scope 1", Total: 100, Count: 2},
			{Label: "Scope 2", Total: 200, Count: 1},
			{Label: "Scope 3", Total: 300, Count: 4},
		},
		GrandTotal: 600,
		PieByYear:  []domain.PieSlice{{Name: "Scope 1", Value: 1, Color: "#f97316"}},
		TargetTrajectory: domain.Trajectory{
			BaselineYear: 2024,
			TargetYear:   2030,
			Baseline:     752733.86,
			Target:       414003.62,
			Points:       []domain.TrajectoryPoint{{Year: 2024, Target: 752733.86, Actual: &actual}, {Year: 2025, Target: 696278.82}},
		},
		DepartmentBreakdown: []domain.DepartmentTotal{{Name: "Operations", Value: 3}},
		MonthlyYear:         2025,
		MonthlyTrend:        []domain.MonthlyTotal{{Month: "Jan", Total: 1.25}},
		GeneratedAt:         time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	out, err := NewRenderer().Render(context.Background(), report)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRenderer().Render(ctx, domain.DashboardReport{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFilename(t *testing.T) {
	year := 2025
	assert.Equal(t, "carbon-dashboard-scope-1-2025.pdf", Filename(domain.DashboardReport{
		Filters: domain.DashboardFilter{Scope: "scope_1", Year: &year},
	}))
	assert.Equal(t, "carbon-dashboard-all.pdf", Filename(domain.DashboardReport{
		Filters: domain.DashboardFilter{Scope: "all"},
	}))
}
