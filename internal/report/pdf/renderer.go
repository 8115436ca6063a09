// Package pdf renders dashboard reports as printable documents.
package pdf

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gosimple/slug"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/sandistd/carbon-footprint-app/internal/report/domain"
)

type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render lays the report out on A4 pages and returns the PDF bytes.
func (r *Renderer) Render(ctx context.Context, report domain.DashboardReport) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(20,
		text.NewCol(8, "Carbon Emission Dashboard", props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
		text.NewCol(4, "Generated "+report.GeneratedAt.Format("2006-01-02 15:04 MST"), props.Text{
			Size:  8,
			Align: align.Right,
			Top:   4,
		}),
	)
	m.AddRow(10, text.NewCol(12, describeFilters(report.Filters), props.Text{Size: 9}))

	section(m, "Emissions by scope (ton CO2eq)")
	tableHeader(m, "Scope", "Records", "Total")
	for _, t := range report.PerScopeTotals {
		tableRow(m, t.Label, strconv.Itoa(t.Count), formatTons(t.Total))
	}
	m.AddRow(8,
		text.NewCol(6, "Grand total", props.Text{Size: 9, Style: fontstyle.Bold}),
		col.New(3),
		text.NewCol(3, formatTons(report.GrandTotal), props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
	)

	traj := report.TargetTrajectory
	section(m, fmt.Sprintf("Reduction target %d to %d", traj.BaselineYear, traj.TargetYear))
	m.AddRow(8, text.NewCol(12, fmt.Sprintf("Baseline %s, target %s", formatTons(traj.Baseline), formatTons(traj.Target)), props.Text{Size: 9}))
	tableHeader(m, "Year", "Target", "Actual")
	for _, p := range traj.Points {
		actual := "-"
		if p.Actual != nil {
			actual = formatTons(*p.Actual)
		}
		tableRow(m, strconv.Itoa(p.Year), formatTons(p.Target), actual)
	}

	if len(report.PieByYear) > 0 && report.Filters.Year != nil {
		section(m, fmt.Sprintf("Scope share %d", *report.Filters.Year))
		for _, slice := range report.PieByYear {
			tableRow(m, slice.Name, "", formatTons(slice.Value))
		}
	}

	if len(report.DepartmentBreakdown) > 0 {
		section(m, "Emissions by department")
		for _, d := range report.DepartmentBreakdown {
			tableRow(m, d.Name, "", formatTons(d.Value))
		}
	}

	section(m, fmt.Sprintf("Monthly emissions %d", report.MonthlyYear))
	for _, month := range report.MonthlyTrend {
		tableRow(m, month.Month, "", formatTons(month.Total))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate dashboard pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

// Filename builds a download name such as "carbon-dashboard-scope-1-2025.pdf".
func Filename(report domain.DashboardReport) string {
	parts := []string{"carbon dashboard", strings.ReplaceAll(report.Filters.Scope, "_", " ")}
	if report.Filters.Year != nil {
		parts = append(parts, strconv.Itoa(*report.Filters.Year))
	}
	return slug.Make(strings.Join(parts, " ")) + ".pdf"
}

func section(m core.Maroto, title string) {
	m.AddRow(14, text.NewCol(12, title, props.Text{
		Size:  12,
		Style: fontstyle.Bold,
		Top:   6,
	}))
}

func tableHeader(m core.Maroto, label, middle, value string) {
	m.AddRow(8,
		text.NewCol(6, label, props.Text{Size: 9, Style: fontstyle.Bold}),
		text.NewCol(3, middle, props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(3, value, props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
	)
}

func tableRow(m core.Maroto, label, middle, value string) {
	m.AddRow(7,
		text.NewCol(6, label, props.Text{Size: 9}),
		text.NewCol(3, middle, props.Text{Size: 9, Align: align.Right}),
		text.NewCol(3, value, props.Text{Size: 9, Align: align.Right}),
	)
}

func describeFilters(f domain.DashboardFilter) string {
	parts := []string{"Scope: " + f.Scope}
	if f.Department != nil {
		parts = append(parts, "Department: "+*f.Department)
	}
	if f.DateFrom != nil {
		parts = append(parts, "From: "+f.DateFrom.Format("2006-01-02"))
	}
	if f.DateTo != nil {
		parts = append(parts, "To: "+f.DateTo.Format("2006-01-02"))
	}
	if f.Year != nil {
		parts = append(parts, "Year: "+strconv.Itoa(*f.Year))
	}
	return strings.Join(parts, "   ")
}

func formatTons(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
