package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	reportdomain "github.com/sandistd/carbon-footprint-app/internal/report/domain"
	"github.com/sandistd/carbon-footprint-app/internal/report/pdf"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

type reportOptions struct {
	year       int
	scope      string
	department string
	pdfPath    string
}

func (o reportOptions) filter() reportdomain.DashboardFilter {
	filter := reportdomain.DashboardFilter{Scope: o.scope}
	if o.year != 0 {
		year := o.year
		filter.Year = &year
	}
	if o.department != "" {
		dept := o.department
		filter.Department = &dept
	}
	return filter
}

func newReportCmd() *cobra.Command {
	var opts reportOptions

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build a dashboard report and print it as JSON",
		Example: `  carbon report --year 2025
  carbon report --scope scope_2 --year 2025 --pdf dashboard.pdf`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				svc      reportdomain.Service
				renderer *pdf.Renderer
			)
			app := fx.New(
				infrastructure(),
				domains(),
				fx.Populate(&svc, &renderer),
				fx.NopLogger,
			)
			if err := app.Err(); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()
			if err := app.Start(ctx); err != nil {
				return err
			}
			defer func() { _ = app.Stop(context.Background()) }()

			report, err := svc.BuildDashboardReport(ctx, opts.filter())
			if err != nil {
				return err
			}
			return writeReport(ctx, cmd, renderer, report, opts.pdfPath)
		},
	}

	cmd.Flags().IntVar(&opts.year, "year", 0, "calendar year for the pie, department and monthly charts")
	cmd.Flags().StringVar(&opts.scope, "scope", reportdomain.ScopeAll, "scope selector: all, scope_1, scope_2 or scope_3")
	cmd.Flags().StringVar(&opts.department, "department", "", "restrict totals to a stakeholder department")
	cmd.Flags().StringVar(&opts.pdfPath, "pdf", "", "also write the report as a PDF to this path")
	return cmd
}

func writeReport(ctx context.Context, cmd *cobra.Command, renderer *pdf.Renderer, report reportdomain.DashboardReport, pdfPath string) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	if pdfPath == "" {
		return nil
	}
	body, err := renderer.Render(ctx, report)
	if err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	if err := os.WriteFile(pdfPath, body, 0o644); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	cmd.PrintErrf("wrote %s\n", pdfPath)
	return nil
}
