package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	reportdomain "github.com/sandistd/carbon-footprint-app/internal/report/domain"
	"github.com/sandistd/carbon-footprint-app/internal/report/pdf"
	"go.uber.org/zap"
)

func dashboardFilterFromQuery(c *gin.Context) (reportdomain.DashboardFilter, error) {
	var query struct {
		Scope      string `form:"scope"`
		Department string `form:"department"`
		StartDate  string `form:"start_date"`
		EndDate    string `form:"end_date"`
		Year       string `form:"year"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		return reportdomain.DashboardFilter{}, invalidRequestError()
	}

	from, err := parseOptionalDate(query.StartDate)
	if err != nil {
		return reportdomain.DashboardFilter{}, newValidationError("start_date", "invalid_start_date", "invalid start date")
	}
	to, err := parseOptionalDate(query.EndDate)
	if err != nil {
		return reportdomain.DashboardFilter{}, newValidationError("end_date", "invalid_end_date", "invalid end date")
	}
	year, err := parseOptionalInt(query.Year)
	if err != nil {
		return reportdomain.DashboardFilter{}, reportdomain.ErrInvalidYear
	}

	return reportdomain.DashboardFilter{
		Scope:      query.Scope,
		Department: parseOptionalString(query.Department),
		DateFrom:   from,
		DateTo:     to,
		Year:       year,
	}, nil
}

func (s *Server) GetDashboard(c *gin.Context) {
	filter, err := dashboardFilterFromQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.reportSvc.BuildDashboardReport(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ExportDashboardPDF(c *gin.Context) {
	filter, err := dashboardFilterFromQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	report, err := s.reportSvc.BuildDashboardReport(ctx, filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	body, err := s.renderer.Render(ctx, report)
	if err != nil {
		s.log.Error("render dashboard pdf", zap.Error(err))
		AbortWithError(c, ErrInternal)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", pdf.Filename(report)))
	c.Data(http.StatusOK, "application/pdf", body)
}
