package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	emissiondomain "github.com/sandistd/carbon-footprint-app/internal/emission/domain"
	"github.com/sandistd/carbon-footprint-app/internal/scope"
)

type recordRequest struct {
	EmissionFactorID string   `json:"emission_factor_id"`
	StakeholderID    string   `json:"stakeholder_id"`
	MeasurementDate  string   `json:"measurement_date"`
	ActivityValue    *float64 `json:"activity_value"`
	ActivityUnit     string   `json:"activity_unit"`
	RecValue         float64  `json:"rec_value"`
	Category         string   `json:"category"`
	Location         string   `json:"location"`
	Notes            string   `json:"notes"`
}

func (r recordRequest) toDomain(scope string) (emissiondomain.CreateRecordRequest, error) {
	date, err := parseDate(r.MeasurementDate)
	if err != nil {
		return emissiondomain.CreateRecordRequest{}, emissiondomain.ErrInvalidMeasurementDate
	}
	if r.ActivityValue == nil {
		return emissiondomain.CreateRecordRequest{}, emissiondomain.ErrInvalidActivityValue
	}
	return emissiondomain.CreateRecordRequest{
		Scope:            scope,
		EmissionFactorID: r.EmissionFactorID,
		StakeholderID:    r.StakeholderID,
		MeasurementDate:  date,
		ActivityValue:    *r.ActivityValue,
		ActivityUnit:     r.ActivityUnit,
		RecValue:         r.RecValue,
		Category:         r.Category,
		Location:         r.Location,
		Notes:            r.Notes,
	}, nil
}

func (s *Server) ListRecords(c *gin.Context) {
	var query struct {
		PageToken  string `form:"page_token"`
		PageSize   string `form:"page_size"`
		FactorID   string `form:"emission_factor_id"`
		Department string `form:"department"`
		Category   string `form:"category"`
		StartDate  string `form:"start_date"`
		EndDate    string `form:"end_date"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var pageSize int
	if query.PageSize != "" {
		parsed, err := strconv.Atoi(query.PageSize)
		if err != nil || parsed < 0 {
			AbortWithError(c, newValidationError("page_size", "invalid_page_size", "invalid page size"))
			return
		}
		pageSize = parsed
	}
	from, err := parseOptionalDate(query.StartDate)
	if err != nil {
		AbortWithError(c, newValidationError("start_date", "invalid_start_date", "invalid start date"))
		return
	}
	to, err := parseOptionalDate(query.EndDate)
	if err != nil {
		AbortWithError(c, newValidationError("end_date", "invalid_end_date", "invalid end date"))
		return
	}

	resp, err := s.emissionSvc.List(c.Request.Context(), emissiondomain.ListRecordRequest{
		Scope:      c.Param("scope"),
		PageToken:  query.PageToken,
		PageSize:   pageSize,
		FactorID:   query.FactorID,
		Department: query.Department,
		Category:   query.Category,
		DateFrom:   from,
		DateTo:     to,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Records, "page_info": resp.PageInfo})
}

func (s *Server) GetRecord(c *gin.Context) {
	resp, err := s.emissionSvc.Get(c.Request.Context(), c.Param("scope"), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateRecord(c *gin.Context) {
	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	create, err := req.toDomain(c.Param("scope"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.emissionSvc.Create(c.Request.Context(), create)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateRecord(c *gin.Context) {
	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	update, err := req.toDomain(c.Param("scope"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.emissionSvc.Update(c.Request.Context(), emissiondomain.UpdateRecordRequest{
		ID:                  c.Param("id"),
		CreateRecordRequest: update,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteRecord(c *gin.Context) {
	if err := s.emissionSvc.Delete(c.Request.Context(), c.Param("scope"), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListCategories serves the fixed scope 3 category list. Other scopes have
// no categories.
func (s *Server) ListCategories(c *gin.Context) {
	sc, err := scope.Parse(c.Param("scope"))
	if err != nil {
		AbortWithError(c, emissiondomain.ErrInvalidScope)
		return
	}
	if sc != scope.ValueChain {
		AbortWithError(c, ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": s.emissionSvc.Categories()})
}

func (s *Server) ListDepartments(c *gin.Context) {
	resp, err := s.emissionSvc.Departments(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListYears(c *gin.Context) {
	resp, err := s.emissionSvc.AvailableYears(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
