package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	factordomain "github.com/sandistd/carbon-footprint-app/internal/factor/domain"
)

type factorRequest struct {
	Name        string   `json:"name"`
	Scope       string   `json:"scope"`
	Category    string   `json:"category"`
	Factor      *float64 `json:"factor"`
	Unit        string   `json:"unit"`
	Description string   `json:"description"`
	Source      string   `json:"source"`
	IsActive    *bool    `json:"is_active"`
}

func (r factorRequest) toDomain() (factordomain.CreateFactorRequest, error) {
	if r.Factor == nil {
		return factordomain.CreateFactorRequest{}, factordomain.ErrInvalidFactor
	}
	return factordomain.CreateFactorRequest{
		Name:        r.Name,
		Scope:       strings.TrimSpace(r.Scope),
		Category:    r.Category,
		Factor:      *r.Factor,
		Unit:        r.Unit,
		Description: r.Description,
		Source:      r.Source,
		IsActive:    r.IsActive,
	}, nil
}

func (s *Server) ListFactors(c *gin.Context) {
	var query struct {
		Scope  string `form:"scope"`
		Active string `form:"active"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	active, err := parseOptionalBool(query.Active)
	if err != nil {
		AbortWithError(c, newValidationError("active", "invalid_active", "invalid active"))
		return
	}

	resp, err := s.factorSvc.List(c.Request.Context(), factordomain.ListFactorRequest{
		Scope:      query.Scope,
		ActiveOnly: active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// ListActiveFactors backs the factor picker of the record forms.
func (s *Server) ListActiveFactors(c *gin.Context) {
	scope := strings.TrimSpace(c.Query("scope"))
	if scope == "" {
		AbortWithError(c, factordomain.ErrInvalidScope)
		return
	}

	resp, err := s.factorSvc.List(c.Request.Context(), factordomain.ListFactorRequest{
		Scope:      scope,
		ActiveOnly: true,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetFactorByID(c *gin.Context) {
	resp, err := s.factorSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateFactor(c *gin.Context) {
	var req factorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	create, err := req.toDomain()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.factorSvc.Create(c.Request.Context(), create)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateFactor(c *gin.Context) {
	var req factorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	update, err := req.toDomain()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.factorSvc.Update(c.Request.Context(), factordomain.UpdateFactorRequest{
		ID:                  c.Param("id"),
		CreateFactorRequest: update,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteFactor(c *gin.Context) {
	if err := s.factorSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
