package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	stakeholderdomain "github.com/sandistd/carbon-footprint-app/internal/stakeholder/domain"
)

type stakeholderRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Position      string `json:"position"`
	Department    string `json:"department"`
	ReceiveAlerts bool   `json:"receive_alerts"`
}

func (r stakeholderRequest) toDomain() stakeholderdomain.CreateStakeholderRequest {
	return stakeholderdomain.CreateStakeholderRequest{
		Name:          r.Name,
		Email:         r.Email,
		Position:      r.Position,
		Department:    r.Department,
		ReceiveAlerts: r.ReceiveAlerts,
	}
}

func (s *Server) ListStakeholders(c *gin.Context) {
	resp, err := s.stakeholderSvc.List(c.Request.Context(), stakeholderdomain.ListStakeholderRequest{
		Search: c.Query("search"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetStakeholderByID(c *gin.Context) {
	resp, err := s.stakeholderSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateStakeholder(c *gin.Context) {
	var req stakeholderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.stakeholderSvc.Create(c.Request.Context(), req.toDomain())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateStakeholder(c *gin.Context) {
	var req stakeholderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.stakeholderSvc.Update(c.Request.Context(), stakeholderdomain.UpdateStakeholderRequest{
		ID:                       c.Param("id"),
		CreateStakeholderRequest: req.toDomain(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteStakeholder(c *gin.Context) {
	if err := s.stakeholderSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
