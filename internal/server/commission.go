package server

import (
	"net/http"
	"strings"
	"time"

	commissiondomain "github.com/dealerstack/vaahan/internal/commission/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) UpsertCommissionRates(c *gin.Context) {
	actor, ok := s.mustActor(c)
	if !ok {
		return
	}

	var req commissiondomain.UpsertRatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.SubdealerID = c.Param("id")
	req.ModelID = c.Param("modelId")
	req.Actor = actor

	result, err := s.commissionSvc.UpsertRates(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) SetCommissionDateRange(c *gin.Context) {
	actor, ok := s.mustActor(c)
	if !ok {
		return
	}

	var req commissiondomain.SetDateRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.SubdealerID = c.Param("id")
	req.Actor = actor

	result, err := s.commissionSvc.SetDateRange(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) CommissionReport(c *gin.Context) {
	req := commissiondomain.CalculateRequest{SubdealerID: c.Param("id")}

	from, ok := parseDateQuery(c, "from")
	if !ok {
		return
	}
	to, ok := parseDateQuery(c, "to")
	if !ok {
		return
	}
	req.From = from
	req.To = to

	report, err := s.commissionSvc.Calculate(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": report})
}

func (s *Server) ListCommissionHistory(c *gin.Context) {
	history, err := s.commissionSvc.ListHistory(c.Request.Context(), c.Param("id"), c.Param("modelId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": history})
}

func parseDateQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		parsed, err = time.Parse("2006-01-02", raw)
	}
	if err != nil {
		AbortWithError(c, newValidationError(name, "invalid_date", "invalid date"))
		return nil, false
	}
	return &parsed, true
}
