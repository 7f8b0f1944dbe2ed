package server

import (
	"net/http"
	"strconv"
	"strings"

	auditdomain "github.com/dealerstack/vaahan/internal/audit/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) RunReconciliation(c *gin.Context) {
	if _, ok := s.mustActor(c); !ok {
		return
	}

	report, err := s.reconciler.CheckAll(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": report})
}

func (s *Server) ListAuditLogs(c *gin.Context) {
	filter := auditdomain.ListFilter{
		Action:   strings.TrimSpace(c.Query("action")),
		TargetID: strings.TrimSpace(c.Query("target_id")),
	}
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			AbortWithError(c, newValidationError("limit", "invalid_limit", "invalid limit"))
			return
		}
		filter.Limit = limit
	}

	logs, err := s.auditSvc.List(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": logs})
}
