package server

import (
	"net/http"

	disbursementdomain "github.com/dealerstack/vaahan/internal/disbursement/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) CreateDisbursement(c *gin.Context) {
	actor, ok := s.mustActor(c)
	if !ok {
		return
	}

	var req disbursementdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.BookingID = c.Param("id")
	req.Actor = actor

	disbursement, err := s.disbursementSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": disbursement})
}

func (s *Server) CancelDisbursement(c *gin.Context) {
	actor, ok := s.mustActor(c)
	if !ok {
		return
	}

	disbursement, err := s.disbursementSvc.Cancel(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": disbursement})
}

func (s *Server) ListDisbursements(c *gin.Context) {
	disbursements, err := s.disbursementSvc.ListByBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": disbursements})
}
