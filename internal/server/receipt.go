package server

import (
	"net/http"

	receiptdomain "github.com/dealerstack/vaahan/internal/receipt/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) AddReceipt(c *gin.Context) {
	actor, ok := s.mustActor(c)
	if !ok {
		return
	}

	var req receiptdomain.AddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.BookingID = c.Param("id")
	req.Actor = actor

	receipt, err := s.receiptSvc.Add(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": receipt})
}

func (s *Server) CancelReceipt(c *gin.Context) {
	actor, ok := s.mustActor(c)
	if !ok {
		return
	}

	receipt, err := s.receiptSvc.Cancel(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": receipt})
}

func (s *Server) ListReceipts(c *gin.Context) {
	receipts, err := s.receiptSvc.ListByBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": receipts})
}
