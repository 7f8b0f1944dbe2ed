package server

import (
	"net/http"

	bookingdomain "github.com/dealerstack/vaahan/internal/booking/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) CreateBooking(c *gin.Context) {
	actor, ok := s.mustActor(c)
	if !ok {
		return
	}

	var req bookingdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.Actor = actor

	booking, err := s.bookingSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": booking})
}

func (s *Server) GetBooking(c *gin.Context) {
	booking, err := s.bookingSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": booking})
}
