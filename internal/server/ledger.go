package server

import (
	"net/http"

	ledgerdomain "github.com/dealerstack/vaahan/internal/ledger/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) AddDebit(c *gin.Context) {
	actor, ok := s.mustActor(c)
	if !ok {
		return
	}

	var req ledgerdomain.AddDebitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.BookingID = c.Param("id")
	req.Actor = actor

	entry, err := s.ledgerSvc.AddDebit(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": entry})
}

func (s *Server) UpdateLedgerEntry(c *gin.Context) {
	actor, ok := s.mustActor(c)
	if !ok {
		return
	}

	var req ledgerdomain.UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.EntryID = c.Param("id")
	req.Actor = actor

	entry, err := s.ledgerSvc.UpdateEntryAmount(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entry})
}

func (s *Server) ListLedgerEntries(c *gin.Context) {
	entries, err := s.ledgerSvc.ListByBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entries})
}
