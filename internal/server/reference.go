package server

import (
	"net/http"
	"strings"

	refdomain "github.com/dealerstack/vaahan/internal/reference/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) ListCashLocations(c *gin.Context) {
	items, err := s.refrepo.ListCashLocations(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) ListBanks(c *gin.Context) {
	items, err := s.refrepo.ListBanks(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) ListFinanceProviders(c *gin.Context) {
	items, err := s.refrepo.ListFinanceProviders(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) ListSubdealers(c *gin.Context) {
	items, err := s.refrepo.ListSubdealers(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) ListVehicleModels(c *gin.Context) {
	items, err := s.refrepo.ListVehicleModels(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) ListPriceHeaders(c *gin.Context) {
	productType := refdomain.ProductType(strings.TrimSpace(c.Query("product_type")))
	if productType == "" {
		AbortWithError(c, newValidationError("product_type", "invalid_product_type", "invalid product type"))
		return
	}

	items, err := s.refrepo.ListPriceHeaders(c.Request.Context(), productType)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}
