package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/configurator/internal/catalog"
	"github.com/jafarshop/configurator/internal/service"
	"github.com/jafarshop/configurator/pkg/errors"
)

// HandleQuote handles POST /v1/quotes
func HandleQuote(svc *service.PricingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req catalog.SelectionInput
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, svc.Quote(req))
	}
}

// HandleQuoteOrder handles POST /v1/quotes/multi
func HandleQuoteOrder(svc *service.PricingService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req catalog.OrderInput
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		quote, err := svc.QuoteOrder(req)
		if err != nil {
			if nf, ok := err.(*errors.ErrNotFound); ok {
				c.JSON(http.StatusNotFound, gin.H{"error": nf.Resource + " not found"})
				return
			}
			logger.Error("Failed to quote order", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusOK, quote)
	}
}
