package handlers

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/configurator/internal/api/middleware"
	"github.com/jafarshop/configurator/internal/catalog"
	"github.com/jafarshop/configurator/internal/service"
	"github.com/jafarshop/configurator/pkg/errors"
)

const (
	msgCreateFailed  = "could not create your configuration"
	msgAddToCartFail = "could not add to cart"
)

// ProvisionVariantRequest is an add-to-cart for a configured item
type ProvisionVariantRequest struct {
	CatalogItemID string                  `json:"catalog_item_id" binding:"required"`
	ActionKey     string                  `json:"action_key"`
	Selection     *catalog.SelectionInput `json:"selection,omitempty"`
	Order         *catalog.OrderInput     `json:"order,omitempty"`
}

// HandleProvisionVariant handles POST /v1/variants
func HandleProvisionVariant(svc *service.PricingService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop, ok := middleware.GetShopFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req ProvisionVariantRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}
		if (req.Selection == nil) == (req.Order == nil) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": "exactly one of selection or order is required",
			})
			return
		}

		actionKey := req.ActionKey
		if actionKey == "" {
			actionKey = c.GetHeader("Idempotency-Key")
		}

		provision, err := svc.Provision(c.Request.Context(), shop, service.ProvisionInput{
			ActionKey:     actionKey,
			CatalogItemID: req.CatalogItemID,
			Selection:     req.Selection,
			Order:         req.Order,
		})
		if err != nil {
			switch e := err.(type) {
			case *errors.ErrIncompleteSelection:
				c.JSON(http.StatusUnprocessableEntity, gin.H{
					"error":   "selection incomplete",
					"missing": e.Missing,
				})
				return
			case *errors.ErrNotFound:
				c.JSON(http.StatusNotFound, gin.H{"error": e.Resource + " not found"})
				return
			case *errors.ErrProvisioningInProgress:
				c.JSON(http.StatusConflict, gin.H{"error": "this item is already being added to your cart"})
				return
			case *errors.ErrVariantCreation:
				logger.Error("Variant creation failed",
					zap.String("shop", shop.ShopDomain),
					zap.String("catalog_item_id", req.CatalogItemID),
					zap.Error(err),
				)
				c.JSON(http.StatusBadGateway, gin.H{"error": msgCreateFailed, "retryable": true})
				return
			}

			if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
				logger.Info("Provisioning abandoned by client", zap.String("shop", shop.ShopDomain))
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": msgAddToCartFail, "retryable": true})
				return
			}

			logger.Error("Failed to provision variant", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": msgAddToCartFail, "retryable": true})
			return
		}

		c.JSON(http.StatusCreated, provision)
	}
}
