package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/configurator/internal/domain"
	"github.com/jafarshop/configurator/internal/repository"
	"github.com/jafarshop/configurator/pkg/errors"
)

const shopContextKey = "shop"

// AuthMiddleware resolves the calling shop from its Bearer API key
func AuthMiddleware(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		apiKey, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(apiKey) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing API key"})
			return
		}

		shop, err := repos.Shop.GetByAPIKey(c.Request.Context(), strings.TrimSpace(apiKey))
		if err != nil {
			if _, ok := err.(*errors.ErrUnauthorized); ok {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid API key"})
				return
			}
			logger.Error("Failed to authenticate shop", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.Set(shopContextKey, shop)
		c.Next()
	}
}

// GetShopFromContext returns the shop set by AuthMiddleware
func GetShopFromContext(c *gin.Context) (*domain.Shop, bool) {
	v, ok := c.Get(shopContextKey)
	if !ok {
		return nil, false
	}
	shop, ok := v.(*domain.Shop)
	return shop, ok
}
