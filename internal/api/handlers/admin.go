package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/configurator/internal/api/middleware"
	"github.com/jafarshop/configurator/internal/domain"
	"github.com/jafarshop/configurator/internal/repository"
)

const maxEventLimit = 200

// ProvisioningEventResponse is one audit row
type ProvisioningEventResponse struct {
	ID            string                   `json:"id"`
	CatalogItemID string                   `json:"catalog_item_id"`
	VariantID     *string                  `json:"variant_id,omitempty"`
	Fingerprint   string                   `json:"fingerprint"`
	Price         float64                  `json:"price"`
	PriceVerified bool                     `json:"price_verified"`
	PollAttempts  int                      `json:"poll_attempts"`
	State         domain.ConfirmationState `json:"state"`
	ErrorMessage  *string                  `json:"error_message,omitempty"`
	CreatedAt     string                   `json:"created_at"`
}

// HandleListProvisioningEvents handles GET /v1/admin/provisioning
func HandleListProvisioningEvents(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop, ok := middleware.GetShopFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		filter := repository.ProvisioningEventFilter{ShopID: &shop.ID}

		if state := c.Query("state"); state != "" {
			filter.State = domain.ConfirmationState(state)
			if !filter.State.IsTerminal() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid state"})
				return
			}
		}

		var err error
		if filter.Limit, err = queryInt(c, "limit", 50); err != nil || filter.Limit < 1 || filter.Limit > maxEventLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		if filter.Offset, err = queryInt(c, "offset", 0); err != nil || filter.Offset < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offset"})
			return
		}

		events, err := repos.ProvisioningEvent.List(c.Request.Context(), filter)
		if err != nil {
			logger.Error("Failed to list provisioning events", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		resp := make([]ProvisioningEventResponse, 0, len(events))
		for _, e := range events {
			resp = append(resp, ProvisioningEventResponse{
				ID:            e.ID.String(),
				CatalogItemID: e.CatalogItemID,
				VariantID:     e.VariantID,
				Fingerprint:   e.Fingerprint,
				Price:         e.Price,
				PriceVerified: e.PriceVerified,
				PollAttempts:  e.PollAttempts,
				State:         e.State,
				ErrorMessage:  e.ErrorMessage,
				CreatedAt:     e.CreatedAt.Format(time.RFC3339),
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"events": resp,
			"limit":  filter.Limit,
			"offset": filter.Offset,
		})
	}
}

func queryInt(c *gin.Context, key string, defaultValue int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(raw)
}
