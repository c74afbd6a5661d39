package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/configurator/internal/config"
	"github.com/jafarshop/configurator/internal/domain"
	"github.com/jafarshop/configurator/internal/metrics"
	"github.com/jafarshop/configurator/internal/pricing"
	"github.com/jafarshop/configurator/pkg/errors"
)

// VariantProvisioner is the commerce backend that stores priced variants
type VariantProvisioner interface {
	CreateVariant(ctx context.Context, shop, catalogItemID string, price float64, label string) (string, error)
	ReadVariantPrice(ctx context.Context, shop, variantID string) (float64, error)
}

// PriceConfirmer creates a variant at an exact price and waits until the
// backend's read path reports that price.
type PriceConfirmer struct {
	provisioner VariantProvisioner
	cfg         config.ConfirmationConfig
	metrics     *metrics.Metrics
	logger      *zap.Logger

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// NewPriceConfirmer creates a new price confirmer
func NewPriceConfirmer(
	provisioner VariantProvisioner,
	cfg config.ConfirmationConfig,
	m *metrics.Metrics,
	logger *zap.Logger,
) *PriceConfirmer {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &PriceConfirmer{
		provisioner: provisioner,
		cfg:         cfg,
		metrics:     m,
		logger:      logger,
		sleep:       sleepContext,
		now:         time.Now,
	}
}

// Confirm runs Created -> Polling -> Verified|Exhausted for one variant.
// Exhaustion is not an error: the variant id is returned with PriceVerified=false.
// If ctx ends while polling, the partial result is returned with ctx.Err().
func (c *PriceConfirmer) Confirm(ctx context.Context, req domain.VariantProvisioningRequest) (*domain.VariantProvisioningResult, error) {
	started := c.now()
	result := &domain.VariantProvisioningResult{}

	variantID, err := c.provisioner.CreateVariant(ctx, req.Shop, req.CatalogItemID, req.Price, variantLabel(req))
	if err != nil {
		c.advance(result, domain.ConfirmationFailed)
		c.metrics.ObserveConfirmation(result.State, 0, c.now().Sub(started))
		return nil, &errors.ErrVariantCreation{CatalogItemID: req.CatalogItemID, Err: err}
	}
	result.VariantID = variantID
	c.advance(result, domain.ConfirmationCreated)
	c.advance(result, domain.ConfirmationPolling)

	for result.PollAttempts < c.cfg.MaxAttempts {
		if err := c.sleep(ctx, c.cfg.PollInterval); err != nil {
			return c.cancel(result, started, err)
		}

		result.PollAttempts++
		stored, err := c.provisioner.ReadVariantPrice(ctx, req.Shop, variantID)
		if err != nil {
			c.logger.Debug("Variant price read failed",
				zap.String("variant_id", variantID),
				zap.Int("attempt", result.PollAttempts),
				zap.Error(err),
			)
			continue
		}

		if pricing.PricesMatch(stored, req.Price, c.cfg.PriceTolerance) {
			c.advance(result, domain.ConfirmationVerified)
			result.PriceVerified = true
			break
		}
	}

	if result.PriceVerified {
		// Checkout reads from a slower replica than the admin API
		_ = c.sleep(ctx, c.cfg.SettleDelay)
		c.logger.Info("Variant price verified",
			zap.String("shop", req.Shop),
			zap.String("variant_id", variantID),
			zap.Int("attempts", result.PollAttempts),
		)
	} else {
		c.advance(result, domain.ConfirmationExhausted)
		c.logger.Warn("Variant price not verified, continuing unverified",
			zap.String("shop", req.Shop),
			zap.String("variant_id", variantID),
			zap.Float64("price", req.Price),
			zap.Int("attempts", result.PollAttempts),
		)
	}

	c.metrics.ObserveConfirmation(result.State, result.PollAttempts, c.now().Sub(started))
	return result, nil
}

func (c *PriceConfirmer) cancel(result *domain.VariantProvisioningResult, started time.Time, err error) (*domain.VariantProvisioningResult, error) {
	c.advance(result, domain.ConfirmationCancelled)
	c.logger.Info("Price confirmation cancelled",
		zap.String("variant_id", result.VariantID),
		zap.Int("attempts", result.PollAttempts),
	)
	c.metrics.ObserveConfirmation(result.State, result.PollAttempts, c.now().Sub(started))
	return result, err
}

func (c *PriceConfirmer) advance(result *domain.VariantProvisioningResult, next domain.ConfirmationState) {
	if !result.State.CanTransitionTo(next) {
		c.logger.Error("Invalid confirmation transition",
			zap.String("from", string(result.State)),
			zap.String("to", string(next)),
		)
		return
	}
	result.State = next
}

// maxSummaryLength keeps option values well under the Admin API's 255 character limit
const maxSummaryLength = 200

// variantLabel names the variant for merchants; the fingerprint ties it to the cart line
func variantLabel(req domain.VariantProvisioningRequest) string {
	if req.Summary == "" {
		return req.Fingerprint
	}
	summary := []rune(req.Summary)
	if len(summary) > maxSummaryLength {
		summary = summary[:maxSummaryLength]
	}
	return string(summary) + " #" + req.Fingerprint
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
