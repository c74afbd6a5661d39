package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/configurator/internal/catalog"
	"github.com/jafarshop/configurator/internal/config"
	"github.com/jafarshop/configurator/internal/domain"
	"github.com/jafarshop/configurator/internal/guard"
	"github.com/jafarshop/configurator/internal/metrics"
	"github.com/jafarshop/configurator/internal/pricing"
	"github.com/jafarshop/configurator/internal/repository"
	"github.com/jafarshop/configurator/pkg/errors"
)

// Quote is a priced single-piece selection
type Quote struct {
	Breakdown   domain.PriceBreakdown `json:"breakdown"`
	Fingerprint string                `json:"fingerprint,omitempty"`
}

// OrderQuote is a priced multi-piece selection
type OrderQuote struct {
	Breakdown   domain.OrderBreakdown `json:"breakdown"`
	Fingerprint string                `json:"fingerprint,omitempty"`
}

// ProvisionInput asks for a confirmed variant for exactly one of Selection or Order
type ProvisionInput struct {
	// ActionKey identifies one add-to-cart click; the fingerprint is used when empty
	ActionKey     string
	CatalogItemID string
	Selection     *catalog.SelectionInput
	Order         *catalog.OrderInput
}

// Provision is the outcome of an add-to-cart: the confirmed variant and the cart line to submit
type Provision struct {
	domain.VariantProvisioningResult
	Fingerprint string          `json:"fingerprint"`
	UnitPrice   float64         `json:"unit_price"`
	CartLine    domain.CartLine `json:"cart_line"`
}

// PricingService prices selections against the loaded catalog and provisions confirmed variants
type PricingService struct {
	catalog   *catalog.Catalog
	composer  *pricing.Composer
	confirmer *PriceConfirmer
	guard     guard.Guard
	events    repository.ProvisioningEventRepository
	metrics   *metrics.Metrics
	guardTTL  time.Duration
	logger    *zap.Logger
}

// NewPricingService creates a new pricing service. events may be nil.
func NewPricingService(
	cat *catalog.Catalog,
	confirmer *PriceConfirmer,
	g guard.Guard,
	events repository.ProvisioningEventRepository,
	cfg config.ConfirmationConfig,
	m *metrics.Metrics,
	logger *zap.Logger,
) *PricingService {
	return &PricingService{
		catalog:   cat,
		composer:  pricing.NewComposer(logger),
		confirmer: confirmer,
		guard:     g,
		events:    events,
		metrics:   m,
		guardTTL:  confirmationBudget(cfg) + 30*time.Second,
		logger:    logger,
	}
}

// confirmationBudget is the longest a single confirmation can run
func confirmationBudget(cfg config.ConfirmationConfig) time.Duration {
	return time.Duration(cfg.MaxAttempts)*cfg.PollInterval + cfg.SettleDelay
}

// Catalog returns the catalog the service prices against
func (s *PricingService) Catalog() *catalog.Catalog {
	return s.catalog
}

// Quote prices a single-piece selection. Incomplete selections are not an error.
func (s *PricingService) Quote(in catalog.SelectionInput) *Quote {
	sel := s.catalog.Resolve(in)
	b := s.composer.Compose(sel, s.catalog.Settings)
	s.metrics.ObserveQuote("single", b.Complete)

	q := &Quote{Breakdown: b}
	if b.Complete {
		q.Fingerprint = pricing.Fingerprint(sel, b.UnitTotal)
	}
	return q
}

// QuoteOrder prices a multi-piece selection
func (s *PricingService) QuoteOrder(in catalog.OrderInput) (*OrderQuote, error) {
	order, err := s.catalog.ResolveOrder(in)
	if err != nil {
		return nil, err
	}
	b := s.composer.ComposeOrder(order, s.catalog.Settings)
	s.metrics.ObserveQuote("multi", b.Complete)

	q := &OrderQuote{Breakdown: b}
	if b.Complete {
		q.Fingerprint = pricing.FingerprintOrder(order, b.UnitTotal)
	}
	return q, nil
}

// priced is the server-side price of a provisioning request
type priced struct {
	unitPrice   float64
	quantity    int
	fingerprint string
	summary     string
	properties  map[string]string
}

func (s *PricingService) price(in ProvisionInput) (*priced, error) {
	switch {
	case in.Selection != nil && in.Order == nil:
		sel := s.catalog.Resolve(*in.Selection)
		b := s.composer.Compose(sel, s.catalog.Settings)
		if !b.Complete {
			return nil, &errors.ErrIncompleteSelection{Missing: b.Missing}
		}
		fp := pricing.Fingerprint(sel, b.UnitTotal)
		return &priced{
			unitPrice:   b.UnitTotal,
			quantity:    b.Quantity,
			fingerprint: fp,
			summary:     pricing.Summary(sel),
			properties:  pricing.CartProperties(sel, b, fp),
		}, nil

	case in.Order != nil && in.Selection == nil:
		order, err := s.catalog.ResolveOrder(*in.Order)
		if err != nil {
			return nil, err
		}
		b := s.composer.ComposeOrder(order, s.catalog.Settings)
		if !b.Complete {
			return nil, &errors.ErrIncompleteSelection{Missing: b.Missing}
		}
		fp := pricing.FingerprintOrder(order, b.UnitTotal)
		return &priced{
			unitPrice:   b.UnitTotal,
			quantity:    b.Quantity,
			fingerprint: fp,
			summary:     pricing.OrderSummary(order),
			properties:  pricing.OrderCartProperties(order, b, fp),
		}, nil

	default:
		return nil, fmt.Errorf("exactly one of selection or order is required")
	}
}

// Provision prices the selection, creates a variant at that price, confirms it
// and returns the cart line the storefront should submit.
func (s *PricingService) Provision(ctx context.Context, shop *domain.Shop, in ProvisionInput) (*Provision, error) {
	p, err := s.price(in)
	if err != nil {
		return nil, err
	}

	key := in.ActionKey
	if key == "" {
		key = p.fingerprint
	}
	key = shop.ID.String() + ":" + key

	token, acquired, err := s.guard.Acquire(ctx, key, s.guardTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to check in-flight provisioning: %w", err)
	}
	if !acquired {
		return nil, &errors.ErrProvisioningInProgress{Key: key}
	}
	defer func() {
		if err := s.guard.Release(context.WithoutCancel(ctx), key, token); err != nil {
			s.logger.Warn("Failed to release in-flight key", zap.String("key", key), zap.Error(err))
		}
	}()

	req := domain.VariantProvisioningRequest{
		Shop:          shop.ShopDomain,
		CatalogItemID: in.CatalogItemID,
		Price:         p.unitPrice,
		Fingerprint:   p.fingerprint,
		Summary:       p.summary,
	}

	result, err := s.confirmer.Confirm(ctx, req)
	s.record(ctx, shop, req, result, err)
	if err != nil {
		return nil, err
	}

	return &Provision{
		VariantProvisioningResult: *result,
		Fingerprint:               p.fingerprint,
		UnitPrice:                 p.unitPrice,
		CartLine: domain.CartLine{
			VariantID:  result.VariantID,
			Quantity:   p.quantity,
			Properties: p.properties,
		},
	}, nil
}

// record writes the audit event. Failures are logged only.
func (s *PricingService) record(
	ctx context.Context,
	shop *domain.Shop,
	req domain.VariantProvisioningRequest,
	result *domain.VariantProvisioningResult,
	confirmErr error,
) {
	if s.events == nil {
		return
	}

	event := &domain.ProvisioningEvent{
		ShopID:        shop.ID,
		ShopDomain:    shop.ShopDomain,
		CatalogItemID: req.CatalogItemID,
		Fingerprint:   req.Fingerprint,
		Price:         req.Price,
		State:         domain.ConfirmationFailed,
	}
	if result != nil {
		variantID := result.VariantID
		event.VariantID = &variantID
		event.PriceVerified = result.PriceVerified
		event.PollAttempts = result.PollAttempts
		event.State = result.State
	}
	if confirmErr != nil {
		msg := confirmErr.Error()
		event.ErrorMessage = &msg
	}

	if err := s.events.Create(context.WithoutCancel(ctx), event); err != nil {
		s.logger.Error("Failed to record provisioning event",
			zap.String("shop", shop.ShopDomain),
			zap.String("fingerprint", req.Fingerprint),
			zap.Error(err),
		)
	}
}
