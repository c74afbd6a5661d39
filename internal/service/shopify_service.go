package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/configurator/internal/config"
	"github.com/jafarshop/configurator/internal/pricing"
	"github.com/jafarshop/configurator/internal/shopify"
	"github.com/jafarshop/configurator/pkg/errors"
)

// ConfigurationOptionName is the product option that distinguishes configured variants
const ConfigurationOptionName = "Configuration"

// graphQLExecutor is the part of *shopify.Client the service needs
type graphQLExecutor interface {
	Execute(ctx context.Context, query string, variables map[string]interface{}) (*shopify.GraphQLResponse, error)
}

type shopifyService struct {
	clients map[string]graphQLExecutor
	logger  *zap.Logger
}

// NewShopifyService creates a new Shopify service for the configured shop
func NewShopifyService(cfg config.ShopifyConfig, logger *zap.Logger) *shopifyService {
	client := shopify.NewClient(cfg, logger)
	return &shopifyService{
		clients: map[string]graphQLExecutor{client.ShopDomain(): client},
		logger:  logger,
	}
}

func (s *shopifyService) client(shop string) (graphQLExecutor, error) {
	client, ok := s.clients[shopify.NormalizeDomain(shop)]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "shop", ID: shop}
	}
	return client, nil
}

// CreateVariant adds a variant priced at exactly price to the catalog item's product.
// The option value is never reused, so two identical configurations get two variants.
func (s *shopifyService) CreateVariant(ctx context.Context, shop, catalogItemID string, price float64, label string) (string, error) {
	client, err := s.client(shop)
	if err != nil {
		return "", err
	}

	optionValue := uuid.NewString()[:8]
	if label != "" {
		optionValue = fmt.Sprintf("%s-%s", label, optionValue)
	}

	variables := map[string]interface{}{
		"productId": shopify.ProductGID(catalogItemID),
		"variants": []shopify.ProductVariantsBulkInput{
			{
				Price: pricing.FormatPrice(price),
				OptionValues: []shopify.VariantOptionValue{
					{OptionName: ConfigurationOptionName, Name: optionValue},
				},
				InventoryPolicy: "CONTINUE",
				InventoryItem: &shopify.VariantInventoryItem{
					Tracked:          false,
					RequiresShipping: true,
				},
			},
		},
	}

	resp, err := client.Execute(ctx, shopify.ProductVariantsBulkCreateMutation, variables)
	if err != nil {
		return "", fmt.Errorf("failed to create variant: %w", err)
	}

	var result shopify.ProductVariantsBulkCreatePayload
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return "", fmt.Errorf("failed to parse variant create response: %w", err)
	}

	payload := result.ProductVariantsBulkCreate
	if len(payload.UserErrors) > 0 {
		return "", fmt.Errorf("shopify user errors: %v", payload.UserErrors)
	}
	if len(payload.ProductVariants) == 0 {
		return "", fmt.Errorf("shopify returned no variant for product %s", catalogItemID)
	}

	variantID := payload.ProductVariants[0].ID
	s.logger.Debug("Created configured variant",
		zap.String("shop", shop),
		zap.String("product_id", catalogItemID),
		zap.String("variant_id", variantID),
		zap.String("option_value", optionValue),
	)

	return variantID, nil
}

// ReadVariantPrice reads the variant's current price from the Admin API
func (s *shopifyService) ReadVariantPrice(ctx context.Context, shop, variantID string) (float64, error) {
	client, err := s.client(shop)
	if err != nil {
		return 0, err
	}

	resp, err := client.Execute(ctx, shopify.VariantPriceQuery, map[string]interface{}{
		"id": shopify.VariantGID(variantID),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to read variant price: %w", err)
	}

	var result shopify.VariantPricePayload
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return 0, fmt.Errorf("failed to parse variant price response: %w", err)
	}
	if result.ProductVariant == nil {
		return 0, &errors.ErrNotFound{Resource: "variant", ID: variantID}
	}

	price, err := strconv.ParseFloat(result.ProductVariant.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid variant price %q: %w", result.ProductVariant.Price, err)
	}

	return price, nil
}

// ListVariants returns every variant of a catalog item's product
func (s *shopifyService) ListVariants(ctx context.Context, shop, catalogItemID string) ([]shopify.ProductVariantNode, error) {
	client, err := s.client(shop)
	if err != nil {
		return nil, err
	}

	var (
		variants []shopify.ProductVariantNode
		after    *string
	)
	for {
		variables := map[string]interface{}{
			"id":    shopify.ProductGID(catalogItemID),
			"first": 250,
		}
		if after != nil {
			variables["after"] = *after
		}

		resp, err := client.Execute(ctx, shopify.ProductVariantsQuery, variables)
		if err != nil {
			return nil, fmt.Errorf("failed to list variants: %w", err)
		}

		var result shopify.ProductVariantsPayload
		if err := json.Unmarshal(resp.Data, &result); err != nil {
			return nil, fmt.Errorf("failed to parse variants response: %w", err)
		}
		if result.Product == nil {
			return nil, &errors.ErrNotFound{Resource: "product", ID: catalogItemID}
		}

		for _, edge := range result.Product.Variants.Edges {
			variants = append(variants, edge.Node)
		}

		if !result.Product.Variants.PageInfo.HasNextPage {
			break
		}
		cursor := result.Product.Variants.PageInfo.EndCursor
		after = &cursor
	}

	return variants, nil
}
