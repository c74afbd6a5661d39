package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jafarshop/configurator/internal/config"
	"github.com/jafarshop/configurator/internal/logger"
	"github.com/jafarshop/configurator/internal/pricing"
	"github.com/jafarshop/configurator/internal/service"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/find-variant/main.go <product-id> [expected-price]")
		fmt.Println("Example: go run cmd/find-variant/main.go 8123456789 189.99")
		os.Exit(1)
	}

	productID := os.Args[1]
	var expected *float64
	if len(os.Args) > 2 {
		p, err := strconv.ParseFloat(os.Args[2], 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid price %q: %v\n", os.Args[2], err)
			os.Exit(1)
		}
		expected = &p
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("development", cfg.LogLevel, "console")
	defer log.Sync()

	shopifyService := service.NewShopifyService(cfg.Shopify, log)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	fmt.Printf("🔍 Listing variants of product %s on %s\n\n", productID, cfg.Shopify.ShopDomain)

	variants, err := shopifyService.ListVariants(ctx, cfg.Shopify.ShopDomain, productID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list variants: %v\n", err)
		os.Exit(1)
	}

	matches := 0
	for _, v := range variants {
		marker := ""
		if expected != nil {
			if price, err := strconv.ParseFloat(v.Price, 64); err == nil &&
				pricing.PricesMatch(price, *expected, cfg.Confirmation.PriceTolerance) {
				marker = "  ✅ matches"
				matches++
			}
		}
		fmt.Printf("%s  %-40s  %s%s\n", v.ID, v.Title, v.Price, marker)
	}

	fmt.Printf("\n%d variant(s)", len(variants))
	if expected != nil {
		fmt.Printf(", %d at %s", matches, pricing.FormatPrice(*expected))
	}
	fmt.Println()
}
