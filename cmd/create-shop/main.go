package main

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/jafarshop/configurator/internal/config"
	"github.com/jafarshop/configurator/internal/domain"
	"github.com/jafarshop/configurator/internal/logger"
	"github.com/jafarshop/configurator/internal/repository/postgres"
	"github.com/jafarshop/configurator/internal/shopify"
)

func main() {
	if len(os.Args) < 4 {
		fmt.Println("Usage: go run cmd/create-shop/main.go <shop-name> <shop-domain> <api-key>")
		fmt.Println("Example: go run cmd/create-shop/main.go \"Cushion Co\" cushion-co.myshopify.com \"cushion-api-key-12345\"")
		os.Exit(1)
	}

	shopName := os.Args[1]
	shopDomain := shopify.NormalizeDomain(os.Args[2])
	apiKey := os.Args[3]

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if shopDomain != shopify.NormalizeDomain(cfg.Shopify.ShopDomain) {
		fmt.Fprintf(os.Stderr, "Warning: %s is not the configured SHOPIFY_SHOP_DOMAIN; variant creation for it will fail\n", shopDomain)
	}

	// Initialize logger
	log := logger.New("development", cfg.LogLevel, "console")
	defer log.Sync()

	// Connect to database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// Hash the API key
	apiKeyHash, err := bcrypt.GenerateFromPassword([]byte(apiKey), 10)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to hash API key: %v\n", err)
		os.Exit(1)
	}

	repos := postgres.NewRepositories(db, log)

	shop := &domain.Shop{
		Name:       shopName,
		ShopDomain: shopDomain,
		APIKeyHash: string(apiKeyHash),
		IsActive:   true,
	}

	if err := repos.Shop.Create(context.Background(), shop); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create shop: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Shop created successfully!\n\n")
	fmt.Printf("Shop ID: %s\n", shop.ID.String())
	fmt.Printf("Shop Name: %s\n", shop.Name)
	fmt.Printf("Shop Domain: %s\n", shop.ShopDomain)
	fmt.Printf("API Key: %s\n", apiKey)
	fmt.Printf("\n⚠️  IMPORTANT: Save this API key securely! You won't be able to see it again.\n")
	fmt.Printf("\nUse this API key in the Authorization header:\n")
	fmt.Printf("Authorization: Bearer %s\n", apiKey)
}
