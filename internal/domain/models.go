package domain

import (
	"time"

	"github.com/google/uuid"
)

// Shop represents a storefront allowed to call the pricing API
type Shop struct {
	ID         uuid.UUID
	Name       string
	ShopDomain string
	APIKeyHash string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ProvisioningEvent is the audit record of one price confirmation attempt
type ProvisioningEvent struct {
	ID            uuid.UUID
	ShopID        uuid.UUID
	ShopDomain    string
	CatalogItemID string
	VariantID     *string
	Fingerprint   string
	Price         float64
	PriceVerified bool
	PollAttempts  int
	State         ConfirmationState
	ErrorMessage  *string
	CreatedAt     time.Time
}

// VariantProvisioningRequest asks for a priced variant of a catalog item
type VariantProvisioningRequest struct {
	Shop          string
	CatalogItemID string
	Price         float64
	Fingerprint   string
	Summary       string
}

// VariantProvisioningResult is the outcome of a price confirmation
type VariantProvisioningResult struct {
	VariantID     string            `json:"variant_id"`
	PriceVerified bool              `json:"price_verified"`
	PollAttempts  int               `json:"poll_attempts"`
	State         ConfirmationState `json:"state"`
}

// CartLine is the payload the storefront submits to add the configured item
type CartLine struct {
	VariantID  string            `json:"variant_id"`
	Quantity   int               `json:"quantity"`
	Properties map[string]string `json:"properties"`
}
