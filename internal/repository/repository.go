package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/jafarshop/configurator/internal/domain"
)

// Repositories groups the stores the API needs
type Repositories struct {
	Shop              ShopRepository
	ProvisioningEvent ProvisioningEventRepository
}

type ShopRepository interface {
	// GetByAPIKey returns the active shop whose bcrypt hash matches apiKey
	GetByAPIKey(ctx context.Context, apiKey string) (*domain.Shop, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Shop, error)
	Create(ctx context.Context, shop *domain.Shop) error
	Update(ctx context.Context, shop *domain.Shop) error
}

type ProvisioningEventRepository interface {
	Create(ctx context.Context, event *domain.ProvisioningEvent) error
	List(ctx context.Context, filter ProvisioningEventFilter) ([]*domain.ProvisioningEvent, error)
}

// ProvisioningEventFilter narrows an audit listing. Zero values mean no filter.
type ProvisioningEventFilter struct {
	ShopID *uuid.UUID
	State  domain.ConfirmationState
	Limit  int
	Offset int
}
