package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/configurator/internal/domain"
	"github.com/jafarshop/configurator/internal/repository"
)

const defaultEventLimit = 50

type provisioningEventRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProvisioningEventRepository creates a new provisioning audit repository
func NewProvisioningEventRepository(db *sql.DB, logger *zap.Logger) *provisioningEventRepository {
	return &provisioningEventRepository{
		db:     db,
		logger: logger,
	}
}

func (r *provisioningEventRepository) Create(ctx context.Context, event *domain.ProvisioningEvent) error {
	query := `
		INSERT INTO provisioning_events (
			id, shop_id, shop_domain, catalog_item_id, variant_id, fingerprint, price,
			price_verified, poll_attempts, state, error_message, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.ShopID,
		event.ShopDomain,
		event.CatalogItemID,
		event.VariantID,
		event.Fingerprint,
		event.Price,
		event.PriceVerified,
		event.PollAttempts,
		string(event.State),
		event.ErrorMessage,
		event.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create provisioning event", zap.Error(err))
		return err
	}

	return nil
}

func (r *provisioningEventRepository) List(ctx context.Context, filter repository.ProvisioningEventFilter) ([]*domain.ProvisioningEvent, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.ShopID != nil {
		args = append(args, *filter.ShopID)
		conditions = append(conditions, fmt.Sprintf("shop_id = $%d", len(args)))
	}
	if filter.State != "" {
		args = append(args, string(filter.State))
		conditions = append(conditions, fmt.Sprintf("state = $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultEventLimit
	}

	query := `
		SELECT id, shop_id, shop_domain, catalog_item_id, variant_id, fingerprint, price,
			price_verified, poll_attempts, state, error_message, created_at
		FROM provisioning_events
	`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, limit, filter.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list provisioning events", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var events []*domain.ProvisioningEvent
	for rows.Next() {
		var (
			event        domain.ProvisioningEvent
			variantID    sql.NullString
			errorMessage sql.NullString
			state        string
		)
		err := rows.Scan(
			&event.ID,
			&event.ShopID,
			&event.ShopDomain,
			&event.CatalogItemID,
			&variantID,
			&event.Fingerprint,
			&event.Price,
			&event.PriceVerified,
			&event.PollAttempts,
			&state,
			&errorMessage,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan provisioning event: %w", err)
		}

		event.State = domain.ConfirmationState(state)
		if variantID.Valid {
			event.VariantID = &variantID.String
		}
		if errorMessage.Valid {
			event.ErrorMessage = &errorMessage.String
		}
		events = append(events, &event)
	}

	return events, rows.Err()
}
