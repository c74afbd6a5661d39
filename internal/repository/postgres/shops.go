package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/jafarshop/configurator/internal/domain"
	"github.com/jafarshop/configurator/pkg/errors"
)

type shopRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewShopRepository creates a new shop repository
func NewShopRepository(db *sql.DB, logger *zap.Logger) *shopRepository {
	return &shopRepository{
		db:     db,
		logger: logger,
	}
}

func (r *shopRepository) GetByAPIKey(ctx context.Context, apiKey string) (*domain.Shop, error) {
	// bcrypt hashes are salted, so the key is checked against every active shop
	query := `
		SELECT id, name, shop_domain, api_key_hash, is_active, created_at, updated_at
		FROM shops
		WHERE is_active = true
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query shops", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var shop domain.Shop
		err := rows.Scan(
			&shop.ID,
			&shop.Name,
			&shop.ShopDomain,
			&shop.APIKeyHash,
			&shop.IsActive,
			&shop.CreatedAt,
			&shop.UpdatedAt,
		)
		if err != nil {
			r.logger.Warn("Skipping unreadable shop row", zap.Error(err))
			continue
		}

		if err := bcrypt.CompareHashAndPassword([]byte(shop.APIKeyHash), []byte(apiKey)); err == nil {
			return &shop, nil
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return nil, &errors.ErrUnauthorized{Message: "invalid API key"}
}

func (r *shopRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Shop, error) {
	query := `
		SELECT id, name, shop_domain, api_key_hash, is_active, created_at, updated_at
		FROM shops
		WHERE id = $1
	`

	var shop domain.Shop
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&shop.ID,
		&shop.Name,
		&shop.ShopDomain,
		&shop.APIKeyHash,
		&shop.IsActive,
		&shop.CreatedAt,
		&shop.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "shop", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get shop by ID", zap.Error(err))
		return nil, err
	}

	return &shop, nil
}

func (r *shopRepository) Create(ctx context.Context, shop *domain.Shop) error {
	query := `
		INSERT INTO shops (id, name, shop_domain, api_key_hash, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	now := time.Now()
	if shop.ID == uuid.Nil {
		shop.ID = uuid.New()
	}
	if shop.CreatedAt.IsZero() {
		shop.CreatedAt = now
	}
	if shop.UpdatedAt.IsZero() {
		shop.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx, query,
		shop.ID,
		shop.Name,
		shop.ShopDomain,
		shop.APIKeyHash,
		shop.IsActive,
		shop.CreatedAt,
		shop.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create shop", zap.Error(err))
		return err
	}

	return nil
}

func (r *shopRepository) Update(ctx context.Context, shop *domain.Shop) error {
	query := `
		UPDATE shops
		SET name = $2, shop_domain = $3, api_key_hash = $4, is_active = $5, updated_at = $6
		WHERE id = $1
	`

	shop.UpdatedAt = time.Now()

	res, err := r.db.ExecContext(ctx, query,
		shop.ID,
		shop.Name,
		shop.ShopDomain,
		shop.APIKeyHash,
		shop.IsActive,
		shop.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to update shop", zap.Error(err))
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &errors.ErrNotFound{Resource: "shop", ID: shop.ID.String()}
	}

	return nil
}
