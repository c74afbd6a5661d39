package api

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jafarshop/configurator/internal/catalog"
	"github.com/jafarshop/configurator/internal/config"
	"github.com/jafarshop/configurator/internal/domain"
	"github.com/jafarshop/configurator/internal/guard"
	"github.com/jafarshop/configurator/internal/metrics"
	"github.com/jafarshop/configurator/internal/repository"
	"github.com/jafarshop/configurator/internal/service"
	"github.com/jafarshop/configurator/pkg/errors"
)

const testAPIKey = "shop-key"

var testShop = &domain.Shop{ID: uuid.New(), Name: "Cushions", ShopDomain: "example.myshopify.com", IsActive: true}

type stubShops struct {
	repository.ShopRepository
}

func (stubShops) GetByAPIKey(ctx context.Context, apiKey string) (*domain.Shop, error) {
	if apiKey != testAPIKey {
		return nil, &errors.ErrUnauthorized{Message: "invalid API key"}
	}
	return testShop, nil
}

type memoryEvents struct {
	mu     sync.Mutex
	events []*domain.ProvisioningEvent
}

func (m *memoryEvents) Create(ctx context.Context, event *domain.ProvisioningEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *memoryEvents) List(ctx context.Context, filter repository.ProvisioningEventFilter) ([]*domain.ProvisioningEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.ProvisioningEvent
	for _, e := range m.events {
		if filter.ShopID != nil && e.ShopID != *filter.ShopID {
			continue
		}
		if filter.State != "" && e.State != filter.State {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// echoProvisioner stores the created price and reads it straight back
type echoProvisioner struct {
	createErr error
	price     float64
}

func (p *echoProvisioner) CreateVariant(ctx context.Context, shop, catalogItemID string, price float64, label string) (string, error) {
	if p.createErr != nil {
		return "", p.createErr
	}
	p.price = price
	return "gid://shopify/ProductVariant/77", nil
}

func (p *echoProvisioner) ReadVariantPrice(ctx context.Context, shop, variantID string) (float64, error) {
	return p.price, nil
}

type testServer struct {
	router *gin.Engine
	events *memoryEvents
}

func newTestServer(t *testing.T, provisioner service.VariantProvisioner) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cat, err := catalog.Load("../catalog/testdata/catalog.yaml")
	require.NoError(t, err)

	events := &memoryEvents{}
	repos := &repository.Repositories{Shop: stubShops{}, ProvisioningEvent: events}
	m := metrics.New()

	confirmCfg := config.ConfirmationConfig{MaxAttempts: 3, PriceTolerance: 0.01}
	confirmer := service.NewPriceConfirmer(provisioner, confirmCfg, m, zap.NewNop())
	svc := service.NewPricingService(cat, confirmer, guard.NewInMemoryGuard(), events, confirmCfg, m, zap.NewNop())

	cfg := &config.Config{Environment: "test"}
	return &testServer{
		router: NewRouter(cfg, repos, svc, m, zap.NewNop()),
		events: events,
	}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, authorized bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authorized {
		req.Header.Set("Authorization", "Bearer "+testAPIKey)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

var completeSelection = map[string]interface{}{
	"shape_id":   "rectangle",
	"dimensions": map[string]float64{"width": 20, "depth": 20, "thickness": 3},
	"options":    map[string]string{"fabric": "canvas", "fill": "foam"},
	"quantity":   2,
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, &echoProvisioner{})
	rec := s.do(t, http.MethodGet, "/health", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetCatalog_HidesPricingInternals(t *testing.T) {
	s := newTestServer(t, &echoProvisioner{})
	rec := s.do(t, http.MethodGet, "/v1/catalog", nil, false)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"rectangle"`)
	assert.Contains(t, body, `"Velvet"`)
	assert.NotContains(t, body, "surface_area_formula")
	assert.NotContains(t, body, "price_per_sq_inch")
	assert.NotContains(t, body, "margin")
}

func TestQuote(t *testing.T) {
	s := newTestServer(t, &echoProvisioner{})

	rec := s.do(t, http.MethodPost, "/v1/quotes", completeSelection, false)
	require.Equal(t, http.StatusOK, rec.Code)

	var quote service.Quote
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))
	assert.True(t, quote.Breakdown.Complete)
	assert.Greater(t, quote.Breakdown.UnitTotal, 0.0)
	assert.Equal(t, 2, quote.Breakdown.Quantity)
	assert.NotEmpty(t, quote.Fingerprint)

	rec = s.do(t, http.MethodPost, "/v1/quotes", map[string]interface{}{"shape_id": "rectangle"}, false)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))
	assert.False(t, quote.Breakdown.Complete)
}

func TestQuoteOrder_UnknownPiece(t *testing.T) {
	s := newTestServer(t, &echoProvisioner{})

	rec := s.do(t, http.MethodPost, "/v1/quotes/multi", map[string]interface{}{
		"fabric_id": "canvas",
		"pieces":    []map[string]interface{}{{"piece_id": "ottoman"}},
	}, false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProvisionVariant(t *testing.T) {
	s := newTestServer(t, &echoProvisioner{})

	req := map[string]interface{}{"catalog_item_id": "42", "selection": completeSelection}

	rec := s.do(t, http.MethodPost, "/v1/variants", req, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/v1/variants", req, true)
	require.Equal(t, http.StatusCreated, rec.Code)

	var out service.Provision
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.True(t, out.PriceVerified)
	assert.Equal(t, 1, out.PollAttempts)
	assert.Equal(t, domain.ConfirmationVerified, out.State)
	assert.Equal(t, "gid://shopify/ProductVariant/77", out.CartLine.VariantID)
	assert.Equal(t, 2, out.CartLine.Quantity)
	assert.NotEmpty(t, out.CartLine.Properties)

	rec = s.do(t, http.MethodGet, "/v1/admin/provisioning?state=VERIFIED", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"variant_id":"gid://shopify/ProductVariant/77"`)
}

func TestProvisionVariant_Errors(t *testing.T) {
	tests := []struct {
		name        string
		provisioner *echoProvisioner
		body        map[string]interface{}
		wantStatus  int
		wantError   string
	}{
		{
			name:        "missing catalog item",
			provisioner: &echoProvisioner{},
			body:        map[string]interface{}{"selection": completeSelection},
			wantStatus:  http.StatusUnprocessableEntity,
			wantError:   "validation failed",
		},
		{
			name:        "both selection and order",
			provisioner: &echoProvisioner{},
			body:        map[string]interface{}{"catalog_item_id": "42", "selection": completeSelection, "order": map[string]interface{}{}},
			wantStatus:  http.StatusUnprocessableEntity,
			wantError:   "validation failed",
		},
		{
			name:        "incomplete selection",
			provisioner: &echoProvisioner{},
			body:        map[string]interface{}{"catalog_item_id": "42", "selection": map[string]interface{}{"shape_id": "rectangle"}},
			wantStatus:  http.StatusUnprocessableEntity,
			wantError:   "selection incomplete",
		},
		{
			name:        "backend rejects variant",
			provisioner: &echoProvisioner{createErr: stderrors.New("Product does not exist")},
			body:        map[string]interface{}{"catalog_item_id": "404", "selection": completeSelection},
			wantStatus:  http.StatusBadGateway,
			wantError:   "could not create your configuration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, tt.provisioner)

			rec := s.do(t, http.MethodPost, "/v1/variants", tt.body, true)
			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantError, resp["error"])
			assert.NotContains(t, rec.Body.String(), "Product does not exist")
		})
	}
}

func TestListProvisioningEvents_Validation(t *testing.T) {
	s := newTestServer(t, &echoProvisioner{})

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/v1/admin/provisioning", nil, false).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/v1/admin/provisioning?state=POLLING", nil, true).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/v1/admin/provisioning?limit=0", nil, true).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/v1/admin/provisioning?offset=x", nil, true).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/admin/provisioning", nil, true).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, &echoProvisioner{})
	s.do(t, http.MethodGet, "/health", nil, false)

	rec := s.do(t, http.MethodGet, "/metrics", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `configurator_http_requests_total{method="GET",route="/health",status="200"} 1`)
}
