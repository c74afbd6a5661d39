package service

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jafarshop/configurator/internal/config"
	"github.com/jafarshop/configurator/internal/domain"
	"github.com/jafarshop/configurator/pkg/errors"
)

// stubProvisioner returns the requested price from the convergeAt-th read onwards
type stubProvisioner struct {
	mu         sync.Mutex
	createErr  error
	convergeAt int
	readErrs   map[int]error
	price      float64
	label      string
	reads      int
}

func (s *stubProvisioner) CreateVariant(ctx context.Context, shop, catalogItemID string, price float64, label string) (string, error) {
	if s.createErr != nil {
		return "", s.createErr
	}
	s.price = price
	s.label = label
	return "gid://shopify/ProductVariant/1", nil
}

func (s *stubProvisioner) ReadVariantPrice(ctx context.Context, shop, variantID string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if err := s.readErrs[s.reads]; err != nil {
		return 0, err
	}
	if s.convergeAt > 0 && s.reads >= s.convergeAt {
		return s.price, nil
	}
	return s.price - 5, nil
}

type recordedSleeps struct {
	durations []time.Duration
}

func newTestConfirmer(p VariantProvisioner) (*PriceConfirmer, *recordedSleeps) {
	rec := &recordedSleeps{}
	c := NewPriceConfirmer(p, config.DefaultConfirmationConfig(), nil, zap.NewNop())
	c.sleep = func(ctx context.Context, d time.Duration) error {
		rec.durations = append(rec.durations, d)
		return ctx.Err()
	}
	return c, rec
}

var testRequest = domain.VariantProvisioningRequest{
	Shop:          "example.myshopify.com",
	CatalogItemID: "42",
	Price:         189.99,
	Fingerprint:   "1x2y3z",
}

func TestConfirm_NeverConverges(t *testing.T) {
	p := &stubProvisioner{}
	c, sleeps := newTestConfirmer(p)

	result, err := c.Confirm(context.Background(), testRequest)
	require.NoError(t, err)

	assert.Equal(t, "gid://shopify/ProductVariant/1", result.VariantID)
	assert.False(t, result.PriceVerified)
	assert.Equal(t, 15, result.PollAttempts)
	assert.Equal(t, domain.ConfirmationExhausted, result.State)
	assert.Equal(t, 15, p.reads)
	// No settle delay after exhaustion
	assert.Len(t, sleeps.durations, 15)
}

func TestConfirm_ConvergesOnThirdAttempt(t *testing.T) {
	p := &stubProvisioner{convergeAt: 3}
	c, sleeps := newTestConfirmer(p)

	result, err := c.Confirm(context.Background(), testRequest)
	require.NoError(t, err)

	assert.True(t, result.PriceVerified)
	assert.Equal(t, 3, result.PollAttempts)
	assert.Equal(t, domain.ConfirmationVerified, result.State)
	assert.Equal(t, 3, p.reads)
	assert.Equal(t, []time.Duration{
		2 * time.Second, 2 * time.Second, 2 * time.Second, 3 * time.Second,
	}, sleeps.durations)
}

func TestConfirm_ReadErrorsCountAsAttempts(t *testing.T) {
	p := &stubProvisioner{
		convergeAt: 1,
		readErrs: map[int]error{
			1: stderrors.New("throttled"),
			2: stderrors.New("timeout"),
		},
	}
	c, _ := newTestConfirmer(p)

	result, err := c.Confirm(context.Background(), testRequest)
	require.NoError(t, err)

	assert.True(t, result.PriceVerified)
	assert.Equal(t, 3, result.PollAttempts)
}

func TestConfirm_WithinTolerance(t *testing.T) {
	p := &offsetProvisioner{offset: 0.004}
	c, _ := newTestConfirmer(p)

	result, err := c.Confirm(context.Background(), testRequest)
	require.NoError(t, err)
	assert.True(t, result.PriceVerified)
	assert.Equal(t, 1, result.PollAttempts)

	p = &offsetProvisioner{offset: 0.02}
	c, _ = newTestConfirmer(p)

	result, err = c.Confirm(context.Background(), testRequest)
	require.NoError(t, err)
	assert.False(t, result.PriceVerified)
}

type offsetProvisioner struct {
	offset float64
}

func (o *offsetProvisioner) CreateVariant(ctx context.Context, shop, catalogItemID string, price float64, label string) (string, error) {
	return "v1", nil
}

func (o *offsetProvisioner) ReadVariantPrice(ctx context.Context, shop, variantID string) (float64, error) {
	return testRequest.Price + o.offset, nil
}

func TestConfirm_CreationFailurePropagates(t *testing.T) {
	p := &stubProvisioner{createErr: stderrors.New("product not found")}
	c, sleeps := newTestConfirmer(p)

	result, err := c.Confirm(context.Background(), testRequest)
	assert.Nil(t, result)

	var creationErr *errors.ErrVariantCreation
	require.ErrorAs(t, err, &creationErr)
	assert.Equal(t, "42", creationErr.CatalogItemID)
	assert.Equal(t, 0, p.reads)
	assert.Empty(t, sleeps.durations)
}

func TestConfirm_Cancelled(t *testing.T) {
	p := &stubProvisioner{}
	c := NewPriceConfirmer(p, config.DefaultConfirmationConfig(), nil, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	c.sleep = func(ctx context.Context, d time.Duration) error {
		if p.reads == 2 {
			cancel()
		}
		return ctx.Err()
	}

	result, err := c.Confirm(ctx, testRequest)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)
	assert.Equal(t, domain.ConfirmationCancelled, result.State)
	assert.Equal(t, 2, result.PollAttempts)
	assert.False(t, result.PriceVerified)
}

func TestConfirm_RealSleepBounded(t *testing.T) {
	cfg := config.ConfirmationConfig{
		MaxAttempts:    3,
		PollInterval:   time.Millisecond,
		PriceTolerance: 0.01,
		SettleDelay:    time.Millisecond,
	}
	c := NewPriceConfirmer(&stubProvisioner{}, cfg, nil, zap.NewNop())

	done := make(chan struct{})
	go func() {
		defer close(done)
		result, err := c.Confirm(context.Background(), testRequest)
		assert.NoError(t, err)
		assert.Equal(t, 3, result.PollAttempts)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("confirmation did not return within its budget")
	}
}

func TestVariantLabel(t *testing.T) {
	assert.Equal(t, "1x2y3z", variantLabel(testRequest))

	req := testRequest
	req.Summary = "Rectangle (Width: 20\")"
	assert.Equal(t, "Rectangle (Width: 20\") #1x2y3z", variantLabel(req))

	req.Summary = strings.Repeat("é", 300)
	label := variantLabel(req)
	assert.Equal(t, maxSummaryLength+len(" #1x2y3z"), utf8.RuneCountInString(label))
	assert.True(t, strings.HasSuffix(label, " #1x2y3z"))
}
