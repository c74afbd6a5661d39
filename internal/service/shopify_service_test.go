package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jafarshop/configurator/internal/shopify"
	"github.com/jafarshop/configurator/pkg/errors"
)

type fakeExecutor struct {
	responses []string
	queries   []string
	variables []map[string]interface{}
}

func (f *fakeExecutor) Execute(ctx context.Context, query string, variables map[string]interface{}) (*shopify.GraphQLResponse, error) {
	f.queries = append(f.queries, query)
	f.variables = append(f.variables, variables)
	data := f.responses[0]
	f.responses = f.responses[1:]
	return &shopify.GraphQLResponse{Data: json.RawMessage(data)}, nil
}

func newTestShopifyService(exec *fakeExecutor) *shopifyService {
	return &shopifyService{
		clients: map[string]graphQLExecutor{"example.myshopify.com": exec},
		logger:  zap.NewNop(),
	}
}

func TestCreateVariant(t *testing.T) {
	exec := &fakeExecutor{responses: []string{
		`{"productVariantsBulkCreate":{"productVariants":[{"id":"gid://shopify/ProductVariant/9","price":"189.99"}],"userErrors":[]}}`,
	}}
	s := newTestShopifyService(exec)

	id, err := s.CreateVariant(context.Background(), "https://Example.myshopify.com", "42", 189.985, "abc")
	require.NoError(t, err)
	assert.Equal(t, "gid://shopify/ProductVariant/9", id)

	assert.Equal(t, shopify.ProductVariantsBulkCreateMutation, exec.queries[0])
	assert.Equal(t, "gid://shopify/Product/42", exec.variables[0]["productId"])

	variants := exec.variables[0]["variants"].([]shopify.ProductVariantsBulkInput)
	require.Len(t, variants, 1)
	assert.Equal(t, "189.99", variants[0].Price)
	assert.Equal(t, ConfigurationOptionName, variants[0].OptionValues[0].OptionName)
	assert.Regexp(t, `^abc-[0-9a-f]{8}$`, variants[0].OptionValues[0].Name)
}

func TestCreateVariant_UniqueOptionValues(t *testing.T) {
	ok := `{"productVariantsBulkCreate":{"productVariants":[{"id":"v"}],"userErrors":[]}}`
	exec := &fakeExecutor{responses: []string{ok, ok}}
	s := newTestShopifyService(exec)

	_, err := s.CreateVariant(context.Background(), "example.myshopify.com", "42", 10, "same")
	require.NoError(t, err)
	_, err = s.CreateVariant(context.Background(), "example.myshopify.com", "42", 10, "same")
	require.NoError(t, err)

	first := exec.variables[0]["variants"].([]shopify.ProductVariantsBulkInput)[0].OptionValues[0].Name
	second := exec.variables[1]["variants"].([]shopify.ProductVariantsBulkInput)[0].OptionValues[0].Name
	assert.NotEqual(t, first, second)
}

func TestCreateVariant_UserErrors(t *testing.T) {
	exec := &fakeExecutor{responses: []string{
		`{"productVariantsBulkCreate":{"productVariants":[],"userErrors":[{"field":["productId"],"message":"Product does not exist"}]}}`,
	}}
	s := newTestShopifyService(exec)

	_, err := s.CreateVariant(context.Background(), "example.myshopify.com", "404", 10, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Product does not exist")
}

func TestCreateVariant_UnknownShop(t *testing.T) {
	s := newTestShopifyService(&fakeExecutor{})

	_, err := s.CreateVariant(context.Background(), "other.myshopify.com", "42", 10, "")
	_, ok := err.(*errors.ErrNotFound)
	assert.True(t, ok)
}

func TestReadVariantPrice(t *testing.T) {
	exec := &fakeExecutor{responses: []string{
		`{"productVariant":{"id":"gid://shopify/ProductVariant/9","price":"189.99"}}`,
		`{"productVariant":null}`,
	}}
	s := newTestShopifyService(exec)

	price, err := s.ReadVariantPrice(context.Background(), "example.myshopify.com", "9")
	require.NoError(t, err)
	assert.Equal(t, 189.99, price)
	assert.Equal(t, "gid://shopify/ProductVariant/9", exec.variables[0]["id"])

	_, err = s.ReadVariantPrice(context.Background(), "example.myshopify.com", "9")
	_, ok := err.(*errors.ErrNotFound)
	assert.True(t, ok)
}

func TestListVariants_Paginates(t *testing.T) {
	exec := &fakeExecutor{responses: []string{
		`{"product":{"id":"p","title":"Cushion","variants":{"pageInfo":{"hasNextPage":true,"endCursor":"c1"},"edges":[{"node":{"id":"v1","title":"a","price":"1.00"}}]}}}`,
		`{"product":{"id":"p","title":"Cushion","variants":{"pageInfo":{"hasNextPage":false,"endCursor":""},"edges":[{"node":{"id":"v2","title":"b","price":"2.00"}}]}}}`,
	}}
	s := newTestShopifyService(exec)

	variants, err := s.ListVariants(context.Background(), "example.myshopify.com", "42")
	require.NoError(t, err)
	require.Len(t, variants, 2)
	assert.Equal(t, "v2", variants[1].ID)
	assert.Equal(t, "c1", exec.variables[1]["after"])
}
