package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jafarshop/configurator/internal/domain"
)

func TestResolveMargin_Tier(t *testing.T) {
	settings := domain.PricingSettings{
		MarginCalculationMethod: domain.MarginMethodTier,
		MarginTiers: []domain.MarginTier{
			{MinPrice: 0, MaxPrice: 99, AdjustmentPercent: 50},
			{MinPrice: 100, MaxPrice: 999, AdjustmentPercent: 20},
		},
	}

	tests := []struct {
		name  string
		price float64
		want  float64
	}{
		{name: "upper bound of first tier is inclusive", price: 99, want: 50},
		{name: "lower bound of second tier is inclusive", price: 100, want: 20},
		{name: "inside second tier", price: 500, want: 20},
		{name: "above every tier", price: 1000, want: 0},
		{name: "gap between tiers", price: 99.5, want: 0},
		{name: "zero price", price: 0, want: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveMargin(tt.price, settings).AdjustmentPercent)
		})
	}
}

func TestResolveMargin_TierWithoutTiers(t *testing.T) {
	settings := domain.PricingSettings{MarginCalculationMethod: domain.MarginMethodTier}
	assert.Equal(t, 0.0, ResolveMargin(250, settings).AdjustmentPercent)
}

func TestResolveMargin_Formula(t *testing.T) {
	settings := domain.PricingSettings{
		MarginCalculationMethod: domain.MarginMethodFormula,
		MarginFormula:           domain.DefaultMarginFormula(),
	}

	tests := []struct {
		name  string
		price float64
		want  float64
	}{
		{name: "negative price", price: -5, want: 0},
		{name: "zero price", price: 0, want: 0},
		{name: "flat region", price: 50, want: 100},
		{name: "just above flat threshold", price: 60, want: 300 - 52*math.Log(60)},
		{name: "at formula threshold uses low branch", price: 400, want: 300 - 52*math.Log(400)},
		{name: "just above formula threshold uses high branch", price: 401, want: 120 - 20*math.Log(401)},
		{name: "expensive item goes negative", price: 1_000_000, want: 120 - 20*math.Log(1_000_000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ResolveMargin(tt.price, settings).AdjustmentPercent, 1e-9)
		})
	}

	low := ResolveMargin(400, settings).AdjustmentPercent
	high := ResolveMargin(401, settings).AdjustmentPercent
	assert.Less(t, low, 0.0, "low branch at 400 is already negative")
	assert.Greater(t, high, low, "branches are not interpolated across the threshold")
	assert.Less(t, ResolveMargin(1_000_000, settings).AdjustmentPercent, 0.0)
}

func TestResolveMargin_FormulaCustomConstants(t *testing.T) {
	settings := domain.PricingSettings{
		MarginCalculationMethod: domain.MarginMethodFormula,
		MarginFormula: domain.MarginFormula{
			FlatThreshold:    10,
			FlatPercent:      80,
			FormulaThreshold: 100,
			LowConst:         200,
			LowCoef:          30,
			HighConst:        90,
			HighCoef:         10,
		},
	}

	assert.Equal(t, 80.0, ResolveMargin(10, settings).AdjustmentPercent)
	assert.InDelta(t, 200-30*math.Log(50), ResolveMargin(50, settings).AdjustmentPercent, 1e-9)
	assert.InDelta(t, 90-10*math.Log(500), ResolveMargin(500, settings).AdjustmentPercent, 1e-9)
}

func TestResolveMargin_UnknownMethod(t *testing.T) {
	settings := domain.PricingSettings{MarginCalculationMethod: "bogus"}
	assert.Equal(t, 0.0, ResolveMargin(50, settings).AdjustmentPercent)
}
