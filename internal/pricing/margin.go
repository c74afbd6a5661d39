package pricing

import (
	"math"

	"github.com/jafarshop/configurator/internal/domain"
)

// MarginResult is the margin adjustment resolved for a price
type MarginResult struct {
	AdjustmentPercent float64
}

// ResolveMargin maps a pre-margin unit price to a margin adjustment using the
// shop's selected method. An unknown method resolves to 0%.
func ResolveMargin(price float64, settings domain.PricingSettings) MarginResult {
	switch settings.MarginCalculationMethod {
	case domain.MarginMethodTier:
		return resolveTier(price, settings.MarginTiers)
	case domain.MarginMethodFormula:
		return resolveFormula(price, settings.MarginFormula)
	}
	return MarginResult{}
}

// resolveTier returns the first tier whose inclusive range contains price
func resolveTier(price float64, tiers []domain.MarginTier) MarginResult {
	for _, tier := range tiers {
		if price >= tier.MinPrice && price <= tier.MaxPrice {
			return MarginResult{AdjustmentPercent: tier.AdjustmentPercent}
		}
	}
	return MarginResult{}
}

// resolveFormula applies the diminishing margin curve. Each branch is
// evaluated on its own; there is no interpolation across thresholds.
func resolveFormula(price float64, f domain.MarginFormula) MarginResult {
	switch {
	case price <= 0:
		return MarginResult{}
	case price <= f.FlatThreshold:
		return MarginResult{AdjustmentPercent: f.FlatPercent}
	case price <= f.FormulaThreshold:
		return MarginResult{AdjustmentPercent: f.LowConst - f.LowCoef*math.Log(price)}
	default:
		return MarginResult{AdjustmentPercent: f.HighConst - f.HighCoef*math.Log(price)}
	}
}
