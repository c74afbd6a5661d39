package pricing

import (
	"math"

	"go.uber.org/zap"

	"github.com/jafarshop/configurator/internal/domain"
	"github.com/jafarshop/configurator/internal/formula"
)

// Composer turns resolved selections into price breakdowns. It holds no
// state besides its logger, so one Composer can serve every shopper.
type Composer struct {
	logger *zap.Logger
}

// NewComposer creates a new price composer
func NewComposer(logger *zap.Logger) *Composer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Composer{logger: logger}
}

// Compose prices a single piece. A selection that cannot be priced yet yields
// an incomplete breakdown with every amount at zero.
func (c *Composer) Compose(sel domain.Selection, settings domain.PricingSettings) domain.PriceBreakdown {
	missing := missingSelections(&sel, true, false)
	if len(missing) > 0 {
		return incomplete(missing)
	}

	b := c.composeUnit(&sel, sel.Fabric, sel.Option(domain.SectionProfile), settings)
	unitTotal := b.PostMarginUnit

	// Fabric and fill discounts add up; they are not compounded.
	b.DiscountPercent = sel.Fabric.Discount() + sel.Option(domain.SectionFill).Discount()
	if b.DiscountPercent > 0 {
		discounted := math.Max(0, unitTotal*(1-b.DiscountPercent/100))
		b.DiscountAmount = unitTotal - discounted
		unitTotal = discounted
	}

	b.PanelCount = 1
	if sel.Shape.Is2D && sel.Shape.EnablePanels && sel.PanelCount > 1 {
		b.PanelCount = sel.PanelCount
		unitTotal *= float64(sel.PanelCount)
	}

	b.UnitTotal = unitTotal
	b.Quantity = quantityOrOne(sel.Quantity)
	b.Total = unitTotal * float64(b.Quantity)
	return b
}

// composeUnit runs the cost steps shared by single and multi-piece pricing,
// from surface area through margin. The order of the steps is significant.
func (c *Composer) composeUnit(
	sel *domain.Selection,
	fabric *domain.PricedOption,
	profile *domain.PricedOption,
	settings domain.PricingSettings,
) domain.PriceBreakdown {
	b := domain.PriceBreakdown{Complete: true, Addons: []domain.AddonCharge{}}

	areaFormula := sel.Shape.SurfaceAreaFormula
	if profile != nil && profile.Weatherproof && sel.Shape.SurfaceAreaWithoutBaseFormula != "" {
		areaFormula = sel.Shape.SurfaceAreaWithoutBaseFormula
	}
	b.SurfaceArea = c.evaluate(sel.Shape, "surface_area", areaFormula, sel.Dimensions)
	b.Volume = c.evaluate(sel.Shape, "volume", sel.Shape.VolumeFormula, sel.Dimensions)

	b.ConversionMultiplier = 1 + settings.ConversionPercent/100

	b.FabricCost = b.SurfaceArea * fabric.PricePerSqInch * b.ConversionMultiplier
	if fill := sel.Option(domain.SectionFill); fill != nil {
		b.FillCost = b.Volume * fill.PricePerCubicInch * b.ConversionMultiplier
	}

	if ties := sel.Option(domain.SectionTies); ties != nil {
		b.TiesCost = ties.Price * b.ConversionMultiplier
	}
	if fabricTies := sel.Option(domain.SectionFabricTies); fabricTies != nil {
		b.FabricTiesCost = fabricTies.Price * b.ConversionMultiplier
	}

	b.BaseSubtotal = b.FabricCost + b.FillCost

	// Design is charged on fabric alone.
	if design := sel.Option(domain.SectionDesign); design != nil {
		b.DesignPercent = design.Percent
		b.DesignCost = b.FabricCost * design.Percent / 100
	}

	addonsTotal := 0.0
	for _, section := range domain.PercentAddonSections {
		opt := sel.Option(section)
		if section == domain.SectionProfile {
			opt = profile
		}
		if opt == nil {
			continue
		}
		cost := b.BaseSubtotal * opt.Percent / 100
		b.Addons = append(b.Addons, domain.AddonCharge{
			Section:  section,
			OptionID: opt.ID,
			Name:     opt.Name,
			Percent:  opt.Percent,
			Cost:     cost,
		})
		addonsTotal += cost
	}

	b.SubtotalAfterAddons = b.BaseSubtotal + b.DesignCost + addonsTotal + b.TiesCost + b.FabricTiesCost

	b.ShippingLabourBase = b.SubtotalAfterAddons
	if !settings.TiesIncludeInShippingLabour {
		b.ShippingLabourBase = b.SubtotalAfterAddons - b.TiesCost - b.FabricTiesCost
	}
	b.ShippingCost = b.ShippingLabourBase * settings.ShippingPercent / 100
	b.LabourCost = b.ShippingLabourBase * settings.LabourPercent / 100

	b.PreTotalUnit = b.SubtotalAfterAddons + b.ShippingCost + b.LabourCost

	b.MarginPercent = ResolveMargin(b.PreTotalUnit, settings).AdjustmentPercent
	b.MarginAmount = b.PreTotalUnit * b.MarginPercent / 100
	b.PostMarginUnit = b.PreTotalUnit + b.MarginAmount

	return b
}

func (c *Composer) evaluate(shape *domain.Shape, kind, expr string, dims map[string]float64) float64 {
	v, err := formula.EvaluateErr(expr, dims)
	if err != nil {
		c.logger.Warn("Formula evaluation failed",
			zap.String("shape_id", shape.ID),
			zap.String("formula_kind", kind),
			zap.Error(err),
		)
	}
	return v
}

// missingSelections lists what still has to be chosen before a price exists.
// requireFabric is false for pieces, whose fabric is checked order-wide.
func missingSelections(sel *domain.Selection, requireFabric, fillWhenVisible bool) []string {
	var missing []string

	if sel.Shape == nil {
		return []string{"shape"}
	}
	for _, field := range sel.Shape.InputFields {
		if !field.Required {
			continue
		}
		if _, ok := sel.Dimensions[field.Key]; !ok {
			missing = append(missing, "dimension:"+field.Key)
		}
	}

	if requireFabric && sel.Fabric == nil {
		missing = append(missing, "fabric")
	}

	for _, section := range domain.AllSections {
		if section == domain.SectionFabric {
			continue
		}
		needed := sel.Sections.Required(section)
		if section == domain.SectionFill && fillWhenVisible && sel.Sections.Visible(section) {
			needed = true
		}
		if needed && sel.Option(section) == nil {
			missing = append(missing, string(section))
		}
	}

	return missing
}

func incomplete(missing []string) domain.PriceBreakdown {
	return domain.PriceBreakdown{
		Complete: false,
		Missing:  missing,
		Addons:   []domain.AddonCharge{},
	}
}

func quantityOrOne(q int) int {
	if q < 1 {
		return 1
	}
	return q
}
