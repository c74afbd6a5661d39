package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jafarshop/configurator/internal/domain"
)

// Property keys shown on the cart line
const (
	PropShape       = "Shape"
	PropDimensions  = "Dimensions"
	PropPanels      = "Panels"
	PropUnitPrice   = "Unit Price"
	PropTotalPrice  = "Total Price"
	PropFingerprint = "_Config ID"
	PropAttachment  = "Design Image"
)

// FormatPrice renders an amount the way the commerce backend expects money:
// rounded half away from zero to two decimals.
func FormatPrice(v float64) string {
	return decimal.NewFromFloat(v).Round(2).StringFixed(2)
}

// PricesMatch reports whether two amounts agree within tolerance
func PricesMatch(a, b, tolerance float64) bool {
	diff := decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Abs()
	return diff.LessThanOrEqual(decimal.NewFromFloat(tolerance))
}

// CartProperties builds the flat display properties for a single-piece cart line
func CartProperties(sel domain.Selection, b domain.PriceBreakdown, fingerprint string) map[string]string {
	props := make(map[string]string)
	writeSelectionProperties(props, "", &sel)
	if b.PanelCount > 1 {
		props[PropPanels] = fmt.Sprintf("%d", b.PanelCount)
	}
	props[PropUnitPrice] = FormatPrice(b.UnitTotal)
	props[PropTotalPrice] = FormatPrice(b.Total)
	props[PropFingerprint] = fingerprint
	if sel.AttachmentURL != "" {
		props[PropAttachment] = sel.AttachmentURL
	}
	return props
}

// OrderCartProperties builds the display properties for a multi-piece cart line
func OrderCartProperties(order domain.MultiPieceSelection, b domain.OrderBreakdown, fingerprint string) map[string]string {
	props := make(map[string]string)
	if order.Fabric != nil {
		props[sectionLabel(domain.SectionFabric)] = order.Fabric.Name
	}
	if order.Profile != nil {
		props[sectionLabel(domain.SectionProfile)] = order.Profile.Name
	}
	for i := range order.Pieces {
		piece := &order.Pieces[i]
		prefix := piece.Config.Label
		if prefix == "" {
			prefix = pieceName(*piece, i)
		}
		sel := piece.Selection
		sel.Fabric = nil
		sel.Profile = nil
		writeSelectionProperties(props, prefix+" ", &sel)
		if i < len(b.Pieces) {
			props[prefix+" Price"] = FormatPrice(b.Pieces[i].FinalPrice)
		}
	}
	props[PropUnitPrice] = FormatPrice(b.UnitTotal)
	props[PropTotalPrice] = FormatPrice(b.Total)
	props[PropFingerprint] = fingerprint
	if order.AttachmentURL != "" {
		props[PropAttachment] = order.AttachmentURL
	}
	return props
}

func writeSelectionProperties(props map[string]string, prefix string, sel *domain.Selection) {
	if sel.Shape != nil {
		props[prefix+PropShape] = sel.Shape.Name
		props[prefix+PropDimensions] = DimensionsString(sel.Shape, sel.Dimensions)
	}
	for _, section := range domain.AllSections {
		opt := sel.Option(section)
		if opt == nil {
			continue
		}
		label := sectionLabel(section)
		props[prefix+label] = opt.Name
		props["_"+prefix+label+" ID"] = opt.ID
	}
}

// Summary names a selection for merchants, e.g. `Rectangle (Width: 20", Depth: 18")`
func Summary(sel domain.Selection) string {
	if sel.Shape == nil {
		return ""
	}
	dims := DimensionsString(sel.Shape, sel.Dimensions)
	if dims == "" {
		return sel.Shape.Name
	}
	return sel.Shape.Name + " (" + dims + ")"
}

// OrderSummary lists the order's pieces, e.g. `seat + back`
func OrderSummary(order domain.MultiPieceSelection) string {
	names := make([]string, 0, len(order.Pieces))
	for i := range order.Pieces {
		name := order.Pieces[i].Config.Label
		if name == "" {
			name = pieceName(order.Pieces[i], i)
		}
		names = append(names, name)
	}
	return strings.Join(names, " + ")
}

// DimensionsString renders dimensions in the shape's field order, e.g. `Width: 20", Depth: 18"`
func DimensionsString(shape *domain.Shape, dims map[string]float64) string {
	parts := make([]string, 0, len(shape.InputFields))
	for _, f := range shape.InputFields {
		v, ok := dims[f.Key]
		if !ok {
			continue
		}
		label := f.Label
		if label == "" {
			label = f.Key
		}
		parts = append(parts, fmt.Sprintf("%s: %s%s", label, decimal.NewFromFloat(v).String(), f.Unit))
	}
	return strings.Join(parts, ", ")
}

func sectionLabel(s domain.Section) string {
	switch s {
	case domain.SectionAntiSkid:
		return "Anti-Skid"
	case domain.SectionRodPocket:
		return "Rod Pocket"
	case domain.SectionFabricTies:
		return "Fabric Ties"
	}
	str := string(s)
	return strings.ToUpper(str[:1]) + str[1:]
}
