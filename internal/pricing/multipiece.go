package pricing

import (
	"math"
	"strconv"
	"strings"

	"github.com/jafarshop/configurator/internal/domain"
)

const (
	coversOnlyMarker = "covers only"
	// coversOnlyRate is the share of raw material cost removed when a piece ships without fill
	coversOnlyRate = 0.30
)

// ComposeOrder prices a multi-piece order. Every piece is priced on its own
// with the order's shared fabric and profile, then piece prices are summed.
func (c *Composer) ComposeOrder(order domain.MultiPieceSelection, settings domain.PricingSettings) domain.OrderBreakdown {
	selections := make([]domain.Selection, len(order.Pieces))
	var missing []string

	if order.Fabric == nil {
		missing = append(missing, "fabric")
	}
	if len(order.Pieces) == 0 {
		missing = append(missing, "pieces")
	}

	for i, piece := range order.Pieces {
		sel := pieceSelection(piece, order)
		selections[i] = sel
		for _, m := range missingSelections(&sel, false, true) {
			missing = append(missing, pieceName(piece, i)+":"+m)
		}
	}

	quantity := quantityOrOne(order.Quantity)
	if len(missing) > 0 {
		return domain.OrderBreakdown{
			Complete: false,
			Missing:  missing,
			Pieces:   []domain.PieceBreakdown{},
			Quantity: quantity,
		}
	}

	result := domain.OrderBreakdown{
		Complete: true,
		Pieces:   make([]domain.PieceBreakdown, 0, len(order.Pieces)),
		Quantity: quantity,
	}
	for i, piece := range order.Pieces {
		pb := c.composePiece(piece, selections[i], order, settings)
		result.Pieces = append(result.Pieces, pb)
		result.UnitTotal += pb.FinalPrice
	}
	result.Total = result.UnitTotal * float64(quantity)
	return result
}

func (c *Composer) composePiece(
	piece domain.Piece,
	sel domain.Selection,
	order domain.MultiPieceSelection,
	settings domain.PricingSettings,
) domain.PieceBreakdown {
	b := c.composeUnit(&sel, order.Fabric, order.Profile, settings)
	pb := domain.PieceBreakdown{
		PieceID: piece.Config.ID,
		Label:   piece.Config.Label,
	}

	price := b.PostMarginUnit
	fill := sel.Option(domain.SectionFill)
	if fill != nil && strings.Contains(strings.ToLower(fill.Name), coversOnlyMarker) {
		pb.CoversOnly = true
		pb.CoversOnlyDeduction = coversOnlyRate * (b.FabricCost + b.FillCost)
		price -= pb.CoversOnlyDeduction
	}
	beforeDiscount := price

	// Shared fabric discount first, then the piece's own fill discount.
	pb.FabricDiscountPercent = order.Fabric.Discount()
	if pb.FabricDiscountPercent > 0 {
		price = math.Max(0, price*(1-pb.FabricDiscountPercent/100))
	}
	pb.FillDiscountPercent = fill.Discount()
	if pb.FillDiscountPercent > 0 {
		price = math.Max(0, price*(1-pb.FillDiscountPercent/100))
	}
	price = math.Max(0, price)

	b.DiscountPercent = pb.FabricDiscountPercent + pb.FillDiscountPercent
	b.DiscountAmount = beforeDiscount - price
	b.PanelCount = 1
	b.UnitTotal = price
	b.Quantity = 1
	b.Total = price

	pb.Breakdown = b
	pb.FinalPrice = price
	return pb
}

// pieceSelection binds the order-wide choices onto a piece's own selection
func pieceSelection(piece domain.Piece, order domain.MultiPieceSelection) domain.Selection {
	sel := piece.Selection
	sel.Fabric = order.Fabric
	sel.Profile = order.Profile
	if sel.Sections == nil {
		sel.Sections = piece.Config.Sections
	}
	return sel
}

func pieceName(piece domain.Piece, index int) string {
	if piece.Config.ID != "" {
		return piece.Config.ID
	}
	return "piece" + strconv.Itoa(index+1)
}
