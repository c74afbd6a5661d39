package catalog

import (
	"github.com/jafarshop/configurator/internal/domain"
	"github.com/jafarshop/configurator/pkg/errors"
)

// SelectionInput is a shopper's choices for one piece, by ID
type SelectionInput struct {
	ShapeID       string                    `json:"shape_id"`
	Dimensions    map[string]float64        `json:"dimensions"`
	Options       map[domain.Section]string `json:"options"`
	PanelCount    int                       `json:"panel_count"`
	Quantity      int                       `json:"quantity"`
	AttachmentURL string                    `json:"attachment_url"`
}

// PieceInput is the choices for one piece of a multi-piece order
type PieceInput struct {
	PieceID string `json:"piece_id" binding:"required"`
	SelectionInput
}

// OrderInput is a shopper's choices for a multi-piece order
type OrderInput struct {
	FabricID      string       `json:"fabric_id"`
	ProfileID     string       `json:"profile_id"`
	Pieces        []PieceInput `json:"pieces"`
	Quantity      int          `json:"quantity"`
	AttachmentURL string       `json:"attachment_url"`
}

// Resolve turns a single-piece input into a selection. Unknown IDs resolve to
// nothing selected, which the composer reports as incomplete.
func (c *Catalog) Resolve(in SelectionInput) domain.Selection {
	sel := domain.Selection{
		Sections:      c.Sections,
		PanelCount:    in.PanelCount,
		Quantity:      in.Quantity,
		AttachmentURL: in.AttachmentURL,
	}
	if shape, ok := c.Shape(in.ShapeID); ok {
		sel.Shape = shape
		sel.Dimensions = resolveDimensions(shape, in.Dimensions, nil)
	}
	for section, id := range in.Options {
		if opt, ok := c.Option(section, id); ok {
			sel.SetOption(section, opt)
		}
	}
	return sel
}

// ResolvePiece turns a piece input into a selection, applying the piece's
// defaults and allowed-ID filters. Fabric and profile are order-wide and are
// not taken from the piece input.
func (c *Catalog) ResolvePiece(cfg domain.PieceConfig, in SelectionInput) domain.Selection {
	sel := domain.Selection{
		Sections:   cfg.Sections,
		PanelCount: in.PanelCount,
		Quantity:   1,
	}

	shapeID := in.ShapeID
	if shapeID == "" {
		shapeID = cfg.Defaults.ShapeID
	}
	if shape, ok := c.Shape(shapeID); ok && cfg.AllowsShape(shapeID) {
		sel.Shape = shape
		sel.Dimensions = resolveDimensions(shape, in.Dimensions, cfg.Defaults.Dimensions)
	}

	for _, section := range domain.AllSections {
		if section == domain.SectionFabric || section == domain.SectionProfile {
			continue
		}
		id, ok := in.Options[section]
		if !ok {
			id = cfg.Defaults.Options[section]
		}
		if id == "" || !cfg.AllowsOption(section, id) {
			continue
		}
		if opt, ok := c.Option(section, id); ok {
			sel.SetOption(section, opt)
		}
	}
	return sel
}

// ResolveOrder turns a multi-piece input into an order. Pieces follow the
// catalog's piece order; a configured piece absent from the input starts from
// its defaults.
func (c *Catalog) ResolveOrder(in OrderInput) (domain.MultiPieceSelection, error) {
	if len(c.Pieces) == 0 {
		return domain.MultiPieceSelection{}, &errors.ErrNotFound{Resource: "piece configuration", ID: "*"}
	}

	byID := make(map[string]SelectionInput, len(in.Pieces))
	for _, p := range in.Pieces {
		if _, ok := c.Piece(p.PieceID); !ok {
			return domain.MultiPieceSelection{}, &errors.ErrNotFound{Resource: "piece", ID: p.PieceID}
		}
		byID[p.PieceID] = p.SelectionInput
	}

	order := domain.MultiPieceSelection{
		Pieces:        make([]domain.Piece, 0, len(c.Pieces)),
		Quantity:      in.Quantity,
		AttachmentURL: in.AttachmentURL,
	}
	if fabric, ok := c.Option(domain.SectionFabric, in.FabricID); ok {
		order.Fabric = fabric
	}
	if profile, ok := c.Option(domain.SectionProfile, in.ProfileID); ok {
		order.Profile = profile
	}
	for _, cfg := range c.Pieces {
		order.Pieces = append(order.Pieces, domain.Piece{
			Config:    cfg,
			Selection: c.ResolvePiece(cfg, byID[cfg.ID]),
		})
	}
	return order, nil
}

// resolveDimensions keeps only the shape's declared inputs, clamps them to
// their range, and fills unset values from piece defaults then field defaults.
// A required input left unset stays absent. Optional inputs are always
// present, so formulas can reference them even when their default is 0.
func resolveDimensions(shape *domain.Shape, in, defaults map[string]float64) map[string]float64 {
	dims := make(map[string]float64, len(shape.InputFields))
	for _, f := range shape.InputFields {
		v, ok := in[f.Key]
		if !ok {
			v, ok = defaults[f.Key]
		}
		if !ok {
			if f.Required {
				continue
			}
			v = f.Default
		}
		dims[f.Key] = clamp(v, f)
	}
	return dims
}

func clamp(v float64, f domain.DimensionField) float64 {
	if v < f.Min {
		return f.Min
	}
	if f.Max > 0 && v > f.Max {
		return f.Max
	}
	return v
}
