// Package catalog loads and validates the shop's pricing configuration and
// resolves shopper choices, given as IDs, into priced selections.
package catalog

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/jafarshop/configurator/internal/domain"
	"github.com/jafarshop/configurator/internal/formula"
	"github.com/jafarshop/configurator/pkg/errors"
)

// Catalog is the read-only pricing configuration of a shop. It is safe for
// concurrent use once loaded.
type Catalog struct {
	Settings domain.PricingSettings                   `json:"settings" yaml:"settings"`
	Shapes   []domain.Shape                           `json:"shapes" yaml:"shapes"`
	Options  map[domain.Section][]domain.PricedOption `json:"options" yaml:"options"`
	Sections domain.SectionVisibility                 `json:"sections,omitempty" yaml:"sections"`
	Pieces   []domain.PieceConfig                     `json:"pieces,omitempty" yaml:"pieces"`

	path    string
	shapes  map[string]*domain.Shape
	options map[domain.Section]map[string]*domain.PricedOption
}

// Load reads a catalog file. YAML and JSON are both accepted.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		if invalid, ok := err.(*errors.ErrInvalidCatalog); ok {
			invalid.Path = path
		}
		return nil, err
	}
	c.path = path
	return c, nil
}

// Parse decodes and validates catalog content
func Parse(data []byte) (*Catalog, error) {
	c := &Catalog{
		Settings: domain.PricingSettings{
			MarginCalculationMethod: domain.MarginMethodFormula,
			MarginFormula:           domain.DefaultMarginFormula(),
		},
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, &errors.ErrInvalidCatalog{Path: "<input>", Reason: err.Error()}
	}
	if err := c.validate(); err != nil {
		return nil, &errors.ErrInvalidCatalog{Path: "<input>", Reason: err.Error()}
	}
	c.index()
	return c, nil
}

// Path returns the file the catalog was loaded from
func (c *Catalog) Path() string {
	return c.path
}

// Shape returns the shape with the given ID
func (c *Catalog) Shape(id string) (*domain.Shape, bool) {
	s, ok := c.shapes[id]
	return s, ok
}

// Option returns the option with the given ID in a section
func (c *Catalog) Option(section domain.Section, id string) (*domain.PricedOption, bool) {
	o, ok := c.options[section][id]
	return o, ok
}

// Piece returns the piece configuration with the given ID
func (c *Catalog) Piece(id string) (*domain.PieceConfig, bool) {
	for i := range c.Pieces {
		if c.Pieces[i].ID == id {
			return &c.Pieces[i], true
		}
	}
	return nil, false
}

func (c *Catalog) index() {
	c.shapes = make(map[string]*domain.Shape, len(c.Shapes))
	for i := range c.Shapes {
		c.shapes[c.Shapes[i].ID] = &c.Shapes[i]
	}
	c.options = make(map[domain.Section]map[string]*domain.PricedOption, len(c.Options))
	for section, opts := range c.Options {
		byID := make(map[string]*domain.PricedOption, len(opts))
		for i := range opts {
			byID[opts[i].ID] = &opts[i]
		}
		c.options[section] = byID
	}
}

func (c *Catalog) validate() error {
	if err := validateSettings(c.Settings); err != nil {
		return err
	}

	shapeIDs := make(map[string]bool, len(c.Shapes))
	for i := range c.Shapes {
		s := &c.Shapes[i]
		if s.ID == "" {
			return fmt.Errorf("shape %d has no id", i)
		}
		if shapeIDs[s.ID] {
			return fmt.Errorf("duplicate shape id %q", s.ID)
		}
		shapeIDs[s.ID] = true
		if err := validateShape(s); err != nil {
			return fmt.Errorf("shape %q: %w", s.ID, err)
		}
	}

	optionIDs := make(map[domain.Section]map[string]bool, len(c.Options))
	for section, opts := range c.Options {
		if !section.IsValid() {
			return fmt.Errorf("unknown option section %q", section)
		}
		ids := make(map[string]bool, len(opts))
		for _, o := range opts {
			if o.ID == "" {
				return fmt.Errorf("%s option %q has no id", section, o.Name)
			}
			if ids[o.ID] {
				return fmt.Errorf("duplicate %s option id %q", section, o.ID)
			}
			ids[o.ID] = true
		}
		optionIDs[section] = ids
	}

	for section := range c.Sections {
		if !section.IsValid() {
			return fmt.Errorf("unknown section %q", section)
		}
	}

	pieceIDs := make(map[string]bool, len(c.Pieces))
	for _, p := range c.Pieces {
		if p.ID == "" {
			return fmt.Errorf("piece %q has no id", p.Label)
		}
		if pieceIDs[p.ID] {
			return fmt.Errorf("duplicate piece id %q", p.ID)
		}
		pieceIDs[p.ID] = true
		if err := validatePiece(p, shapeIDs, optionIDs); err != nil {
			return fmt.Errorf("piece %q: %w", p.ID, err)
		}
	}

	return nil
}

func validateSettings(s domain.PricingSettings) error {
	if !s.MarginCalculationMethod.IsValid() {
		return fmt.Errorf("unknown margin calculation method %q", s.MarginCalculationMethod)
	}
	for i, tier := range s.MarginTiers {
		if tier.MinPrice > tier.MaxPrice {
			return fmt.Errorf("margin tier %d has min above max", i)
		}
		if i > 0 && tier.MinPrice <= s.MarginTiers[i-1].MaxPrice {
			return fmt.Errorf("margin tier %d overlaps or is out of order", i)
		}
	}
	if s.MarginFormula.FlatThreshold > s.MarginFormula.FormulaThreshold {
		return fmt.Errorf("margin flat threshold above formula threshold")
	}
	return nil
}

// validateShape compiles the shape's formulas so malformed expressions and
// undeclared variables are rejected before any price is computed
func validateShape(s *domain.Shape) error {
	keys := make(map[string]bool, len(s.InputFields))
	for _, f := range s.InputFields {
		if f.Key == "" {
			return fmt.Errorf("input field %q has no key", f.Label)
		}
		if keys[f.Key] {
			return fmt.Errorf("duplicate input field %q", f.Key)
		}
		if f.Max > 0 && f.Min > f.Max {
			return fmt.Errorf("input field %q has min above max", f.Key)
		}
		keys[f.Key] = true
	}

	if s.SurfaceAreaFormula == "" {
		return fmt.Errorf("surface area formula is required")
	}

	formulas := map[string]string{
		"surface_area_formula":              s.SurfaceAreaFormula,
		"surface_area_without_base_formula": s.SurfaceAreaWithoutBaseFormula,
		"volume_formula":                    s.VolumeFormula,
	}
	names := make([]string, 0, len(formulas))
	for name := range formulas {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		src := formulas[name]
		if src == "" {
			continue
		}
		expr, err := formula.Compile(src)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		for _, ident := range expr.Identifiers() {
			if !keys[ident] {
				return fmt.Errorf("%s references undeclared input %q", name, ident)
			}
		}
	}
	return nil
}

func validatePiece(p domain.PieceConfig, shapeIDs map[string]bool, optionIDs map[domain.Section]map[string]bool) error {
	for _, id := range p.AllowedShapeIDs {
		if !shapeIDs[id] {
			return fmt.Errorf("allowed shape %q does not exist", id)
		}
	}
	if p.Defaults.ShapeID != "" && !shapeIDs[p.Defaults.ShapeID] {
		return fmt.Errorf("default shape %q does not exist", p.Defaults.ShapeID)
	}
	for section, ids := range p.AllowedOptions {
		for _, id := range ids {
			if !optionIDs[section][id] {
				return fmt.Errorf("allowed %s option %q does not exist", section, id)
			}
		}
	}
	for section, id := range p.Defaults.Options {
		if !optionIDs[section][id] {
			return fmt.Errorf("default %s option %q does not exist", section, id)
		}
	}
	for section := range p.Sections {
		if !section.IsValid() {
			return fmt.Errorf("unknown section %q", section)
		}
	}
	return nil
}
