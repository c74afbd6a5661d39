package domain

// DimensionField is one numeric input a shape needs
type DimensionField struct {
	Key      string  `json:"key" yaml:"key"`
	Label    string  `json:"label" yaml:"label"`
	Unit     string  `json:"unit" yaml:"unit"`
	Min      float64 `json:"min" yaml:"min"`
	Max      float64 `json:"max" yaml:"max"`
	Default  float64 `json:"default" yaml:"default"`
	Required bool    `json:"required" yaml:"required"`
}

// Shape describes a product shape and the formulas used to size it
type Shape struct {
	ID                            string           `json:"id" yaml:"id"`
	Name                          string           `json:"name" yaml:"name"`
	Is2D                          bool             `json:"is_2d" yaml:"is_2d"`
	EnablePanels                  bool             `json:"enable_panels" yaml:"enable_panels"`
	InputFields                   []DimensionField `json:"input_fields" yaml:"input_fields"`
	SurfaceAreaFormula            string           `json:"surface_area_formula" yaml:"surface_area_formula"`
	SurfaceAreaWithoutBaseFormula string           `json:"surface_area_without_base_formula,omitempty" yaml:"surface_area_without_base_formula"`
	VolumeFormula                 string           `json:"volume_formula" yaml:"volume_formula"`
}

// Field returns the input field with the given key
func (s *Shape) Field(key string) (DimensionField, bool) {
	for _, f := range s.InputFields {
		if f.Key == key {
			return f, true
		}
	}
	return DimensionField{}, false
}

// PricedOption is a selectable material or add-on. Which pricing field is
// meaningful depends on the section the option belongs to.
type PricedOption struct {
	ID                string  `json:"id" yaml:"id"`
	Name              string  `json:"name" yaml:"name"`
	Percent           float64 `json:"percent,omitempty" yaml:"percent"`
	Price             float64 `json:"price,omitempty" yaml:"price"`
	PricePerSqInch    float64 `json:"price_per_sq_inch,omitempty" yaml:"price_per_sq_inch"`
	PricePerCubicInch float64 `json:"price_per_cubic_inch,omitempty" yaml:"price_per_cubic_inch"`
	DiscountEnabled   bool    `json:"discount_enabled,omitempty" yaml:"discount_enabled"`
	DiscountPercent   float64 `json:"discount_percent,omitempty" yaml:"discount_percent"`
	Weatherproof      bool    `json:"weatherproof,omitempty" yaml:"weatherproof"`
}

// Discount returns the option's discount percentage, or 0 when disabled
func (o *PricedOption) Discount() float64 {
	if o == nil || !o.DiscountEnabled {
		return 0
	}
	return o.DiscountPercent
}

// MarginTier maps an inclusive price range to a margin adjustment
type MarginTier struct {
	MinPrice          float64 `json:"min_price" yaml:"min_price"`
	MaxPrice          float64 `json:"max_price" yaml:"max_price"`
	AdjustmentPercent float64 `json:"adjustment_percent" yaml:"adjustment_percent"`
}

// MarginFormula holds the constants of the continuous margin curve
type MarginFormula struct {
	FlatThreshold    float64 `json:"flat_threshold" yaml:"flat_threshold"`
	FlatPercent      float64 `json:"flat_percent" yaml:"flat_percent"`
	FormulaThreshold float64 `json:"formula_threshold" yaml:"formula_threshold"`
	LowConst         float64 `json:"low_const" yaml:"low_const"`
	LowCoef          float64 `json:"low_coef" yaml:"low_coef"`
	HighConst        float64 `json:"high_const" yaml:"high_const"`
	HighCoef         float64 `json:"high_coef" yaml:"high_coef"`
}

// DefaultMarginFormula returns the curve used when a shop leaves the constants unset
func DefaultMarginFormula() MarginFormula {
	return MarginFormula{
		FlatThreshold:    50,
		FlatPercent:      100,
		FormulaThreshold: 400,
		LowConst:         300,
		LowCoef:          52,
		HighConst:        120,
		HighCoef:         20,
	}
}

// PricingSettings are the shop-wide pricing knobs
type PricingSettings struct {
	ConversionPercent           float64       `json:"conversion_percent" yaml:"conversion_percent"`
	ShippingPercent             float64       `json:"shipping_percent" yaml:"shipping_percent"`
	LabourPercent               float64       `json:"labour_percent" yaml:"labour_percent"`
	TiesIncludeInShippingLabour bool          `json:"ties_include_in_shipping_labour" yaml:"ties_include_in_shipping_labour"`
	MarginCalculationMethod     MarginMethod  `json:"margin_calculation_method" yaml:"margin_calculation_method"`
	MarginTiers                 []MarginTier  `json:"margin_tiers,omitempty" yaml:"margin_tiers"`
	MarginFormula               MarginFormula `json:"margin_formula" yaml:"margin_formula"`
}

// SectionRule controls whether a section is shown and whether it must be chosen
type SectionRule struct {
	Hidden   bool `json:"hidden,omitempty" yaml:"hidden"`
	Required bool `json:"required,omitempty" yaml:"required"`
}

// SectionVisibility holds the rules per section. Sections without a rule are
// visible and optional.
type SectionVisibility map[Section]SectionRule

// Visible reports whether the section is shown
func (v SectionVisibility) Visible(s Section) bool {
	return !v[s].Hidden
}

// Required reports whether the section is shown and must have a selection
func (v SectionVisibility) Required(s Section) bool {
	rule := v[s]
	return !rule.Hidden && rule.Required
}

// Selection is a fully resolved set of choices for one piece
type Selection struct {
	Shape      *Shape
	Dimensions map[string]float64
	Fabric     *PricedOption
	Fill       *PricedOption
	Piping     *PricedOption
	Button     *PricedOption
	AntiSkid   *PricedOption
	RodPocket  *PricedOption
	Ties       *PricedOption
	FabricTies *PricedOption
	Design     *PricedOption
	Drawstring *PricedOption
	Profile    *PricedOption
	PanelCount int
	Quantity   int
	Sections   SectionVisibility
	// AttachmentURL is the uploaded artwork, passed through as a display property
	AttachmentURL string
}

// Option returns the selected option for a section, or nil when the section
// is hidden or nothing is selected
func (s *Selection) Option(section Section) *PricedOption {
	if !s.Sections.Visible(section) {
		return nil
	}
	switch section {
	case SectionFabric:
		return s.Fabric
	case SectionFill:
		return s.Fill
	case SectionPiping:
		return s.Piping
	case SectionButton:
		return s.Button
	case SectionAntiSkid:
		return s.AntiSkid
	case SectionRodPocket:
		return s.RodPocket
	case SectionTies:
		return s.Ties
	case SectionFabricTies:
		return s.FabricTies
	case SectionDesign:
		return s.Design
	case SectionDrawstring:
		return s.Drawstring
	case SectionProfile:
		return s.Profile
	}
	return nil
}

// SetOption assigns the option for a section
func (s *Selection) SetOption(section Section, opt *PricedOption) {
	switch section {
	case SectionFabric:
		s.Fabric = opt
	case SectionFill:
		s.Fill = opt
	case SectionPiping:
		s.Piping = opt
	case SectionButton:
		s.Button = opt
	case SectionAntiSkid:
		s.AntiSkid = opt
	case SectionRodPocket:
		s.RodPocket = opt
	case SectionTies:
		s.Ties = opt
	case SectionFabricTies:
		s.FabricTies = opt
	case SectionDesign:
		s.Design = opt
	case SectionDrawstring:
		s.Drawstring = opt
	case SectionProfile:
		s.Profile = opt
	}
}

// PieceDefaults are the choices a piece starts with
type PieceDefaults struct {
	ShapeID    string             `json:"shape_id,omitempty" yaml:"shape_id"`
	Dimensions map[string]float64 `json:"dimensions,omitempty" yaml:"dimensions"`
	Options    map[Section]string `json:"options,omitempty" yaml:"options"`
}

// PieceConfig is the per-component configuration of a multi-piece product
type PieceConfig struct {
	ID              string               `json:"id" yaml:"id"`
	Label           string               `json:"label" yaml:"label"`
	Sections        SectionVisibility    `json:"sections,omitempty" yaml:"sections"`
	Defaults        PieceDefaults        `json:"defaults" yaml:"defaults"`
	AllowedShapeIDs []string             `json:"allowed_shape_ids,omitempty" yaml:"allowed_shape_ids"`
	AllowedOptions  map[Section][]string `json:"allowed_options,omitempty" yaml:"allowed_options"`
}

// AllowsShape reports whether the shape may be chosen for this piece
func (c *PieceConfig) AllowsShape(id string) bool {
	return allowed(c.AllowedShapeIDs, id)
}

// AllowsOption reports whether the option may be chosen for the section
func (c *PieceConfig) AllowsOption(section Section, id string) bool {
	return allowed(c.AllowedOptions[section], id)
}

func allowed(ids []string, id string) bool {
	if len(ids) == 0 {
		return true
	}
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// Piece is one physical component of a multi-piece order
type Piece struct {
	Config    PieceConfig
	Selection Selection
}

// MultiPieceSelection is an order made of several pieces sharing one fabric
type MultiPieceSelection struct {
	Fabric        *PricedOption
	Profile       *PricedOption
	Pieces        []Piece
	Quantity      int
	AttachmentURL string
}

// AddonCharge is the cost of one percentage-priced add-on
type AddonCharge struct {
	Section  Section `json:"section"`
	OptionID string  `json:"option_id"`
	Name     string  `json:"name"`
	Percent  float64 `json:"percent"`
	Cost     float64 `json:"cost"`
}

// PriceBreakdown holds every intermediate amount of a price computation
type PriceBreakdown struct {
	Complete             bool          `json:"complete"`
	Missing              []string      `json:"missing,omitempty"`
	SurfaceArea          float64       `json:"surface_area"`
	Volume               float64       `json:"volume"`
	ConversionMultiplier float64       `json:"conversion_multiplier"`
	FabricCost           float64       `json:"fabric_cost"`
	FillCost             float64       `json:"fill_cost"`
	TiesCost             float64       `json:"ties_cost"`
	FabricTiesCost       float64       `json:"fabric_ties_cost"`
	BaseSubtotal         float64       `json:"base_subtotal"`
	DesignPercent        float64       `json:"design_percent"`
	DesignCost           float64       `json:"design_cost"`
	Addons               []AddonCharge `json:"addons"`
	SubtotalAfterAddons  float64       `json:"subtotal_after_addons"`
	ShippingLabourBase   float64       `json:"shipping_labour_base"`
	ShippingCost         float64       `json:"shipping_cost"`
	LabourCost           float64       `json:"labour_cost"`
	PreTotalUnit         float64       `json:"pre_total_unit"`
	MarginPercent        float64       `json:"margin_percent"`
	MarginAmount         float64       `json:"margin_amount"`
	PostMarginUnit       float64       `json:"post_margin_unit"`
	DiscountPercent      float64       `json:"discount_percent"`
	DiscountAmount       float64       `json:"discount_amount"`
	PanelCount           int           `json:"panel_count"`
	UnitTotal            float64       `json:"unit_total"`
	Quantity             int           `json:"quantity"`
	Total                float64       `json:"total"`
}

// AddonCost returns the charge recorded for a section, or 0
func (b *PriceBreakdown) AddonCost(section Section) float64 {
	for _, a := range b.Addons {
		if a.Section == section {
			return a.Cost
		}
	}
	return 0
}

// PieceBreakdown is the priced result of one piece within a multi-piece order
type PieceBreakdown struct {
	PieceID               string         `json:"piece_id"`
	Label                 string         `json:"label"`
	Breakdown             PriceBreakdown `json:"breakdown"`
	CoversOnly            bool           `json:"covers_only"`
	CoversOnlyDeduction   float64        `json:"covers_only_deduction"`
	FabricDiscountPercent float64        `json:"fabric_discount_percent"`
	FillDiscountPercent   float64        `json:"fill_discount_percent"`
	FinalPrice            float64        `json:"final_price"`
}

// OrderBreakdown aggregates the pieces of a multi-piece order
type OrderBreakdown struct {
	Complete  bool             `json:"complete"`
	Missing   []string         `json:"missing,omitempty"`
	Pieces    []PieceBreakdown `json:"pieces"`
	UnitTotal float64          `json:"unit_total"`
	Quantity  int              `json:"quantity"`
	Total     float64          `json:"total"`
}
