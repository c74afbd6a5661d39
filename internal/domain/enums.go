package domain

// MarginMethod selects how the margin percentage is resolved
type MarginMethod string

const (
	MarginMethodTier    MarginMethod = "tier"
	MarginMethodFormula MarginMethod = "formula"
)

// IsValid checks if the margin method is known
func (m MarginMethod) IsValid() bool {
	switch m {
	case MarginMethodTier, MarginMethodFormula:
		return true
	default:
		return false
	}
}

// Section names one configurable part of the item in the widget
type Section string

const (
	SectionFill       Section = "fill"
	SectionFabric     Section = "fabric"
	SectionPiping     Section = "piping"
	SectionButton     Section = "button"
	SectionAntiSkid   Section = "anti_skid"
	SectionRodPocket  Section = "rod_pocket"
	SectionTies       Section = "ties"
	SectionFabricTies Section = "fabric_ties"
	SectionDesign     Section = "design"
	SectionDrawstring Section = "drawstring"
	SectionProfile    Section = "profile"
)

// PercentAddonSections are the add-ons charged as a percentage of the base subtotal,
// in the order they appear on a breakdown
var PercentAddonSections = []Section{
	SectionPiping,
	SectionButton,
	SectionAntiSkid,
	SectionRodPocket,
	SectionDrawstring,
	SectionProfile,
}

// AllSections lists every section in display order
var AllSections = []Section{
	SectionFabric,
	SectionFill,
	SectionPiping,
	SectionButton,
	SectionAntiSkid,
	SectionRodPocket,
	SectionTies,
	SectionFabricTies,
	SectionDesign,
	SectionDrawstring,
	SectionProfile,
}

// IsValid checks if the section is known
func (s Section) IsValid() bool {
	for _, known := range AllSections {
		if s == known {
			return true
		}
	}
	return false
}

// ConfirmationState tracks a price confirmation attempt
type ConfirmationState string

const (
	ConfirmationCreated   ConfirmationState = "CREATED"
	ConfirmationPolling   ConfirmationState = "POLLING"
	ConfirmationVerified  ConfirmationState = "VERIFIED"
	ConfirmationExhausted ConfirmationState = "EXHAUSTED"
	ConfirmationCancelled ConfirmationState = "CANCELLED"
	ConfirmationFailed    ConfirmationState = "FAILED"
)

// IsTerminal reports whether no further transition is possible
func (s ConfirmationState) IsTerminal() bool {
	switch s {
	case ConfirmationVerified, ConfirmationExhausted, ConfirmationCancelled, ConfirmationFailed:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if a state transition is valid
func (s ConfirmationState) CanTransitionTo(next ConfirmationState) bool {
	switch s {
	case ConfirmationCreated:
		return next == ConfirmationPolling || next == ConfirmationCancelled
	case ConfirmationPolling:
		return next == ConfirmationVerified ||
			next == ConfirmationExhausted ||
			next == ConfirmationCancelled
	case "":
		return next == ConfirmationCreated || next == ConfirmationFailed
	default:
		return false // Terminal states
	}
}
