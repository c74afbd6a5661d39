package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jafarshop/configurator/internal/domain"
)

func TestChecksum(t *testing.T) {
	assert.Equal(t, "0", checksum(""))
	assert.Equal(t, "2p", checksum("a"))
	assert.Equal(t, "2e9", checksum("ab"))
}

func TestFingerprint(t *testing.T) {
	sel := baseSelection()

	first := Fingerprint(sel, 150)
	assert.NotEmpty(t, first)
	assert.Equal(t, first, Fingerprint(baseSelection(), 150), "same selection, same label")
	assert.NotEqual(t, first, Fingerprint(sel, 151), "price is part of the label")

	sel.Piping = &domain.PricedOption{ID: "welt"}
	assert.NotEqual(t, first, Fingerprint(sel, 150), "add-ons are part of the label")
}

func TestFingerprintOrder(t *testing.T) {
	a := FingerprintOrder(twoPieceOrder(), 300)
	assert.Equal(t, a, FingerprintOrder(twoPieceOrder(), 300))

	changed := twoPieceOrder()
	changed.Pieces[1].Selection.Dimensions["depth"] = 4
	assert.NotEqual(t, a, FingerprintOrder(changed, 300))
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "495.00", FormatPrice(495))
	assert.Equal(t, "10.13", FormatPrice(10.125))
	assert.Equal(t, "0.10", FormatPrice(0.1))
	assert.Equal(t, "0.00", FormatPrice(0))
}

func TestPricesMatch(t *testing.T) {
	assert.True(t, PricesMatch(10.00, 10.01, 0.01))
	assert.True(t, PricesMatch(10.005, 10.00, 0.01))
	assert.False(t, PricesMatch(10.00, 10.02, 0.01))
}

func TestCartProperties(t *testing.T) {
	sel := baseSelection()
	sel.Piping = &domain.PricedOption{ID: "welt", Name: "Welt Piping", Percent: 10}
	sel.AttachmentURL = "https://cdn.example.com/art.png"
	b := NewComposer(nil).Compose(sel, noMargin())
	require.True(t, b.Complete)

	props := CartProperties(sel, b, "abc123")

	assert.Equal(t, "Box Cushion", props[PropShape])
	assert.Equal(t, `Width: 10", Height: 10", Depth: 0.5"`, props[PropDimensions])
	assert.Equal(t, "Canvas", props["Fabric"])
	assert.Equal(t, "canvas", props["_Fabric ID"])
	assert.Equal(t, "Foam", props["Fill"])
	assert.Equal(t, "Welt Piping", props["Piping"])
	assert.Equal(t, "165.00", props[PropUnitPrice])
	assert.Equal(t, "165.00", props[PropTotalPrice])
	assert.Equal(t, "abc123", props[PropFingerprint])
	assert.Equal(t, "https://cdn.example.com/art.png", props[PropAttachment])
	assert.NotContains(t, props, PropPanels)
}

func TestOrderCartProperties(t *testing.T) {
	order := twoPieceOrder()
	b := NewComposer(nil).ComposeOrder(order, noMargin())
	require.True(t, b.Complete)

	props := OrderCartProperties(order, b, "xyz")

	assert.Equal(t, "Canvas", props["Fabric"])
	assert.Equal(t, "Box Cushion", props["seat Shape"])
	assert.Equal(t, "Foam", props["back Fill"])
	assert.Equal(t, "150.00", props["seat Price"])
	assert.Equal(t, "300.00", props[PropUnitPrice])
	assert.NotContains(t, props, "seat Fabric")
}

func TestSummary(t *testing.T) {
	assert.Equal(t, `Box Cushion (Width: 10", Height: 10", Depth: 0.5")`, Summary(baseSelection()))
	assert.Empty(t, Summary(domain.Selection{}))
	assert.Equal(t, "seat + back", OrderSummary(twoPieceOrder()))
}
