package pricing

import (
	"sort"
	"strconv"
	"strings"

	"github.com/jafarshop/configurator/internal/domain"
)

// Fingerprint returns a short label for a selection and its price. It is a
// 32-bit rolling checksum: collisions happen, so it must only be used for
// display and grouping, never as a lookup key.
func Fingerprint(sel domain.Selection, price float64) string {
	var sb strings.Builder
	writeSelection(&sb, &sel)
	sb.WriteString("|price=")
	sb.WriteString(FormatPrice(price))
	return checksum(sb.String())
}

// FingerprintOrder labels a multi-piece order and its price
func FingerprintOrder(order domain.MultiPieceSelection, price float64) string {
	var sb strings.Builder
	if order.Fabric != nil {
		sb.WriteString("fabric=" + order.Fabric.ID)
	}
	if order.Profile != nil {
		sb.WriteString("|profile=" + order.Profile.ID)
	}
	for i := range order.Pieces {
		sb.WriteString("|piece=" + order.Pieces[i].Config.ID + "{")
		writeSelection(&sb, &order.Pieces[i].Selection)
		sb.WriteString("}")
	}
	sb.WriteString("|price=")
	sb.WriteString(FormatPrice(price))
	return checksum(sb.String())
}

func writeSelection(sb *strings.Builder, sel *domain.Selection) {
	if sel.Shape != nil {
		sb.WriteString("shape=" + sel.Shape.ID)
	}

	keys := make([]string, 0, len(sel.Dimensions))
	for k := range sel.Dimensions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString("|" + k + "=" + strconv.FormatFloat(sel.Dimensions[k], 'f', -1, 64))
	}

	for _, section := range domain.AllSections {
		if opt := sel.Option(section); opt != nil {
			sb.WriteString("|" + string(section) + "=" + opt.ID)
		}
	}
	if sel.PanelCount > 1 {
		sb.WriteString("|panels=" + strconv.Itoa(sel.PanelCount))
	}
}

// checksum is the classic hash = hash*31 + c over UTF-16 code units,
// truncated to 32 bits, rendered in base 36.
func checksum(s string) string {
	var h int32
	for _, r := range s {
		if r >= 0x10000 {
			r -= 0x10000
			h = h*31 + int32(0xD800+(r>>10))
			h = h*31 + int32(0xDC00+(r&0x3FF))
			continue
		}
		h = h*31 + int32(r)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return strconv.FormatInt(v, 36)
}
