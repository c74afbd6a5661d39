package shopify

import (
	"fmt"
	"strconv"
	"strings"
)

// ProductGID returns the global ID for a product, accepting either a numeric ID or a GID
func ProductGID(id string) string {
	return toGID("Product", id)
}

// VariantGID returns the global ID for a product variant
func VariantGID(id string) string {
	return toGID("ProductVariant", id)
}

func toGID(resource, id string) string {
	id = strings.TrimSpace(id)
	if strings.HasPrefix(id, "gid://") {
		return id
	}
	return fmt.Sprintf("gid://shopify/%s/%s", resource, id)
}

// ExtractIDFromGID returns the numeric tail of a GID such as "gid://shopify/ProductVariant/123456"
func ExtractIDFromGID(gid string) (int64, error) {
	parts := strings.Split(gid, "/")
	if len(parts) < 4 {
		return 0, fmt.Errorf("invalid GID format: %s", gid)
	}

	id, err := strconv.ParseInt(parts[len(parts)-1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse ID from GID: %w", err)
	}

	return id, nil
}
