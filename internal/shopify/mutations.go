package shopify

// ProductVariantsBulkCreateMutation adds variants to an existing product
const ProductVariantsBulkCreateMutation = `
mutation productVariantsBulkCreate($productId: ID!, $variants: [ProductVariantsBulkInput!]!) {
  productVariantsBulkCreate(productId: $productId, variants: $variants) {
    productVariants {
      id
      price
    }
    userErrors {
      field
      message
    }
  }
}
`

// ProductVariantsBulkInput represents one variant in a bulk create
type ProductVariantsBulkInput struct {
	Price           string                `json:"price"`
	OptionValues    []VariantOptionValue  `json:"optionValues"`
	InventoryPolicy string                `json:"inventoryPolicy,omitempty"`
	InventoryItem   *VariantInventoryItem `json:"inventoryItem,omitempty"`
	Taxable         *bool                 `json:"taxable,omitempty"`
}

type VariantOptionValue struct {
	OptionName string `json:"optionName"`
	Name       string `json:"name"`
}

type VariantInventoryItem struct {
	Tracked          bool `json:"tracked"`
	RequiresShipping bool `json:"requiresShipping"`
}

// ProductVariantsBulkCreatePayload is the data block of a bulk create response
type ProductVariantsBulkCreatePayload struct {
	ProductVariantsBulkCreate struct {
		ProductVariants []struct {
			ID    string `json:"id"`
			Price string `json:"price"`
		} `json:"productVariants"`
		UserErrors []UserError `json:"userErrors"`
	} `json:"productVariantsBulkCreate"`
}
