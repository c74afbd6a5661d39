package shopify

// VariantPriceQuery reads the stored price of a single variant
const VariantPriceQuery = `
query getVariantPrice($id: ID!) {
  productVariant(id: $id) {
    id
    price
  }
}
`

// VariantPricePayload is the data block of a VariantPriceQuery response
type VariantPricePayload struct {
	ProductVariant *struct {
		ID    string `json:"id"`
		Price string `json:"price"`
	} `json:"productVariant"`
}

// ProductVariantsQuery fetches a product with its variants
const ProductVariantsQuery = `
query getProductVariants($id: ID!, $first: Int!, $after: String) {
  product(id: $id) {
    id
    title
    variants(first: $first, after: $after) {
      pageInfo {
        hasNextPage
        endCursor
      }
      edges {
        node {
          id
          title
          price
        }
      }
    }
  }
}
`

// ProductVariantsPayload is the data block of a ProductVariantsQuery response
type ProductVariantsPayload struct {
	Product *struct {
		ID       string `json:"id"`
		Title    string `json:"title"`
		Variants struct {
			PageInfo struct {
				HasNextPage bool   `json:"hasNextPage"`
				EndCursor   string `json:"endCursor"`
			} `json:"pageInfo"`
			Edges []struct {
				Node ProductVariantNode `json:"node"`
			} `json:"edges"`
		} `json:"variants"`
	} `json:"product"`
}

type ProductVariantNode struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Price string `json:"price"`
}
