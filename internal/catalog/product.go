package catalog

// Product is the canonical catalog record. Upstream payloads are normalized
// into this shape exactly once, at ingestion; everything downstream relies
// on these fields being present under these names.
//
// A nil Price means "price on request" (custom-crafted pieces). It is not
// zero and is exempt from numeric price filtering.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category,omitempty"`
	Metal       string   `json:"metal,omitempty"`
	Style       string   `json:"style,omitempty"`
	Tag         string   `json:"tag,omitempty"`
	Price       *int64   `json:"price"`
	Description string   `json:"description,omitempty"`
	Images      []string `json:"images,omitempty"`
}

// SortKey selects the ordering applied after filtering.
type SortKey string

const (
	SortFeatured  SortKey = "featured"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortNewest    SortKey = "newest"
)

// Criteria is the ephemeral, UI-owned filter state. The zero value selects
// everything in input order.
type Criteria struct {
	SearchText string
	Category   string
	Metal      string
	Style      string
	Tags       []string
	PriceMin   *int64
	PriceMax   *int64
	Sort       SortKey
}
