package shopapi

import (
	"context"
	"net/http"
)

// ProductPayload mirrors the catalog endpoint's loosely-shaped records.
// Upstream rows disagree on field names (name/title/productName,
// image/imageUrl/images); normalization into the canonical Product shape
// happens once, at the catalog ingestion boundary, not here.
type ProductPayload struct {
	ID          string   `json:"id"`
	Name        string   `json:"name,omitempty"`
	Title       string   `json:"title,omitempty"`
	ProductName string   `json:"productName,omitempty"`
	Category    string   `json:"category,omitempty"`
	Metal       string   `json:"metal,omitempty"`
	Style       string   `json:"style,omitempty"`
	Tag         string   `json:"tag,omitempty"`
	Price       *int64   `json:"price"`
	Description string   `json:"description,omitempty"`
	Images      []string `json:"images,omitempty"`
	Image       string   `json:"image,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty"`
}

// ListProducts fetches the full product catalog. The catalog read is public;
// no token is attached.
func (c *Client) ListProducts(ctx context.Context) ([]ProductPayload, error) {
	var payload []ProductPayload
	if err := c.do(ctx, http.MethodGet, "/v1/products", "", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}
