package catalog

import (
	"strings"

	"github.com/aureliajewels/storefront-core/pkg/shopapi"
)

// Normalize converts the loosely-shaped upstream records into canonical
// Products. Upstream rows use inconsistent field names for the same data
// (name/title/productName, image/imageUrl/images); the coalescing happens
// here and nowhere else. Rows without an id are dropped.
func Normalize(payloads []shopapi.ProductPayload) []Product {
	products := make([]Product, 0, len(payloads))
	for _, payload := range payloads {
		id := strings.TrimSpace(payload.ID)
		if id == "" {
			continue
		}
		products = append(products, Product{
			ID:          id,
			Name:        coalesce(payload.Name, payload.Title, payload.ProductName),
			Category:    strings.TrimSpace(payload.Category),
			Metal:       strings.TrimSpace(payload.Metal),
			Style:       strings.TrimSpace(payload.Style),
			Tag:         strings.TrimSpace(payload.Tag),
			Price:       payload.Price,
			Description: payload.Description,
			Images:      coalesceImages(payload),
		})
	}
	return products
}

func coalesce(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func coalesceImages(payload shopapi.ProductPayload) []string {
	if len(payload.Images) > 0 {
		return payload.Images
	}
	if single := coalesce(payload.ImageURL, payload.Image); single != "" {
		return []string{single}
	}
	return nil
}
