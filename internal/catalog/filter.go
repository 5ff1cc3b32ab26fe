package catalog

import (
	"sort"
	"strconv"
	"strings"
)

// Filter derives the visible subset of products for the given criteria. It
// is a pure function: no side effects, the input slice is never mutated,
// and recomputing on every criteria change (including per keystroke for
// text search) is fine at expected catalog sizes of low hundreds.
//
// Stages run in a fixed order, each narrowing the previous stage's output:
// text search, category, metal, style, tag membership, price range, sort.
func Filter(products []Product, criteria Criteria) []Product {
	visible := make([]Product, 0, len(products))
	tagSet := buildTagSet(criteria.Tags)

	for _, product := range products {
		if !matchesSearch(product, criteria.SearchText) {
			continue
		}
		if !matchesFacet(product.Category, criteria.Category) {
			continue
		}
		if !matchesFacet(product.Metal, criteria.Metal) {
			continue
		}
		if !matchesFacet(product.Style, criteria.Style) {
			continue
		}
		if !matchesTags(product.Tag, tagSet) {
			continue
		}
		if !matchesPriceRange(product.Price, criteria.PriceMin, criteria.PriceMax) {
			continue
		}
		visible = append(visible, product)
	}

	sortProducts(visible, criteria.Sort)
	return visible
}

// matchesSearch is a case-insensitive substring match against name,
// description and category. Empty search text passes everything.
func matchesSearch(product Product, searchText string) bool {
	needle := strings.ToLower(strings.TrimSpace(searchText))
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(product.Name), needle) ||
		strings.Contains(strings.ToLower(product.Description), needle) ||
		strings.Contains(strings.ToLower(product.Category), needle)
}

// matchesFacet is an equality filter skipped when the criterion is unset or
// selects "all".
func matchesFacet(value, selected string) bool {
	selected = strings.TrimSpace(selected)
	if selected == "" || strings.EqualFold(selected, "all") {
		return true
	}
	return strings.EqualFold(value, selected)
}

// matchesTags passes when the tag set is empty or contains the product tag.
func matchesTags(tag string, tagSet map[string]struct{}) bool {
	if len(tagSet) == 0 {
		return true
	}
	_, ok := tagSet[strings.ToLower(strings.TrimSpace(tag))]
	return ok
}

// matchesPriceRange exempts nil prices: price-on-request pieces are not
// price-filterable, so they always pass.
func matchesPriceRange(price, min, max *int64) bool {
	if price == nil {
		return true
	}
	if min != nil && *price < *min {
		return false
	}
	if max != nil && *price > *max {
		return false
	}
	return true
}

func buildTagSet(tags []string) map[string]struct{} {
	if len(tags) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		trimmed := strings.ToLower(strings.TrimSpace(tag))
		if trimmed != "" {
			set[trimmed] = struct{}{}
		}
	}
	return set
}

// sortProducts orders visible in place with a stable sort. The default
// (featured) key preserves input order. Nil prices are not comparable
// numbers: they order last under price-low and first under price-high as an
// explicit tie-break.
func sortProducts(visible []Product, key SortKey) {
	switch key {
	case SortPriceLow:
		sort.SliceStable(visible, func(i, j int) bool {
			a, b := visible[i].Price, visible[j].Price
			if a == nil {
				return false
			}
			if b == nil {
				return true
			}
			return *a < *b
		})
	case SortPriceHigh:
		sort.SliceStable(visible, func(i, j int) bool {
			a, b := visible[i].Price, visible[j].Price
			if a == nil {
				return b != nil
			}
			if b == nil {
				return false
			}
			return *a > *b
		})
	case SortNewest:
		sort.SliceStable(visible, func(i, j int) bool {
			return moreRecent(visible[i].ID, visible[j].ID)
		})
	default:
		// featured: no-op, input order preserved
	}
}

// moreRecent is a heuristic: catalog ids carry an embedded numeric suffix
// that grows over time, so a larger suffix is assumed newer. When either id
// lacks a numeric suffix the comparison falls back to a descending string
// compare. This is not a guaranteed total order over arbitrary ids.
func moreRecent(a, b string) bool {
	an, aok := numericSuffix(a)
	bn, bok := numericSuffix(b)
	if aok && bok {
		if an != bn {
			return an > bn
		}
		return a > b
	}
	return a > b
}

func numericSuffix(id string) (int64, bool) {
	end := len(id)
	start := end
	for start > 0 && id[start-1] >= '0' && id[start-1] <= '9' {
		start--
	}
	if start == end {
		return 0, false
	}
	n, err := strconv.ParseInt(id[start:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
