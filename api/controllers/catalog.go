package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/aureliajewels/storefront-core/api/responses"
	"github.com/aureliajewels/storefront-core/api/validators"
	"github.com/aureliajewels/storefront-core/internal/catalog"
	pkgerrors "github.com/aureliajewels/storefront-core/pkg/errors"
	"github.com/aureliajewels/storefront-core/pkg/logger"
)

type catalogService interface {
	List(ctx context.Context, criteria catalog.Criteria) ([]catalog.Product, error)
}

type productListResponse struct {
	Products []catalog.Product `json:"products"`
	Total    int               `json:"total"`
}

// CatalogList serves the filtered, sorted product listing.
func CatalogList(svc catalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		criteria, err := criteriaFromQuery(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		products, err := svc.List(ctx, criteria)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, productListResponse{Products: products, Total: len(products)})
	}
}

func criteriaFromQuery(r *http.Request) (catalog.Criteria, error) {
	priceMin, err := validators.ParseQueryPrice(r, "price_min")
	if err != nil {
		return catalog.Criteria{}, err
	}
	priceMax, err := validators.ParseQueryPrice(r, "price_max")
	if err != nil {
		return catalog.Criteria{}, err
	}

	sort, err := parseSortKey(r.URL.Query().Get("sort"))
	if err != nil {
		return catalog.Criteria{}, err
	}

	return catalog.Criteria{
		SearchText: strings.TrimSpace(r.URL.Query().Get("q")),
		Category:   strings.TrimSpace(r.URL.Query().Get("category")),
		Metal:      strings.TrimSpace(r.URL.Query().Get("metal")),
		Style:      strings.TrimSpace(r.URL.Query().Get("style")),
		Tags:       validators.ParseQueryList(r, "tags"),
		PriceMin:   priceMin,
		PriceMax:   priceMax,
		Sort:       sort,
	}, nil
}

func parseSortKey(raw string) (catalog.SortKey, error) {
	switch key := catalog.SortKey(strings.TrimSpace(raw)); key {
	case "":
		return catalog.SortFeatured, nil
	case catalog.SortFeatured, catalog.SortPriceLow, catalog.SortPriceHigh, catalog.SortNewest:
		return key, nil
	default:
		return "", pkgerrors.New(pkgerrors.CodeValidation, "unknown sort key").WithDetails(map[string]any{"field": "sort", "value": raw})
	}
}
