package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aureliajewels/storefront-core/internal/catalog"
	pkgerrors "github.com/aureliajewels/storefront-core/pkg/errors"
)

type stubCatalogService struct {
	criteria catalog.Criteria
	products []catalog.Product
	err      error
}

func (s *stubCatalogService) List(ctx context.Context, criteria catalog.Criteria) ([]catalog.Product, error) {
	s.criteria = criteria
	return s.products, s.err
}

func TestCatalogListParsesCriteria(t *testing.T) {
	svc := &stubCatalogService{products: []catalog.Product{{ID: "ring-1", Name: "Solitaire Ring"}}}
	handler := CatalogList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?q=ring&category=rings&metal=gold&style=classic&tags=bridal,daily&price_min=1000&price_max=90000&sort=price-low", nil)
	resp := httptest.NewRecorder()
	handler(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	got := svc.criteria
	if got.SearchText != "ring" || got.Category != "rings" || got.Metal != "gold" || got.Style != "classic" {
		t.Fatalf("unexpected criteria %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "bridal" || got.Tags[1] != "daily" {
		t.Fatalf("unexpected tags %v", got.Tags)
	}
	if got.PriceMin == nil || *got.PriceMin != 1000 || got.PriceMax == nil || *got.PriceMax != 90000 {
		t.Fatalf("unexpected price bounds %+v", got)
	}
	if got.Sort != catalog.SortPriceLow {
		t.Fatalf("unexpected sort %q", got.Sort)
	}
}

func TestCatalogListDefaultsToFeatured(t *testing.T) {
	svc := &stubCatalogService{}
	handler := CatalogList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	resp := httptest.NewRecorder()
	handler(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.criteria.Sort != catalog.SortFeatured {
		t.Fatalf("expected featured default, got %q", svc.criteria.Sort)
	}
}

func TestCatalogListRejectsBadPriceBound(t *testing.T) {
	svc := &stubCatalogService{}
	handler := CatalogList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?price_min=abc", nil)
	resp := httptest.NewRecorder()
	handler(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCatalogListRejectsNegativePrice(t *testing.T) {
	svc := &stubCatalogService{}
	handler := CatalogList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?price_max=-5", nil)
	resp := httptest.NewRecorder()
	handler(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCatalogListSurfacesDependencyFailure(t *testing.T) {
	svc := &stubCatalogService{err: pkgerrors.New(pkgerrors.CodeDependency, "catalog fetch failed")}
	handler := CatalogList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	resp := httptest.NewRecorder()
	handler(resp, req)

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}
