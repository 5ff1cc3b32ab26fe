package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/aureliajewels/storefront-core/internal/cart"
)

type stubCartStore struct {
	items   []cart.LineItem
	added   []cart.LineItem
	removed []string
	updated map[string]int
	cleared bool
	synced  bool
}

func (s *stubCartStore) Items() []cart.LineItem { return s.items }

func (s *stubCartStore) Count() int {
	total := 0
	for _, item := range s.items {
		total += item.Quantity
	}
	return total
}

func (s *stubCartStore) Subtotal() int64 {
	var total int64
	for _, item := range s.items {
		total += item.UnitPrice * int64(item.Quantity)
	}
	return total
}

func (s *stubCartStore) AddItem(ctx context.Context, item cart.LineItem) {
	s.added = append(s.added, item)
	s.items = append(s.items, item)
}

func (s *stubCartStore) RemoveItem(ctx context.Context, variantSKU, remoteID string) {
	s.removed = append(s.removed, variantSKU)
}

func (s *stubCartStore) UpdateQuantity(ctx context.Context, variantSKU string, quantity int, remoteID string) {
	if s.updated == nil {
		s.updated = map[string]int{}
	}
	s.updated[variantSKU] = quantity
}

func (s *stubCartStore) Clear(ctx context.Context)          { s.cleared = true }
func (s *stubCartStore) SyncWithRemote(ctx context.Context) { s.synced = true }

func TestCartAddMergesPayload(t *testing.T) {
	store := &stubCartStore{}
	handler := CartAdd(store, nil)

	body := `{"variant_sku":"SKU-9","product_id":"p-9","product_name":"Tennis Bracelet","unit_price":125000,"quantity":1}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if len(store.added) != 1 || store.added[0].VariantSKU != "SKU-9" {
		t.Fatalf("expected one added item, got %+v", store.added)
	}

	var envelope struct {
		Data cartSnapshotResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Count != 1 || envelope.Data.Subtotal != 125000 {
		t.Fatalf("unexpected snapshot %+v", envelope.Data)
	}
}

func TestCartAddRejectsMissingSKU(t *testing.T) {
	store := &stubCartStore{}
	handler := CartAdd(store, nil)

	body := `{"product_id":"p-9","product_name":"Tennis Bracelet","unit_price":125000,"quantity":1}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if len(store.added) != 0 {
		t.Fatalf("invalid payload must not reach the store")
	}
}

func TestCartAddRejectsZeroQuantity(t *testing.T) {
	store := &stubCartStore{}
	handler := CartAdd(store, nil)

	body := `{"variant_sku":"SKU-9","product_id":"p-9","product_name":"Tennis Bracelet","unit_price":125000,"quantity":0}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartUpdateQuantityAllowsZero(t *testing.T) {
	store := &stubCartStore{}
	handler := CartUpdateQuantity(store, nil)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/cart/items/SKU-9", strings.NewReader(`{"quantity":0}`))
	req.Header.Set("Content-Type", "application/json")
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("variantSKU", "SKU-9")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	resp := httptest.NewRecorder()
	handler(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if qty, ok := store.updated["SKU-9"]; !ok || qty != 0 {
		t.Fatalf("expected quantity 0 forwarded, got %v", store.updated)
	}
}

func TestCartRemoveForwardsRemoteID(t *testing.T) {
	store := &stubCartStore{}
	handler := CartRemove(store, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/cart/items/SKU-9?remote_id=srv-1", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("variantSKU", "SKU-9")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	resp := httptest.NewRecorder()
	handler(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if len(store.removed) != 1 || store.removed[0] != "SKU-9" {
		t.Fatalf("expected remove for SKU-9, got %v", store.removed)
	}
}

func TestCartSyncRunsAndReturnsSnapshot(t *testing.T) {
	store := &stubCartStore{items: []cart.LineItem{{VariantSKU: "SKU-1", UnitPrice: 500, Quantity: 2}}}
	handler := CartSync(store, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/sync", nil)
	resp := httptest.NewRecorder()
	handler(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !store.synced {
		t.Fatalf("expected sync to run")
	}
	if !strings.Contains(resp.Body.String(), `"subtotal":1000`) {
		t.Fatalf("expected subtotal in %s", resp.Body.String())
	}
}

func TestCartFetchUnavailableStore(t *testing.T) {
	handler := CartFetch(nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart/", nil)
	resp := httptest.NewRecorder()
	handler(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}
