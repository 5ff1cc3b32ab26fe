package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aureliajewels/storefront-core/api/responses"
	"github.com/aureliajewels/storefront-core/api/validators"
	"github.com/aureliajewels/storefront-core/internal/cart"
	pkgerrors "github.com/aureliajewels/storefront-core/pkg/errors"
	"github.com/aureliajewels/storefront-core/pkg/logger"
)

type cartStore interface {
	Items() []cart.LineItem
	Count() int
	Subtotal() int64
	AddItem(ctx context.Context, item cart.LineItem)
	RemoveItem(ctx context.Context, variantSKU, remoteID string)
	UpdateQuantity(ctx context.Context, variantSKU string, quantity int, remoteID string)
	Clear(ctx context.Context)
	SyncWithRemote(ctx context.Context)
}

type cartSnapshotResponse struct {
	Items    []cart.LineItem `json:"items"`
	Count    int             `json:"count"`
	Subtotal int64           `json:"subtotal"`
}

func newCartSnapshot(store cartStore) cartSnapshotResponse {
	items := store.Items()
	if items == nil {
		items = []cart.LineItem{}
	}
	return cartSnapshotResponse{
		Items:    items,
		Count:    store.Count(),
		Subtotal: store.Subtotal(),
	}
}

// CartFetch returns the current cart snapshot.
func CartFetch(store cartStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart store unavailable"))
			return
		}
		responses.WriteSuccess(w, newCartSnapshot(store))
	}
}

type addCartItemRequest struct {
	VariantSKU  string `json:"variant_sku" validate:"required"`
	ProductID   string `json:"product_id" validate:"required"`
	ProductName string `json:"product_name" validate:"required"`
	UnitPrice   int64  `json:"unit_price" validate:"min=0"`
	Quantity    int    `json:"quantity" validate:"required,min=1"`
	ImageURL    string `json:"image_url"`
}

// CartAdd merges an item into the cart and responds with the applied
// snapshot. The remote mirror write happens in the background.
func CartAdd(store cartStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart store unavailable"))
			return
		}

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store.AddItem(r.Context(), cart.LineItem{
			VariantSKU:  payload.VariantSKU,
			ProductID:   payload.ProductID,
			ProductName: payload.ProductName,
			UnitPrice:   payload.UnitPrice,
			Quantity:    payload.Quantity,
			ImageURL:    payload.ImageURL,
		})
		responses.WriteSuccess(w, newCartSnapshot(store))
	}
}

type updateQuantityRequest struct {
	Quantity *int   `json:"quantity" validate:"required"`
	RemoteID string `json:"remote_id"`
}

// CartUpdateQuantity sets the quantity for a line. Zero or negative
// quantities remove the line.
func CartUpdateQuantity(store cartStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart store unavailable"))
			return
		}

		variantSKU := strings.TrimSpace(chi.URLParam(r, "variantSKU"))
		if variantSKU == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "variant sku is required"))
			return
		}

		var payload updateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store.UpdateQuantity(r.Context(), variantSKU, *payload.Quantity, payload.RemoteID)
		responses.WriteSuccess(w, newCartSnapshot(store))
	}
}

// CartRemove drops a line by variant SKU or remote id.
func CartRemove(store cartStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart store unavailable"))
			return
		}

		variantSKU := strings.TrimSpace(chi.URLParam(r, "variantSKU"))
		if variantSKU == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "variant sku is required"))
			return
		}

		remoteID := strings.TrimSpace(r.URL.Query().Get("remote_id"))
		store.RemoveItem(r.Context(), variantSKU, remoteID)
		responses.WriteSuccess(w, newCartSnapshot(store))
	}
}

// CartClear empties the cart.
func CartClear(store cartStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart store unavailable"))
			return
		}
		store.Clear(r.Context())
		responses.WriteSuccess(w, newCartSnapshot(store))
	}
}

// CartSync reconciles the cart against the backend and responds with
// whichever snapshot survived.
func CartSync(store cartStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart store unavailable"))
			return
		}
		store.SyncWithRemote(r.Context())
		responses.WriteSuccess(w, newCartSnapshot(store))
	}
}
