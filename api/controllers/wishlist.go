package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aureliajewels/storefront-core/api/responses"
	"github.com/aureliajewels/storefront-core/api/validators"
	"github.com/aureliajewels/storefront-core/internal/wishlist"
	pkgerrors "github.com/aureliajewels/storefront-core/pkg/errors"
	"github.com/aureliajewels/storefront-core/pkg/logger"
)

type wishlistStore interface {
	Entries() []wishlist.Entry
	Count() int
	IsMember(productID string) bool
	Add(ctx context.Context, entry wishlist.Entry)
	Remove(ctx context.Context, productID string)
	Toggle(ctx context.Context, entry wishlist.Entry)
	Clear(ctx context.Context)
	SyncWithRemote(ctx context.Context)
}

type wishlistSnapshotResponse struct {
	Entries []wishlist.Entry `json:"entries"`
	Count   int              `json:"count"`
}

func newWishlistSnapshot(store wishlistStore) wishlistSnapshotResponse {
	entries := store.Entries()
	if entries == nil {
		entries = []wishlist.Entry{}
	}
	return wishlistSnapshotResponse{Entries: entries, Count: store.Count()}
}

// WishlistFetch returns the current wishlist snapshot.
func WishlistFetch(store wishlistStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishlist store unavailable"))
			return
		}
		responses.WriteSuccess(w, newWishlistSnapshot(store))
	}
}

type wishlistEntryRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Name      string `json:"name"`
	Price     *int64 `json:"price"`
	ImageURL  string `json:"image_url"`
}

func (p wishlistEntryRequest) toEntry() wishlist.Entry {
	return wishlist.Entry{
		ProductID: p.ProductID,
		Name:      p.Name,
		Price:     p.Price,
		ImageURL:  p.ImageURL,
	}
}

// WishlistAdd adds a product; adding a member again is a no-op.
func WishlistAdd(store wishlistStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishlist store unavailable"))
			return
		}

		var payload wishlistEntryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store.Add(r.Context(), payload.toEntry())
		responses.WriteSuccess(w, newWishlistSnapshot(store))
	}
}

// WishlistToggle flips membership for a product.
func WishlistToggle(store wishlistStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishlist store unavailable"))
			return
		}

		var payload wishlistEntryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store.Toggle(r.Context(), payload.toEntry())
		responses.WriteSuccess(w, newWishlistSnapshot(store))
	}
}

// WishlistRemove drops a product; removing a non-member is a no-op.
func WishlistRemove(store wishlistStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishlist store unavailable"))
			return
		}

		productID := strings.TrimSpace(chi.URLParam(r, "productId"))
		if productID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id is required"))
			return
		}

		store.Remove(r.Context(), productID)
		responses.WriteSuccess(w, newWishlistSnapshot(store))
	}
}

// WishlistClear empties the wishlist.
func WishlistClear(store wishlistStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishlist store unavailable"))
			return
		}
		store.Clear(r.Context())
		responses.WriteSuccess(w, newWishlistSnapshot(store))
	}
}

// WishlistSync reconciles the wishlist against the backend.
func WishlistSync(store wishlistStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishlist store unavailable"))
			return
		}
		store.SyncWithRemote(r.Context())
		responses.WriteSuccess(w, newWishlistSnapshot(store))
	}
}
