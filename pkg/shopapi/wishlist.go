package shopapi

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// WishlistEntryPayload is the wire shape for a wishlist row. The product id
// doubles as the remote key; there is no separate row id.
type WishlistEntryPayload struct {
	ProductID string    `json:"product_id"`
	Name      string    `json:"name,omitempty"`
	Price     *int64    `json:"price,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
	AddedAt   time.Time `json:"added_at,omitempty"`
}

type wishlistAddPayload struct {
	ProductID string `json:"product_id"`
}

type wishlistSyncRequest struct {
	ProductIDs []string `json:"product_ids"`
}

type wishlistSyncResponse struct {
	Items []WishlistEntryPayload `json:"items"`
}

// AddWishlistItem records the product on the server-side wishlist.
func (c *Client) AddWishlistItem(ctx context.Context, token, productID string) error {
	return c.do(ctx, http.MethodPost, "/v1/wishlist/items", token, wishlistAddPayload{ProductID: productID}, nil)
}

// RemoveWishlistItem drops the product from the server-side wishlist.
func (c *Client) RemoveWishlistItem(ctx context.Context, token, productID string) error {
	return c.do(ctx, http.MethodDelete, "/v1/wishlist/items/"+url.PathEscape(productID), token, nil, nil)
}

// SyncWishlist sends the locally-held product ids and returns the server's
// canonical list.
func (c *Client) SyncWishlist(ctx context.Context, token string, productIDs []string) ([]WishlistEntryPayload, error) {
	var resp wishlistSyncResponse
	if err := c.do(ctx, http.MethodPost, "/v1/wishlist/sync", token, wishlistSyncRequest{ProductIDs: productIDs}, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}
