package shopapi

import (
	"context"
	"net/http"
	"net/url"
)

// CartItemPayload is the wire shape for a cart line item. RemoteID is the
// server's row id; it is empty for items the server has not confirmed yet.
type CartItemPayload struct {
	RemoteID  string `json:"id,omitempty"`
	SKU       string `json:"sku"`
	ProductID string `json:"product_id"`
	Name      string `json:"name,omitempty"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	ImageURL  string `json:"image_url,omitempty"`
}

type updateQuantityPayload struct {
	Quantity int `json:"quantity"`
}

type cartSyncRequest struct {
	Items []CartItemPayload `json:"items"`
}

type cartSyncResponse struct {
	Items []CartItemPayload `json:"items"`
}

// AddCartItem creates a server-side line item and returns the confirmed row.
func (c *Client) AddCartItem(ctx context.Context, token string, item CartItemPayload) (CartItemPayload, error) {
	var confirmed CartItemPayload
	if err := c.do(ctx, http.MethodPost, "/v1/cart/items", token, item, &confirmed); err != nil {
		return CartItemPayload{}, err
	}
	return confirmed, nil
}

// RemoveCartItem deletes the server-side line item by its remote id.
func (c *Client) RemoveCartItem(ctx context.Context, token, remoteID string) error {
	return c.do(ctx, http.MethodDelete, "/v1/cart/items/"+url.PathEscape(remoteID), token, nil, nil)
}

// UpdateCartItemQuantity patches the quantity of a confirmed line item.
func (c *Client) UpdateCartItemQuantity(ctx context.Context, token, remoteID string, quantity int) error {
	return c.do(ctx, http.MethodPatch, "/v1/cart/items/"+url.PathEscape(remoteID), token, updateQuantityPayload{Quantity: quantity}, nil)
}

// SyncCart sends the entire local collection and returns the server's
// canonical merged list. The server is the merge authority.
func (c *Client) SyncCart(ctx context.Context, token string, items []CartItemPayload) ([]CartItemPayload, error) {
	var resp cartSyncResponse
	if err := c.do(ctx, http.MethodPost, "/v1/cart/sync", token, cartSyncRequest{Items: items}, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}
