// Package shopapi is the HTTP client for the brand's commerce backend. The
// backend owns catalog, cart and wishlist truth; this client only mirrors
// the gateway's optimistic local state to it.
package shopapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	pkgerrors "github.com/aureliajewels/storefront-core/pkg/errors"

	"github.com/aureliajewels/storefront-core/pkg/config"
	"github.com/aureliajewels/storefront-core/pkg/logger"
)

// Client talks to the commerce backend. Requests carry no timeout unless one
// is configured; a hung call leaves the local line item unconfirmed rather
// than failing a mutation.
type Client struct {
	baseURL string
	httpc   *http.Client
	logg    *logger.Logger
}

// NewClient validates the configured base URL and builds the client.
func NewClient(cfg config.ShopAPIConfig, logg *logger.Logger) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("shop api base url is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("invalid shop api base url: %w", err)
	}

	return &Client{
		baseURL: base,
		httpc:   &http.Client{Timeout: cfg.Timeout},
		logg:    logg,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding request body")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("%s %s", method, path))
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("%s %s: unexpected status %d", method, path, resp.StatusCode)).
			WithDetails(map[string]any{"status": resp.StatusCode})
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("%s %s: decoding response", method, path))
	}
	return nil
}
