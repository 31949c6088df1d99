// Package client talks to the storefront cart and wishlist endpoints.
package client

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/terragrow/storefront/apperrors"
	"github.com/terragrow/storefront/clientstore"
	"github.com/terragrow/storefront/responses"
)

const defaultTimeout = 15 * time.Second

// Client implements clientstore.API over HTTP.
type Client struct {
	http *resty.Client
}

var _ clientstore.API = (*Client)(nil)

// New builds a client for baseURL (for example https://shop.example.com/api)
// authenticated with the given access token.
func New(baseURL, accessToken string) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(defaultTimeout).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")
	if accessToken != "" {
		rc.SetAuthToken(accessToken)
	}
	return &Client{http: rc}
}

// SetAccessToken swaps the bearer token after a refresh.
func (c *Client) SetAccessToken(token string) {
	c.http.SetAuthToken(token)
}

type wishlistBody struct {
	Items []string `json:"items"`
}

type cartBody struct {
	Items []clientstore.CartEntry `json:"items"`
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var failure responses.ErrorBody
	req := c.http.R().
		SetContext(ctx).
		SetResult(result).
		SetError(&failure)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeDependency, err, "storefront request failed")
	}
	if resp.IsError() {
		code := apperrors.Code(failure.Code)
		if code == "" {
			code = codeForStatus(resp.StatusCode())
		}
		msg := failure.Error
		if msg == "" {
			msg = resp.Status()
		}
		e := apperrors.New(code, msg)
		if failure.Details != nil {
			e = e.WithDetails(failure.Details)
		}
		return e
	}
	return nil
}

func codeForStatus(status int) apperrors.Code {
	switch status {
	case http.StatusBadRequest:
		return apperrors.CodeValidation
	case http.StatusUnauthorized:
		return apperrors.CodeUnauthorized
	case http.StatusForbidden:
		return apperrors.CodeForbidden
	case http.StatusNotFound:
		return apperrors.CodeNotFound
	case http.StatusConflict:
		return apperrors.CodeConflict
	case http.StatusTooManyRequests:
		return apperrors.CodeRateLimit
	case http.StatusServiceUnavailable:
		return apperrors.CodeDependency
	}
	return apperrors.CodeInternal
}

func (c *Client) wishlist(ctx context.Context, method, path string, body any) ([]string, error) {
	var out wishlistBody
	if err := c.do(ctx, method, path, body, &out); err != nil {
		return nil, err
	}
	if out.Items == nil {
		out.Items = []string{}
	}
	return out.Items, nil
}

func (c *Client) cart(ctx context.Context, method, path string, body any) ([]clientstore.CartEntry, error) {
	var out cartBody
	if err := c.do(ctx, method, path, body, &out); err != nil {
		return nil, err
	}
	if out.Items == nil {
		out.Items = []clientstore.CartEntry{}
	}
	return out.Items, nil
}

func (c *Client) Wishlist(ctx context.Context) ([]string, error) {
	return c.wishlist(ctx, http.MethodGet, "/wishlist", nil)
}

func (c *Client) AddToWishlist(ctx context.Context, productID string) ([]string, error) {
	return c.wishlist(ctx, http.MethodPost, "/wishlist", map[string]string{"productId": productID})
}

func (c *Client) RemoveFromWishlist(ctx context.Context, productID string) ([]string, error) {
	return c.wishlist(ctx, http.MethodDelete, "/wishlist/"+url.PathEscape(productID), nil)
}

func (c *Client) ClearWishlist(ctx context.Context) ([]string, error) {
	return c.wishlist(ctx, http.MethodDelete, "/wishlist", nil)
}

func (c *Client) Cart(ctx context.Context) ([]clientstore.CartEntry, error) {
	return c.cart(ctx, http.MethodGet, "/cart", nil)
}

func (c *Client) AddToCart(ctx context.Context, productID string, quantity int) ([]clientstore.CartEntry, error) {
	return c.cart(ctx, http.MethodPost, "/cart", map[string]any{"productId": productID, "quantity": quantity})
}

func (c *Client) UpdateCartQuantity(ctx context.Context, productID string, quantity int) ([]clientstore.CartEntry, error) {
	return c.cart(ctx, http.MethodPatch, "/cart/"+url.PathEscape(productID), map[string]int{"quantity": quantity})
}

func (c *Client) RemoveFromCart(ctx context.Context, productID string) ([]clientstore.CartEntry, error) {
	return c.cart(ctx, http.MethodDelete, "/cart/"+url.PathEscape(productID), nil)
}

func (c *Client) ClearCart(ctx context.Context) ([]clientstore.CartEntry, error) {
	return c.cart(ctx, http.MethodDelete, "/cart", nil)
}
