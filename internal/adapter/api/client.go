// Package api talks to a REST backend exposing /products/{id} and /stock/{id}.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rl1809/shop-cart/internal/core/domain"
	"github.com/rl1809/shop-cart/internal/port"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// GetProduct passes the backend's status through. The body is only decoded
// on 200.
func (c *Client) GetProduct(ctx context.Context, productID int64) (port.CatalogResponse, error) {
	resp, err := c.get(ctx, fmt.Sprintf("/products/%d", productID))
	if err != nil {
		return port.CatalogResponse{}, err
	}
	defer resp.Body.Close()

	out := port.CatalogResponse{Status: resp.StatusCode}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return out, nil
	}

	if err := json.NewDecoder(resp.Body).Decode(&out.Product); err != nil {
		return port.CatalogResponse{}, fmt.Errorf("decode product: %w", err)
	}
	return out, nil
}

// GetStock treats any non-200 status as an error.
func (c *Client) GetStock(ctx context.Context, productID int64) (domain.Stock, error) {
	resp, err := c.get(ctx, fmt.Sprintf("/stock/%d", productID))
	if err != nil {
		return domain.Stock{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return domain.Stock{}, fmt.Errorf("get stock %d: unexpected status %d", productID, resp.StatusCode)
	}

	var stock domain.Stock
	if err := json.NewDecoder(resp.Body).Decode(&stock); err != nil {
		return domain.Stock{}, fmt.Errorf("decode stock: %w", err)
	}
	stock.ProductID = productID
	return stock, nil
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	return resp, nil
}
