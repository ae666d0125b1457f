package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/rl1809/shop-cart/internal/adapter/notify"
	"github.com/rl1809/shop-cart/internal/core/domain"
	"github.com/rl1809/shop-cart/internal/core/service"
	"github.com/rl1809/shop-cart/internal/port"
)

type fakeBackend struct {
	mu       sync.Mutex
	products map[int64]domain.Product
	stock    map[int64]int
	snapshot []byte
}

func (f *fakeBackend) GetProduct(ctx context.Context, productID int64) (port.CatalogResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[productID]
	if !ok {
		return port.CatalogResponse{Status: http.StatusNotFound}, nil
	}
	return port.CatalogResponse{Status: http.StatusOK, Product: p}, nil
}

func (f *fakeBackend) GetStock(ctx context.Context, productID int64) (domain.Stock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return domain.Stock{ProductID: productID, Amount: f.stock[productID]}, nil
}

func (f *fakeBackend) LoadCart(ctx context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot, nil
}

func (f *fakeBackend) SaveCart(ctx context.Context, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshot = data
	return nil
}

func newTestService(t *testing.T) (*service.CartService, *notify.Feed) {
	t.Helper()
	backend := &fakeBackend{
		products: map[int64]domain.Product{
			1: {ID: 1, Title: "Shoe", Price: 100},
			2: {ID: 2, Title: "Boot", Price: 250},
			3: {ID: 3, Price: 5, Attributes: map[string]json.RawMessage{"name": json.RawMessage(`"Sock"`)}},
		},
		stock: map[int64]int{1: 3, 2: 1},
	}
	feed := notify.NewFeed(10)
	svc := service.NewCartService(context.Background(), backend, backend, backend, feed)
	return svc, feed
}
