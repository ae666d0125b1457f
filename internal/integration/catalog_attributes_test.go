package integration

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rl1809/shop-cart/internal/adapter/api"
	"github.com/rl1809/shop-cart/internal/adapter/notify"
	"github.com/rl1809/shop-cart/internal/adapter/storage"
	"github.com/rl1809/shop-cart/internal/core/service"
)

func TestIntegration_CatalogAttributesPersisted(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/products/1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":1,"name":"Shoe","price":100}`))
	})
	mux.HandleFunc("/stock/1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":1,"amount":5}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx := context.Background()
	db, err := storage.OpenSQLite(ctx, filepath.Join(t.TempDir(), "cart.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()
	store := storage.NewSQLiteAdapter(db, "cart:attributes")

	client := api.NewClient(srv.URL, time.Second)
	svc := service.NewCartService(ctx, client, client, store, notify.NewFeed(5))

	if outcome := svc.AddProduct(ctx, 1); outcome != service.OutcomeOK {
		t.Fatalf("expected ok, got %s", outcome)
	}

	data, err := store.LoadCart(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := `[{"amount":1,"id":1,"name":"Shoe","price":100}]`
	if string(data) != want {
		t.Errorf("expected snapshot %s, got %s", want, data)
	}

	// Increment keeps the attributes of the stored entry
	if outcome := svc.AddProduct(ctx, 1); outcome != service.OutcomeOK {
		t.Fatalf("expected ok, got %s", outcome)
	}
	restored := service.NewCartService(ctx, client, client, store, notify.NewFeed(5))
	entry := restored.Cart()[0]
	if entry.Amount != 2 || string(entry.Attributes["name"]) != `"Shoe"` {
		t.Errorf("unexpected restored entry: %+v", entry)
	}
}
