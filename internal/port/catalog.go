package port

import (
	"context"

	"github.com/rl1809/shop-cart/internal/core/domain"
)

// CatalogResponse carries the status reported by the catalog alongside the
// product. Only http.StatusOK means the product was found.
type CatalogResponse struct {
	Status  int
	Product domain.Product
}

type ProductCatalog interface {
	// GetProduct looks up display attributes for a product
	GetProduct(ctx context.Context, productID int64) (CatalogResponse, error)
}
