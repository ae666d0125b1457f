package port

import (
	"context"

	"github.com/rl1809/shop-cart/internal/core/domain"
)

type StockGateway interface {
	// GetStock returns the live stock level; unknown products report zero
	GetStock(ctx context.Context, productID int64) (domain.Stock, error)
}
