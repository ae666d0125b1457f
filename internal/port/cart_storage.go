package port

import "context"

type CartStorage interface {
	// LoadCart returns the stored snapshot, or nil if none was ever saved
	LoadCart(ctx context.Context) ([]byte, error)

	// SaveCart overwrites the stored snapshot in full
	SaveCart(ctx context.Context, data []byte) error
}
