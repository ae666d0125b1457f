package storage

import (
	"context"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/shop-cart/internal/core/domain"
)

const (
	stockKeyPrefix = "stock:"
	cartKeyPrefix  = "cart:"
)

// RedisAdapter reads stock levels from "stock:<product id>" keys and keeps
// the cart snapshot under a single "cart:<session>" key.
type RedisAdapter struct {
	client  *redis.Client
	cartKey string
}

func NewRedisAdapter(client *redis.Client, session string) *RedisAdapter {
	return &RedisAdapter{client: client, cartKey: cartKeyPrefix + session}
}

func stockKey(productID int64) string {
	return stockKeyPrefix + strconv.FormatInt(productID, 10)
}

func (r *RedisAdapter) GetStock(ctx context.Context, productID int64) (domain.Stock, error) {
	amount, err := r.client.Get(ctx, stockKey(productID)).Int()
	if errors.Is(err, redis.Nil) {
		return domain.Stock{ProductID: productID}, nil
	}
	if err != nil {
		return domain.Stock{}, err
	}

	return domain.Stock{ProductID: productID, Amount: amount}, nil
}

func (r *RedisAdapter) SetStock(ctx context.Context, productID int64, amount int) error {
	return r.client.Set(ctx, stockKey(productID), amount, 0).Err()
}

func (r *RedisAdapter) LoadCart(ctx context.Context) ([]byte, error) {
	data, err := r.client.Get(ctx, r.cartKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return data, nil
}

func (r *RedisAdapter) SaveCart(ctx context.Context, data []byte) error {
	return r.client.Set(ctx, r.cartKey, data, 0).Err()
}
