package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/shop-cart/internal/adapter/notify"
	"github.com/rl1809/shop-cart/internal/adapter/storage"
	"github.com/rl1809/shop-cart/internal/core/domain"
	"github.com/rl1809/shop-cart/internal/core/service"
	"github.com/rl1809/shop-cart/internal/port"
)

const (
	redisAddr     = "localhost:6379"
	productID     = 1
	initialStock  = 20
	totalRequests = 50
)

// staticCatalog answers every lookup with the same product.
type staticCatalog struct{}

func (staticCatalog) GetProduct(ctx context.Context, id int64) (port.CatalogResponse, error) {
	return port.CatalogResponse{
		Status:  http.StatusOK,
		Product: domain.Product{ID: id, Title: "Stress Sneaker", Price: 99.9},
	}, nil
}

func main() {
	ctx := context.Background()

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	defer rdb.Close()

	// Fresh session so runs do not see each other's carts
	session := "stress-" + uuid.NewString()
	defer rdb.Del(ctx, "cart:"+session)

	redisAdapter := storage.NewRedisAdapter(rdb, session)
	if err := redisAdapter.SetStock(ctx, productID, initialStock); err != nil {
		log.Fatalf("failed to set stock: %v", err)
	}

	feed := notify.NewFeed(totalRequests)
	cartService := service.NewCartService(ctx, staticCatalog{}, redisAdapter, redisAdapter, feed)

	if outcome := cartService.AddProduct(ctx, productID); outcome != service.OutcomeOK {
		log.Fatalf("initial add failed: %s", outcome)
	}

	// Counters
	var successCount atomic.Int32
	var failCount atomic.Int32

	// Spawn concurrent adds of the same product
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			if cartService.AddProduct(ctx, productID) == service.OutcomeOK {
				successCount.Add(1)
			} else {
				failCount.Add(1)
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	cart := cartService.Cart()
	finalAmount := 0
	if idx, ok := cart.Find(productID); ok {
		finalAmount = cart[idx].Amount
	}

	stored, err := redisAdapter.LoadCart(ctx)
	if err != nil {
		log.Fatalf("failed to load stored cart: %v", err)
	}

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Stock:           %d\n", initialStock)
	fmt.Printf("Total requests:  %d\n", totalRequests)
	fmt.Printf("Successful adds: %d\n", successCount.Load())
	fmt.Printf("Rejected adds:   %d\n", failCount.Load())
	fmt.Printf("Notifications:   %d\n", len(feed.List()))
	fmt.Printf("Final amount:    %d\n", finalAmount)
	fmt.Printf("Stored snapshot: %s\n", stored)
	fmt.Printf("Elapsed:         %v\n", elapsed)
	fmt.Println("==========================================")

	if lost := 1 + int(successCount.Load()) - finalAmount; lost > 0 {
		fmt.Printf("%d increments were overwritten by concurrent commits (last writer wins)\n", lost)
	}
	if finalAmount > initialStock {
		fmt.Println("FAIL: amount exceeds stock")
	} else {
		fmt.Println("PASS: amount within stock")
	}
}
