package integration

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/shop-cart/internal/adapter/notify"
	"github.com/rl1809/shop-cart/internal/adapter/storage"
	"github.com/rl1809/shop-cart/internal/core/domain"
	"github.com/rl1809/shop-cart/internal/core/service"
)

type testEnv struct {
	redis   *redis.Client
	mysql   *sql.DB
	stock   *storage.RedisAdapter
	catalog *storage.MySQLAdapter
	local   *sql.DB
	store   *storage.SQLiteAdapter
	cleanup func()
}

func setupTestEnv(t *testing.T) *testEnv {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		mysqlDSN = "root:root@tcp(localhost:3306)/shopcart?parseTime=true"
	}

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	db, err := sql.Open("mysql", mysqlDSN)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	catalog := storage.NewMySQLAdapter(db)
	if err := catalog.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("schema: %v", err)
	}

	local, err := storage.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "cart.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	return &testEnv{
		redis:   rdb,
		mysql:   db,
		stock:   storage.NewRedisAdapter(rdb, uuid.NewString()),
		catalog: catalog,
		local:   local,
		store:   storage.NewSQLiteAdapter(local, "cart:integration"),
		cleanup: func() {
			local.Close()
			rdb.Close()
			db.Close()
		},
	}
}

func (env *testEnv) newService(feed *notify.Feed) *service.CartService {
	return service.NewCartService(context.Background(), env.catalog, env.stock, env.store, feed)
}

func TestIntegration_FullCartFlow(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()

	ctx := context.Background()
	shoe := domain.Product{ID: 7001, Title: "Integration Shoe", Price: 120, Image: "shoe.jpg"}
	boot := domain.Product{ID: 7002, Title: "Integration Boot", Price: 200}

	// Setup: catalog in MySQL, stock in Redis
	for _, p := range []domain.Product{shoe, boot} {
		if err := env.catalog.UpsertProduct(ctx, p); err != nil {
			t.Fatalf("seed product: %v", err)
		}
	}
	defer env.mysql.ExecContext(ctx, `DELETE FROM products WHERE id IN (7001, 7002)`)
	env.stock.SetStock(ctx, shoe.ID, 3)
	env.stock.SetStock(ctx, boot.ID, 1)
	defer env.redis.Del(ctx, "stock:7001", "stock:7002")

	feed := notify.NewFeed(10)
	svc := env.newService(feed)

	steps := []struct {
		name string
		run  func() service.Outcome
		want service.Outcome
	}{
		{"add shoe", func() service.Outcome { return svc.AddProduct(ctx, shoe.ID) }, service.OutcomeOK},
		{"add boot", func() service.Outcome { return svc.AddProduct(ctx, boot.ID) }, service.OutcomeOK},
		{"increment shoe", func() service.Outcome { return svc.AddProduct(ctx, shoe.ID) }, service.OutcomeOK},
		{"increment boot past stock", func() service.Outcome { return svc.AddProduct(ctx, boot.ID) }, service.OutcomeOutOfStock},
		{"set shoe to 3", func() service.Outcome { return svc.UpdateProductAmount(ctx, shoe.ID, 3) }, service.OutcomeOK},
		{"set shoe to 4", func() service.Outcome { return svc.UpdateProductAmount(ctx, shoe.ID, 4) }, service.OutcomeOutOfStock},
		{"unknown product", func() service.Outcome { return svc.AddProduct(ctx, -1) }, service.OutcomeCatalogFailure},
		{"remove boot", func() service.Outcome { return svc.RemoveProduct(ctx, boot.ID) }, service.OutcomeOK},
		{"remove boot again", func() service.Outcome { return svc.RemoveProduct(ctx, boot.ID) }, service.OutcomeNotFound},
	}
	for _, step := range steps {
		if got := step.run(); got != step.want {
			t.Fatalf("%s: expected %s, got %s", step.name, step.want, got)
		}
	}

	want := domain.Cart{{Product: shoe, Amount: 3}}
	if !reflect.DeepEqual(svc.Cart(), want) {
		t.Errorf("expected %+v, got %+v", want, svc.Cart())
	}
	if n := len(feed.List()); n != 4 {
		t.Errorf("expected 4 notifications, got %d", n)
	}

	// A new service over the same local store restores the cart
	restored := env.newService(notify.NewFeed(1))
	if !reflect.DeepEqual(restored.Cart(), want) {
		t.Errorf("expected restored %+v, got %+v", want, restored.Cart())
	}
}
