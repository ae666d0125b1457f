package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/rl1809/shop-cart/internal/adapter/api"
	"github.com/rl1809/shop-cart/internal/adapter/handler"
	"github.com/rl1809/shop-cart/internal/adapter/notify"
	"github.com/rl1809/shop-cart/internal/adapter/storage"
	"github.com/rl1809/shop-cart/internal/config"
	"github.com/rl1809/shop-cart/internal/core/service"
	"github.com/rl1809/shop-cart/internal/platform/logger"
	"github.com/rl1809/shop-cart/internal/platform/metrics"
	"github.com/rl1809/shop-cart/internal/platform/telemetry"
	"github.com/rl1809/shop-cart/internal/port"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing
	tracing := telemetry.Config{ServiceName: "shop-cart", Endpoint: cfg.OTLPEndpoint, Probability: cfg.TraceProbability}
	if cfg.TraceStdout {
		tracing.Writer = os.Stdout
	}
	_, shutdownTracing, err := telemetry.InitTracing(ctx, tracing)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn("shutdown tracing", zap.Error(err))
		}
	}()

	// Initialize MySQL
	var mysqlAdapter *storage.MySQLAdapter
	if cfg.UsesMySQL() {
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := db.PingContext(ctx); err != nil {
			return err
		}
		mysqlAdapter = storage.NewMySQLAdapter(db)
		if err := mysqlAdapter.EnsureSchema(ctx); err != nil {
			return err
		}
		log.Info("connected to mysql")
	}

	// Initialize Redis
	var redisAdapter *storage.RedisAdapter
	if cfg.UsesRedis() {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return err
		}
		redisAdapter = storage.NewRedisAdapter(rdb, cfg.Session)
		log.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
	}

	apiClient := api.NewClient(cfg.APIBaseURL, cfg.APITimeout)

	var catalog port.ProductCatalog
	switch cfg.CatalogBackend {
	case config.CatalogMySQL:
		catalog = mysqlAdapter
	case config.CatalogHTTP:
		catalog = apiClient
	}

	var stock port.StockGateway
	switch cfg.StockBackend {
	case config.StockRedis:
		stock = redisAdapter
	case config.StockMySQL:
		stock = mysqlAdapter
	case config.StockHTTP:
		stock = apiClient
	}

	var cartStorage port.CartStorage
	switch cfg.StorageBackend {
	case config.StorageSQLite:
		db, err := storage.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return err
		}
		defer db.Close()
		cartStorage = storage.NewSQLiteAdapter(db, "cart:"+cfg.Session)
	case config.StorageRedis:
		cartStorage = redisAdapter
	}
	log.Info("backends selected",
		zap.String("catalog", cfg.CatalogBackend),
		zap.String("stock", cfg.StockBackend),
		zap.String("storage", cfg.StorageBackend),
	)

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.New(reg)

	// Initialize service
	feed := notify.NewFeed(cfg.NotificationCap)
	notifier := notify.Multi{feed, notify.NewLogNotifier(log)}
	cartService := service.NewCartService(ctx, catalog, stock, cartStorage, notifier,
		service.WithLogger(log),
		service.WithMetrics(recorder),
	)

	// Initialize gRPC server
	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	handler.RegisterCartServiceServer(grpcServer, handler.NewGRPCHandler(cartService))
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("shopcart.v1.CartService", healthpb.HealthCheckResponse_SERVING)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return err
	}

	go func() {
		log.Info("gRPC server listening", zap.String("addr", cfg.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			log.Error("gRPC server error", zap.Error(err))
		}
	}()

	// Initialize HTTP server
	router := mux.NewRouter()
	handler.NewHTTPHandler(cartService, feed).Register(router)
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown", zap.Error(err))
	}
	log.Info("HTTP server stopped")

	healthServer.Shutdown()
	grpcServer.GracefulStop()
	log.Info("gRPC server stopped")

	return nil
}
