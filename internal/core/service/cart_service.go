package service

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/rl1809/shop-cart/internal/core/domain"
	"github.com/rl1809/shop-cart/internal/platform/metrics"
	"github.com/rl1809/shop-cart/internal/port"
)

const tracerName = "github.com/rl1809/shop-cart/internal/core/service"

// CartService owns the cart. Every successful mutation is written through to
// storage and then published to subscribers.
//
// Operations read a snapshot when they start and commit a cart computed from
// it. The lock is not held while waiting on the catalog or stock gateway, so
// two overlapping operations can both start from the same snapshot and the
// later commit wins.
type CartService struct {
	catalog  port.ProductCatalog
	stock    port.StockGateway
	storage  port.CartStorage
	notifier port.Notifier

	log     *zap.Logger
	metrics *metrics.Recorder
	tracer  trace.Tracer

	mu          sync.RWMutex
	cart        domain.Cart
	subscribers map[int]chan domain.Cart
	nextSubID   int
}

type Option func(*CartService)

func WithLogger(log *zap.Logger) Option {
	return func(s *CartService) { s.log = log }
}

func WithMetrics(m *metrics.Recorder) Option {
	return func(s *CartService) { s.metrics = m }
}

// NewCartService restores the cart from storage. A missing, unreadable or
// inconsistent snapshot yields an empty cart.
func NewCartService(ctx context.Context, catalog port.ProductCatalog, stock port.StockGateway, storage port.CartStorage, notifier port.Notifier, opts ...Option) *CartService {
	s := &CartService{
		catalog:     catalog,
		stock:       stock,
		storage:     storage,
		notifier:    notifier,
		log:         zap.NewNop(),
		tracer:      otel.Tracer(tracerName),
		subscribers: make(map[int]chan domain.Cart),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.cart = s.restore(ctx)
	if s.metrics != nil {
		s.metrics.SetCartEntries(len(s.cart))
	}
	return s
}

func (s *CartService) restore(ctx context.Context) domain.Cart {
	data, err := s.storage.LoadCart(ctx)
	if err != nil {
		s.log.Warn("load cart snapshot", zap.Error(err))
		return domain.Cart{}
	}
	if data == nil {
		return domain.Cart{}
	}

	cart, err := domain.DecodeCart(data)
	if err == nil {
		err = cart.Validate()
	}
	if err != nil {
		s.log.Warn("discarding cart snapshot", zap.Error(err))
		return domain.Cart{}
	}

	s.log.Info("cart restored", zap.Int("entries", len(cart)))
	return cart
}

// Cart returns a copy of the current cart.
func (s *CartService) Cart() domain.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Clone()
}

// Subscribe registers an observer of published carts. The channel holds at
// most one pending cart; a slow reader only sees the latest one. Call the
// returned func to unsubscribe.
func (s *CartService) Subscribe() (<-chan domain.Cart, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	ch := make(chan domain.Cart, 1)
	s.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subscribers, id)
			close(ch)
		})
	}
}

// AddProduct inserts productID with amount 1, or increments its amount by one
// when it is already in the cart.
func (s *CartService) AddProduct(ctx context.Context, productID int64) Outcome {
	ctx, span := s.startSpan(ctx, "CartService.AddProduct", productID)
	defer span.End()

	msgOp, err := s.addProduct(ctx, s.Cart(), productID)
	return s.finish(ctx, span, opAdd, msgOp, productID, err)
}

func (s *CartService) addProduct(ctx context.Context, cart domain.Cart, productID int64) (operation, error) {
	if idx, found := cart.Find(productID); found {
		return opUpdate, s.updateProductAmount(ctx, cart, productID, cart[idx].Amount+1)
	}

	resp, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return opAdd, fmt.Errorf("fetch product %d: %w", productID, err)
	}
	if resp.Status != http.StatusOK {
		return opAdd, fmt.Errorf("fetch product %d: status %d: %w", productID, resp.Status, ErrCatalogUnavailable)
	}

	entry := domain.CartEntry{Product: resp.Product, Amount: 1}
	entry.ID = productID
	return opAdd, s.commit(ctx, cart.Append(entry))
}

// RemoveProduct deletes the entry for productID.
func (s *CartService) RemoveProduct(ctx context.Context, productID int64) Outcome {
	ctx, span := s.startSpan(ctx, "CartService.RemoveProduct", productID)
	defer span.End()

	err := s.removeProduct(ctx, s.Cart(), productID)
	return s.finish(ctx, span, opRemove, opRemove, productID, err)
}

func (s *CartService) removeProduct(ctx context.Context, cart domain.Cart, productID int64) error {
	idx, found := cart.Find(productID)
	if !found {
		return fmt.Errorf("remove product %d: %w", productID, ErrEntryNotFound)
	}
	return s.commit(ctx, cart.Without(idx))
}

// UpdateProductAmount sets the amount of an existing entry. Amounts of 1 or
// less are rejected, as are amounts above the live stock level.
func (s *CartService) UpdateProductAmount(ctx context.Context, productID int64, amount int) Outcome {
	ctx, span := s.startSpan(ctx, "CartService.UpdateProductAmount", productID)
	defer span.End()
	span.SetAttributes(attribute.Int("cart.amount", amount))

	err := s.updateProductAmount(ctx, s.Cart(), productID, amount)
	return s.finish(ctx, span, opUpdate, opUpdate, productID, err)
}

func (s *CartService) updateProductAmount(ctx context.Context, cart domain.Cart, productID int64, amount int) error {
	idx, found := cart.Find(productID)
	if !found {
		return fmt.Errorf("update product %d: %w", productID, ErrEntryNotFound)
	}
	if amount <= 1 {
		return fmt.Errorf("update product %d to %d: %w", productID, amount, ErrAmountFloor)
	}

	stock, err := s.stock.GetStock(ctx, productID)
	if err != nil {
		return fmt.Errorf("fetch stock %d: %w", productID, err)
	}
	if stock.Amount < amount {
		return fmt.Errorf("product %d: requested %d, available %d: %w", productID, amount, stock.Amount, ErrInsufficientStock)
	}

	return s.commit(ctx, cart.Replace(idx, cart[idx].WithAmount(amount)))
}

// commit persists next and then makes it the current cart.
func (s *CartService) commit(ctx context.Context, next domain.Cart) error {
	data, err := domain.EncodeCart(next)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.SaveCart(ctx, data); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	s.cart = next

	for _, ch := range s.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- next.Clone()
	}
	if s.metrics != nil {
		s.metrics.SetCartEntries(len(next))
	}
	return nil
}

func (s *CartService) startSpan(ctx context.Context, name string, productID int64) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attribute.Int64("cart.product_id", productID)))
}

// finish turns err into an Outcome, notifying the user on failure.
func (s *CartService) finish(ctx context.Context, span trace.Span, op, msgOp operation, productID int64, err error) Outcome {
	outcome := OutcomeOf(err)
	span.SetAttributes(attribute.String("cart.outcome", outcome.String()))
	if s.metrics != nil {
		s.metrics.ObserveOperation(string(op), outcome.String())
	}
	if err == nil {
		return outcome
	}

	span.SetStatus(codes.Error, err.Error())
	s.log.Warn("cart operation failed",
		zap.String("op", string(op)),
		zap.Int64("product_id", productID),
		zap.Stringer("outcome", outcome),
		zap.Error(err),
	)
	s.notifier.Error(ctx, message(msgOp, outcome))
	return outcome
}
