package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/rl1809/shop-cart/internal/core/domain"
	"github.com/rl1809/shop-cart/internal/port"
)

// MySQLSchema creates the catalog and inventory tables.
var MySQLSchema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id BIGINT PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		price DOUBLE NOT NULL,
		image VARCHAR(1024) NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS inventory (
		product_id BIGINT PRIMARY KEY,
		stock INT NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`,
}

// MySQLAdapter serves product attributes from the products table and stock
// levels from the inventory table.
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) EnsureSchema(ctx context.Context) error {
	for _, stmt := range MySQLSchema {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// GetProduct reports http.StatusNotFound for unknown products.
func (m *MySQLAdapter) GetProduct(ctx context.Context, productID int64) (port.CatalogResponse, error) {
	var p domain.Product
	err := m.db.QueryRowContext(ctx, `
		SELECT id, title, price, image
		FROM products WHERE id = ?`, productID,
	).Scan(&p.ID, &p.Title, &p.Price, &p.Image)

	if errors.Is(err, sql.ErrNoRows) {
		return port.CatalogResponse{Status: http.StatusNotFound}, nil
	}
	if err != nil {
		return port.CatalogResponse{}, fmt.Errorf("query product: %w", err)
	}

	return port.CatalogResponse{Status: http.StatusOK, Product: p}, nil
}

func (m *MySQLAdapter) GetStock(ctx context.Context, productID int64) (domain.Stock, error) {
	stock := domain.Stock{ProductID: productID}
	err := m.db.QueryRowContext(ctx, `
		SELECT stock FROM inventory WHERE product_id = ?`, productID,
	).Scan(&stock.Amount)

	if errors.Is(err, sql.ErrNoRows) {
		return stock, nil
	}
	if err != nil {
		return domain.Stock{}, fmt.Errorf("query inventory: %w", err)
	}

	return stock, nil
}

func (m *MySQLAdapter) UpsertProduct(ctx context.Context, p domain.Product) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO products (id, title, price, image) VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE title = VALUES(title), price = VALUES(price), image = VALUES(image)`,
		p.ID, p.Title, p.Price, p.Image,
	)
	if err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) SetStock(ctx context.Context, productID int64, amount int) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO inventory (product_id, stock) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE stock = VALUES(stock)`,
		productID, amount,
	)
	if err != nil {
		return fmt.Errorf("set stock: %w", err)
	}
	return nil
}
