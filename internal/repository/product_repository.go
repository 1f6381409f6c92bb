package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"kirana-service/internal/models"
)

// ProductRepository defines catalog persistence. Listings are ordered by
// creation time so fuzzy-match tie-breaking stays deterministic.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, productID string) (*models.Product, error)
	GetByNormalizedName(ctx context.Context, shopID, normalizedName string) (*models.Product, error)
	GetByBarcode(ctx context.Context, shopID, barcode string) (*models.Product, error)
	ListByShop(ctx context.Context, shopID string) ([]*models.Product, error)
	UpdateStock(ctx context.Context, productID string, newStock float64) error
	UpdateSellingPrice(ctx context.Context, productID string, price float64) error
	UpdateCostPrice(ctx context.Context, productID string, price float64) error
	UpdateThreshold(ctx context.Context, productID string, threshold float64) error
}

// productRepository implements ProductRepository on Postgres.
type productRepository struct {
	db    *sql.DB
	stmts map[string]*sql.Stmt
}

// NewProductRepository creates the repository and prepares its statements.
func NewProductRepository(db *sql.DB) (ProductRepository, error) {
	repo := &productRepository{
		db:    db,
		stmts: make(map[string]*sql.Stmt),
	}
	if err := repo.prepareStatements(); err != nil {
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}
	return repo, nil
}

const productColumns = `id, shop_id, name, normalized_name, current_stock, unit, brand,
	barcode, selling_price, cost_price, low_stock_threshold, expiry_date,
	batches, created_at, updated_at`

func (r *productRepository) prepareStatements() error {
	statements := map[string]string{
		"create": `
			INSERT INTO products
			(id, shop_id, name, normalized_name, current_stock, unit, brand,
			 barcode, selling_price, cost_price, low_stock_threshold, expiry_date, batches)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			RETURNING created_at, updated_at
		`,
		"get_by_id": `
			SELECT ` + productColumns + `
			FROM products
			WHERE id = $1
		`,
		"get_by_name": `
			SELECT ` + productColumns + `
			FROM products
			WHERE shop_id = $1 AND normalized_name = $2
			LIMIT 1
		`,
		"get_by_barcode": `
			SELECT ` + productColumns + `
			FROM products
			WHERE shop_id = $1 AND barcode = $2
			LIMIT 1
		`,
		"list_by_shop": `
			SELECT ` + productColumns + `
			FROM products
			WHERE shop_id = $1
			ORDER BY created_at ASC
		`,
		"update_stock": `
			UPDATE products
			SET current_stock = $1, updated_at = NOW()
			WHERE id = $2
		`,
		"update_selling_price": `
			UPDATE products
			SET selling_price = $1, updated_at = NOW()
			WHERE id = $2
		`,
		"update_cost_price": `
			UPDATE products
			SET cost_price = $1, updated_at = NOW()
			WHERE id = $2
		`,
		"update_threshold": `
			UPDATE products
			SET low_stock_threshold = $1, updated_at = NOW()
			WHERE id = $2
		`,
	}

	for name, query := range statements {
		stmt, err := r.db.Prepare(query)
		if err != nil {
			return fmt.Errorf("failed to prepare %s: %w", name, err)
		}
		r.stmts[name] = stmt
	}
	return nil
}

func (r *productRepository) Create(ctx context.Context, p *models.Product) error {
	batches, err := marshalBatches(p.Batches)
	if err != nil {
		return fmt.Errorf("failed to encode batches: %w", err)
	}
	return r.stmts["create"].QueryRowContext(ctx,
		p.ID, p.ShopID, p.Name, p.NormalizedName, p.CurrentStock, p.Unit,
		p.Brand, p.Barcode, p.SellingPrice, p.CostPrice, p.LowStockThreshold,
		p.ExpiryDate, batches,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *productRepository) GetByID(ctx context.Context, productID string) (*models.Product, error) {
	return r.scanOne(r.stmts["get_by_id"].QueryRowContext(ctx, productID))
}

func (r *productRepository) GetByNormalizedName(ctx context.Context, shopID, normalizedName string) (*models.Product, error) {
	return r.scanOne(r.stmts["get_by_name"].QueryRowContext(ctx, shopID, normalizedName))
}

func (r *productRepository) GetByBarcode(ctx context.Context, shopID, barcode string) (*models.Product, error) {
	return r.scanOne(r.stmts["get_by_barcode"].QueryRowContext(ctx, shopID, barcode))
}

func (r *productRepository) ListByShop(ctx context.Context, shopID string) ([]*models.Product, error) {
	rows, err := r.stmts["list_by_shop"].QueryContext(ctx, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *productRepository) UpdateStock(ctx context.Context, productID string, newStock float64) error {
	_, err := r.stmts["update_stock"].ExecContext(ctx, newStock, productID)
	return err
}

func (r *productRepository) UpdateSellingPrice(ctx context.Context, productID string, price float64) error {
	_, err := r.stmts["update_selling_price"].ExecContext(ctx, price, productID)
	return err
}

func (r *productRepository) UpdateCostPrice(ctx context.Context, productID string, price float64) error {
	_, err := r.stmts["update_cost_price"].ExecContext(ctx, price, productID)
	return err
}

func (r *productRepository) UpdateThreshold(ctx context.Context, productID string, threshold float64) error {
	_, err := r.stmts["update_threshold"].ExecContext(ctx, threshold, productID)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *productRepository) scanOne(row *sql.Row) (*models.Product, error) {
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var (
		p          models.Product
		batchesRaw []byte
		createdAt  time.Time
		updatedAt  time.Time
	)
	err := row.Scan(
		&p.ID, &p.ShopID, &p.Name, &p.NormalizedName, &p.CurrentStock,
		&p.Unit, &p.Brand, &p.Barcode, &p.SellingPrice, &p.CostPrice,
		&p.LowStockThreshold, &p.ExpiryDate, &batchesRaw, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.CreatedAt = createdAt
	p.UpdatedAt = updatedAt
	if len(batchesRaw) > 0 {
		// Malformed batch JSON is skipped, not fatal; the product still
		// works through the legacy single-date path.
		_ = json.Unmarshal(batchesRaw, &p.Batches)
	}
	return &p, nil
}

func marshalBatches(batches map[string]models.Batch) ([]byte, error) {
	if len(batches) == 0 {
		return nil, nil
	}
	return json.Marshal(batches)
}
