package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"kirana-service/internal/models"
)

// TransactionRepository persists the append-only inventory ledger.
type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	// LatestByProduct returns the most recent entry for a product across
	// all history (adjust target), nil when there is none.
	LatestByProduct(ctx context.Context, shopID, productID string) (*models.Transaction, error)
	// LatestByShop returns the shop's single most recent entry (undo
	// target), nil when the shop has no history.
	LatestByShop(ctx context.Context, shopID string) (*models.Transaction, error)
	// ListByShopBetween returns entries in [from, to], newest first.
	ListByShopBetween(ctx context.Context, shopID string, from, to time.Time) ([]*models.Transaction, error)
	ListByShop(ctx context.Context, shopID string, limit int) ([]*models.Transaction, error)
}

type transactionRepository struct {
	db    *sql.DB
	stmts map[string]*sql.Stmt
}

// NewTransactionRepository creates the repository and prepares its statements.
func NewTransactionRepository(db *sql.DB) (TransactionRepository, error) {
	repo := &transactionRepository{
		db:    db,
		stmts: make(map[string]*sql.Stmt),
	}
	if err := repo.prepareStatements(); err != nil {
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}
	return repo, nil
}

const txColumns = `id, shop_id, product_id, product_name, type, quantity,
	previous_stock, new_stock, unit_price, total_amount, user_phone, timestamp, notes`

func (r *transactionRepository) prepareStatements() error {
	statements := map[string]string{
		"create": `
			INSERT INTO transactions
			(id, shop_id, product_id, product_name, type, quantity,
			 previous_stock, new_stock, unit_price, total_amount, user_phone, timestamp, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`,
		"latest_by_product": `
			SELECT ` + txColumns + `
			FROM transactions
			WHERE shop_id = $1 AND product_id = $2
			ORDER BY timestamp DESC
			LIMIT 1
		`,
		"latest_by_shop": `
			SELECT ` + txColumns + `
			FROM transactions
			WHERE shop_id = $1
			ORDER BY timestamp DESC
			LIMIT 1
		`,
		"list_between": `
			SELECT ` + txColumns + `
			FROM transactions
			WHERE shop_id = $1 AND timestamp >= $2 AND timestamp <= $3
			ORDER BY timestamp DESC
		`,
		"list_by_shop": `
			SELECT ` + txColumns + `
			FROM transactions
			WHERE shop_id = $1
			ORDER BY timestamp DESC
			LIMIT $2
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

func (r *transactionRepository) Create(ctx context.Context, t *models.Transaction) error {
	_, err := r.stmts["create"].ExecContext(ctx,
		t.ID, t.ShopID, t.ProductID, t.ProductName, string(t.Type), t.Quantity,
		t.PreviousStock, t.NewStock, t.UnitPrice, t.TotalAmount, t.UserPhone,
		t.Timestamp, t.Notes,
	)
	return err
}

func (r *transactionRepository) LatestByProduct(ctx context.Context, shopID, productID string) (*models.Transaction, error) {
	return scanOneTx(r.stmts["latest_by_product"].QueryRowContext(ctx, shopID, productID))
}

func (r *transactionRepository) LatestByShop(ctx context.Context, shopID string) (*models.Transaction, error) {
	return scanOneTx(r.stmts["latest_by_shop"].QueryRowContext(ctx, shopID))
}

func (r *transactionRepository) ListByShopBetween(ctx context.Context, shopID string, from, to time.Time) ([]*models.Transaction, error) {
	rows, err := r.stmts["list_between"].QueryContext(ctx, shopID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTxs(rows)
}

func (r *transactionRepository) ListByShop(ctx context.Context, shopID string, limit int) ([]*models.Transaction, error) {
	rows, err := r.stmts["list_by_shop"].QueryContext(ctx, shopID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTxs(rows)
}

func collectTxs(rows *sql.Rows) ([]*models.Transaction, error) {
	var txs []*models.Transaction
	for rows.Next() {
		t, err := scanTx(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func scanOneTx(row *sql.Row) (*models.Transaction, error) {
	t, err := scanTx(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return t, err
}

func scanTx(row rowScanner) (*models.Transaction, error) {
	var (
		t      models.Transaction
		txType string
	)
	err := row.Scan(
		&t.ID, &t.ShopID, &t.ProductID, &t.ProductName, &txType, &t.Quantity,
		&t.PreviousStock, &t.NewStock, &t.UnitPrice, &t.TotalAmount,
		&t.UserPhone, &t.Timestamp, &t.Notes,
	)
	if err != nil {
		return nil, err
	}
	t.Type = models.TransactionType(txType)
	return &t, nil
}
