package repository

import (
	"context"
	"database/sql"
	"fmt"

	"kirana-service/internal/models"
)

// UdharRepository persists the append-only customer credit ledger.
type UdharRepository interface {
	Create(ctx context.Context, entry *models.UdharEntry) error
	ListByShop(ctx context.Context, shopID string) ([]*models.UdharEntry, error)
	ListByCustomer(ctx context.Context, shopID, customerKey string) ([]*models.UdharEntry, error)
}

type udharRepository struct {
	db    *sql.DB
	stmts map[string]*sql.Stmt
}

// NewUdharRepository creates the repository and prepares its statements.
func NewUdharRepository(db *sql.DB) (UdharRepository, error) {
	repo := &udharRepository{
		db:    db,
		stmts: make(map[string]*sql.Stmt),
	}
	if err := repo.prepareStatements(); err != nil {
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}
	return repo, nil
}

const udharColumns = `id, shop_id, customer_key, customer_name, amount, timestamp, user_phone, note`

func (r *udharRepository) prepareStatements() error {
	statements := map[string]string{
		"create": `
			INSERT INTO udhar_entries
			(id, shop_id, customer_key, customer_name, amount, timestamp, user_phone, note)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`,
		"list_by_shop": `
			SELECT ` + udharColumns + `
			FROM udhar_entries
			WHERE shop_id = $1
			ORDER BY timestamp DESC
		`,
		"list_by_customer": `
			SELECT ` + udharColumns + `
			FROM udhar_entries
			WHERE shop_id = $1 AND customer_key = $2
			ORDER BY timestamp DESC
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

func (r *udharRepository) Create(ctx context.Context, e *models.UdharEntry) error {
	_, err := r.stmts["create"].ExecContext(ctx,
		e.ID, e.ShopID, e.CustomerKey, e.CustomerName, e.Amount,
		e.Timestamp, e.UserPhone, e.Note,
	)
	return err
}

func (r *udharRepository) ListByShop(ctx context.Context, shopID string) ([]*models.UdharEntry, error) {
	rows, err := r.stmts["list_by_shop"].QueryContext(ctx, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUdhar(rows)
}

func (r *udharRepository) ListByCustomer(ctx context.Context, shopID, customerKey string) ([]*models.UdharEntry, error) {
	rows, err := r.stmts["list_by_customer"].QueryContext(ctx, shopID, customerKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUdhar(rows)
}

func collectUdhar(rows *sql.Rows) ([]*models.UdharEntry, error) {
	var entries []*models.UdharEntry
	for rows.Next() {
		var e models.UdharEntry
		if err := rows.Scan(
			&e.ID, &e.ShopID, &e.CustomerKey, &e.CustomerName, &e.Amount,
			&e.Timestamp, &e.UserPhone, &e.Note,
		); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
