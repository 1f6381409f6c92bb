package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"kirana-service/internal/models"
)

// ShopRepository resolves shops and users by phone, and records
// unrecognized commands for offline review.
type ShopRepository interface {
	GetShop(ctx context.Context, shopID string) (*models.Shop, error)
	GetShopByOwnerPhone(ctx context.Context, phone string) (*models.Shop, error)
	GetUserByPhone(ctx context.Context, phone string) (*models.User, error)
	LogUnrecognized(ctx context.Context, shopID, userPhone, message string) error
}

type shopRepository struct {
	db    *sql.DB
	stmts map[string]*sql.Stmt
}

// NewShopRepository creates the repository and prepares its statements.
func NewShopRepository(db *sql.DB) (ShopRepository, error) {
	repo := &shopRepository{
		db:    db,
		stmts: make(map[string]*sql.Stmt),
	}
	if err := repo.prepareStatements(); err != nil {
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}
	return repo, nil
}

func (r *shopRepository) prepareStatements() error {
	statements := map[string]string{
		"get_shop": `
			SELECT shop_id, name, owner_phone, address, active, created_at
			FROM shops
			WHERE shop_id = $1 AND active = true
		`,
		"get_shop_by_phone": `
			SELECT shop_id, name, owner_phone, address, active, created_at
			FROM shops
			WHERE owner_phone = $1 AND active = true
			LIMIT 1
		`,
		"get_user_by_phone": `
			SELECT user_id, phone, name, shop_id, role, active, created_at
			FROM users
			WHERE phone = $1 AND active = true
			LIMIT 1
		`,
		"log_unrecognized": `
			INSERT INTO unrecognized_commands (shop_id, user_phone, message, received_at)
			VALUES ($1, $2, $3, $4)
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

func (r *shopRepository) GetShop(ctx context.Context, shopID string) (*models.Shop, error) {
	return scanShop(r.stmts["get_shop"].QueryRowContext(ctx, shopID))
}

func (r *shopRepository) GetShopByOwnerPhone(ctx context.Context, phone string) (*models.Shop, error) {
	return scanShop(r.stmts["get_shop_by_phone"].QueryRowContext(ctx, phone))
}

func (r *shopRepository) GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	var (
		u    models.User
		role string
	)
	err := r.stmts["get_user_by_phone"].QueryRowContext(ctx, phone).Scan(
		&u.UserID, &u.Phone, &u.Name, &u.ShopID, &role, &u.Active, &u.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.Role = models.UserRole(role)
	return &u, nil
}

func (r *shopRepository) LogUnrecognized(ctx context.Context, shopID, userPhone, message string) error {
	_, err := r.stmts["log_unrecognized"].ExecContext(ctx, shopID, userPhone, message, time.Now().UTC())
	return err
}

func scanShop(row *sql.Row) (*models.Shop, error) {
	var s models.Shop
	err := row.Scan(&s.ShopID, &s.Name, &s.OwnerPhone, &s.Address, &s.Active, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
