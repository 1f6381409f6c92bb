package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

type PostgresDB struct {
	DB *sql.DB
}

func NewPostgresDB(dsn string, maxOpenConns, maxIdleConns int, connMaxLifetime time.Duration, logger *zap.Logger) (*PostgresDB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// connection pool limits come from config
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := applySchema(db); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	logger.Info("Database connection established",
		zap.Int("max_open_conns", maxOpenConns),
		zap.Int("max_idle_conns", maxIdleConns),
		zap.Duration("conn_max_lifetime", connMaxLifetime),
	)

	return &PostgresDB{DB: db}, nil
}

// applySchema creates the tables the repositories prepare statements
// against. Idempotent, runs on every boot.
func applySchema(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS shops (
			shop_id     TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			owner_phone TEXT NOT NULL,
			address     TEXT,
			active      BOOLEAN NOT NULL DEFAULT TRUE,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			user_id    TEXT PRIMARY KEY,
			phone      TEXT NOT NULL,
			name       TEXT NOT NULL DEFAULT '',
			shop_id    TEXT NOT NULL REFERENCES shops(shop_id),
			role       TEXT NOT NULL DEFAULT 'staff',
			active     BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_phone ON users (phone)`,
		`CREATE TABLE IF NOT EXISTS products (
			id                  TEXT PRIMARY KEY,
			shop_id             TEXT NOT NULL,
			name                TEXT NOT NULL,
			normalized_name     TEXT NOT NULL,
			current_stock       DOUBLE PRECISION NOT NULL DEFAULT 0,
			unit                TEXT NOT NULL DEFAULT 'piece',
			brand               TEXT,
			barcode             TEXT,
			selling_price       DOUBLE PRECISION,
			cost_price          DOUBLE PRECISION,
			low_stock_threshold DOUBLE PRECISION,
			expiry_date         TEXT,
			batches             JSONB,
			created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_products_shop_name ON products (shop_id, normalized_name)`,
		`CREATE INDEX IF NOT EXISTS idx_products_shop_barcode ON products (shop_id, barcode)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id             TEXT PRIMARY KEY,
			shop_id        TEXT NOT NULL,
			product_id     TEXT NOT NULL,
			product_name   TEXT NOT NULL,
			type           TEXT NOT NULL,
			quantity       DOUBLE PRECISION NOT NULL,
			previous_stock DOUBLE PRECISION NOT NULL,
			new_stock      DOUBLE PRECISION NOT NULL,
			unit_price     DOUBLE PRECISION,
			total_amount   DOUBLE PRECISION,
			user_phone     TEXT NOT NULL,
			timestamp      TIMESTAMPTZ NOT NULL,
			notes          TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_shop_time ON transactions (shop_id, timestamp DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_product_time ON transactions (shop_id, product_id, timestamp DESC)`,
		`CREATE TABLE IF NOT EXISTS udhar_entries (
			id            TEXT PRIMARY KEY,
			shop_id       TEXT NOT NULL,
			customer_key  TEXT NOT NULL,
			customer_name TEXT NOT NULL,
			amount        DOUBLE PRECISION NOT NULL,
			timestamp     TIMESTAMPTZ NOT NULL,
			user_phone    TEXT NOT NULL,
			note          TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_udhar_shop_customer ON udhar_entries (shop_id, customer_key)`,
		`CREATE TABLE IF NOT EXISTS unrecognized_commands (
			id          BIGSERIAL PRIMARY KEY,
			shop_id     TEXT NOT NULL,
			user_phone  TEXT NOT NULL,
			message     TEXT NOT NULL,
			received_at TIMESTAMPTZ NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (p *PostgresDB) Close() error {
	return p.DB.Close()
}

func (p *PostgresDB) Ping() error {
	return p.DB.Ping()
}

// GetStats returns connection pool counters for health reporting.
func (p *PostgresDB) GetStats() sql.DBStats {
	return p.DB.Stats()
}
