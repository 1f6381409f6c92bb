package memory

import (
	"context"
	"time"

	"kirana-service/internal/models"
	"kirana-service/internal/repository"
)

// The Store itself satisfies ProductRepository and ShopRepository; the
// ledger interfaces share method names, so thin adapters disambiguate.

// Products returns the store as a ProductRepository.
func (s *Store) Products() repository.ProductRepository { return s }

// Shops returns the store as a ShopRepository.
func (s *Store) Shops() repository.ShopRepository { return s }

// Transactions returns the store as a TransactionRepository.
func (s *Store) Transactions() repository.TransactionRepository { return txRepo{s} }

// Udhar returns the store as an UdharRepository.
func (s *Store) Udhar() repository.UdharRepository { return udharRepo{s} }

type txRepo struct{ store *Store }

func (r txRepo) Create(ctx context.Context, t *models.Transaction) error {
	return r.store.CreateTransaction(ctx, t)
}

func (r txRepo) LatestByProduct(ctx context.Context, shopID, productID string) (*models.Transaction, error) {
	return r.store.LatestByProduct(ctx, shopID, productID)
}

func (r txRepo) LatestByShop(ctx context.Context, shopID string) (*models.Transaction, error) {
	return r.store.LatestByShop(ctx, shopID)
}

func (r txRepo) ListByShopBetween(ctx context.Context, shopID string, from, to time.Time) ([]*models.Transaction, error) {
	return r.store.ListByShopBetween(ctx, shopID, from, to)
}

func (r txRepo) ListByShop(ctx context.Context, shopID string, limit int) ([]*models.Transaction, error) {
	return r.store.ListTransactionsByShop(ctx, shopID, limit)
}

type udharRepo struct{ store *Store }

func (r udharRepo) Create(ctx context.Context, e *models.UdharEntry) error {
	return r.store.CreateUdhar(ctx, e)
}

func (r udharRepo) ListByShop(ctx context.Context, shopID string) ([]*models.UdharEntry, error) {
	return r.store.ListUdharByShop(ctx, shopID)
}

func (r udharRepo) ListByCustomer(ctx context.Context, shopID, customerKey string) ([]*models.UdharEntry, error) {
	return r.store.ListUdharByCustomer(ctx, shopID, customerKey)
}
