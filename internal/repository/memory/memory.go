// Package memory provides in-memory repository implementations used by
// unit tests and the local demo mode. Ordering semantics mirror the
// Postgres repositories: catalog listings by insertion order, ledger
// queries newest first.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"kirana-service/internal/models"
)

// Store holds every collection behind one mutex; test workloads are tiny.
type Store struct {
	mu           sync.RWMutex
	products     []*models.Product
	transactions []*models.Transaction
	udhar        []*models.UdharEntry
	shops        map[string]*models.Shop
	users        map[string]*models.User // keyed by phone
	unrecognized []string
}

// New creates an empty store.
func New() *Store {
	return &Store{
		shops: make(map[string]*models.Shop),
		users: make(map[string]*models.User),
	}
}

// AddShop registers a shop (test seeding).
func (s *Store) AddShop(shop *models.Shop) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shops[shop.ShopID] = shop
}

// AddUser registers a user (test seeding).
func (s *Store) AddUser(user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.Phone] = user
}

// UnrecognizedCount reports how many unparseable messages were logged.
func (s *Store) UnrecognizedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.unrecognized)
}

// ===== ProductRepository =====

func (s *Store) Create(ctx context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	cp := *p
	s.products = append(s.products, &cp)
	return nil
}

func (s *Store) GetByID(ctx context.Context, productID string) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == productID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) GetByNormalizedName(ctx context.Context, shopID, normalizedName string) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ShopID == shopID && p.NormalizedName == normalizedName {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) GetByBarcode(ctx context.Context, shopID, barcode string) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ShopID == shopID && p.Barcode != nil && *p.Barcode == barcode {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) ListByShop(ctx context.Context, shopID string) ([]*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Product
	for _, p := range s.products {
		if p.ShopID == shopID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *Store) UpdateStock(ctx context.Context, productID string, newStock float64) error {
	return s.mutateProduct(productID, func(p *models.Product) {
		p.CurrentStock = newStock
	})
}

func (s *Store) UpdateSellingPrice(ctx context.Context, productID string, price float64) error {
	return s.mutateProduct(productID, func(p *models.Product) {
		p.SellingPrice = &price
	})
}

func (s *Store) UpdateCostPrice(ctx context.Context, productID string, price float64) error {
	return s.mutateProduct(productID, func(p *models.Product) {
		p.CostPrice = &price
	})
}

func (s *Store) UpdateThreshold(ctx context.Context, productID string, threshold float64) error {
	return s.mutateProduct(productID, func(p *models.Product) {
		p.LowStockThreshold = &threshold
	})
}

func (s *Store) mutateProduct(productID string, fn func(*models.Product)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ID == productID {
			fn(p)
			p.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return nil
}

// ===== TransactionRepository =====

func (s *Store) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.transactions = append(s.transactions, &cp)
	return nil
}

func (s *Store) LatestByProduct(ctx context.Context, shopID, productID string) (*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *models.Transaction
	for _, t := range s.transactions {
		if t.ShopID != shopID || t.ProductID != productID {
			continue
		}
		if latest == nil || t.Timestamp.After(latest.Timestamp) {
			latest = t
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (s *Store) LatestByShop(ctx context.Context, shopID string) (*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *models.Transaction
	for _, t := range s.transactions {
		if t.ShopID != shopID {
			continue
		}
		if latest == nil || t.Timestamp.After(latest.Timestamp) {
			latest = t
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (s *Store) ListByShopBetween(ctx context.Context, shopID string, from, to time.Time) ([]*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Transaction
	for _, t := range s.transactions {
		if t.ShopID != shopID {
			continue
		}
		if t.Timestamp.Before(from) || t.Timestamp.After(to) {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *Store) ListTransactionsByShop(ctx context.Context, shopID string, limit int) ([]*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Transaction
	for _, t := range s.transactions {
		if t.ShopID == shopID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sortNewestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func sortNewestFirst(txs []*models.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Timestamp.After(txs[j].Timestamp)
	})
}

// ===== UdharRepository =====

func (s *Store) CreateUdhar(ctx context.Context, e *models.UdharEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	s.udhar = append(s.udhar, &cp)
	return nil
}

func (s *Store) ListUdharByShop(ctx context.Context, shopID string) ([]*models.UdharEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.UdharEntry
	for _, e := range s.udhar {
		if e.ShopID == shopID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *Store) ListUdharByCustomer(ctx context.Context, shopID, customerKey string) ([]*models.UdharEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.UdharEntry
	for _, e := range s.udhar {
		if e.ShopID == shopID && e.CustomerKey == customerKey {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ===== ShopRepository =====

func (s *Store) GetShop(ctx context.Context, shopID string) (*models.Shop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if shop, ok := s.shops[shopID]; ok {
		cp := *shop
		return &cp, nil
	}
	return nil, nil
}

func (s *Store) GetShopByOwnerPhone(ctx context.Context, phone string) (*models.Shop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, shop := range s.shops {
		if shop.OwnerPhone == phone && shop.Active {
			cp := *shop
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[phone]; ok && u.Active {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (s *Store) LogUnrecognized(ctx context.Context, shopID, userPhone, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unrecognized = append(s.unrecognized, message)
	return nil
}
