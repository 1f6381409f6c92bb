package services

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"kirana-service/internal/models"
	"kirana-service/internal/repository"
	"kirana-service/internal/xid"
)

// recentUdharEntries caps how many ledger lines a per-customer reply shows.
const recentUdharEntries = 5

// UdharService manages the informal credit ledger. Entries are
// append-only; balances are always recomputed as the signed sum.
type UdharService interface {
	AddUdhar(ctx context.Context, user *models.User, customerName string, amount float64) (models.ExecResult, error)
	PayUdhar(ctx context.Context, user *models.User, customerName string, amount float64) (models.ExecResult, error)
	ListUdhar(ctx context.Context, shopID string) (*models.UdharSummaryResult, error)
	CustomerUdhar(ctx context.Context, shopID, customerName string) (models.ExecResult, error)
}

type udharService struct {
	entries repository.UdharRepository
	now     func() time.Time
	logger  *zap.Logger
}

// NewUdharService builds the credit ledger service.
func NewUdharService(entries repository.UdharRepository, logger *zap.Logger) UdharService {
	return &udharService{entries: entries, now: time.Now, logger: logger}
}

func customerKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// AddUdhar records goods given on credit. Amount must be positive in
// rupees; zero-amount entries are rejected upstream but guarded here too.
func (s *udharService) AddUdhar(ctx context.Context, user *models.User, customerName string, amount float64) (models.ExecResult, error) {
	return s.record(ctx, user, customerName, amount, false)
}

// PayUdhar records a payment received, stored as a negative entry.
// Overpayment is allowed: the balance simply goes negative (advance).
func (s *udharService) PayUdhar(ctx context.Context, user *models.User, customerName string, amount float64) (models.ExecResult, error) {
	return s.record(ctx, user, customerName, -amount, true)
}

func (s *udharService) record(ctx context.Context, user *models.User, customerName string, amount float64, payment bool) (models.ExecResult, error) {
	name := strings.TrimSpace(customerName)
	if name == "" {
		return models.Failure{Message: "❌ Customer ka naam samajh nahi aaya. Jaise: 'Ramesh ko 200 udhar diya'"}, nil
	}
	if amount == 0 {
		return models.Failure{Message: "❌ Amount zero nahi ho sakta. Rupees mein batao."}, nil
	}

	entry := &models.UdharEntry{
		ID:           xid.New("udhar"),
		ShopID:       user.ShopID,
		CustomerKey:  customerKey(name),
		CustomerName: name,
		Amount:       amount,
		Timestamp:    s.now(),
		UserPhone:    user.Phone,
	}
	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, err
	}

	balance, err := s.balance(ctx, user.ShopID, entry.CustomerKey)
	if err != nil {
		return nil, err
	}
	s.logger.Info("udhar entry recorded",
		zap.String("operation", "udhar"),
		zap.String("shop_id", user.ShopID),
		zap.String("customer", entry.CustomerKey),
		zap.Float64("amount", amount),
		zap.Float64("balance", balance))

	return &models.UdharMutationResult{
		CustomerName: name,
		Amount:       math.Abs(amount),
		Balance:      balance,
		Payment:      payment,
	}, nil
}

func (s *udharService) balance(ctx context.Context, shopID, key string) (float64, error) {
	entries, err := s.entries.ListByCustomer(ctx, shopID, key)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, e := range entries {
		total += e.Amount
	}
	return total, nil
}

// ListUdhar aggregates outstanding balances, biggest debtor first.
// Settled customers (|balance| within the epsilon) are dropped.
func (s *udharService) ListUdhar(ctx context.Context, shopID string) (*models.UdharSummaryResult, error) {
	entries, err := s.entries.ListByShop(ctx, shopID)
	if err != nil {
		return nil, err
	}

	perCustomer := make(map[string]*models.CustomerBalance)
	var order []string
	for _, e := range entries {
		cb, ok := perCustomer[e.CustomerKey]
		if !ok {
			cb = &models.CustomerBalance{CustomerKey: e.CustomerKey, CustomerName: e.CustomerName}
			perCustomer[e.CustomerKey] = cb
			order = append(order, e.CustomerKey)
		}
		cb.Balance += e.Amount
		cb.Entries++
	}

	result := &models.UdharSummaryResult{}
	for _, key := range order {
		cb := perCustomer[key]
		if math.Abs(cb.Balance) <= models.UdharSettledEpsilon {
			continue
		}
		result.Customers = append(result.Customers, *cb)
		result.Total += cb.Balance
	}
	sort.SliceStable(result.Customers, func(i, j int) bool {
		return result.Customers[i].Balance > result.Customers[j].Balance
	})
	return result, nil
}

// CustomerUdhar reports one customer's balance plus their most recent
// entries, newest first.
func (s *udharService) CustomerUdhar(ctx context.Context, shopID, customerName string) (models.ExecResult, error) {
	key := customerKey(customerName)
	entries, err := s.entries.ListByCustomer(ctx, shopID, key)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return models.Failure{Message: "❌ '" + strings.TrimSpace(customerName) + "' ka koi udhar record nahi mila."}, nil
	}

	result := &models.CustomerUdharResult{CustomerName: entries[0].CustomerName}
	for _, e := range entries {
		result.Balance += e.Amount
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Timestamp.After(entries[j].Timestamp) })
	for i, e := range entries {
		if i >= recentUdharEntries {
			break
		}
		result.Entries = append(result.Entries, *e)
	}
	return result, nil
}
