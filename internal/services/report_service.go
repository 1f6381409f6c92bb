package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"kirana-service/internal/models"
	"kirana-service/internal/repository"
)

// Period is a closed aggregation window.
type Period struct {
	Label string
	From  time.Time
	To    time.Time
}

// PeriodToday covers midnight to now in the shop's local day.
func PeriodToday(now time.Time) Period {
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return Period{Label: "today", From: from, To: now}
}

// PeriodWeek covers the ISO week, Monday 00:00 to now.
func PeriodWeek(now time.Time) Period {
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	monday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, -(weekday - 1))
	return Period{Label: "week", From: monday, To: now}
}

// PeriodMonth covers the calendar month to date.
func PeriodMonth(now time.Time) Period {
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return Period{Label: "month", From: from, To: now}
}

// PeriodYear covers the calendar year to date.
func PeriodYear(now time.Time) Period {
	from := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
	return Period{Label: "year", From: from, To: now}
}

// PeriodPrevMonth covers the previous calendar month in full.
func PeriodPrevMonth(now time.Time) Period {
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return Period{Label: "last_month", From: thisMonth.AddDate(0, -1, 0), To: thisMonth.Add(-time.Nanosecond)}
}

const (
	// minDailyRate filters slow movers out of predictive alerts.
	minDailyRate = 0.1
	// stockoutHorizonDays caps how far ahead predictive alerts look.
	stockoutHorizonDays = 7.0
	// reorderRatio marks stock as thin relative to last month's demand.
	reorderRatio = 0.2
	// reorderRatioHigh marks it as nearly gone.
	reorderRatioHigh = 0.1
	// zeroSaleTopN limits how many dead-stock lines the reply shows.
	zeroSaleTopN = 3
)

// seasonalPicks maps festival keywords to stock-up suggestions. Static
// domain knowledge; no sales history needed.
var seasonalPicks = map[string][]string{
	"diwali":    {"Diya & candles", "Sweets (ladoo, soan papdi)", "Dry fruits", "Rangoli colors", "Ghee"},
	"holi":      {"Colors (gulal)", "Pichkari", "Thandai mix", "Snacks (papad, chips)", "Sweets"},
	"rakhi":     {"Rakhi sets", "Sweets (kaju katli)", "Chocolates", "Dry fruits"},
	"eid":       {"Sewai (vermicelli)", "Dates (khajoor)", "Dry fruits", "Ghee", "Milk"},
	"navratri":  {"Sabudana", "Kuttu atta", "Sendha namak", "Fruits", "Makhana"},
	"christmas": {"Cakes & plum cake", "Chocolates", "Candles", "Soft drinks"},
	"winter":    {"Chai patti", "Ginger & honey", "Soup packets", "Cold cream", "Dry fruits"},
	"summer":    {"Cold drinks", "Rooh Afza", "Glucose powder", "Ice cream", "Lassi packets"},
	"monsoon":   {"Chai patti", "Pakora besan", "Umbrella", "Antiseptic liquid"},
}

// ReportService owns every read-only aggregation over the transaction
// ledger and the catalog.
type ReportService interface {
	SalesSummary(ctx context.Context, shopID string, period Period) (*models.SalesSummaryResult, error)
	Profit(ctx context.Context, shopID string, period Period) (*models.ProfitResult, error)
	TopProductToday(ctx context.Context, shopID string) (*models.SalesSummaryResult, error)
	ZeroSaleToday(ctx context.Context, shopID string) (*models.ZeroSaleResult, error)
	PredictiveAlerts(ctx context.Context, shopID string) (*models.PredictiveAlertResult, error)
	PurchaseSuggestions(ctx context.Context, shopID string) (*models.PurchaseSuggestionResult, error)
	ExpiryScan(ctx context.Context, shopID string) (*models.ExpiryResult, error)
	SeasonalSuggestion(festival string) *models.SeasonalSuggestionResult
}

type reportService struct {
	products     repository.ProductRepository
	transactions repository.TransactionRepository
	expiryWindow int
	now          func() time.Time
	logger       *zap.Logger
}

// NewReportService builds the aggregation service. expiryWindowDays
// controls how far ahead the expiry scan looks.
func NewReportService(products repository.ProductRepository, transactions repository.TransactionRepository, expiryWindowDays int, logger *zap.Logger) ReportService {
	return &reportService{
		products:     products,
		transactions: transactions,
		expiryWindow: expiryWindowDays,
		now:          time.Now,
		logger:       logger,
	}
}

// SalesSummary aggregates sale transactions for the period, grouped per
// product and sorted by quantity sold.
func (s *reportService) SalesSummary(ctx context.Context, shopID string, period Period) (*models.SalesSummaryResult, error) {
	txs, err := s.transactions.ListByShopBetween(ctx, shopID, period.From, period.To)
	if err != nil {
		return nil, err
	}

	perProduct := make(map[string]*models.ProductSales)
	var order []string
	result := &models.SalesSummaryResult{
		PeriodLabel: period.Label,
		From:        period.From,
		To:          period.To,
	}
	for _, tx := range txs {
		if !tx.IsSale() {
			continue
		}
		result.TotalItemsSold += tx.Quantity
		result.TotalRevenue += tx.Revenue()
		line, ok := perProduct[tx.ProductID]
		if !ok {
			line = &models.ProductSales{Name: tx.ProductName}
			perProduct[tx.ProductID] = line
			order = append(order, tx.ProductID)
		}
		line.Quantity += tx.Quantity
		line.Revenue += tx.Revenue()
	}

	for _, id := range order {
		result.ProductsSold = append(result.ProductsSold, *perProduct[id])
	}
	sort.SliceStable(result.ProductsSold, func(i, j int) bool {
		return result.ProductsSold[i].Quantity > result.ProductsSold[j].Quantity
	})
	return result, nil
}

// Profit computes revenue minus cost for the period. Cost uses each
// product's stored cost price; when no product in the period has one,
// profit falls back to revenue and CostKnown is false.
func (s *reportService) Profit(ctx context.Context, shopID string, period Period) (*models.ProfitResult, error) {
	txs, err := s.transactions.ListByShopBetween(ctx, shopID, period.From, period.To)
	if err != nil {
		return nil, err
	}
	costByProduct, err := s.costIndex(ctx, shopID)
	if err != nil {
		return nil, err
	}

	result := &models.ProfitResult{
		PeriodLabel: period.Label,
		From:        period.From,
		To:          period.To,
	}
	for _, tx := range txs {
		if !tx.IsSale() {
			continue
		}
		result.Revenue += tx.Revenue()
		if cost, ok := costByProduct[tx.ProductID]; ok {
			result.Cost += cost * tx.Quantity
			result.CostKnown = true
		}
	}
	if result.CostKnown {
		result.Profit = result.Revenue - result.Cost
	} else {
		result.Profit = result.Revenue
	}
	return result, nil
}

func (s *reportService) costIndex(ctx context.Context, shopID string) (map[string]float64, error) {
	products, err := s.products.ListByShop(ctx, shopID)
	if err != nil {
		return nil, err
	}
	index := make(map[string]float64, len(products))
	for _, p := range products {
		if p.CostPrice != nil {
			index[p.ID] = *p.CostPrice
		}
	}
	return index, nil
}

// TopProductToday returns today's summary with the best seller marked.
func (s *reportService) TopProductToday(ctx context.Context, shopID string) (*models.SalesSummaryResult, error) {
	result, err := s.SalesSummary(ctx, shopID, PeriodToday(s.now()))
	if err != nil {
		return nil, err
	}
	if len(result.ProductsSold) > 0 {
		result.TopProductName = result.ProductsSold[0].Name
		result.TopProductQuantity = result.ProductsSold[0].Quantity
	}
	return result, nil
}

// ZeroSaleToday lists stocked products that have not sold today, biggest
// stock first. The reply shows the top few; Total is the real count.
func (s *reportService) ZeroSaleToday(ctx context.Context, shopID string) (*models.ZeroSaleResult, error) {
	products, err := s.products.ListByShop(ctx, shopID)
	if err != nil {
		return nil, err
	}
	today := PeriodToday(s.now())
	txs, err := s.transactions.ListByShopBetween(ctx, shopID, today.From, today.To)
	if err != nil {
		return nil, err
	}

	soldToday := make(map[string]bool)
	for _, tx := range txs {
		if tx.IsSale() {
			soldToday[tx.ProductID] = true
		}
	}

	var dead []models.ProductLine
	for _, p := range products {
		if p.CurrentStock <= 0 || soldToday[p.ID] {
			continue
		}
		dead = append(dead, models.ProductLine{Name: p.Name, Stock: p.CurrentStock, Unit: p.Unit})
	}
	sort.SliceStable(dead, func(i, j int) bool { return dead[i].Stock > dead[j].Stock })

	result := &models.ZeroSaleResult{Total: len(dead)}
	if len(dead) > zeroSaleTopN {
		dead = dead[:zeroSaleTopN]
	}
	result.Products = dead
	return result, nil
}

// PredictiveAlerts estimates days-to-stockout from this month's
// consumption rate and reports products that will run out within a week.
func (s *reportService) PredictiveAlerts(ctx context.Context, shopID string) (*models.PredictiveAlertResult, error) {
	products, err := s.products.ListByShop(ctx, shopID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	window := PeriodMonth(now)
	txs, err := s.transactions.ListByShopBetween(ctx, shopID, window.From, window.To)
	if err != nil {
		return nil, err
	}

	soldQty := make(map[string]float64)
	for _, tx := range txs {
		if tx.IsSale() {
			soldQty[tx.ProductID] += tx.Quantity
		}
	}

	daysElapsed := float64(now.Day())
	result := &models.PredictiveAlertResult{}
	for _, p := range products {
		if p.CurrentStock <= 0 {
			continue
		}
		rate := soldQty[p.ID] / daysElapsed
		if rate < minDailyRate {
			continue
		}
		days := p.CurrentStock / rate
		if days > stockoutHorizonDays {
			continue
		}
		result.Alerts = append(result.Alerts, models.StockoutPrediction{
			Name:          p.Name,
			CurrentStock:  p.CurrentStock,
			Unit:          p.Unit,
			DailyRate:     rate,
			DaysRemaining: days,
			Urgency:       stockoutUrgency(days),
		})
	}
	sort.SliceStable(result.Alerts, func(i, j int) bool {
		return result.Alerts[i].DaysRemaining < result.Alerts[j].DaysRemaining
	})
	return result, nil
}

func stockoutUrgency(days float64) string {
	switch {
	case days <= 2:
		return "critical"
	case days <= 4:
		return "high"
	default:
		return "medium"
	}
}

// PurchaseSuggestions recommends reorders for products whose stock is
// thin relative to last month's sales. Products with zero sales last
// month are skipped: no demand signal, no suggestion.
func (s *reportService) PurchaseSuggestions(ctx context.Context, shopID string) (*models.PurchaseSuggestionResult, error) {
	products, err := s.products.ListByShop(ctx, shopID)
	if err != nil {
		return nil, err
	}
	window := PeriodPrevMonth(s.now())
	txs, err := s.transactions.ListByShopBetween(ctx, shopID, window.From, window.To)
	if err != nil {
		return nil, err
	}

	soldQty := make(map[string]float64)
	for _, tx := range txs {
		if tx.IsSale() {
			soldQty[tx.ProductID] += tx.Quantity
		}
	}

	type scored struct {
		suggestion models.PurchaseSuggestion
		ratio      float64
	}
	var picks []scored
	for _, p := range products {
		lastMonth := soldQty[p.ID]
		if lastMonth == 0 {
			continue
		}
		ratio := p.CurrentStock / lastMonth
		if ratio >= reorderRatio {
			continue
		}
		urgency := "medium"
		if ratio < reorderRatioHigh {
			urgency = "high"
		}
		suggested := lastMonth - p.CurrentStock
		if suggested < 0 {
			suggested = 0
		}
		picks = append(picks, scored{
			suggestion: models.PurchaseSuggestion{
				Name:          p.Name,
				CurrentStock:  p.CurrentStock,
				Unit:          p.Unit,
				LastMonthSold: lastMonth,
				SuggestedQty:  suggested,
				Urgency:       urgency,
			},
			ratio: ratio,
		})
	}
	sort.SliceStable(picks, func(i, j int) bool { return picks[i].ratio < picks[j].ratio })

	result := &models.PurchaseSuggestionResult{}
	for _, pick := range picks {
		result.Suggestions = append(result.Suggestions, pick.suggestion)
	}
	return result, nil
}

// ExpiryScan buckets catalog items into expired and expiring-soon. A
// product with usable batch dates is counted per batch and its
// product-level date is ignored, so nothing is double-counted.
// Unparseable dates are skipped, not errors.
func (s *reportService) ExpiryScan(ctx context.Context, shopID string) (*models.ExpiryResult, error) {
	products, err := s.products.ListByShop(ctx, shopID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	cutoff := today.AddDate(0, 0, s.expiryWindow)
	result := &models.ExpiryResult{WindowDays: s.expiryWindow}

	for _, p := range products {
		counted := false
		batchIDs := make([]string, 0, len(p.Batches))
		for id := range p.Batches {
			batchIDs = append(batchIDs, id)
		}
		sort.Strings(batchIDs)
		for _, id := range batchIDs {
			batch := p.Batches[id]
			expiry, err := time.Parse("2006-01-02", batch.ExpiryDate)
			if err != nil {
				s.logger.Warn("skipping batch with bad expiry date",
					zap.String("product", p.Name),
					zap.String("batch", id),
					zap.String("expiry", batch.ExpiryDate))
				continue
			}
			counted = true
			item := models.ExpiryItem{Name: p.Name, BatchID: id, ExpiryDate: batch.ExpiryDate, Qty: batch.Qty, Unit: p.Unit}
			bucketExpiry(result, item, expiry, today, cutoff)
		}
		if counted || p.ExpiryDate == nil {
			continue
		}
		expiry, err := time.Parse("2006-01-02", *p.ExpiryDate)
		if err != nil {
			s.logger.Warn("skipping product with bad expiry date",
				zap.String("product", p.Name),
				zap.String("expiry", *p.ExpiryDate))
			continue
		}
		item := models.ExpiryItem{Name: p.Name, ExpiryDate: *p.ExpiryDate, Qty: p.CurrentStock, Unit: p.Unit}
		bucketExpiry(result, item, expiry, today, cutoff)
	}
	sortExpiryItems(result.Expired)
	sortExpiryItems(result.Expiring)
	return result, nil
}

func bucketExpiry(result *models.ExpiryResult, item models.ExpiryItem, expiry, today, cutoff time.Time) {
	switch {
	case expiry.Before(today):
		result.Expired = append(result.Expired, item)
	case !expiry.After(cutoff):
		result.Expiring = append(result.Expiring, item)
	}
}

// ISO dates compare lexicographically, so no reparse is needed.
func sortExpiryItems(items []models.ExpiryItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].ExpiryDate != items[j].ExpiryDate {
			return items[i].ExpiryDate < items[j].ExpiryDate
		}
		return items[i].Name < items[j].Name
	})
}

// SeasonalSuggestion returns stock-up ideas for a festival keyword.
// Unrecognized festivals get an empty item list; the renderer handles it.
func (s *reportService) SeasonalSuggestion(festival string) *models.SeasonalSuggestionResult {
	key := strings.ToLower(strings.TrimSpace(festival))
	return &models.SeasonalSuggestionResult{
		Festival: festival,
		Items:    seasonalPicks[key],
	}
}
