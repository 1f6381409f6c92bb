package services

import (
	"context"
	"testing"
	"time"

	"kirana-service/internal/models"
)

func ptr(v float64) *float64 { return &v }

func seedTestProduct(t *testing.T, h *harness, p *models.Product) *models.Product {
	t.Helper()
	if p.NormalizedName == "" {
		p.NormalizedName = models.NormalizeName(p.Name)
	}
	if p.Unit == "" {
		p.Unit = "piece"
	}
	p.ShopID = h.user.ShopID
	if err := h.store.Create(context.Background(), p); err != nil {
		t.Fatalf("seed product %s: %v", p.Name, err)
	}
	return p
}

func seedSale(t *testing.T, h *harness, productID, name string, qty, total float64, at time.Time) {
	t.Helper()
	err := h.store.CreateTransaction(context.Background(), &models.Transaction{
		ID:          "tx-" + name + at.Format("150405"),
		ShopID:      h.user.ShopID,
		ProductID:   productID,
		ProductName: name,
		Type:        models.TxSale,
		Quantity:    qty,
		TotalAmount: &total,
		UserPhone:   h.user.Phone,
		Timestamp:   at,
	})
	if err != nil {
		t.Fatalf("seed sale: %v", err)
	}
}

func TestPeriodConstructors(t *testing.T) {
	wed := time.Date(2025, 6, 4, 15, 30, 0, 0, time.UTC)

	today := PeriodToday(wed)
	if !today.From.Equal(time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("today from = %v", today.From)
	}

	week := PeriodWeek(wed)
	if !week.From.Equal(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("week from = %v, want Monday June 2", week.From)
	}

	// Sunday belongs to the week that started the previous Monday.
	sun := time.Date(2025, 6, 8, 10, 0, 0, 0, time.UTC)
	week = PeriodWeek(sun)
	if !week.From.Equal(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("sunday week from = %v, want Monday June 2", week.From)
	}

	month := PeriodMonth(wed)
	if !month.From.Equal(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("month from = %v", month.From)
	}

	year := PeriodYear(wed)
	if !year.From.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("year from = %v", year.From)
	}

	prev := PeriodPrevMonth(wed)
	if !prev.From.Equal(time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("prev month from = %v", prev.From)
	}
	if !prev.To.Before(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("prev month to = %v, must stay inside May", prev.To)
	}
}

func TestSalesSummaryAggregatesAndSorts(t *testing.T) {
	h := newTestHarness(t)
	base := h.clock.now

	a := seedTestProduct(t, h, &models.Product{ID: "p-a", Name: "Maggi"})
	b := seedTestProduct(t, h, &models.Product{ID: "p-b", Name: "Parle-G"})
	seedSale(t, h, a.ID, a.Name, 3, 30, base.Add(-3*time.Hour))
	seedSale(t, h, b.ID, b.Name, 5, 50, base.Add(-2*time.Hour))
	seedSale(t, h, a.ID, a.Name, 1, 10, base.Add(-1*time.Hour))

	// Add-stock entries never count as sales.
	err := h.store.CreateTransaction(context.Background(), &models.Transaction{
		ID: "tx-add", ShopID: h.user.ShopID, ProductID: a.ID, ProductName: a.Name,
		Type: models.TxAddStock, Quantity: 100, Timestamp: base.Add(-time.Hour),
	})
	if err != nil {
		t.Fatal(err)
	}

	result, err := h.reports.SalesSummary(context.Background(), h.user.ShopID, PeriodToday(h.clock.Now()))
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if result.TotalItemsSold != 9 || result.TotalRevenue != 90 {
		t.Fatalf("totals = %g items ₹%g, want 9/90", result.TotalItemsSold, result.TotalRevenue)
	}
	if len(result.ProductsSold) != 2 {
		t.Fatalf("got %d product lines, want 2", len(result.ProductsSold))
	}
	if result.ProductsSold[0].Name != "Parle-G" || result.ProductsSold[0].Quantity != 5 {
		t.Errorf("top line = %+v, want Parle-G 5", result.ProductsSold[0])
	}
	if result.ProductsSold[1].Quantity != 4 {
		t.Errorf("maggi line quantity = %g, want 4", result.ProductsSold[1].Quantity)
	}
}

func TestTopProductToday(t *testing.T) {
	h := newTestHarness(t)
	base := h.clock.now

	a := seedTestProduct(t, h, &models.Product{ID: "p-a", Name: "Maggi"})
	b := seedTestProduct(t, h, &models.Product{ID: "p-b", Name: "Parle-G"})
	seedSale(t, h, a.ID, a.Name, 2, 20, base.Add(-2*time.Hour))
	seedSale(t, h, b.ID, b.Name, 7, 35, base.Add(-1*time.Hour))

	result, err := h.reports.TopProductToday(context.Background(), h.user.ShopID)
	if err != nil {
		t.Fatalf("top product: %v", err)
	}
	if result.TopProductName != "Parle-G" || result.TopProductQuantity != 7 {
		t.Fatalf("got %q %g, want Parle-G 7", result.TopProductName, result.TopProductQuantity)
	}
}

func TestProfitWithAndWithoutCostPrices(t *testing.T) {
	h := newTestHarness(t)
	base := h.clock.now

	a := seedTestProduct(t, h, &models.Product{ID: "p-a", Name: "Maggi", CostPrice: ptr(11.5)})
	seedSale(t, h, a.ID, a.Name, 4, 56, base.Add(-time.Hour))

	result, err := h.reports.Profit(context.Background(), h.user.ShopID, PeriodToday(h.clock.Now()))
	if err != nil {
		t.Fatalf("profit: %v", err)
	}
	if !result.CostKnown {
		t.Fatal("cost should be known")
	}
	if result.Revenue != 56 || result.Cost != 46 || result.Profit != 10 {
		t.Fatalf("got revenue %g cost %g profit %g", result.Revenue, result.Cost, result.Profit)
	}

	// No cost prices anywhere: profit degrades to revenue.
	h2 := newTestHarness(t)
	b := seedTestProduct(t, h2, &models.Product{ID: "p-b", Name: "Cheeni"})
	seedSale(t, h2, b.ID, b.Name, 2, 80, h2.clock.now.Add(-time.Hour))

	result, err = h2.reports.Profit(context.Background(), h2.user.ShopID, PeriodToday(h2.clock.Now()))
	if err != nil {
		t.Fatalf("profit: %v", err)
	}
	if result.CostKnown || result.Profit != 80 {
		t.Fatalf("got %+v, want cost-unknown profit 80", result)
	}
}

func TestZeroSaleTodayTruncatesButCounts(t *testing.T) {
	h := newTestHarness(t)
	base := h.clock.now

	seedTestProduct(t, h, &models.Product{ID: "p-a", Name: "Atta", CurrentStock: 50})
	seedTestProduct(t, h, &models.Product{ID: "p-b", Name: "Cheeni", CurrentStock: 20})
	sold := seedTestProduct(t, h, &models.Product{ID: "p-c", Name: "Maggi", CurrentStock: 10})
	seedTestProduct(t, h, &models.Product{ID: "p-d", Name: "Ghee", CurrentStock: 5})
	seedTestProduct(t, h, &models.Product{ID: "p-e", Name: "Namak", CurrentStock: 2})
	seedTestProduct(t, h, &models.Product{ID: "p-f", Name: "Tel", CurrentStock: 0})
	seedSale(t, h, sold.ID, sold.Name, 1, 14, base.Add(-time.Hour))

	result, err := h.reports.ZeroSaleToday(context.Background(), h.user.ShopID)
	if err != nil {
		t.Fatalf("zero sale: %v", err)
	}
	// Maggi sold, Tel has no stock: four dead products, top three shown.
	if result.Total != 4 {
		t.Fatalf("total = %d, want 4", result.Total)
	}
	if len(result.Products) != 3 {
		t.Fatalf("shown = %d, want 3", len(result.Products))
	}
	if result.Products[0].Name != "Atta" || result.Products[2].Name != "Ghee" {
		t.Errorf("order = %v, want biggest stock first", result.Products)
	}
}

func TestPredictiveAlerts(t *testing.T) {
	h := newTestHarness(t)
	base := h.clock.now // June 2, two days into the month

	critical := seedTestProduct(t, h, &models.Product{ID: "p-a", Name: "Maggi", CurrentStock: 2})
	plenty := seedTestProduct(t, h, &models.Product{ID: "p-b", Name: "Atta", CurrentStock: 100})
	slow := seedTestProduct(t, h, &models.Product{ID: "p-c", Name: "Ghee", CurrentStock: 1})
	medium := seedTestProduct(t, h, &models.Product{ID: "p-d", Name: "Cheeni", CurrentStock: 6})
	gone := seedTestProduct(t, h, &models.Product{ID: "p-e", Name: "Tel", CurrentStock: 0})

	// This month's demand: 6 units each for Maggi and Atta (3/day), a
	// trickle for Ghee, 2 for Cheeni (1/day), 5 for the sold-out Tel.
	seedSale(t, h, critical.ID, critical.Name, 6, 60, base.Add(-18*time.Hour))
	seedSale(t, h, plenty.ID, plenty.Name, 6, 60, base.Add(-18*time.Hour))
	seedSale(t, h, slow.ID, slow.Name, 0.1, 1, base.Add(-18*time.Hour))
	seedSale(t, h, medium.ID, medium.Name, 2, 20, base.Add(-2*time.Hour))
	seedSale(t, h, gone.ID, gone.Name, 5, 50, base.Add(-3*time.Hour))

	result, err := h.reports.PredictiveAlerts(context.Background(), h.user.ShopID)
	if err != nil {
		t.Fatalf("predictive: %v", err)
	}
	// Atta has a month of cover, Ghee moves too slowly, Tel is already
	// out of stock and cannot be a stockout prediction.
	if len(result.Alerts) != 2 {
		t.Fatalf("got %d alerts, want 2: %+v", len(result.Alerts), result.Alerts)
	}
	// Sorted soonest first.
	if result.Alerts[0].Name != "Maggi" || result.Alerts[0].Urgency != "critical" {
		t.Errorf("first alert = %+v", result.Alerts[0])
	}
	if result.Alerts[1].Name != "Cheeni" || result.Alerts[1].Urgency != "medium" {
		t.Errorf("second alert = %+v", result.Alerts[1])
	}
}

func TestPurchaseSuggestions(t *testing.T) {
	h := newTestHarness(t)
	base := h.clock.now

	urgent := seedTestProduct(t, h, &models.Product{ID: "p-a", Name: "Maggi", CurrentStock: 5})
	ok := seedTestProduct(t, h, &models.Product{ID: "p-b", Name: "Atta", CurrentStock: 5})
	noDemand := seedTestProduct(t, h, &models.Product{ID: "p-c", Name: "Ghee", CurrentStock: 0})
	thin := seedTestProduct(t, h, &models.Product{ID: "p-d", Name: "Cheeni", CurrentStock: 7.5})
	fresh := seedTestProduct(t, h, &models.Product{ID: "p-e", Name: "Tel", CurrentStock: 1})

	// base - 15 days lands in May, the previous calendar month.
	seedSale(t, h, urgent.ID, urgent.Name, 100, 1000, base.Add(-15*24*time.Hour))
	seedSale(t, h, ok.ID, ok.Name, 10, 100, base.Add(-15*24*time.Hour))
	seedSale(t, h, thin.ID, thin.Name, 50, 500, base.Add(-15*24*time.Hour))
	// This month's sales are not last-month demand.
	seedSale(t, h, fresh.ID, fresh.Name, 40, 400, base.Add(-2*time.Hour))
	_ = noDemand

	result, err := h.reports.PurchaseSuggestions(context.Background(), h.user.ShopID)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if len(result.Suggestions) != 2 {
		t.Fatalf("got %d suggestions, want 2: %+v", len(result.Suggestions), result.Suggestions)
	}
	first := result.Suggestions[0]
	if first.Name != "Maggi" || first.Urgency != "high" || first.SuggestedQty != 95 {
		t.Errorf("first = %+v, want Maggi high 95", first)
	}
	second := result.Suggestions[1]
	if second.Name != "Cheeni" || second.Urgency != "medium" || second.SuggestedQty != 42.5 {
		t.Errorf("second = %+v, want Cheeni medium 42.5", second)
	}
}

func TestExpiryScanBuckets(t *testing.T) {
	h := newTestHarness(t)

	expired := "2025-05-20"
	soon := "2025-06-15"
	far := "2026-01-01"
	bad := "next week"
	seedTestProduct(t, h, &models.Product{ID: "p-a", Name: "Doodh", CurrentStock: 4, ExpiryDate: &expired})
	seedTestProduct(t, h, &models.Product{ID: "p-b", Name: "Biscuit", CurrentStock: 12, ExpiryDate: &soon})
	seedTestProduct(t, h, &models.Product{ID: "p-c", Name: "Namak", CurrentStock: 8, ExpiryDate: &far})
	seedTestProduct(t, h, &models.Product{ID: "p-d", Name: "Ghee", CurrentStock: 3, ExpiryDate: &bad})

	// Batch data wins over the product-level date.
	stale := "2025-01-01"
	seedTestProduct(t, h, &models.Product{
		ID: "p-e", Name: "Maggi", CurrentStock: 10, ExpiryDate: &stale,
		Batches: map[string]models.Batch{
			"b1": {ExpiryDate: "2025-06-10", Qty: 5},
			"b2": {ExpiryDate: "2026-02-01", Qty: 5},
		},
	})

	// A second expired item seeded after Doodh but dated earlier.
	older := "2025-04-01"
	seedTestProduct(t, h, &models.Product{ID: "p-f", Name: "Dahi", CurrentStock: 2, ExpiryDate: &older})

	result, err := h.reports.ExpiryScan(context.Background(), h.user.ShopID)
	if err != nil {
		t.Fatalf("expiry: %v", err)
	}
	if len(result.Expired) != 2 {
		t.Fatalf("expired = %+v, want Dahi and Doodh", result.Expired)
	}
	// Earliest expiry first, regardless of catalog order.
	if result.Expired[0].Name != "Dahi" || result.Expired[1].Name != "Doodh" {
		t.Errorf("expired order = %+v, want Dahi then Doodh", result.Expired)
	}
	if len(result.Expiring) != 2 {
		t.Fatalf("expiring = %+v, want the Maggi batch and Biscuit", result.Expiring)
	}
	if result.Expiring[0].Name != "Maggi" || result.Expiring[0].BatchID != "b1" || result.Expiring[0].Qty != 5 {
		t.Errorf("first expiring = %+v, want Maggi batch b1", result.Expiring[0])
	}
	if result.Expiring[1].Name != "Biscuit" {
		t.Errorf("second expiring = %+v, want Biscuit", result.Expiring[1])
	}
}

func TestExpiryScanUsesLocalDay(t *testing.T) {
	h := newTestHarness(t)
	// Early morning June 2 in IST is still June 1 in UTC; yesterday's
	// date must land in the expired bucket, not expiring-soon.
	ist := time.FixedZone("IST", 5*3600+30*60)
	h.clock.now = time.Date(2025, 6, 2, 2, 0, 0, 0, ist)

	yesterday := "2025-06-01"
	seedTestProduct(t, h, &models.Product{ID: "p-a", Name: "Doodh", CurrentStock: 4, ExpiryDate: &yesterday})

	result, err := h.reports.ExpiryScan(context.Background(), h.user.ShopID)
	if err != nil {
		t.Fatalf("expiry: %v", err)
	}
	if len(result.Expired) != 1 || result.Expired[0].Name != "Doodh" {
		t.Fatalf("expired = %+v, want Doodh", result.Expired)
	}
	if len(result.Expiring) != 0 {
		t.Errorf("expiring = %+v, want empty", result.Expiring)
	}
}
