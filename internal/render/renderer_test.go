package render

import (
	"strings"
	"testing"
	"time"

	"kirana-service/internal/models"
	"kirana-service/internal/nlp"
)

func TestRenderFailurePassesThrough(t *testing.T) {
	r := New()
	msg := "❌ 'colgate' stock mein nahi mila."
	got := r.Render(models.Failure{Message: msg}, nlp.LangEnglish)
	if got != msg {
		t.Fatalf("got %q", got)
	}
}

func TestRenderStockAdd(t *testing.T) {
	r := New()
	result := &models.StockMutationResult{
		ProductName:   "Maggi",
		Quantity:      5,
		PreviousStock: 0,
		NewStock:      5,
		Unit:          "packet",
	}

	en := r.Render(result, nlp.LangEnglish)
	if !strings.Contains(en, "Added 5 packet of Maggi") || !strings.Contains(en, "0 → 5") {
		t.Errorf("english = %q", en)
	}
	hi := r.Render(result, nlp.LangHindi)
	if !strings.Contains(hi, "add ho gaya") {
		t.Errorf("hindi = %q", hi)
	}
}

func TestRenderSaleWithRevenueAndAlert(t *testing.T) {
	r := New()
	result := &models.StockMutationResult{
		ProductName:   "Maggi",
		Quantity:      4,
		PreviousStock: 12,
		NewStock:      8,
		Unit:          "packet",
		Revenue:       56,
		UnitPrice:     14,
		LowStockAlert: true,
		Threshold:     10,
	}

	got := r.Render(result, nlp.LangHindi)
	if !strings.Contains(got, "bik gaya") {
		t.Errorf("missing sale line: %q", got)
	}
	if !strings.Contains(got, "₹56.00") {
		t.Errorf("missing revenue: %q", got)
	}
	if !strings.Contains(got, "Sirf 8 packet bacha hai") {
		t.Errorf("missing low stock alert: %q", got)
	}
}

func TestRenderUndoLabelsEntryType(t *testing.T) {
	r := New()
	result := &models.UndoResult{
		ProductName:   "Maggi",
		UndoneType:    models.TxSale,
		Quantity:      3,
		RestoredStock: 10,
		Unit:          "packet",
	}

	hi := r.Render(result, nlp.LangHindi)
	if !strings.Contains(hi, "bika tha") || !strings.Contains(hi, "Maggi ab: 10 packet") {
		t.Errorf("hindi = %q", hi)
	}

	result.UndoneType = models.TxAddStock
	hi = r.Render(result, nlp.LangHindi)
	if !strings.Contains(hi, "add hui thi") {
		t.Errorf("hindi add undo = %q", hi)
	}

	en := r.Render(result, nlp.LangEnglish)
	if !strings.Contains(en, "add_stock") || !strings.Contains(en, "Maggi now: 10 packet") {
		t.Errorf("english = %q", en)
	}
}

func TestRenderEmptyAndFilledProductList(t *testing.T) {
	r := New()

	empty := r.Render(&models.ListProductsResult{}, nlp.LangEnglish)
	if !strings.Contains(empty, "No products in stock yet") {
		t.Errorf("got %q", empty)
	}

	filtered := r.Render(&models.ListProductsResult{Filter: "dal"}, nlp.LangEnglish)
	if !strings.Contains(filtered, "'dal'") {
		t.Errorf("got %q", filtered)
	}

	list := r.Render(&models.ListProductsResult{
		Total: 2,
		Products: []models.ProductLine{
			{Name: "Maggi", Stock: 5, Unit: "packet", Price: 14},
			{Name: "Cheeni", Stock: 2.5, Unit: "kg"},
		},
	}, nlp.LangEnglish)
	if !strings.Contains(list, "• Maggi: 5 packet @ ₹14.00") {
		t.Errorf("got %q", list)
	}
	if !strings.Contains(list, "• Cheeni: 2.5 kg") {
		t.Errorf("got %q", list)
	}
}

func TestRenderProfitCostUnknownNote(t *testing.T) {
	r := New()
	result := &models.ProfitResult{PeriodLabel: "today", Revenue: 500, Profit: 500}

	got := r.Render(result, nlp.LangEnglish)
	if !strings.Contains(got, "No cost prices set") {
		t.Errorf("got %q", got)
	}

	result.CostKnown = true
	result.Cost = 400
	result.Profit = 100
	got = r.Render(result, nlp.LangEnglish)
	if !strings.Contains(got, "profit: ₹100.00") {
		t.Errorf("got %q", got)
	}
}

func TestRenderTopProduct(t *testing.T) {
	r := New()
	result := &models.SalesSummaryResult{TopProductName: "Parle-G", TopProductQuantity: 7}

	got := r.Render(result, nlp.LangHindi)
	if !strings.Contains(got, "Parle-G") || !strings.Contains(got, "sabse zyada") {
		t.Errorf("got %q", got)
	}
}

func TestRenderBatchNumbersLines(t *testing.T) {
	r := New()
	result := &models.BatchResult{Lines: []models.BatchLineResult{
		{Barcode: "8901000000001", Result: &models.StockMutationResult{ProductName: "Maggi Noodles", Quantity: 10, NewStock: 10, Unit: "packet"}},
		{Barcode: "9999999999999", Result: models.Failure{Message: "❌ nahi mila"}},
	}}

	got := r.Render(result, nlp.LangEnglish)
	if !strings.Contains(got, "Batch update (2 items)") {
		t.Errorf("got %q", got)
	}
	if !strings.Contains(got, "1. ") || !strings.Contains(got, "2. ❌ nahi mila") {
		t.Errorf("got %q", got)
	}
}

func TestRenderCustomerUdhar(t *testing.T) {
	r := New()
	ts := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	result := &models.CustomerUdharResult{
		CustomerName: "Ramesh",
		Balance:      150,
		Entries: []models.UdharEntry{
			{Amount: 200, Timestamp: ts},
			{Amount: -50, Timestamp: ts.Add(-24 * time.Hour)},
		},
	}

	got := r.Render(result, nlp.LangHindi)
	if !strings.Contains(got, "Ramesh ka udhar: ₹150.00") {
		t.Errorf("got %q", got)
	}
	if !strings.Contains(got, "+₹200.00") || !strings.Contains(got, "-₹50.00") {
		t.Errorf("got %q", got)
	}

	settled := &models.CustomerUdharResult{CustomerName: "Sita", Balance: 0}
	got = r.Render(settled, nlp.LangEnglish)
	if !strings.Contains(got, "all settled") {
		t.Errorf("got %q", got)
	}
}

func TestRenderHelpIsBilingual(t *testing.T) {
	r := New()

	hi := r.Render(&models.HelpResult{}, nlp.LangHindi)
	en := r.Render(&models.HelpResult{}, nlp.LangEnglish)
	if hi == en {
		t.Fatal("help text must differ by language")
	}
	for _, section := range []string{"📦", "📒", "📊"} {
		if !strings.Contains(hi, section) || !strings.Contains(en, section) {
			t.Errorf("missing section %s", section)
		}
	}
}

func TestMoneyFormatting(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{14, "14.00"},
		{1234.5, "1,234.50"},
		{1234567.891, "1,234,567.89"},
		{-500, "-500.00"},
	}
	for _, tc := range cases {
		if got := money(tc.in); got != tc.want {
			t.Errorf("money(%g) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestQtyTrimsTrailingZeros(t *testing.T) {
	if got := qty(5); got != "5" {
		t.Errorf("qty(5) = %q", got)
	}
	if got := qty(2.5); got != "2.5" {
		t.Errorf("qty(2.5) = %q", got)
	}
}
