package nlp

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"kirana-service/internal/models"
)

func newTestClassifier() *Classifier {
	return NewClassifier(nil, zap.NewNop())
}

func classify(t *testing.T, c *Classifier, text string) models.Command {
	t.Helper()
	n := NewNormalizer()
	cmd, _ := c.Classify(context.Background(), n.Normalize(text), text)
	return cmd
}

func TestClassifyActions(t *testing.T) {
	c := newTestClassifier()

	cases := []struct {
		text string
		want models.CommandAction
	}{
		{"help", models.ActionHelp},
		{"madad karo", models.ActionHelp},
		{"undo", models.ActionUndoLast},
		{"galat ho gaya", models.ActionUndoLast},
		{"sale", models.ActionTotalSales},
		{"aaj ka sale batao", models.ActionTotalSales},
		{"monthly profit", models.ActionMonthlyProfit},
		{"is week ka profit", models.ActionWeeklyProfit},
		{"aaj ka munafa", models.ActionTodayProfit},
		{"yearly profit batao", models.ActionYearlyProfit},
		{"aaj kuch nahi bika", models.ActionZeroSaleToday},
		{"aaj sabse zyada kya bika", models.ActionTopProductToday},
		{"expiry check karo", models.ActionExpiryProducts},
		{"kya mangwana hai", models.ActionPurchaseSuggestion},
		{"stock alert", models.ActionPredictiveAlert},
		{"kab khatam ho jayega atta", models.ActionPredictiveAlert},
		{"hisab dikhao", models.ActionReportSummary},
		{"saare products dikhao", models.ActionListProducts},
		{"kam stock dikhao", models.ActionLowStock},
		{"low stock", models.ActionLowStock},
		{"udhar list", models.ActionListUdhar},
	}
	for _, tc := range cases {
		got := classify(t, c, tc.text)
		if got.Action != tc.want {
			t.Errorf("Classify(%q) = %s, want %s", tc.text, got.Action, tc.want)
		}
	}
}

func TestClassifyAddStock(t *testing.T) {
	c := newTestClassifier()

	cmd := classify(t, c, "Maggi 5 add karo")
	if cmd.Action != models.ActionAddStock {
		t.Fatalf("action = %s", cmd.Action)
	}
	if cmd.ProductName != "maggi" {
		t.Errorf("product = %q, want maggi", cmd.ProductName)
	}
	if cmd.Quantity != 5 {
		t.Errorf("quantity = %g, want 5", cmd.Quantity)
	}

	// Quantity-first form without a strict match still resolves the verb.
	cmd = classify(t, c, "2 kg atta daalo")
	if cmd.Action != models.ActionAddStock || cmd.Quantity != 2 {
		t.Errorf("got %s qty %g, want add_stock qty 2", cmd.Action, cmd.Quantity)
	}
}

func TestClassifyReduceStock(t *testing.T) {
	c := newTestClassifier()

	cmd := classify(t, c, "3 Parle-G bik gaya")
	if cmd.Action != models.ActionReduceStock || cmd.Quantity != 3 {
		t.Fatalf("got %s qty %g, want reduce_stock qty 3", cmd.Action, cmd.Quantity)
	}

	// Gram quantities convert to base kg.
	cmd = classify(t, c, "500 gram cheeni becha")
	if cmd.Action != models.ActionReduceStock || cmd.Quantity != 0.5 {
		t.Errorf("got %s qty %g, want reduce_stock qty 0.5", cmd.Action, cmd.Quantity)
	}
}

func TestClassifyStockQuestion(t *testing.T) {
	c := newTestClassifier()

	cmd := classify(t, c, "Cheeni kitni hai?")
	if cmd.Action != models.ActionCheckStock {
		t.Fatalf("action = %s", cmd.Action)
	}
	if cmd.ProductName != "cheeni" {
		t.Errorf("product = %q, want cheeni", cmd.ProductName)
	}

	// Short digit-less messages are stock queries for that product.
	cmd = classify(t, c, "parle g")
	if cmd.Action != models.ActionCheckStock || cmd.ProductName != "parle g" {
		t.Errorf("got %s %q, want check_stock for parle g", cmd.Action, cmd.ProductName)
	}
}

func TestClassifyUdhar(t *testing.T) {
	c := newTestClassifier()

	cmd := classify(t, c, "udhar Ramesh 200")
	if cmd.Action != models.ActionAddUdhar || cmd.ProductName != "Ramesh" || cmd.Quantity != 200 {
		t.Fatalf("got %s %q %g, want add_udhar Ramesh 200", cmd.Action, cmd.ProductName, cmd.Quantity)
	}

	cmd = classify(t, c, "udhar pay Ramesh 200")
	if cmd.Action != models.ActionPayUdhar || cmd.ProductName != "Ramesh" {
		t.Errorf("got %s %q, want pay_udhar Ramesh", cmd.Action, cmd.ProductName)
	}

	cmd = classify(t, c, "Ramesh ka udhar kitna hai")
	if cmd.Action != models.ActionCustomerUdhar || cmd.ProductName != "Ramesh" {
		t.Errorf("got %s %q, want customer_udhar Ramesh", cmd.Action, cmd.ProductName)
	}

	// A digit-less udhar mention always degrades to the summary.
	cmd = classify(t, c, "udhar dikhao")
	if cmd.Action != models.ActionListUdhar {
		t.Errorf("got %s, want list_udhar", cmd.Action)
	}
}

func TestClassifyUpdatePriceAndThreshold(t *testing.T) {
	c := newTestClassifier()

	cmd := classify(t, c, "maggi ka price 15 karo")
	if cmd.Action != models.ActionUpdatePrice || cmd.ProductName != "maggi" || cmd.Quantity != 15 {
		t.Fatalf("got %s %q %g, want update_price maggi 15", cmd.Action, cmd.ProductName, cmd.Quantity)
	}

	cmd = classify(t, c, "maggi threshold 5")
	if cmd.Action != models.ActionSetLowStockThreshold || cmd.ProductName != "maggi" || cmd.Quantity != 5 {
		t.Fatalf("got %s %q %g, want set_low_stock_threshold maggi 5", cmd.Action, cmd.ProductName, cmd.Quantity)
	}
}

func TestClassifySeasonal(t *testing.T) {
	c := newTestClassifier()

	cmd := classify(t, c, "diwali ke liye kya rakhu")
	if cmd.Action != models.ActionSeasonalSuggestion || cmd.ProductName != "diwali" {
		t.Fatalf("got %s %q, want seasonal_suggestion diwali", cmd.Action, cmd.ProductName)
	}
}

func TestClassifyBarcodes(t *testing.T) {
	c := newTestClassifier()

	cmd := classify(t, c, "8901000000001")
	if cmd.Action != models.ActionCheckStock || cmd.ProductName != "8901000000001" {
		t.Fatalf("bare barcode: got %s %q", cmd.Action, cmd.ProductName)
	}

	cmd = classify(t, c, "8901000000001 -2")
	if cmd.Action != models.ActionReduceStock || cmd.Quantity != 2 {
		t.Errorf("barcode delta: got %s qty %g, want reduce_stock 2", cmd.Action, cmd.Quantity)
	}

	cmd = classify(t, c, "8901000000001 +5")
	if cmd.Action != models.ActionAddStock || cmd.Quantity != 5 {
		t.Errorf("barcode delta: got %s qty %g, want add_stock 5", cmd.Action, cmd.Quantity)
	}
}

func TestClassifySingleWordFilter(t *testing.T) {
	c := newTestClassifier()

	cmd := classify(t, c, "daal")
	if cmd.Action != models.ActionListProducts || cmd.ProductName != "dal" {
		t.Fatalf("got %s %q, want list_products with dal filter", cmd.Action, cmd.ProductName)
	}

	// Generic chatter words never become category filters.
	cmd = classify(t, c, "hello")
	if cmd.Action != models.ActionUnknown {
		t.Errorf("got %s, want unknown", cmd.Action)
	}
}

func TestClassifyAmbiguousStock(t *testing.T) {
	c := newTestClassifier()

	cmd := classify(t, c, "stock")
	if cmd.Action != models.ActionListProducts {
		t.Fatalf("got %s, want list_products", cmd.Action)
	}
}

type fakeParser struct {
	cmd models.Command
	err error
}

func (f fakeParser) ParseCommand(ctx context.Context, message string) (models.Command, error) {
	return f.cmd, f.err
}

func TestClassifyLLMFallback(t *testing.T) {
	parser := fakeParser{cmd: models.Command{
		Action:      models.ActionAddStock,
		ProductName: "surf excel",
		Quantity:    3,
		Confidence:  0.8,
	}}
	c := NewClassifier(parser, zap.NewNop())

	cmd, llmUsed := c.Classify(context.Background(), "surf teen packet andar rakh dena", "surf teen packet andar rakh dena")
	if !llmUsed {
		t.Fatal("expected the LLM fallback to be used")
	}
	if cmd.Action != models.ActionAddStock || cmd.ProductName != "surf excel" {
		t.Errorf("got %s %q", cmd.Action, cmd.ProductName)
	}
	if cmd.RawMessage == "" {
		t.Error("RawMessage should carry the original text")
	}
}

func TestClassifyLLMErrorDegradesToUnknown(t *testing.T) {
	parser := fakeParser{err: errors.New("api down")}
	c := NewClassifier(parser, zap.NewNop())

	cmd, llmUsed := c.Classify(context.Background(), "yeh sab kuch theek karna hamko", "yeh sab kuch theek karna hamko")
	if !llmUsed {
		t.Fatal("expected the LLM fallback to be attempted")
	}
	if cmd.Action != models.ActionUnknown {
		t.Errorf("got %s, want unknown", cmd.Action)
	}
}

func TestClassifyRuleHitsSkipLLM(t *testing.T) {
	parser := fakeParser{err: errors.New("must not be called")}
	c := NewClassifier(parser, zap.NewNop())

	cmd, llmUsed := c.Classify(context.Background(), "help", "help")
	if llmUsed {
		t.Fatal("rule match must not touch the LLM")
	}
	if cmd.Action != models.ActionHelp {
		t.Errorf("got %s, want help", cmd.Action)
	}
}
