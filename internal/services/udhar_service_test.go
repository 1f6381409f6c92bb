package services

import (
	"context"
	"testing"

	"kirana-service/internal/models"
)

func TestUdharAddAndPaySettles(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	result, err := h.udhar.AddUdhar(ctx, h.user, "Ramesh", 200)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	add := result.(*models.UdharMutationResult)
	if add.Balance != 200 || add.Payment {
		t.Fatalf("got %+v, want balance 200", add)
	}

	result, err = h.udhar.PayUdhar(ctx, h.user, "ramesh", 200)
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	pay := result.(*models.UdharMutationResult)
	if pay.Balance != 0 || !pay.Payment || pay.Amount != 200 {
		t.Fatalf("got %+v, want settled payment of 200", pay)
	}

	// Settled customers disappear from the summary.
	summary, err := h.udhar.ListUdhar(ctx, h.user.ShopID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(summary.Customers) != 0 {
		t.Fatalf("summary = %+v, want empty", summary.Customers)
	}
}

// Customer names are case-insensitive; a payment larger than the balance
// flips it into an advance.
func TestUdharOverpaymentGoesNegative(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	h.udhar.AddUdhar(ctx, h.user, "Sita Devi", 100)
	result, err := h.udhar.PayUdhar(ctx, h.user, "SITA DEVI", 150)
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	pay := result.(*models.UdharMutationResult)
	if pay.Balance != -50 {
		t.Fatalf("balance = %g, want -50", pay.Balance)
	}
}

func TestUdharSummarySortsBiggestDebtorFirst(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	h.udhar.AddUdhar(ctx, h.user, "Ramesh", 150)
	h.udhar.AddUdhar(ctx, h.user, "Suresh", 500)
	h.udhar.AddUdhar(ctx, h.user, "Mahesh", 300)

	summary, err := h.udhar.ListUdhar(ctx, h.user.ShopID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(summary.Customers) != 3 || summary.Total != 950 {
		t.Fatalf("got %d customers total %g, want 3/950", len(summary.Customers), summary.Total)
	}
	if summary.Customers[0].CustomerName != "Suresh" || summary.Customers[2].CustomerName != "Ramesh" {
		t.Errorf("order = %v, want Suresh first", summary.Customers)
	}
}

func TestCustomerUdharRecentEntries(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		h.udhar.AddUdhar(ctx, h.user, "Ramesh", 10)
	}
	result, err := h.udhar.CustomerUdhar(ctx, h.user.ShopID, "ramesh")
	if err != nil {
		t.Fatalf("customer: %v", err)
	}
	cu := result.(*models.CustomerUdharResult)
	if cu.Balance != 70 {
		t.Fatalf("balance = %g, want 70", cu.Balance)
	}
	if len(cu.Entries) != 5 {
		t.Fatalf("entries = %d, want the 5 most recent", len(cu.Entries))
	}
	if !cu.Entries[0].Timestamp.After(cu.Entries[4].Timestamp) {
		t.Error("entries should be newest first")
	}
}

func TestCustomerUdharUnknownFails(t *testing.T) {
	h := newTestHarness(t)

	result, err := h.udhar.CustomerUdhar(context.Background(), h.user.ShopID, "Koi Nahi")
	if err != nil {
		t.Fatalf("customer: %v", err)
	}
	if result.Ok() {
		t.Fatal("unknown customer must fail")
	}
}

func TestUdharRejectsEmptyNameAndZeroAmount(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	result, err := h.udhar.AddUdhar(ctx, h.user, "  ", 50)
	if err != nil || result.Ok() {
		t.Fatalf("blank name: got %v %v", result, err)
	}
	result, err = h.udhar.AddUdhar(ctx, h.user, "Ramesh", 0)
	if err != nil || result.Ok() {
		t.Fatalf("zero amount: got %v %v", result, err)
	}
}
