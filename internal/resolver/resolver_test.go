package resolver

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"kirana-service/internal/cache"
	"kirana-service/internal/models"
	"kirana-service/internal/repository/memory"
)

const testShop = "shop-1"

func newTestResolver(t *testing.T) (*Resolver, *memory.Store) {
	t.Helper()
	store := memory.New()
	logger := zap.NewNop()
	catalog := cache.NewCatalogCache(nil, 100, time.Minute, logger)
	return New(store.Products(), catalog, logger), store
}

func seedProduct(t *testing.T, store *memory.Store, name, barcode string) *models.Product {
	t.Helper()
	p := &models.Product{
		ID:             "prod-" + models.NormalizeName(name),
		ShopID:         testShop,
		Name:           name,
		NormalizedName: models.NormalizeName(name),
		Unit:           "piece",
	}
	if barcode != "" {
		p.Barcode = &barcode
	}
	if err := store.Create(context.Background(), p); err != nil {
		t.Fatalf("seed %s: %v", name, err)
	}
	return p
}

func TestResolveByBarcode(t *testing.T) {
	r, store := newTestResolver(t)
	seedProduct(t, store, "Maggi Noodles", "8901000000001")

	got, err := r.Resolve(context.Background(), testShop, "8901000000001")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got == nil || got.Name != "Maggi Noodles" {
		t.Fatalf("got %+v, want Maggi Noodles", got)
	}
}

func TestResolveExactNormalizedName(t *testing.T) {
	r, store := newTestResolver(t)
	seedProduct(t, store, "Tata Salt", "")

	got, err := r.Resolve(context.Background(), testShop, "  TATA salt ")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got == nil || got.Name != "Tata Salt" {
		t.Fatalf("got %+v, want Tata Salt", got)
	}
}

func TestResolveDevanagariAlias(t *testing.T) {
	r, store := newTestResolver(t)
	seedProduct(t, store, "Maggi", "")

	got, err := r.Resolve(context.Background(), testShop, "मैगी")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got == nil || got.Name != "Maggi" {
		t.Fatalf("got %+v, want Maggi", got)
	}
}

func TestResolveFuzzySingleToken(t *testing.T) {
	r, store := newTestResolver(t)
	seedProduct(t, store, "Aashirvaad Atta 5kg", "")
	seedProduct(t, store, "Fortune Tel", "")

	got, err := r.Resolve(context.Background(), testShop, "aashirvaad")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got == nil || got.Name != "Aashirvaad Atta 5kg" {
		t.Fatalf("got %+v, want Aashirvaad Atta 5kg", got)
	}
}

// Verb and unit tokens in the free text must not poison the match.
func TestResolveFuzzyIgnoresStopwords(t *testing.T) {
	r, store := newTestResolver(t)
	seedProduct(t, store, "Toor Dal", "")

	got, err := r.Resolve(context.Background(), testShop, "toor dal 2 kg add karo")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got == nil || got.Name != "Toor Dal" {
		t.Fatalf("got %+v, want Toor Dal", got)
	}
}

func TestResolveFuzzyTieKeepsCatalogOrder(t *testing.T) {
	r, store := newTestResolver(t)
	seedProduct(t, store, "Amul Doodh", "")
	seedProduct(t, store, "Amul Butter", "")

	got, err := r.Resolve(context.Background(), testShop, "amul")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got == nil || got.Name != "Amul Doodh" {
		t.Fatalf("got %+v, want the first catalog entry Amul Doodh", got)
	}
}

// Sharing one generic token with a different variety must not match.
func TestResolveFuzzyRejectsWrongVariety(t *testing.T) {
	r, store := newTestResolver(t)
	seedProduct(t, store, "Toor Dal", "")

	got, err := r.Resolve(context.Background(), testShop, "moong dal")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != nil {
		t.Fatalf("got %+v, want nil for a different dal variety", got)
	}
}

func TestResolveFuzzyBrandCoversShortCatalogName(t *testing.T) {
	r, store := newTestResolver(t)
	seedProduct(t, store, "Maggi", "")

	got, err := r.Resolve(context.Background(), testShop, "maggi noodles")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got == nil || got.Name != "Maggi" {
		t.Fatalf("got %+v, want Maggi", got)
	}
}

func TestResolveNoMatchReturnsNil(t *testing.T) {
	r, store := newTestResolver(t)
	seedProduct(t, store, "Maggi", "")

	got, err := r.Resolve(context.Background(), testShop, "colgate")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != nil {
		t.Fatalf("got %+v, want nil for an unknown product", got)
	}

	got, err = r.Resolve(context.Background(), testShop, "   ")
	if err != nil || got != nil {
		t.Fatalf("blank search: got %+v, %v", got, err)
	}
}

func TestLookupDemo(t *testing.T) {
	item := LookupDemo("8901000000001")
	if item == nil || item.Name != "Maggi Noodles" {
		t.Fatalf("got %+v, want Maggi Noodles", item)
	}
	if LookupDemo("0000000000000") != nil {
		t.Fatal("unknown barcode must return nil")
	}
}
