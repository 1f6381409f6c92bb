package services

import (
	"context"

	"go.uber.org/zap"

	"kirana-service/internal/models"
	"kirana-service/internal/repository"
	"kirana-service/internal/resolver"
	"kirana-service/internal/xid"
)

// SeedDemoCatalog loads the built-in kirana SKU list into a shop's
// catalog with zero stock. Existing products are left alone, so the seed
// is safe to run on every startup.
func SeedDemoCatalog(ctx context.Context, products repository.ProductRepository, shopID string, logger *zap.Logger) error {
	seeded := 0
	for _, item := range resolver.DemoCatalog {
		existing, err := products.GetByBarcode(ctx, shopID, item.Barcode)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}

		barcode := item.Barcode
		selling, cost := item.SellingPrice, item.CostPrice
		product := &models.Product{
			ID:             xid.New("prod"),
			ShopID:         shopID,
			Name:           item.Name,
			NormalizedName: models.NormalizeName(item.Name),
			Unit:           item.Unit,
			Barcode:        &barcode,
			SellingPrice:   &selling,
			CostPrice:      &cost,
		}
		if item.Brand != "" {
			brand := item.Brand
			product.Brand = &brand
		}
		if err := products.Create(ctx, product); err != nil {
			return err
		}
		seeded++
	}
	if seeded > 0 {
		logger.Info("demo catalog seeded",
			zap.String("shop_id", shopID),
			zap.Int("products", seeded))
	}
	return nil
}
