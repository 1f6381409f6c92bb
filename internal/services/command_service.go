package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"kirana-service/internal/cache"
	"kirana-service/internal/models"
	"kirana-service/internal/repository"
	"kirana-service/internal/resolver"
	"kirana-service/internal/xid"
)

// CommandService executes structured commands against the inventory,
// ledger and credit stores. Infrastructure failures come back as errors;
// user-facing failures (unknown product, nothing to undo) come back as
// models.Failure so the renderer can reply with guidance.
type CommandService interface {
	Execute(ctx context.Context, user *models.User, cmd models.Command) (models.ExecResult, error)
	ExecuteBatch(ctx context.Context, user *models.User, cmds []models.Command) (models.ExecResult, error)
}

type commandService struct {
	products         repository.ProductRepository
	transactions     repository.TransactionRepository
	resolve          *resolver.Resolver
	catalog          *cache.CatalogCache
	reports          ReportService
	udhar            UdharService
	defaultThreshold float64
	now              func() time.Time
	logger           *zap.Logger
}

// NewCommandService wires the executor. defaultThreshold applies to
// products without an explicit low-stock threshold.
func NewCommandService(
	products repository.ProductRepository,
	transactions repository.TransactionRepository,
	res *resolver.Resolver,
	catalog *cache.CatalogCache,
	reports ReportService,
	udhar UdharService,
	defaultThreshold float64,
	logger *zap.Logger,
) CommandService {
	return &commandService{
		products:         products,
		transactions:     transactions,
		resolve:          res,
		catalog:          catalog,
		reports:          reports,
		udhar:            udhar,
		defaultThreshold: defaultThreshold,
		now:              time.Now,
		logger:           logger,
	}
}

func (s *commandService) Execute(ctx context.Context, user *models.User, cmd models.Command) (models.ExecResult, error) {
	logger := s.logger.With(
		zap.String("operation", string(cmd.Action)),
		zap.String("shop_id", user.ShopID),
		zap.String("user_phone", user.Phone),
	)
	logger.Info("executing command",
		zap.String("product", cmd.ProductName),
		zap.Float64("quantity", cmd.Quantity))

	switch cmd.Action {
	case models.ActionAddStock:
		return s.addStock(ctx, user, cmd)
	case models.ActionReduceStock:
		return s.reduceStock(ctx, user, cmd)
	case models.ActionCheckStock:
		return s.checkStock(ctx, user, cmd)
	case models.ActionAdjustStock:
		return s.adjustStock(ctx, user, cmd)
	case models.ActionUndoLast:
		return s.undoLast(ctx, user)
	case models.ActionUpdatePrice:
		return s.updatePrice(ctx, user, cmd)
	case models.ActionSetLowStockThreshold:
		return s.setThreshold(ctx, user, cmd)
	case models.ActionListProducts:
		return s.listProducts(ctx, user, cmd.ProductName)
	case models.ActionLowStock:
		return s.lowStock(ctx, user)
	case models.ActionTotalSales:
		return s.reports.SalesSummary(ctx, user.ShopID, PeriodToday(s.now()))
	case models.ActionReportSummary:
		return s.reports.SalesSummary(ctx, user.ShopID, PeriodToday(s.now()))
	case models.ActionTodayProfit:
		return s.reports.Profit(ctx, user.ShopID, PeriodToday(s.now()))
	case models.ActionWeeklyProfit:
		return s.reports.Profit(ctx, user.ShopID, PeriodWeek(s.now()))
	case models.ActionMonthlyProfit:
		return s.reports.Profit(ctx, user.ShopID, PeriodMonth(s.now()))
	case models.ActionYearlyProfit:
		return s.reports.Profit(ctx, user.ShopID, PeriodYear(s.now()))
	case models.ActionTopProductToday:
		return s.reports.TopProductToday(ctx, user.ShopID)
	case models.ActionZeroSaleToday:
		return s.reports.ZeroSaleToday(ctx, user.ShopID)
	case models.ActionExpiryProducts:
		return s.reports.ExpiryScan(ctx, user.ShopID)
	case models.ActionPredictiveAlert:
		return s.reports.PredictiveAlerts(ctx, user.ShopID)
	case models.ActionPurchaseSuggestion:
		return s.reports.PurchaseSuggestions(ctx, user.ShopID)
	case models.ActionSeasonalSuggestion:
		return s.reports.SeasonalSuggestion(cmd.ProductName), nil
	case models.ActionAddUdhar:
		return s.udhar.AddUdhar(ctx, user, cmd.ProductName, cmd.Quantity)
	case models.ActionPayUdhar:
		return s.udhar.PayUdhar(ctx, user, cmd.ProductName, cmd.Quantity)
	case models.ActionListUdhar:
		return s.udhar.ListUdhar(ctx, user.ShopID)
	case models.ActionCustomerUdhar:
		return s.udhar.CustomerUdhar(ctx, user.ShopID, cmd.ProductName)
	case models.ActionHelp:
		return &models.HelpResult{}, nil
	default:
		return models.Failure{Message: "❌ Samajh nahi aaya. 'help' bhejo commands dekhne ke liye."}, nil
	}
}

// ExecuteBatch runs scanner-message lines sequentially. One bad line
// never aborts the rest; its failure is reported inline.
func (s *commandService) ExecuteBatch(ctx context.Context, user *models.User, cmds []models.Command) (models.ExecResult, error) {
	batch := &models.BatchResult{}
	for _, cmd := range cmds {
		line := models.BatchLineResult{Barcode: cmd.ProductName}
		result, err := s.Execute(ctx, user, cmd)
		if err != nil {
			s.logger.Error("batch line failed", zap.String("barcode", cmd.ProductName), zap.Error(err))
			result = models.Failure{Message: "❌ System error, yeh line process nahi hui."}
		}
		line.Result = result
		batch.Lines = append(batch.Lines, line)
	}
	return batch, nil
}

// addStock increases stock, creating the product on first mention. New
// products get demo-catalog details when the name is a known barcode.
func (s *commandService) addStock(ctx context.Context, user *models.User, cmd models.Command) (models.ExecResult, error) {
	product, err := s.resolve.Resolve(ctx, user.ShopID, cmd.ProductName)
	if err != nil {
		return nil, err
	}
	if product == nil {
		product, err = s.createProduct(ctx, user, cmd.ProductName)
		if err != nil {
			return nil, err
		}
	}

	prev := product.CurrentStock
	next := prev + cmd.Quantity
	if err := s.products.UpdateStock(ctx, product.ID, next); err != nil {
		return nil, err
	}
	s.catalog.Invalidate(ctx, user.ShopID)

	if err := s.recordTx(ctx, user, product, models.TxAddStock, cmd.Quantity, prev, next, nil, nil); err != nil {
		return nil, err
	}
	return &models.StockMutationResult{
		ProductName:   product.Name,
		Quantity:      cmd.Quantity,
		PreviousStock: prev,
		NewStock:      next,
		Unit:          product.Unit,
	}, nil
}

// reduceStock records a sale. Quantity clamps at zero stock; revenue is
// computed from the selling price when one is known, backfilling prices
// from the demo catalog for barcoded products.
func (s *commandService) reduceStock(ctx context.Context, user *models.User, cmd models.Command) (models.ExecResult, error) {
	product, err := s.resolve.Resolve(ctx, user.ShopID, cmd.ProductName)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return models.Failure{Message: fmt.Sprintf("❌ '%s' stock mein nahi mila. Pehle add karo: '%s 10 add karo'", cmd.ProductName, cmd.ProductName)}, nil
	}

	prev := product.CurrentStock
	actual := cmd.Quantity
	if actual > prev {
		actual = prev
	}
	next := prev - actual
	if err := s.products.UpdateStock(ctx, product.ID, next); err != nil {
		return nil, err
	}
	s.catalog.Invalidate(ctx, user.ShopID)

	price := s.sellingPrice(ctx, product)
	var unitPrice, total *float64
	result := &models.StockMutationResult{
		ProductName:   product.Name,
		Quantity:      actual,
		PreviousStock: prev,
		NewStock:      next,
		Unit:          product.Unit,
	}
	if price > 0 {
		revenue := price * actual
		unitPrice, total = &price, &revenue
		result.UnitPrice = price
		result.Revenue = revenue
	}
	if err := s.recordTx(ctx, user, product, models.TxReduceStock, actual, prev, next, unitPrice, total); err != nil {
		return nil, err
	}

	// Alert on every reduction that lands at or below the threshold.
	// next < prev keeps zero-quantity updates from alerting.
	threshold := product.Threshold(s.defaultThreshold)
	if next <= threshold && next < prev {
		result.LowStockAlert = true
		result.Threshold = threshold
	}
	return result, nil
}

// sellingPrice returns the product's price, backfilling catalog prices
// for known barcodes so demo shops get revenue numbers out of the box.
func (s *commandService) sellingPrice(ctx context.Context, product *models.Product) float64 {
	if product.SellingPrice != nil {
		return *product.SellingPrice
	}
	if product.Barcode == nil {
		return 0
	}
	item := resolver.LookupDemo(*product.Barcode)
	if item == nil {
		return 0
	}
	if err := s.products.UpdateSellingPrice(ctx, product.ID, item.SellingPrice); err != nil {
		s.logger.Warn("price backfill failed", zap.String("product", product.Name), zap.Error(err))
	}
	if err := s.products.UpdateCostPrice(ctx, product.ID, item.CostPrice); err != nil {
		s.logger.Warn("cost backfill failed", zap.String("product", product.Name), zap.Error(err))
	}
	return item.SellingPrice
}

func (s *commandService) checkStock(ctx context.Context, user *models.User, cmd models.Command) (models.ExecResult, error) {
	product, err := s.resolve.Resolve(ctx, user.ShopID, cmd.ProductName)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return models.Failure{Message: fmt.Sprintf("❌ '%s' stock mein nahi mila.", cmd.ProductName)}, nil
	}
	return &models.CheckStockResult{
		ProductName:  product.Name,
		CurrentStock: product.CurrentStock,
		Unit:         product.Unit,
	}, nil
}

// adjustStock corrects the quantity of the product's most recent ledger
// entry. "Maggi 10 nahi 8 tha": the last entry said 10, reality was 8.
func (s *commandService) adjustStock(ctx context.Context, user *models.User, cmd models.Command) (models.ExecResult, error) {
	product, err := s.resolve.Resolve(ctx, user.ShopID, cmd.ProductName)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return models.Failure{Message: fmt.Sprintf("❌ '%s' stock mein nahi mila.", cmd.ProductName)}, nil
	}
	last, err := s.transactions.LatestByProduct(ctx, user.ShopID, product.ID)
	if err != nil {
		return nil, err
	}
	if last == nil {
		return models.Failure{Message: fmt.Sprintf("❌ '%s' ki koi entry nahi hai jo theek ki ja sake.", product.Name)}, nil
	}

	old := last.Quantity
	delta := cmd.Quantity - old
	result := &models.AdjustStockResult{
		ProductName: product.Name,
		OldQuantity: old,
		NewQuantity: cmd.Quantity,
		Delta:       delta,
		NewStock:    product.CurrentStock,
		Unit:        product.Unit,
	}
	if delta == 0 {
		return result, nil
	}

	// The correction moves stock in the direction of the original entry.
	stockDelta := delta
	if last.Type == models.TxReduceStock || last.Type == models.TxSale {
		stockDelta = -delta
	}
	prev := product.CurrentStock
	next := prev + stockDelta
	if next < 0 {
		next = 0
	}
	if err := s.products.UpdateStock(ctx, product.ID, next); err != nil {
		return nil, err
	}
	s.catalog.Invalidate(ctx, user.ShopID)
	note := fmt.Sprintf("adjusted last %s from %g to %g", last.Type, old, cmd.Quantity)
	if err := s.recordAdjustment(ctx, user, product, prev, next, note); err != nil {
		return nil, err
	}
	result.NewStock = next
	return result, nil
}

// undoLast reverses the shop's most recent ledger entry as a
// compensating adjustment. The original entry stays in the ledger.
func (s *commandService) undoLast(ctx context.Context, user *models.User) (models.ExecResult, error) {
	last, err := s.transactions.LatestByShop(ctx, user.ShopID)
	if err != nil {
		return nil, err
	}
	if last == nil {
		return models.Failure{Message: "❌ Koi entry nahi hai jo undo ki ja sake."}, nil
	}
	product, err := s.products.GetByID(ctx, last.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return models.Failure{Message: "❌ Undo nahi ho paya, product ab catalog mein nahi hai."}, nil
	}

	prev := product.CurrentStock
	var next float64
	switch last.Type {
	case models.TxAddStock:
		next = prev - last.Quantity
	case models.TxReduceStock, models.TxSale:
		next = prev + last.Quantity
	default: // adjustment: restore the stock it replaced
		next = last.PreviousStock
	}
	if next < 0 {
		next = 0
	}
	if err := s.products.UpdateStock(ctx, product.ID, next); err != nil {
		return nil, err
	}
	s.catalog.Invalidate(ctx, user.ShopID)
	note := fmt.Sprintf("undo of %s %g", last.Type, last.Quantity)
	if err := s.recordAdjustment(ctx, user, product, prev, next, note); err != nil {
		return nil, err
	}

	return &models.UndoResult{
		ProductName:   product.Name,
		UndoneType:    last.Type,
		Quantity:      last.Quantity,
		RestoredStock: next,
		Unit:          product.Unit,
	}, nil
}

func (s *commandService) updatePrice(ctx context.Context, user *models.User, cmd models.Command) (models.ExecResult, error) {
	product, err := s.resolve.Resolve(ctx, user.ShopID, cmd.ProductName)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return models.Failure{Message: fmt.Sprintf("❌ '%s' stock mein nahi mila.", cmd.ProductName)}, nil
	}
	result := &models.UpdatePriceResult{ProductName: product.Name, NewPrice: cmd.Quantity}
	if product.SellingPrice != nil {
		result.OldPrice = *product.SellingPrice
		result.HadOldPrice = true
	}
	if err := s.products.UpdateSellingPrice(ctx, product.ID, cmd.Quantity); err != nil {
		return nil, err
	}
	s.catalog.Invalidate(ctx, user.ShopID)
	return result, nil
}

func (s *commandService) setThreshold(ctx context.Context, user *models.User, cmd models.Command) (models.ExecResult, error) {
	product, err := s.resolve.Resolve(ctx, user.ShopID, cmd.ProductName)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return models.Failure{Message: fmt.Sprintf("❌ '%s' stock mein nahi mila.", cmd.ProductName)}, nil
	}
	if err := s.products.UpdateThreshold(ctx, product.ID, cmd.Quantity); err != nil {
		return nil, err
	}
	s.catalog.Invalidate(ctx, user.ShopID)
	return &models.SetThresholdResult{ProductName: product.Name, Threshold: cmd.Quantity}, nil
}

// listProducts returns the catalog, optionally narrowed by a category
// keyword ("daal", "biscuit") matched against normalized names.
func (s *commandService) listProducts(ctx context.Context, user *models.User, filter string) (models.ExecResult, error) {
	products, err := s.products.ListByShop(ctx, user.ShopID)
	if err != nil {
		return nil, err
	}
	filter = strings.ToLower(strings.TrimSpace(filter))

	result := &models.ListProductsResult{Filter: filter}
	for _, p := range products {
		if filter != "" && !strings.Contains(p.NormalizedName, filter) {
			continue
		}
		line := models.ProductLine{Name: p.Name, Stock: p.CurrentStock, Unit: p.Unit}
		if p.SellingPrice != nil {
			line.Price = *p.SellingPrice
		}
		result.Products = append(result.Products, line)
	}
	result.Total = len(result.Products)
	return result, nil
}

func (s *commandService) lowStock(ctx context.Context, user *models.User) (models.ExecResult, error) {
	products, err := s.products.ListByShop(ctx, user.ShopID)
	if err != nil {
		return nil, err
	}
	result := &models.LowStockResult{Threshold: s.defaultThreshold}
	for _, p := range products {
		if p.CurrentStock > p.Threshold(s.defaultThreshold) {
			continue
		}
		result.Products = append(result.Products, models.ProductLine{Name: p.Name, Stock: p.CurrentStock, Unit: p.Unit})
	}
	result.Total = len(result.Products)
	return result, nil
}

// createProduct registers a first-seen product. Barcode references pull
// name, brand, unit and prices from the demo catalog.
func (s *commandService) createProduct(ctx context.Context, user *models.User, name string) (*models.Product, error) {
	name = strings.TrimSpace(name)
	product := &models.Product{
		ID:     xid.New("prod"),
		ShopID: user.ShopID,
		Unit:   "piece",
	}
	if item := resolver.LookupDemo(name); item != nil {
		barcode := item.Barcode
		selling, cost := item.SellingPrice, item.CostPrice
		product.Name = item.Name
		product.Brand = optional(item.Brand)
		product.Barcode = &barcode
		product.Unit = item.Unit
		product.SellingPrice = &selling
		product.CostPrice = &cost
	} else {
		product.Name = titleCase(name)
	}
	product.NormalizedName = models.NormalizeName(product.Name)

	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	s.catalog.Invalidate(ctx, user.ShopID)
	s.logger.Info("product created",
		zap.String("operation", "create_product"),
		zap.String("shop_id", user.ShopID),
		zap.String("product", product.Name))
	return product, nil
}

func (s *commandService) recordTx(ctx context.Context, user *models.User, product *models.Product, txType models.TransactionType, qty, prev, next float64, unitPrice, total *float64) error {
	return s.transactions.Create(ctx, &models.Transaction{
		ID:            xid.New("tx"),
		ShopID:        user.ShopID,
		ProductID:     product.ID,
		ProductName:   product.Name,
		Type:          txType,
		Quantity:      qty,
		PreviousStock: prev,
		NewStock:      next,
		UnitPrice:     unitPrice,
		TotalAmount:   total,
		UserPhone:     user.Phone,
		Timestamp:     s.now(),
	})
}

func (s *commandService) recordAdjustment(ctx context.Context, user *models.User, product *models.Product, prev, next float64, note string) error {
	return s.transactions.Create(ctx, &models.Transaction{
		ID:            xid.New("tx"),
		ShopID:        user.ShopID,
		ProductID:     product.ID,
		ProductName:   product.Name,
		Type:          models.TxAdjustment,
		Quantity:      math.Abs(next - prev),
		PreviousStock: prev,
		NewStock:      next,
		UserPhone:     user.Phone,
		Timestamp:     s.now(),
		Notes:         &note,
	})
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// titleCase capitalizes each word; product names display this way in
// replies regardless of how they were typed.
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
