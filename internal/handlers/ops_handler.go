package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"kirana-service/internal/cache"
	"kirana-service/internal/models"
	"kirana-service/internal/repository"
	"kirana-service/internal/services"
	"kirana-service/internal/xid"
)

// OpsHandler is the REST surface for catalog seeding, stock operations
// and ledger inspection. The chat pipeline is the primary interface;
// these endpoints exist for onboarding tools and the ops dashboard.
type OpsHandler struct {
	products     repository.ProductRepository
	transactions repository.TransactionRepository
	shops        repository.ShopRepository
	commands     services.CommandService
	udhar        services.UdharService
	catalog      *cache.CatalogCache
	validator    *validator.Validate
	logger       *zap.Logger
}

func NewOpsHandler(
	products repository.ProductRepository,
	transactions repository.TransactionRepository,
	shops repository.ShopRepository,
	commands services.CommandService,
	udhar services.UdharService,
	catalog *cache.CatalogCache,
	logger *zap.Logger,
) *OpsHandler {
	return &OpsHandler{
		products:     products,
		transactions: transactions,
		shops:        shops,
		commands:     commands,
		udhar:        udhar,
		catalog:      catalog,
		validator:    validator.New(),
		logger:       logger,
	}
}

// CreateProduct seeds a catalog entry with details the chat flow cannot
// capture (cost price, expiry date, threshold).
func (h *OpsHandler) CreateProduct(c *gin.Context) {
	shopID := c.Param("shopId")

	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.APIResponse{Success: false, Error: err.Error()})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.logger.Error("create product validation failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, models.APIResponse{Success: false, Error: err.Error()})
		return
	}

	ctx := c.Request.Context()
	if existing, err := h.products.GetByNormalizedName(ctx, shopID, models.NormalizeName(req.Name)); err != nil {
		c.JSON(http.StatusInternalServerError, models.APIResponse{Success: false, Error: err.Error()})
		return
	} else if existing != nil {
		c.JSON(http.StatusConflict, models.APIResponse{Success: false, Error: "product already exists"})
		return
	}

	unit := req.Unit
	if unit == "" {
		unit = "piece"
	}
	product := &models.Product{
		ID:                xid.New("prod"),
		ShopID:            shopID,
		Name:              req.Name,
		NormalizedName:    models.NormalizeName(req.Name),
		CurrentStock:      req.InitialStock,
		Unit:              unit,
		SellingPrice:      req.SellingPrice,
		CostPrice:         req.CostPrice,
		LowStockThreshold: req.LowStockThreshold,
	}
	if req.Barcode != "" {
		product.Barcode = &req.Barcode
	}
	if req.Brand != "" {
		product.Brand = &req.Brand
	}
	if req.ExpiryDate != "" {
		product.ExpiryDate = &req.ExpiryDate
	}

	if err := h.products.Create(ctx, product); err != nil {
		h.logger.Error("create product failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.APIResponse{Success: false, Error: err.Error()})
		return
	}
	h.catalog.Invalidate(ctx, shopID)

	h.logger.Info("product created via ops API",
		zap.String("shop_id", shopID), zap.String("product", product.Name))
	c.JSON(http.StatusCreated, models.APIResponse{Success: true, Data: product})
}

// ListProducts returns a shop's full catalog.
func (h *OpsHandler) ListProducts(c *gin.Context) {
	products, err := h.products.ListByShop(c.Request.Context(), c.Param("shopId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.APIResponse{Success: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, models.APIResponse{Success: true, Data: products})
}

// StockOp applies an add or reduce through the same executor the chat
// pipeline uses, so ledger entries and alerts behave identically.
func (h *OpsHandler) StockOp(action models.CommandAction) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.StockOpRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.APIResponse{Success: false, Error: err.Error()})
			return
		}
		if err := h.validator.Struct(req); err != nil {
			c.JSON(http.StatusBadRequest, models.APIResponse{Success: false, Error: err.Error()})
			return
		}

		ctx := c.Request.Context()
		user, err := h.shops.GetUserByPhone(ctx, req.UserPhone)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.APIResponse{Success: false, Error: err.Error()})
			return
		}
		if user == nil {
			c.JSON(http.StatusNotFound, models.APIResponse{Success: false, Error: "unknown user phone"})
			return
		}

		result, err := h.commands.Execute(ctx, user, models.Command{
			Action:      action,
			ProductName: req.ProductName,
			Quantity:    req.Quantity,
			Confidence:  1,
		})
		if err != nil {
			h.logger.Error("stock op failed", zap.String("action", string(action)), zap.Error(err))
			c.JSON(http.StatusInternalServerError, models.APIResponse{Success: false, Error: err.Error()})
			return
		}
		if !result.Ok() {
			c.JSON(http.StatusUnprocessableEntity, models.APIResponse{Success: false, Error: result.FailureMessage()})
			return
		}
		c.JSON(http.StatusOK, models.APIResponse{Success: true, Data: result})
	}
}

// ListTransactions returns a shop's recent ledger entries, newest first.
func (h *OpsHandler) ListTransactions(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}
	txs, err := h.transactions.ListByShop(c.Request.Context(), c.Param("shopId"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.APIResponse{Success: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, models.APIResponse{Success: true, Data: txs})
}

// UdharSummary returns the outstanding-credit aggregation.
func (h *OpsHandler) UdharSummary(c *gin.Context) {
	summary, err := h.udhar.ListUdhar(c.Request.Context(), c.Param("shopId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.APIResponse{Success: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, models.APIResponse{Success: true, Data: summary})
}
