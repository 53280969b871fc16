package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/egannguyen/inventory-ledger/internal/entity"
	"github.com/egannguyen/inventory-ledger/internal/service"
)

// Handler handles HTTP requests for the application.
type Handler struct {
	productSvc *service.ProductService
	saleSvc    *service.SaleService
	reportSvc  *service.DeadInventoryService
}

func NewHandler(productSvc *service.ProductService, saleSvc *service.SaleService, reportSvc *service.DeadInventoryService) *Handler {
	return &Handler{
		productSvc: productSvc,
		saleSvc:    saleSvc,
		reportSvc:  reportSvc,
	}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/ping", h.handlePing)

	api := r.Group("/api")
	{
		api.GET("/products", h.handleGetProducts)
		api.GET("/products/:id", h.handleGetProduct)
		api.POST("/products", h.handleCreateProduct)
		api.PUT("/products/:id", h.handleUpdateProduct)
		api.DELETE("/products/:id", h.handleDeleteProduct)

		api.POST("/sales", h.handleRecordSale)
		api.GET("/sales", h.handleGetSales)

		api.GET("/dead-inventory", h.handleDeadInventory)
		api.GET("/dead-inventory/summary", h.handleDeadInventorySummary)
	}
}

func (h *Handler) handlePing(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}

type storeRequest struct {
	StoreName    string `json:"storeName"`
	Location     string `json:"location"`
	Quantity     int    `json:"quantity"`
	LastSoldDate string `json:"lastSoldDate"`
}

// ProductRequest is the body of product create and update calls. Stock is given
// either as a stores array or, for older clients, as a single stock count.
type ProductRequest struct {
	Name         string           `json:"name"`
	SKU          string           `json:"SKU"`
	Category     string           `json:"category"`
	Price        *decimal.Decimal `json:"price"`
	Description  string           `json:"description"`
	Stores       *[]storeRequest  `json:"stores"`
	Stock        *int             `json:"stock"`
	LastSoldDate string           `json:"lastSoldDate"`
}

func parseOptionalTimestamp(value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, nil
	}
	return entity.ParseTimestamp(value)
}

func (req ProductRequest) stockSource() (entity.StockSource, error) {
	if req.Stores != nil {
		entries := make([]entity.StoreStock, 0, len(*req.Stores))
		for _, s := range *req.Stores {
			soldAt, err := parseOptionalTimestamp(s.LastSoldDate)
			if err != nil {
				return nil, err
			}
			entries = append(entries, entity.StoreStock{
				StoreName:    s.StoreName,
				Location:     s.Location,
				Quantity:     s.Quantity,
				LastSoldDate: soldAt,
			})
		}
		return entity.ExplicitStores{Entries: entries}, nil
	}
	if req.Stock != nil {
		soldAt, err := parseOptionalTimestamp(req.LastSoldDate)
		if err != nil {
			return nil, err
		}
		return entity.LegacyStockCount{Quantity: *req.Stock, LastSoldDate: soldAt}, nil
	}
	return nil, nil
}

func (req ProductRequest) input() (service.ProductInput, error) {
	stock, err := req.stockSource()
	if err != nil {
		return service.ProductInput{}, err
	}
	return service.ProductInput{
		Name:        req.Name,
		SKU:         req.SKU,
		Category:    req.Category,
		Price:       req.Price,
		Description: req.Description,
		Stock:       stock,
	}, nil
}

func (h *Handler) handleGetProducts(c *gin.Context) {
	products, err := h.productSvc.GetProducts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) handleGetProduct(c *gin.Context) {
	product, err := h.productSvc.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) handleCreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	in, err := req.input()
	if err != nil {
		respondError(c, err)
		return
	}

	product, err := h.productSvc.CreateProduct(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *Handler) handleUpdateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	in, err := req.input()
	if err != nil {
		respondError(c, err)
		return
	}

	product, err := h.productSvc.UpdateProduct(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) handleDeleteProduct(c *gin.Context) {
	if err := h.productSvc.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Deleted successfully"})
}

// SaleRequest is the body of POST /api/sales.
type SaleRequest struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	StoreID     string `json:"storeId"`
	StoreName   string `json:"storeName"`
	Quantity    int    `json:"quantity"`
	Date        string `json:"date"`
}

func (h *Handler) handleRecordSale(c *gin.Context) {
	var req SaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	sale, err := h.saleSvc.RecordSale(c.Request.Context(), entity.RecordSale{
		ProductID:   req.ProductID,
		ProductName: req.ProductName,
		StoreID:     req.StoreID,
		StoreName:   req.StoreName,
		Quantity:    req.Quantity,
		Date:        req.Date,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}

func (h *Handler) handleGetSales(c *gin.Context) {
	sales, err := h.saleSvc.ListSales(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sales)
}

func (h *Handler) thresholdDays(c *gin.Context) (int, error) {
	raw := c.Query("thresholdDays")
	if raw == "" {
		return h.reportSvc.DefaultThreshold(), nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		return 0, entity.Invalidf("thresholdDays must be a whole number of days")
	}
	return days, nil
}

func (h *Handler) handleDeadInventory(c *gin.Context) {
	days, err := h.thresholdDays(c)
	if err != nil {
		respondError(c, err)
		return
	}
	items, err := h.reportSvc.Report(c.Request.Context(), days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) handleDeadInventorySummary(c *gin.Context) {
	days, err := h.thresholdDays(c)
	if err != nil {
		respondError(c, err)
		return
	}
	summary, err := h.reportSvc.Summary(c.Request.Context(), days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func respondBadRequest(c *gin.Context, err error) {
	slog.Debug("Rejected request body", "path", c.FullPath(), "err", err)
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
}

// respondError maps service errors onto HTTP statuses. Unknown errors are logged and
// answered with a generic 500.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := "internal server error"

	var verr *entity.ValidationError
	switch {
	case errors.As(err, &verr):
		status, msg = http.StatusBadRequest, verr.Msg
	case errors.Is(err, entity.ErrProductNotFound):
		status, msg = http.StatusNotFound, "Product not found"
	case errors.Is(err, entity.ErrStoreNotFound):
		status, msg = http.StatusNotFound, "Store not found for this product"
	case errors.Is(err, entity.ErrInsufficientStock):
		status, msg = http.StatusBadRequest, "Not enough stock available in this store"
	default:
		slog.Error("Request failed", "method", c.Request.Method, "path", c.FullPath(), "err", err)
	}

	c.JSON(status, gin.H{"error": msg})
}
