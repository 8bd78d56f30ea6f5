package router

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"julianmorley.ca/con-plar/storefront-checkout/pkg/checkout"
	"julianmorley.ca/con-plar/storefront-checkout/pkg/global"
	"julianmorley.ca/con-plar/storefront-checkout/pkg/models"
	"julianmorley.ca/con-plar/storefront-checkout/pkg/mongo"
	"julianmorley.ca/con-plar/storefront-checkout/pkg/redis"
)

// maxBodyBytes bounds a checkout request body.
const maxBodyBytes = 1 << 20

const (
	defaultSessionLimit = 20
	maxSessionLimit     = 100
)

type ProductStore interface {
	ListProducts(ctx context.Context) ([]*models.Product, error)
	GetProductByPriceID(ctx context.Context, priceID string) (*models.Product, error)
	UpsertProducts(ctx context.Context, products []*models.Product) error
	Ping(ctx context.Context) error
}

type ProductCache interface {
	GetProduct(ctx context.Context, priceID string) (*models.Product, error)
	CacheProduct(ctx context.Context, product *models.Product) error
	CacheProducts(ctx context.Context, products []*models.Product) error
	RemoveProduct(ctx context.Context, priceID string) error
}

type SessionLog interface {
	RecentCheckoutSessions(ctx context.Context, limit int64) ([]*models.CheckoutSessionRecord, error)
}

type Handler struct {
	checkout *checkout.Service
	products ProductStore
	cache    ProductCache
	sessions SessionLog
	logger   *zap.Logger
}

func NewHandler(svc *checkout.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{checkout: svc, logger: logger}
}

// WithCatalog enables the product routes. cache may be nil.
func (h *Handler) WithCatalog(products ProductStore, cache ProductCache) *Handler {
	h.products = products
	h.cache = cache
	return h
}

// WithSessionLog enables the operator view of recent checkout sessions.
func (h *Handler) WithSessionLog(sessions SessionLog) *Handler {
	h.sessions = sessions
	return h
}

// CreateCheckoutSession hands the raw request to the checkout service
// and writes its response back unchanged. Bodies over maxBodyBytes are
// refused with 413.
func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	var body []byte
	if c.Request.Method == http.MethodPost {
		var err error
		body, err = io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, models.ErrorBody{Error: "Request body too large."})
			return
		}
		if err != nil {
			h.logger.Warn("failed to read checkout body", zap.Error(err))
			c.JSON(http.StatusBadRequest, models.ErrorBody{Error: "Unable to read request body."})
			return
		}
	}

	resp := h.checkout.Handle(c.Request.Context(), checkout.Request{
		Method:    c.Request.Method,
		Body:      body,
		Origin:    c.GetHeader("Origin"),
		RequestID: c.GetString(requestIDKey),
	})
	writeResponse(c, resp)
}

func writeResponse(c *gin.Context, resp *global.Response) {
	for key, values := range resp.Headers {
		for _, v := range values {
			c.Writer.Header().Add(key, v)
		}
	}
	if len(resp.Body) == 0 {
		c.Status(resp.StatusCode)
		return
	}
	c.Data(resp.StatusCode, resp.Headers.Get("Content-Type"), resp.Body)
}

func (h *Handler) HealthCheck(c *gin.Context) {
	if h.products == nil {
		c.JSON(http.StatusOK, global.SuccessResponse(map[string]string{"status": "OK", "database": "Not configured"}))
		return
	}
	if err := h.products.Ping(c.Request.Context()); err != nil {
		h.logger.Error("database ping failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, global.ErrorResponse("Database connection failed", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(map[string]string{"status": "OK", "database": "Connected"}))
}

func (h *Handler) GetAllProducts(c *gin.Context) {
	products, err := h.products.ListProducts(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to get products", nil))
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(products))
}

// GetProductByPriceID serves a product from the cache when it can and
// falls back to the database, caching what it finds.
func (h *Handler) GetProductByPriceID(c *gin.Context) {
	priceID := c.Param("priceId")
	ctx := c.Request.Context()

	if h.cache != nil {
		product, err := h.cache.GetProduct(ctx, priceID)
		if err == nil {
			c.Header("X-Cache", "HIT")
			c.JSON(http.StatusOK, global.SuccessResponse(product))
			return
		}
		if !errors.Is(err, redis.ErrCacheMiss) {
			h.logger.Warn("product cache read failed", zap.String("price_id", priceID), zap.Error(err))
		}
	}

	product, err := h.products.GetProductByPriceID(ctx, priceID)
	if err == nil && !product.IsAvailable() {
		err = mongo.ErrProductNotFound
	}
	if errors.Is(err, mongo.ErrProductNotFound) {
		c.JSON(http.StatusNotFound, global.ErrorResponse("Product not found", []global.ValidationError{
			{Field: "priceId", Message: "No product exists with this price ID", Code: "not_found"},
		}))
		return
	}
	if err != nil {
		h.logger.Error("failed to fetch product", zap.String("price_id", priceID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to fetch product", nil))
		return
	}

	if h.cache != nil {
		if cacheErr := h.cache.CacheProduct(ctx, product); cacheErr != nil {
			h.logger.Warn("failed to cache product", zap.String("price_id", priceID), zap.Error(cacheErr))
		}
	}

	c.Header("X-Cache", "MISS")
	c.JSON(http.StatusOK, global.SuccessResponse(product))
}

// UpsertProducts writes catalog entries and refreshes the cache:
// available products are re-cached, inactive ones are evicted.
func (h *Handler) UpsertProducts(c *gin.Context) {
	var payload []models.Product
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "request", Message: err.Error(), Code: "validation_error"},
		}))
		return
	}

	if len(payload) == 0 {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("No products provided", []global.ValidationError{
			{Field: "products", Message: "At least one product is required", Code: "empty_array"},
		}))
		return
	}
	products := make([]*models.Product, len(payload))
	for i := range payload {
		products[i] = &payload[i]
	}

	ctx := c.Request.Context()
	if err := h.products.UpsertProducts(ctx, products); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid product data", validationErrors(fieldErrs)))
			return
		}
		h.logger.Error("failed to save products", zap.Int("count", len(products)), zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to save products", nil))
		return
	}

	h.refreshCache(ctx, products)

	c.JSON(http.StatusOK, global.SuccessResponse(map[string]interface{}{
		"products": products,
		"count":    len(products),
	}))
}

func (h *Handler) refreshCache(ctx context.Context, products []*models.Product) {
	if h.cache == nil {
		return
	}

	var available []*models.Product
	for _, p := range products {
		if p.IsAvailable() {
			available = append(available, p)
			continue
		}
		if err := h.cache.RemoveProduct(ctx, p.PriceID); err != nil {
			h.logger.Warn("failed to evict product from cache", zap.String("price_id", p.PriceID), zap.Error(err))
		}
	}
	if err := h.cache.CacheProducts(ctx, available); err != nil {
		h.logger.Warn("failed to cache products", zap.Int("count", len(available)), zap.Error(err))
	}
}

func validationErrors(fieldErrs validator.ValidationErrors) []global.ValidationError {
	out := make([]global.ValidationError, len(fieldErrs))
	for i, fe := range fieldErrs {
		out[i] = global.ValidationError{Field: fe.Field(), Message: fe.Error(), Code: fe.Tag()}
	}
	return out
}

// GetRecentCheckoutSessions lists the newest recorded sessions.
func (h *Handler) GetRecentCheckoutSessions(c *gin.Context) {
	limit := int64(defaultSessionLimit)
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 || n > maxSessionLimit {
			c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid limit", []global.ValidationError{
				{Field: "limit", Message: "limit must be between 1 and 100", Code: "invalid_value"},
			}))
			return
		}
		limit = n
	}

	records, err := h.sessions.RecentCheckoutSessions(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list checkout sessions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to get checkout sessions", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(records))
}
