package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"julianmorley.ca/con-plar/storefront-checkout/pkg/global"
)

const (
	CheckoutPath        = "/create-checkout-session"
	NetlifyCheckoutPath = "/.netlify/functions/create-checkout-session"
)

// New builds the engine shared by every entry point. Origins not in
// cfg.AllowedOrigins are refused by the CORS middleware with a 403.
func New(cfg *global.Config, h *Handler, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(RequestLogger(logger))

	router.Use(cors.New(cors.Config{
		AllowOrigins:              cfg.AllowedOrigins,
		AllowMethods:              []string{"POST", "OPTIONS"},
		AllowHeaders:              []string{"Content-Type"},
		ExposeHeaders:             []string{RequestIDHeader},
		MaxAge:                    12 * time.Hour,
		OptionsResponseStatusCode: 200,
	}))

	InitializeRoutes(router, h, cfg.AdminTokenHash)
	return router
}

// InitializeRoutes registers checkout, the read-only catalog when a
// store is configured, and the operator routes when adminTokenHash is
// also set.
func InitializeRoutes(router *gin.Engine, h *Handler, adminTokenHash string) {
	router.Any(CheckoutPath, h.CreateCheckoutSession)
	router.Any(NetlifyCheckoutPath, h.CreateCheckoutSession)

	api := router.Group("/api")
	{
		api.GET("/health", h.HealthCheck)

		if h.products != nil {
			products := api.Group("/products")
			{
				products.GET("", h.GetAllProducts)
				products.GET("/:priceId", h.GetProductByPriceID)
			}

			if adminTokenHash != "" {
				admin := api.Group("/admin")
				admin.Use(AdminAuth(adminTokenHash))
				{
					admin.POST("/products", h.UpsertProducts)
					if h.sessions != nil {
						admin.GET("/checkout-sessions", h.GetRecentCheckoutSessions)
					}
				}
			}
		}
	}
}
