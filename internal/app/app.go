// Package app wires configuration into a ready engine for every entry
// point.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"julianmorley.ca/con-plar/storefront-checkout/internal/router"
	"julianmorley.ca/con-plar/storefront-checkout/pkg/checkout"
	"julianmorley.ca/con-plar/storefront-checkout/pkg/global"
	"julianmorley.ca/con-plar/storefront-checkout/pkg/mongo"
	"julianmorley.ca/con-plar/storefront-checkout/pkg/payment"
	"julianmorley.ca/con-plar/storefront-checkout/pkg/redis"
)

const catalogConnectTimeout = 10 * time.Second

// NewLogger returns a production logger when cfg says so and a
// development logger otherwise.
func NewLogger(cfg *global.Config) (*zap.Logger, error) {
	if cfg != nil && cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// Build assembles the checkout service and the optional catalog. The
// catalog is best effort: an unreachable database or cache is logged and
// checkout is served without it. The returned cleanup releases database
// and cache connections.
func Build(ctx context.Context, cfg *global.Config, logger *zap.Logger) (*gin.Engine, func(), error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	provider := payment.NewStripeProvider(cfg.StripeSecretKey, payment.StripeOptions{APIURL: cfg.StripeAPIURL})
	svc := checkout.NewService(provider, checkout.Options{
		AllowedPriceIDs:   cfg.AllowedPriceIDs,
		ClientURL:         cfg.ClientURL,
		ReturnPath:        cfg.ReturnPath,
		ShippingCountries: cfg.ShippingCountries,
		ShippingRateID:    cfg.ShippingRateID,
		ProviderTimeout:   cfg.ProviderTimeout,
	}, logger.Named("checkout"))
	handler := router.NewHandler(svc, logger.Named("http"))

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if len(cfg.AllowedPriceIDs) == 0 {
		logger.Warn("ALLOWED_PRICE_IDS is empty; any price ID will be sent to the provider")
	}

	if cfg.MongoURI != "" {
		store, err := connectCatalog(ctx, cfg, logger)
		if err != nil {
			logger.Warn("MongoDB unavailable, serving checkout without catalog or session log",
				zap.String("database", cfg.MongoDatabase), zap.Error(err))
		} else {
			closers = append(closers, func() {
				closeCtx, cancel := global.GetDefaultTimer()
				defer cancel()
				if err := store.Close(closeCtx); err != nil {
					logger.Warn("failed to disconnect MongoDB", zap.Error(err))
				}
			})
			svc.WithRecorder(store)
			handler.WithCatalog(store, connectCache(ctx, cfg, logger, &closers)).WithSessionLog(store)
		}
	} else if cfg.RedisAddress != "" {
		logger.Warn("REDIS_ADDRESS is set without MONGODB_URI; catalog cache disabled")
	}

	return router.New(cfg, handler, logger.Named("http")), cleanup, nil
}

// connectCatalog opens the catalog database and its indexes. Callers
// treat a failure as "no catalog": checkout never depends on it.
func connectCatalog(ctx context.Context, cfg *global.Config, logger *zap.Logger) (*mongo.Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, catalogConnectTimeout)
	defer cancel()

	store, err := mongo.Connect(connectCtx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}

	names, err := store.EnsureIndexes(connectCtx)
	if err != nil {
		_ = store.Close(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}
	logger.Info("MongoDB connected", zap.String("database", cfg.MongoDatabase), zap.Strings("indexes", names))
	return store, nil
}

// connectCache returns nil when Redis is not configured or unreachable.
func connectCache(ctx context.Context, cfg *global.Config, logger *zap.Logger, closers *[]func()) router.ProductCache {
	if cfg.RedisAddress == "" {
		return nil
	}

	productCache := redis.NewProductCache(redis.NewClient(cfg.RedisAddress, cfg.RedisPassword))
	if err := productCache.Ping(ctx); err != nil {
		logger.Warn("Redis unavailable, serving catalog without cache", zap.String("address", cfg.RedisAddress), zap.Error(err))
		_ = productCache.Close()
		return nil
	}

	logger.Info("Redis connected", zap.String("address", cfg.RedisAddress))
	*closers = append(*closers, func() { _ = productCache.Close() })
	return productCache
}
