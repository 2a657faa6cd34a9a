package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/freshcart/storefront/internal/domain/auth"
	"github.com/freshcart/storefront/internal/domain/cart"
	"github.com/freshcart/storefront/internal/domain/category"
	"github.com/freshcart/storefront/internal/domain/deal"
	"github.com/freshcart/storefront/internal/domain/product"
	"github.com/freshcart/storefront/internal/handler"
	"github.com/freshcart/storefront/internal/recordstore"
	"github.com/freshcart/storefront/internal/storage/cache"
	"github.com/freshcart/storefront/internal/storage/cartfile"
	"github.com/freshcart/storefront/internal/storage/cartredis"
	storestorage "github.com/freshcart/storefront/internal/storage/recordstore"
	"github.com/freshcart/storefront/pkg/health"
	"github.com/freshcart/storefront/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	client := recordstore.NewClient(recordstore.Config{
		BaseURL:   cfg.RecordStore.BaseURL,
		ProjectID: cfg.RecordStore.ProjectID,
		APIKey:    cfg.RecordStore.APIKey,
		Timeout:   cfg.RecordStore.Timeout,
	})

	// Shared Redis connection, opened only when something needs it.
	var redisClient *redis.Client
	if cfg.Cache.Enabled || cfg.Cart.Backend == "redis" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("recordstore", 5*time.Second, func(ctx context.Context) error {
		return client.Ping(ctx, "product")
	})
	if redisClient != nil {
		healthSvc.AddReadinessCheck("redis", 5*time.Second, func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Repositories, with the optional cache layered on top.
	productRepo := storestorage.NewProductRepository(client)
	var (
		products product.Repository = productRepo
		writer   product.Writer     = productRepo
	)
	if cfg.Cache.Enabled {
		cached := cache.NewProductCache(productRepo, productRepo, redisClient, cfg.Cache.TTL)
		products, writer = cached, cached
	}
	categoryRepo := storestorage.NewCategoryRepository(client)
	dealRepo := storestorage.NewDealRepository(client)

	// Cart persistence.
	var persister cart.Persister
	switch cfg.Cart.Backend {
	case "redis":
		persister = cartredis.New(redisClient, cfg.Cart.TTL)
	default:
		persister = cartfile.New(cfg.Cart.FilePath)
	}
	cartStore := cart.NewStore(zctx.Base(ctx, lg), persister, handler.CaptureNotifier{})

	// Domain services.
	categoryService := category.NewService(categoryRepo, products)
	dealService := deal.NewService(dealRepo, products)

	// Admin API keys.
	keys := auth.StaticRepository{}
	for _, hash := range cfg.Admin.KeyHashes {
		keys[hash] = auth.APIKeyInfo{KeyHash: hash}
	}
	security := handler.NewSecurity(keys, []byte(cfg.Admin.KeyPepper))

	h := handler.New(
		handler.Config{ImageBaseURL: cfg.ImageBaseURL},
		products,
		writer,
		categoryService,
		dealService,
		cartStore,
		security,
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", h.Routes())

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization", "X-API-Key"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("storefront-api"),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
