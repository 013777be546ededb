package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"traders/internal/caching"
	"traders/internal/config"
	"traders/internal/handlers"
	"traders/internal/jobs"
	"traders/internal/middleware"
	"traders/internal/repositories"
	"traders/internal/services"
	"traders/pkg/database"
)

func newServeCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger, err := config.NewLogger(cfg.Log)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file (default $TRADERS_CONFIG)")
	return cmd
}

// serve wires the application and blocks until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if cfg.GeneratedSecret {
		logger.Warn("SESSION_SECRET not set, using a generated secret; sessions will not survive a restart")
	}

	pool, err := database.NewPool(ctx, cfg.Database.URL, cfg.Database.MaxConns, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	redisClient := caching.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	defer redisClient.Close()
	cache := caching.NewRedisCacheService(redisClient)

	images, err := services.NewMinioService(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL, cfg.Minio.Bucket)
	if err != nil {
		return err
	}
	if err := images.EnsureBucketExists(ctx); err != nil {
		logger.Warn("image bucket unavailable, product images disabled until it is reachable",
			zap.String("bucket", cfg.Minio.Bucket), zap.Error(err))
	}

	var drafts caching.DraftStore
	var sweeper jobs.DraftSweeper
	switch cfg.Drafts.Store {
	case config.DraftStoreMemory:
		store := caching.NewMemoryDraftStore(cfg.Drafts.TTL)
		drafts, sweeper = store, store
	default:
		drafts = caching.NewRedisDraftStore(redisClient, cfg.Drafts.TTL)
	}

	// Repositories
	customerRepo := repositories.NewCustomerRepo(pool)
	productRepo := repositories.NewProductRepo(pool)
	employeeRepo := repositories.NewEmployeeRepo(pool)
	shipperRepo := repositories.NewShipperRepo(pool)
	categoryRepo := repositories.NewCategoryRepo(pool)
	supplierRepo := repositories.NewSupplierRepo(pool)
	orderRepo := repositories.NewOrderRepo(pool)
	orderLineRepo := repositories.NewOrderLineRepo(pool)

	// Services
	catalogSvc := services.NewCatalogService(services.CatalogRepos{
		Customers:  customerRepo,
		Products:   productRepo,
		Employees:  employeeRepo,
		Shippers:   shipperRepo,
		Categories: categoryRepo,
		Suppliers:  supplierRepo,
		Orders:     orderRepo,
		OrderLines: orderLineRepo,
	}, cache, logger)
	productSvc := services.NewProductService(productRepo, categoryRepo, supplierRepo, images, cache, logger)
	draftSvc := services.NewDraftService(drafts, customerRepo, productRepo, employeeRepo, shipperRepo, time.Now, logger)
	commitSvc := services.NewOrderCommitService(drafts, customerRepo, employeeRepo, shipperRepo, productRepo, orderRepo, time.Now, logger)

	scheduler, err := jobs.NewScheduler(jobs.Config{
		SweepInterval:  cfg.Jobs.SweepInterval,
		WarmupInterval: cfg.Jobs.WarmupInterval,
	}, sweeper, catalogSvc, logger)
	if err != nil {
		return err
	}

	e, err := newServer(cfg, logger)
	if err != nil {
		return err
	}
	registerRoutes(e,
		handlers.NewCatalogHandlers(catalogSvc, logger),
		handlers.NewProductHandlers(productSvc, catalogSvc, logger),
		handlers.NewOrderHandlers(draftSvc, commitSvc, catalogSvc, time.Now, logger),
		handlers.NewHealthHandlers(pool, cache, images, version, logger),
	)

	scheduler.Start()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("traders server starting", zap.String("version", version), zap.String("addr", cfg.Addr()))
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		_ = scheduler.Stop()
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", zap.Error(err))
	}
	if err := scheduler.Stop(); err != nil {
		logger.Error("scheduler shutdown failed", zap.Error(err))
	}
	return nil
}

func newServer(cfg *config.Config, logger *zap.Logger) (*echo.Echo, error) {
	renderer, err := handlers.NewRenderer()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.HTTPErrorHandler = handlers.ErrorHandler(logger)

	// Global middleware
	e.Pre(echoMiddleware.RemoveTrailingSlash())
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.VersionHeader(version))
	e.Use(middleware.Sessions(middleware.SessionConfig{
		Secret: []byte(cfg.Session.Secret),
		TTL:    cfg.Session.TTL,
		Secure: cfg.Session.Secure,
	}))
	e.Use(echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if sid := middleware.SessionID(c); sid != "" {
				fields = append(fields, zap.String("session", sid))
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			logger.Info("request", fields...)
			return nil
		},
	}))
	return e, nil
}

func registerRoutes(e *echo.Echo, catalog *handlers.CatalogHandlers, products *handlers.ProductHandlers, orders *handlers.OrderHandlers, health *handlers.HealthHandlers) {
	// Health endpoints
	e.GET("/health", health.HealthCheck)
	e.GET("/health/ready", health.ReadinessCheck)
	e.GET("/health/live", health.LivenessCheck)

	e.GET("/", catalog.Home)
	e.GET("/customers", catalog.ListCustomers)
	e.GET("/customers/:id", catalog.CustomerDetail)
	e.GET("/products", catalog.ListProducts)
	e.GET("/products/:id", catalog.ProductDetail)

	// Product administration
	e.GET("/products/new", products.NewProduct)
	e.POST("/products", products.CreateProduct)
	e.GET("/products/:id/edit", products.EditProduct)
	e.POST("/products/:id", products.UpdateProduct)
	e.GET("/products/:id/image", products.Image)
	e.POST("/products/:id/image", products.UploadImage)
	e.POST("/products/:id/image/delete", products.DeleteImage)

	// Order wizard
	e.GET("/orders/create", orders.Create)
	e.GET("/orders/create/:customerId", orders.Create)
	e.POST("/orders/create", orders.Submit)
	e.GET("/orders/confirm", orders.ConfirmPage)
	e.POST("/orders/confirm", orders.Confirm)
	e.POST("/orders/cancel", orders.Cancel)
	e.GET("/orders/success/:orderId", orders.Success)
}
