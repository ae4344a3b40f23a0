package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"example.com/storefront/app/internal/config"
	domcatalog "example.com/storefront/app/internal/domain/catalog"
	domcontent "example.com/storefront/app/internal/domain/content"
	domorder "example.com/storefront/app/internal/domain/order"
	rediscache "example.com/storefront/app/internal/infra/cache/redis"
	"example.com/storefront/app/internal/infra/messaging/rabbitmq"
	"example.com/storefront/app/internal/infra/persistence/mysql"
	"example.com/storefront/app/internal/infra/persistence/postgres"
	"example.com/storefront/app/internal/infra/security"
	"example.com/storefront/app/internal/infra/session"
	"example.com/storefront/app/internal/infra/storage/cloudinary"
	httpapi "example.com/storefront/app/internal/interface/http"
	"example.com/storefront/app/internal/logging"
	cartuc "example.com/storefront/app/internal/usecase/cart"
	cataloguc "example.com/storefront/app/internal/usecase/catalog"
	checkoutuc "example.com/storefront/app/internal/usecase/checkout"
	contentuc "example.com/storefront/app/internal/usecase/content"
	orderuc "example.com/storefront/app/internal/usecase/order"
)

const (
	sweepInterval   = time.Minute
	shutdownTimeout = 15 * time.Second
)

type stores struct {
	catalog domcatalog.Repository
	orders  domorder.Repository
	pages   domcontent.Repository
	close   func()
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.StoreDriver == config.DriverPostgres {
		pool, err := postgres.Open(ctx, cfg.PGDSN)
		if err != nil {
			return nil, err
		}
		return &stores{
			catalog: postgres.NewCatalogRepository(pool),
			orders:  postgres.NewOrderRepository(pool),
			pages:   postgres.NewContentRepository(pool),
			close:   pool.Close,
		}, nil
	}

	db, err := mysql.Open(ctx, cfg.MySQLDSN)
	if err != nil {
		return nil, err
	}
	return &stores{
		catalog: mysql.NewCatalogRepository(db),
		orders:  mysql.NewOrderRepository(db),
		pages:   mysql.NewContentRepository(db),
		close:   func() { _ = db.Close() },
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		logger.Fatal("open store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer st.close()
	logger.Info("store connected", zap.String("driver", cfg.StoreDriver))

	var cache cataloguc.Cache
	if cfg.RedisURL != "" {
		client, err := rediscache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("redis unavailable, running without catalog cache", zap.Error(err))
		} else {
			defer func() { _ = client.Close() }()
			cache = rediscache.NewCatalogCache(client, cfg.CatalogCacheTTL)
		}
	}

	var uploader cataloguc.ImageUploader
	if cfg.CloudinaryURL != "" {
		u, err := cloudinary.NewUploader(cfg.CloudinaryURL)
		if err != nil {
			logger.Warn("cloudinary unavailable, image uploads disabled", zap.Error(err))
		} else {
			uploader = u
		}
	}

	var notifier checkoutuc.Notifier
	if cfg.RabbitMQURL != "" {
		pool, err := rabbitmq.NewChannelPool(cfg.RabbitMQURL, cfg.RabbitMQQueue, cfg.ChannelPoolSize, logger)
		if err != nil {
			logger.Warn("rabbitmq unavailable, order notifications disabled", zap.Error(err))
		} else {
			defer pool.Close()
			notifier = rabbitmq.NewPublisher(pool, cfg.RabbitMQQueue)
		}
	}

	carts := session.NewMemoryStore(cfg.SessionTTL, logger)
	go carts.Run(ctx, sweepInterval)

	catalogSvc := cataloguc.NewService(st.catalog, cache, uploader, logger)
	api := httpapi.NewAPI(httpapi.Dependencies{
		CatalogService:  catalogSvc,
		CartService:     cartuc.NewService(carts, catalogSvc, logger),
		CheckoutService: checkoutuc.NewService(carts, catalogSvc, st.orders, notifier, cfg.SubmitTimeout, logger),
		OrderService:    orderuc.NewService(st.orders, logger),
		ContentService:  contentuc.NewService(st.pages),
		SessionTokens:   security.NewSessionTokens(cfg.SessionSecret, cfg.SessionTTL),
		Logger:          logger,
		MaxUploadSize:   cfg.MaxUploadSize,
	})

	servers := []*http.Server{
		newServer(":"+cfg.Port, api.Router()),
		newServer(cfg.AdminAddr, api.AdminRouter()),
	}

	errc := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv *http.Server) {
			logger.Info("listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- err
			}
		}(srv)
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errc:
		logger.Error("server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", zap.String("addr", srv.Addr), zap.Error(err))
		}
	}
	logger.Info("stopped")
}

func newServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
