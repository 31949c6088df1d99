package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/terragrow/storefront/cache"
	"github.com/terragrow/storefront/config"
	"github.com/terragrow/storefront/database"
	"github.com/terragrow/storefront/dto"
	"github.com/terragrow/storefront/logger"
	"github.com/terragrow/storefront/mailer"
	"github.com/terragrow/storefront/metrics"
	"github.com/terragrow/storefront/repository"
	"github.com/terragrow/storefront/routes"
	"github.com/terragrow/storefront/services"
	"github.com/terragrow/storefront/storage"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: cfg.App.ServiceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "storefront api stopped", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := dto.RegisterValidators(v); err != nil {
			return err
		}
	}

	bootCtx, cancel := context.WithTimeout(ctx, cfg.Mongo.ConnTimeout)
	defer cancel()

	db, err := database.Database(bootCtx, cfg.Mongo)
	if err != nil {
		return err
	}
	if err := database.EnsureIndexes(bootCtx, db); err != nil {
		return err
	}

	users := repository.NewUserRepository(db)
	if created, err := users.SeedAdmin(bootCtx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		return err
	} else if created {
		logg.Info(logg.WithField(ctx, "email", cfg.Admin.Email), "admin user seeded")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var (
		views   cache.ViewCache   = cache.Disabled{}
		limiter cache.RateLimiter = cache.Disabled{}
		redis   *cache.Client
	)
	if cfg.Redis.Enabled() {
		redis, err = cache.New(bootCtx, cfg.Redis)
		if err != nil {
			return err
		}
		views = cache.NewViews(redis, cfg.Redis.ViewCacheTTL, m)
		limiter = redis
	} else {
		logg.Warn(ctx, "REDIS_URL not set, view cache and rate limits disabled")
	}

	media, err := storage.New(bootCtx, cfg.Storage, cfg.Upload)
	if err != nil {
		return err
	}
	mail := mailer.New(cfg.Mail, logg)

	var (
		products      = repository.NewProductRepository(db)
		categories    = repository.NewCategoryRepository(db)
		cart          = repository.NewCartRepository(db)
		blogs         = repository.NewBlogRepository(db)
		orders        = repository.NewOrderRepository(db)
		returns       = repository.NewReturnRepository(db)
		notifications = repository.NewNotificationRepository(db)
	)

	catalog := services.NewCatalogService(products, categories, media, cfg.Upload.MaxProductImages, logg)
	router := routes.NewRouter(cfg, logg, routes.Services{
		Account:       services.NewAccountService(users, repository.NewRefreshTokenRepository(db), mail, limiter, cfg, logg),
		Users:         services.NewUserAdminService(users),
		Catalog:       catalog,
		Reviews:       services.NewReviewService(repository.NewReviewRepository(db), products, users),
		Blogs:         services.NewBlogService(blogs),
		Search:        services.NewSearchService(blogs, products, cfg.Query.SearchLimit, logg),
		Newsletter:    services.NewNewsletterService(repository.NewNewsletterRepository(db)),
		Wishlist:      services.NewWishlistService(users, products, views, logg),
		Cart:          services.NewCartService(cart, products),
		Orders:        services.NewOrderService(orders, cart, products, notifications, users, mail, logg),
		Returns:       services.NewReturnService(returns, repository.NewRefundRepository(db), orders, users, notifications, media, mail, logg),
		Notifications: services.NewNotificationService(notifications),
		Dashboard:     services.NewDashboardService(repository.NewCounter(db)),
	}, routes.Deps{
		Metrics: m,
		Limiter: limiter,
		Ping:    database.Ping,
	})

	addr := ":" + cfg.App.Port
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "addr": addr}), "starting storefront api")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case runErr = <-serveErr:
	case <-ctx.Done():
		logg.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	runErr = multierr.Append(runErr, server.Shutdown(shutdownCtx))
	if redis != nil {
		runErr = multierr.Append(runErr, redis.Close())
	}
	runErr = multierr.Append(runErr, database.Disconnect(shutdownCtx))
	return runErr
}
