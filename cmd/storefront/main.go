package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fjod/storefront/internal/cart"
	"github.com/fjod/storefront/internal/catalog"
	"github.com/fjod/storefront/internal/checkout"
	"github.com/fjod/storefront/internal/config"
	"github.com/fjod/storefront/internal/delivery"
	h "github.com/fjod/storefront/internal/http"
	"github.com/fjod/storefront/internal/orders"
	"github.com/fjod/storefront/internal/pkg/logger"
	"github.com/fjod/storefront/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	log := logger.New(os.Stdout, cfg.LogLevel, "storefront")
	slog.SetDefault(log)

	ctx := context.Background()

	store, closeStore, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open storage", slog.Any("error", err))
		os.Exit(1)
	}
	defer closeStore()

	source, closeCatalog, err := openCatalog(cfg, log)
	if err != nil {
		log.Error("failed to open catalog", slog.Any("error", err))
		os.Exit(1)
	}
	defer closeCatalog()
	loader := catalog.NewCachedLoader(source)

	registry := delivery.NewRegistry()
	cartStore := cart.NewStore(store, cfg.CartKey, registry, log)
	if err := cartStore.Load(ctx); err != nil {
		log.Error("failed to load cart", slog.Any("error", err))
		os.Exit(1)
	}
	orderStore := orders.NewStore(store, cfg.OrdersKey, log)
	if err := orderStore.Load(ctx); err != nil {
		log.Error("failed to load orders", slog.Any("error", err))
		os.Exit(1)
	}

	var publisher checkout.Publisher = checkout.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = checkout.NewKafkaPublisher(cfg.KafkaTopic, cfg.KafkaBrokers...)
		log.Info("publishing placed orders", slog.String("topic", cfg.KafkaTopic), slog.Any("brokers", cfg.KafkaBrokers))
	}
	defer publisher.Close()

	orch := checkout.NewOrchestrator(checkout.Options{
		Catalog:       loader,
		Delivery:      registry,
		Cart:          cartStore,
		Orders:        orderStore,
		Client:        checkout.NewHTTPOrderClient(cfg.OrderEndpoint, nil),
		Publisher:     publisher,
		SubmitTimeout: cfg.SubmitTimeout,
		Logger:        log,
	})

	router := h.NewRouter(h.Handlers{
		Products: h.NewProductHandler(loader, log),
		Cart:     h.NewCartHandler(cartStore, loader, log),
		Checkout: h.NewCheckoutHandler(orch, log),
		Orders:   h.NewOrdersHandler(orderStore, log),
	}, log, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("storefront starting", slog.String("port", cfg.HTTPPort),
			slog.String("storage", cfg.StorageBackend), slog.String("catalog", cfg.CatalogSource))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", slog.Any("error", err))
	}
	log.Info("server exited")
}

func openStorage(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.Store, func(), error) {
	switch cfg.StorageBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Info("connected to Redis", slog.String("addr", cfg.RedisAddr))
		return storage.NewRedisStore(client, cfg.RedisPrefix), func() { client.Close() }, nil

	case "mongo":
		db, err := storage.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, nil, err
		}
		log.Info("connected to MongoDB", slog.String("database", cfg.MongoDBName))
		return storage.NewMongoStore(db), func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := db.Client().Disconnect(dctx); err != nil {
				log.Error("failed to disconnect MongoDB", slog.Any("error", err))
			}
		}, nil

	case "postgres":
		cred := &storage.Credentials{
			Host:              cfg.Postgres.Host,
			Port:              cfg.Postgres.Port,
			User:              cfg.Postgres.User,
			Password:          cfg.Postgres.Password,
			DBName:            cfg.Postgres.DBName,
			MigrationsDirPath: cfg.Postgres.MigrationsPath,
		}
		pg, err := storage.NewPostgresStore(cred)
		if err != nil {
			return nil, nil, err
		}
		if err := pg.RunMigrations(cred); err != nil {
			pg.Close()
			return nil, nil, err
		}
		log.Info("connected to PostgreSQL", slog.String("database", cfg.Postgres.DBName))
		return pg, func() { pg.Close() }, nil

	default:
		return storage.NewMemoryStore(), func() {}, nil
	}
}

func openCatalog(cfg *config.Config, log *slog.Logger) (catalog.Loader, func(), error) {
	switch cfg.CatalogSource {
	case "http":
		log.Info("loading catalog over HTTP", slog.String("url", cfg.CatalogURL))
		return catalog.NewHTTPLoader(cfg.CatalogURL, nil), func() {}, nil

	case "sqlite":
		repo, err := catalog.NewSQLiteRepository(cfg.CatalogDBPath)
		if err != nil {
			return nil, nil, err
		}
		if err := repo.RunMigrations(cfg.CatalogMigrationsPath); err != nil {
			repo.Close()
			return nil, nil, err
		}
		log.Info("loading catalog from SQLite", slog.String("path", cfg.CatalogDBPath))
		return repo, func() { repo.Close() }, nil

	default:
		return catalog.NewStaticLoader(), func() {}, nil
	}
}
