package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/techstore/storefront-backend/api/controllers"
	"github.com/techstore/storefront-backend/api/routes"
	"github.com/techstore/storefront-backend/internal/auth"
	"github.com/techstore/storefront-backend/internal/cart"
	"github.com/techstore/storefront-backend/internal/catalog"
	"github.com/techstore/storefront-backend/internal/events"
	"github.com/techstore/storefront-backend/internal/gateway"
	"github.com/techstore/storefront-backend/internal/productform"
	"github.com/techstore/storefront-backend/internal/products"
	"github.com/techstore/storefront-backend/internal/users"
	"github.com/techstore/storefront-backend/pkg/auth/session"
	"github.com/techstore/storefront-backend/pkg/config"
	"github.com/techstore/storefront-backend/pkg/db"
	"github.com/techstore/storefront-backend/pkg/firestore"
	"github.com/techstore/storefront-backend/pkg/identity"
	"github.com/techstore/storefront-backend/pkg/instance"
	"github.com/techstore/storefront-backend/pkg/logger"
	"github.com/techstore/storefront-backend/pkg/metrics"
	"github.com/techstore/storefront-backend/pkg/migrate"
	"github.com/techstore/storefront-backend/pkg/pubsub"
	"github.com/techstore/storefront-backend/pkg/redis"
	"github.com/techstore/storefront-backend/pkg/storage/gcs"
)

const shutdownTimeout = 15 * time.Second

// documentStores is the persistence selected by STOREFRONT_DOCSTORE_DRIVER.
type documentStores struct {
	products    products.Store
	users       users.Store
	credentials *users.CredentialStore
	pinger      controllers.Pinger
	closer      io.Closer
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var closers []io.Closer
	defer func() {
		var errs error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = multierr.Append(errs, closers[i].Close())
		}
		if errs != nil {
			logg.Error(context.Background(), "error closing resources", errs)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	stores, err := openDocumentStores(ctx, cfg, logg)
	requireResource(ctx, logg, "document store", err)
	closers = append(closers, stores.closer)

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	closers = append(closers, redisClient)

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	requireResource(ctx, logg, "session manager", err)

	objects, err := gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
	requireResource(ctx, logg, "gcs", err)
	closers = append(closers, objects)

	readiness := map[string]controllers.Pinger{
		"docstore": stores.pinger,
		"redis":    redisClient,
		"gcs":      objects,
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.PubSub.Enabled() {
		psClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		requireResource(ctx, logg, "pubsub", err)
		closers = append(closers, psClient)
		readiness["pubsub"] = psClient

		pubsubPublisher, err := events.NewPubSubPublisher(psClient.CatalogPublisher(), logg)
		requireResource(ctx, logg, "catalog publisher", err)
		publisher = pubsubPublisher
	}

	provider, err := newIdentityProvider(cfg, stores, logg)
	requireResource(ctx, logg, "identity provider", err)

	gw := gateway.New(stores.products, objects, metrics.NewGatewayMetrics(registry), logg, gateway.Options{
		ImagePrefix: cfg.Media.ImagePrefix,
	})

	authService, err := auth.NewService(auth.ServiceParams{
		Provider:       provider,
		Users:          stores.users,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		AdminEmails:    cfg.Identity.AdminEmails,
		Logger:         logg,
	})
	requireResource(ctx, logg, "auth service", err)

	cartStore, err := cart.NewRedisStore(redisClient, cfg.Cart.TTL)
	requireResource(ctx, logg, "cart store", err)

	productService, err := productform.NewService(gw, publisher, productform.Limits{
		MaxImageBytes: cfg.Media.MaxImageBytes(),
		Categories:    cfg.Catalog.Categories,
	}, logg)
	requireResource(ctx, logg, "product form service", err)

	handler := routes.NewRouter(cfg, logg, registry, readiness, redisClient, sessionManager, routes.Services{
		Catalog:  catalog.NewService(gw, catalog.NewOptions(cfg.Catalog)),
		Cart:     cart.NewService(cartStore, gw),
		Auth:     authService,
		Products: productService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	serverCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.ID(),
		"docstore": cfg.DocStore.Normalized(),
		"identity": cfg.Identity.Normalized(),
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(serverCtx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(serverCtx, "api server stopped unexpectedly", err)
		}
	case <-ctx.Done():
		logg.Info(serverCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(serverCtx, "graceful shutdown failed", err)
		}
	}
}

func openDocumentStores(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*documentStores, error) {
	if cfg.DocStore.IsSQL() {
		dbClient, err := db.New(ctx, cfg.DocStore.Normalized(), cfg.DB, logg)
		if err != nil {
			return nil, err
		}
		if err := migrate.MaybeAutoRun(ctx, cfg, logg, dbClient); err != nil {
			return nil, multierr.Append(err, dbClient.Close())
		}
		return &documentStores{
			products:    products.NewSQLStore(dbClient.DB()),
			users:       users.NewSQLStore(dbClient.DB()),
			credentials: users.NewCredentialStore(dbClient.DB()),
			pinger:      dbClient,
			closer:      dbClient,
		}, nil
	}

	fsClient, err := firestore.New(ctx, cfg.GCP, cfg.Firestore, logg)
	if err != nil {
		return nil, err
	}
	return &documentStores{
		products: products.NewFirestoreStore(fsClient),
		users:    users.NewFirestoreStore(fsClient),
		pinger:   fsClient,
		closer:   fsClient,
	}, nil
}

func newIdentityProvider(cfg *config.Config, stores *documentStores, logg *logger.Logger) (identity.Provider, error) {
	if cfg.Identity.Normalized() == config.IdentityLocal {
		if stores.credentials == nil {
			return nil, errors.New("local identity requires a sql document store")
		}
		return auth.NewLocalProvider(stores.credentials, cfg.Password)
	}
	return identity.NewFirebaseClient(cfg.Identity, logg)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "resource not working: "+resource, err)
	os.Exit(1)
}
