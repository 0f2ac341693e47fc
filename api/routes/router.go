package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/techstore/storefront-backend/api/controllers"
	cartcontrollers "github.com/techstore/storefront-backend/api/controllers/cart"
	"github.com/techstore/storefront-backend/api/middleware"
	"github.com/techstore/storefront-backend/pkg/auth/session"
	"github.com/techstore/storefront-backend/pkg/config"
	"github.com/techstore/storefront-backend/pkg/enums"
	"github.com/techstore/storefront-backend/pkg/logger"
	"github.com/techstore/storefront-backend/pkg/metrics"
	"github.com/techstore/storefront-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Services groups the domain services mounted by the router.
type Services struct {
	Catalog  controllers.CatalogService
	Cart     cartcontrollers.Service
	Auth     controllers.AuthService
	Products controllers.ProductAdminService
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	registry *prometheus.Registry,
	readiness map[string]controllers.Pinger,
	redisClient *redis.Client,
	sessionManager sessionManager,
	svc Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, metrics.NewHTTPMetrics(registry)),
		middleware.CORS(cfg.CORS),
	)

	signInPolicy := middleware.NewAuthRateLimitPolicy(
		"signin",
		cfg.AuthRateLimit.SignInWindow,
		cfg.AuthRateLimit.SignInIPLimit,
		cfg.AuthRateLimit.SignInEmailLimit,
	)
	signUpPolicy := middleware.NewAuthRateLimitPolicy(
		"signup",
		cfg.AuthRateLimit.SignUpWindow,
		cfg.AuthRateLimit.SignUpIPLimit,
		cfg.AuthRateLimit.SignUpEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})
	if registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/catalog/options", controllers.CatalogOptions(svc.Catalog))
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductsList(svc.Catalog, logg))
			r.Get("/featured", controllers.ProductsFeatured(svc.Catalog, logg))
			r.Get("/{productId}", controllers.ProductDetail(svc.Catalog, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(middleware.CartSession(logg))
			r.Get("/", cartcontrollers.CartFetch(svc.Cart, logg))
			r.Delete("/", cartcontrollers.CartClear(svc.Cart, logg))
			r.Post("/items", cartcontrollers.CartAddItem(svc.Cart, logg))
			r.Patch("/items/{productId}", cartcontrollers.CartUpdateItem(svc.Cart, logg))
			r.Delete("/items/{productId}", cartcontrollers.CartRemoveItem(svc.Cart, logg))
		})

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(signUpPolicy, redisClient, logg)).Post("/signup", controllers.AuthSignUp(svc.Auth, logg))
			r.With(middleware.AuthRateLimit(signInPolicy, redisClient, logg)).Post("/signin", controllers.AuthSignIn(svc.Auth, logg))
			r.With(middleware.AuthRateLimit(signInPolicy, redisClient, logg)).Post("/signin/{provider}", controllers.AuthSignInProvider(svc.Auth, logg))
			r.Post("/password-strength", controllers.AuthPasswordStrength(logg))
			r.Post("/logout", controllers.AuthLogout(sessionManager, cfg.JWT, logg))
			r.Post("/refresh", controllers.AuthRefresh(sessionManager, cfg.JWT, logg))
		})
	})

	limits := controllers.UploadLimits{
		MaxImageBytes: cfg.Media.MaxImageBytes(),
		MaxFiles:      cfg.Media.MaxFiles,
	}
	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))
		r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.AdminProductsList(svc.Products, logg))
			r.Post("/", controllers.AdminProductCreate(svc.Products, limits, logg))
			r.Put("/{productId}", controllers.AdminProductUpdate(svc.Products, limits, logg))
			r.Delete("/{productId}", controllers.AdminProductDelete(svc.Products, logg))
		})
	})

	return r
}
