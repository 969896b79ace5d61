package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stackmart/storefront-backend/api/controllers"
	cartcontrollers "github.com/stackmart/storefront-backend/api/controllers/cart"
	"github.com/stackmart/storefront-backend/api/middleware"
	cartsvc "github.com/stackmart/storefront-backend/internal/cart"
	catalogsvc "github.com/stackmart/storefront-backend/internal/catalog"
	checkoutsvc "github.com/stackmart/storefront-backend/internal/checkout"
	"github.com/stackmart/storefront-backend/pkg/config"
	"github.com/stackmart/storefront-backend/pkg/db"
	"github.com/stackmart/storefront-backend/pkg/logger"
	"github.com/stackmart/storefront-backend/pkg/metrics"
	"github.com/stackmart/storefront-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	httpMetrics *metrics.HTTPMetrics,
	catalogService catalogsvc.Service,
	cartService cartsvc.Service,
	checkoutService checkoutsvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(catalogService, logg))
			r.Get("/categories", controllers.ProductCategories(catalogService, logg))
			r.Get("/{productID}", controllers.ProductDetail(catalogService, logg))
			r.Get("/{productID}/availability", controllers.ProductAvailability(catalogService, logg))
		})

		r.Route("/admin/products", func(r chi.Router) {
			r.Post("/", controllers.AdminCreateProduct(catalogService, logg))
			r.Post("/{productID}/stock", controllers.AdminAdjustStock(catalogService, logg))
			r.Delete("/{productID}", controllers.AdminDeleteProduct(catalogService, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(middleware.OwnerIdentity(cfg.JWT, logg))
			r.Post("/", cartcontrollers.CreateCart(cartService, logg))
			r.Route("/{cartID}", func(r chi.Router) {
				r.Get("/", cartcontrollers.FetchCart(cartService, logg))
				r.Post("/items", cartcontrollers.AddItem(cartService, logg))
				r.Put("/items/{productID}", cartcontrollers.UpdateItem(cartService, logg))
				r.Delete("/items/{productID}", cartcontrollers.RemoveItem(cartService, logg))
				r.Post("/clear", cartcontrollers.ClearCart(cartService, logg))
				r.Get("/validate", cartcontrollers.ValidateCart(checkoutService, logg))
			})
		})
	})

	return r
}
