package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aureliajewels/storefront-core/api/controllers"
	"github.com/aureliajewels/storefront-core/api/middleware"
	"github.com/aureliajewels/storefront-core/internal/cart"
	"github.com/aureliajewels/storefront-core/internal/catalog"
	"github.com/aureliajewels/storefront-core/internal/wishlist"
	"github.com/aureliajewels/storefront-core/pkg/config"
	"github.com/aureliajewels/storefront-core/pkg/logger"
	"github.com/aureliajewels/storefront-core/pkg/metrics"
	"github.com/aureliajewels/storefront-core/pkg/session"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	registry *prometheus.Registry,
	httpMetrics *metrics.HTTPMetrics,
	holder *session.Holder,
	catalogService *catalog.Service,
	cartStore *cart.Store,
	wishlistStore *wishlist.Store,
	readiness ...controllers.Pinger,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness...))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", controllers.CatalogList(catalogService, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(cartStore, logg))
			r.Post("/items", controllers.CartAdd(cartStore, logg))
			r.Patch("/items/{variantSKU}", controllers.CartUpdateQuantity(cartStore, logg))
			r.Delete("/items/{variantSKU}", controllers.CartRemove(cartStore, logg))
			r.Delete("/", controllers.CartClear(cartStore, logg))
			r.Post("/sync", controllers.CartSync(cartStore, logg))
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", controllers.WishlistFetch(wishlistStore, logg))
			r.Post("/items", controllers.WishlistAdd(wishlistStore, logg))
			r.Post("/toggle", controllers.WishlistToggle(wishlistStore, logg))
			r.Delete("/items/{productId}", controllers.WishlistRemove(wishlistStore, logg))
			r.Delete("/", controllers.WishlistClear(wishlistStore, logg))
			r.Post("/sync", controllers.WishlistSync(wishlistStore, logg))
		})

		r.Route("/session", func(r chi.Router) {
			r.Get("/", controllers.SessionInfo(holder, logg))
			r.Put("/", controllers.SessionStart(holder, logg, cartStore, wishlistStore))
			r.Delete("/", controllers.SessionEnd(holder, logg, cartStore, wishlistStore))
		})
	})

	return r
}
