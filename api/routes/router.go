package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/grengcry/cart-service/api/controllers"
	"github.com/grengcry/cart-service/api/middleware"
	"github.com/grengcry/cart-service/internal/cart"
	checkoutsvc "github.com/grengcry/cart-service/internal/checkout"
	"github.com/grengcry/cart-service/pkg/config"
	"github.com/grengcry/cart-service/pkg/logger"
)

// RouterParams carries everything the HTTP surface depends on.
type RouterParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	Cart     cart.Service
	Checkout checkoutsvc.Service
	Products cart.ProductLoader
	Health   map[string]controllers.Pinger
	Registry *prometheus.Registry
}

func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(params.Logger),
		middleware.RequestID(params.Logger),
		middleware.Logging(params.Logger),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(params.Config))
		r.Get("/ready", controllers.HealthReady(params.Config, params.Logger, params.Health))
	})

	if params.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(params.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session(params.Logger))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(params.Cart, params.Logger))
			r.Delete("/", controllers.CartClear(params.Cart, params.Logger))
			r.Post("/items", controllers.CartAddItem(params.Cart, params.Logger))
			r.Post("/items/decrement", controllers.CartDecrementItem(params.Cart, params.Logger))
			r.Delete("/items", controllers.CartRemoveItem(params.Cart, params.Logger))
		})

		r.Post("/checkout", controllers.Checkout(params.Checkout, params.Logger))
		r.Get("/products/{id}/options", controllers.ProductOptions(params.Products, params.Logger))
	})

	return r
}
