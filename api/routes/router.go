package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	cartcontrollers "github.com/angelmondragon/storefront-backend/api/controllers/cart"
	ordercontrollers "github.com/angelmondragon/storefront-backend/api/controllers/orders"
	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/address"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	checkoutsvc "github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

// Dependencies are the collaborators the HTTP surface dispatches to. Nil services
// answer INTERNAL_ERROR; nil redis collaborators disable idempotency and rate limiting.
type Dependencies struct {
	Config *config.Config
	Logger *logger.Logger

	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics

	DB          controllers.Pinger
	Redis       controllers.Pinger
	Idempotency redis.IdempotencyStore
	RateLimiter redis.RateLimiter

	Checkout  checkoutsvc.Service
	Orders    orders.Service
	Cart      cart.Service
	Addresses address.Service
	Coupons   controllers.CouponChecker
	Shipping  controllers.ShippingMethodLister
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
		deps.HTTPMetrics.Middleware,
		routeSpanName,
	)

	idempotent := middleware.Idempotency(deps.Idempotency, cfg.Checkout.IdempotencyTTL, logg)
	checkoutLimit := middleware.RateLimit(middleware.RateLimitPolicy{
		Name:   "checkout",
		Limit:  cfg.Checkout.RateLimitPerUser,
		Window: cfg.Checkout.RateLimitWindow,
	}, deps.RateLimiter, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    deps.DB,
			"redis": deps.Redis,
		}))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	r.Route("/api/v1", func(r chi.Router) {
		// public
		r.Get("/shipping-methods", controllers.ShippingMethods(deps.Shipping, logg))
		r.Get("/orders/track/{orderNumber}", ordercontrollers.Track(deps.Orders, logg))

		// carts are reachable by a bearer token or an anonymous X-Session-Id
		r.Route("/cart", func(r chi.Router) {
			r.Use(middleware.OptionalAuth(cfg.JWT, logg))
			r.Get("/", cartcontrollers.CartFetch(deps.Cart, logg))
			r.Delete("/", cartcontrollers.CartClear(deps.Cart, logg))
			r.With(idempotent).Post("/items", cartcontrollers.CartAddItem(deps.Cart, logg))
			r.Patch("/items/{itemId}", cartcontrollers.CartUpdateItem(deps.Cart, logg))
			r.Delete("/items/{itemId}", cartcontrollers.CartRemoveItem(deps.Cart, logg))
			r.With(idempotent).Post("/merge", cartcontrollers.CartMerge(deps.Cart, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.With(checkoutLimit, idempotent).Post("/orders", ordercontrollers.PlaceOrder(deps.Checkout, logg))
			r.Get("/orders", ordercontrollers.List(deps.Orders, logg))
			r.Get("/orders/{id}", ordercontrollers.Detail(deps.Orders, logg))
			r.With(idempotent).Post("/orders/{id}/cancel", ordercontrollers.Cancel(deps.Orders, logg))

			r.Post("/coupons/validate", controllers.CouponValidate(deps.Coupons, deps.Cart, logg))

			r.Get("/addresses", controllers.AddressList(deps.Addresses, logg))
			r.With(idempotent).Post("/addresses", controllers.AddressCreate(deps.Addresses, logg))
			r.Put("/addresses/{id}/default", controllers.AddressSetDefault(deps.Addresses, logg))

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))
				r.With(idempotent).Patch("/orders/{id}/status", ordercontrollers.AdminUpdateStatus(deps.Orders, logg))
				r.With(idempotent).Post("/orders/{id}/mark-paid", ordercontrollers.AdminMarkPaid(deps.Orders, logg))
			})
		})
	})

	return otelhttp.NewHandler(r, "http.server",
		otelhttp.WithFilter(func(req *http.Request) bool {
			return req.URL.Path != "/metrics" && req.URL.Path != "/health/live"
		}),
	)
}

// routeSpanName renames the server span to the matched chi pattern once routing is done.
func routeSpanName(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		span := trace.SpanFromContext(r.Context())
		if !span.IsRecording() {
			return
		}
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				span.SetName(r.Method + " " + pattern)
				span.SetAttributes(attribute.String("http.route", pattern))
			}
		}
	})
}
