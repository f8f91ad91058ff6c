package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "gopos/docs"
	"gopos/internal/api/customergroup"
	"gopos/internal/api/pricelist"
	"gopos/internal/api/pricing"
	"gopos/internal/api/product"
	"gopos/internal/api/stock"
	"gopos/internal/api/user"
	"gopos/internal/api/warehouse"
	"gopos/internal/domain"
	"gopos/internal/pkg/cache"
	"gopos/internal/pkg/logger"
	"gopos/internal/pkg/middleware"
)

// Handlers reúne os handlers já montados pelo main.
type Handlers struct {
	Pricing       *pricing.Handler
	PriceList     *pricelist.Handler
	CustomerGroup *customergroup.Handler
	Product       *product.Handler
	Warehouse     *warehouse.Handler
	Stock         *stock.Handler
	User          *user.Handler
}

// Options carrega a infraestrutura transversal do roteador.
type Options struct {
	Tokens          middleware.TokenService
	RateLimitCache  cache.Client
	RateLimit       int
	RateLimitWindow time.Duration
	Gatherer        prometheus.Gatherer
	Logger          logger.Logger
}

// NewRouter configura e retorna o roteador HTTP principal.
func NewRouter(h Handlers, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(opts.Logger))
	r.Use(chimw.Recoverer)

	r.Get("/ping", PingHandler)
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/v1", func(r chi.Router) {
		if opts.RateLimitCache != nil {
			r.Use(middleware.RateLimiter(opts.RateLimitCache, opts.RateLimit, opts.RateLimitWindow, opts.Logger))
		}

		r.Post("/users/register", h.User.RegisterUserHandler)
		r.Post("/users/login", h.User.LoginUserHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.NewAuthMiddleware(opts.Tokens))

			adminOnly := middleware.RequireRoles(domain.RoleAdmin)
			managers := middleware.RequireRoles(domain.RoleAdmin, domain.RoleManager)

			r.Get("/prices/resolve", h.Pricing.ResolvePriceHandler)
			r.Post("/prices/quote", h.Pricing.QuoteHandler)

			r.Route("/price-lists", func(r chi.Router) {
				r.Get("/", h.PriceList.ListPriceListsHandler)
				r.With(managers).Post("/", h.PriceList.CreatePriceListHandler)
				r.With(adminOnly).Post("/expire", h.PriceList.ExpireOverdueHandler)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.PriceList.GetPriceListHandler)

					r.Group(func(r chi.Router) {
						r.Use(managers)
						r.Patch("/", h.PriceList.UpdatePriceListHandler)
						r.Post("/retire", h.PriceList.RetirePriceListHandler)
						r.Post("/items", h.PriceList.AddItemHandler)
						r.Patch("/items/{itemID}", h.PriceList.UpdateItemHandler)
						r.Post("/items/{itemID}/deactivate", h.PriceList.DeactivateItemHandler)
					})
				})
			})

			r.Route("/customer-groups", func(r chi.Router) {
				r.Get("/", h.CustomerGroup.ListGroupsHandler)
				r.Get("/{id}", h.CustomerGroup.GetGroupHandler)
				r.With(adminOnly).Post("/", h.CustomerGroup.CreateGroupHandler)
				r.With(adminOnly).Patch("/{id}", h.CustomerGroup.UpdateGroupHandler)
			})

			r.Route("/products", func(r chi.Router) {
				r.Get("/", h.Product.GetProductsHandler)
				r.Get("/{id}", h.Product.GetProductByIDHandler)
				r.With(managers).Post("/", h.Product.CreateProductHandler)
				r.With(managers).Patch("/{id}", h.Product.UpdateProductHandler)
			})

			r.Route("/warehouses", func(r chi.Router) {
				r.Get("/", h.Warehouse.GetAllWarehousesHandler)
				r.Get("/{id}", h.Warehouse.GetWarehouseByIDHandler)
				r.With(adminOnly).Post("/", h.Warehouse.CreateWarehouseHandler)
				r.With(adminOnly).Put("/{id}", h.Warehouse.UpdateWarehouseHandler)
				r.With(adminOnly).Delete("/{id}", h.Warehouse.DeleteWarehouseHandler)
			})

			r.Get("/stock", h.Stock.GetStockLevelHandler)
			r.Post("/stock/adjust", h.Stock.AdjustStockHandler)
		})
	})

	return r
}

// PingHandler é o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
