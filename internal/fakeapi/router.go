package fakeapi

import (
	"github.com/RoyceAzure/lab/storefront/internal/fakeapi/middleware"
	"github.com/RoyceAzure/lab/storefront/internal/fakeapi/ratelimit"
	"github.com/go-chi/chi/v5"
	chi_middleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type routerOptions struct {
	rateLimit ratelimit.Config
}

type RouterOption func(*routerOptions)

// WithRateLimit 限制 /api 下所有請求的速率
func WithRateLimit(config ratelimit.Config) RouterOption {
	return func(o *routerOptions) {
		o.rateLimit = config
	}
}

func SetupRouter(h *Handler, logger *zerolog.Logger, opts ...RouterOption) *chi.Mux {
	var o routerOptions
	for _, opt := range opts {
		opt(&o)
	}
	r := chi.NewRouter()

	// 全局中間件
	r.Use(middleware.RequestIdMiddleware)
	r.Use(chi_middleware.RealIP)
	r.Use(middleware.LoggerMiddleware(logger))
	r.Use(middleware.RecoverMiddleware(logger))

	r.Route("/api", func(r chi.Router) {
		r.Use(ratelimit.Middleware(o.rateLimit))
		r.Route("/products", func(r chi.Router) {
			r.Post("/", h.ListProducts)
			r.Get("/{id}", h.GetProduct)
		})
		r.Route("/users", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/addToCart", h.AddToCart)
			r.Post("/removeFromCart", h.RemoveFromCart)
			r.Post("/addToOrders", h.AddToOrders)
			r.Post("/myorders", h.MyOrders)
		})
	})
	return r
}

// New 建立完整的 fake api router
func New(catalog *Catalog, logger *zerolog.Logger, opts ...RouterOption) *chi.Mux {
	return SetupRouter(NewHandler(catalog, NewUserStore(catalog)), logger, opts...)
}
