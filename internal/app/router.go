package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vitrine-commerce/vitrine/internal/auth"
	"github.com/vitrine-commerce/vitrine/internal/clients"
	"github.com/vitrine-commerce/vitrine/internal/orders"
	"github.com/vitrine-commerce/vitrine/internal/products"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	AuthService     *auth.Service
	AuthHandler     *auth.Handler
	ClientsHandler  *clients.Handler
	ProductsHandler *products.Handler
	OrdersHandler   *orders.Handler
}

// NewRouter constructs the chi.Router with application defaults. Everything
// except registration and login sits behind bearer authentication.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Group(func(r chi.Router) {
		r.Use(params.AuthService.RequireAuth)
		r.Route("/clients", params.ClientsHandler.MountRoutes)
		r.Route("/products", params.ProductsHandler.MountRoutes)
		r.Route("/orders", params.OrdersHandler.MountRoutes)
	})

	return r
}
