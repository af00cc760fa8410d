package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/contratos/internal/auth"
	authHandler "github.com/MrJamesThe3rd/contratos/internal/http/auth"
	"github.com/MrJamesThe3rd/contratos/internal/http/contract"
	authMiddleware "github.com/MrJamesThe3rd/contratos/internal/http/middleware"
	"github.com/MrJamesThe3rd/contratos/internal/http/report"
	"github.com/MrJamesThe3rd/contratos/internal/http/supplier"
)

type Options struct {
	Tokens      *auth.Tokens
	CORSOrigins []string
	Timeout     time.Duration
}

func New(
	opts Options,
	authV1 *authHandler.Handler,
	contractsV1 *contract.Handler,
	reportV1 *report.Handler,
	suppliersV1 *supplier.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	if opts.Timeout > 0 {
		router.Use(middleware.Timeout(opts.Timeout))
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", authV1.Routes)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate(opts.Tokens))

			r.Route("/users", func(r chi.Router) {
				r.Use(authMiddleware.Require(auth.Role.CanManageUsers))
				r.Use(middleware.AllowContentType("application/json"))
				authV1.UserRoutes(r)
			})

			r.Route("/contracts", contractsV1.Routes)
			r.Group(reportV1.Routes)
			r.Route("/suppliers", suppliersV1.Routes)
			r.Route("/registry", suppliersV1.RegistryRoutes)
		})
	})

	return router
}
