package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/storefront-api/internal/application/auth"
	"github.com/storefront-api/internal/application/category"
	"github.com/storefront-api/internal/application/order"
	"github.com/storefront-api/internal/application/product"
	"github.com/storefront-api/internal/application/session"
	"github.com/storefront-api/internal/application/user"
	"github.com/storefront-api/internal/config"
	"github.com/storefront-api/internal/domain"
	"github.com/storefront-api/internal/infrastructure/dynamo"
	googleinfra "github.com/storefront-api/internal/infrastructure/google"
	jwtinfra "github.com/storefront-api/internal/infrastructure/jwt"
	s3infra "github.com/storefront-api/internal/infrastructure/s3"
	"github.com/storefront-api/internal/infrastructure/sns"
	"github.com/storefront-api/internal/transport/http/handler"
	appmiddleware "github.com/storefront-api/internal/transport/http/middleware"
	"github.com/storefront-api/internal/verification"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo       *dynamo.UserRepo
	SessionRepo    *dynamo.SessionRepo
	ProductRepo    *dynamo.ProductRepo
	CategoryRepo   *dynamo.CategoryRepo
	OrderRepo      *dynamo.OrderRepo
	ImageStore     *s3infra.ImageStore
	Codes          *verification.Service
	OrderPublisher sns.OrderPublisher
	JWTProvider    *jwtinfra.Provider
	GoogleVerifier *googleinfra.Verifier
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10, applied to code issuance and other
	// sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	authDeps := auth.ServiceDeps{
		Codes:           deps.Codes,
		UserRepo:        deps.UserRepo,
		SessionRepo:     deps.SessionRepo,
		JWTProvider:     deps.JWTProvider,
		PendingTTL:      cfg.VerificationTTL,
		RefreshTokenDur: cfg.RefreshTokenDur,
	}
	if deps.GoogleVerifier != nil {
		authDeps.Google = deps.GoogleVerifier
	}
	authSvc := auth.NewService(authDeps)
	sessionSvc := session.NewService(deps.SessionRepo, deps.UserRepo, deps.JWTProvider, cfg.RefreshTokenDur)
	userSvc := user.NewService(deps.UserRepo, deps.SessionRepo)
	productSvc := product.NewService(deps.ProductRepo, deps.CategoryRepo, deps.ImageStore)
	categorySvc := category.NewService(deps.CategoryRepo)
	orderSvc := order.NewService(deps.OrderRepo, deps.ProductRepo, deps.OrderPublisher, cfg.PaymentDelay)

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc)
	sessionH := handler.NewSessionHandler(sessionSvc)
	userH := handler.NewUserHandler(userSvc)
	productH := handler.NewProductHandler(productSvc)
	categoryH := handler.NewCategoryHandler(categorySvc)
	orderH := handler.NewOrderHandler(orderSvc)
	emailH := handler.NewEmailConfirmHandler(authSvc)
	pwChangeH := handler.NewPasswordChangeHandler(authSvc)
	pwRecoveryH := handler.NewPasswordRecoveryHandler(authSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)

		r.With(sensitiveRL.Limit).Post("/users", authH.Register)
		r.With(sensitiveRL.Limit).Post("/sessions/login", authH.Login)
		r.With(sensitiveRL.Limit).Post("/sessions/google", authH.LoginGoogle)
		r.Post("/sessions/refresh", sessionH.Refresh)
		r.With(sensitiveRL.Limit).Post("/confirm-email/{action}", emailH.Action)
		r.With(sensitiveRL.Limit).Post("/password-recovery/{action}", pwRecoveryH.Action)

		// Storefront catalogue is browsable without an account.
		r.Get("/products", productH.List)
		r.Get("/products/{id}", productH.Get)
		r.Get("/categories", categoryH.List)
		r.Get("/categories/{id}", categoryH.Get)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/sessions", sessionH.GetCurrent)
			r.Post("/sessions/logout", sessionH.Logout)

			r.Get("/users/{id}", userH.Get)
			r.Put("/users/{id}", userH.Update)

			r.With(sensitiveRL.Limit).Post("/password-change/{action}", pwChangeH.Action)

			r.Post("/orders", orderH.Checkout)
			r.Get("/orders", orderH.ListMine)
			r.Get("/orders/{id}", orderH.Get)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Get("/users", userH.List)
				r.Delete("/users/{id}", userH.Delete)

				r.Post("/products", productH.Create)
				r.Put("/products/{id}", productH.Update)
				r.Delete("/products/{id}", productH.Delete)
				r.Post("/products/{id}/images", productH.UploadImage)
				r.Post("/products/{id}/images/base64", productH.UploadImageBase64)

				r.Post("/categories", categoryH.Create)
				r.Put("/categories/{id}", categoryH.Update)
				r.Delete("/categories/{id}", categoryH.Delete)

				r.Get("/admin/orders", orderH.ListAll)
				r.Put("/orders/{id}/status", orderH.UpdateStatus)
			})
		})
	})

	return r
}
