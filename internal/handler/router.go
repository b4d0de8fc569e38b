package handler

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/BigazyGalym/Diplom/internal/middleware"
	"github.com/BigazyGalym/Diplom/internal/model"
)

// RouterConfig collects everything the HTTP surface is built from.
type RouterConfig struct {
	Logger *slog.Logger

	Root    *Handler
	Health  *HealthHandler
	Metrics *MetricsHandler
	Ledger  *LedgerHandler
	Finance *FinanceHandler
	Users   *UserHandler
	APIKeys *APIKeyHandler

	Auth          middleware.AuthConfig
	RateLimit     middleware.RateLimitConfig
	RegisterLimit middleware.RateLimitConfig
	Security      middleware.SecurityConfig
	CORS          middleware.CORSConfig
	MaxBodyBytes  int64
	// Verbose prints recovered panic stacks to stderr.
	Verbose bool
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger, cfg.Verbose))
	r.Use(middleware.Security(cfg.Security))
	r.Use(middleware.CORS(cfg.CORS))
	if cfg.MaxBodyBytes > 0 {
		r.Use(middleware.MaxBodySize(cfg.MaxBodyBytes))
	}

	r.Get("/healthz", cfg.Health.Healthz)
	r.Get("/readyz", cfg.Health.Readyz)
	r.Get("/metrics", cfg.Metrics.Metrics)
	r.Get("/", cfg.Root.Root)

	r.Route("/api/v1", func(r chi.Router) {
		r.With(middleware.RateLimitIP(cfg.RegisterLimit)).Post("/register", cfg.Users.Register)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.Auth))
			r.Use(middleware.RateLimitAPI(cfg.RateLimit))

			r.With(middleware.RequireRead()).Get("/finance", cfg.Finance.Summary)

			r.Route("/wallets", func(r chi.Router) {
				r.With(middleware.RequireRead()).Get("/", cfg.Ledger.ListWallets)
				r.With(middleware.RequireWrite()).Post("/", cfg.Ledger.CreateWallet)
			})
			r.With(middleware.RequireWrite()).Post("/transactions", cfg.Ledger.CreateTransaction)
			r.Route("/budgets", func(r chi.Router) {
				r.With(middleware.RequireRead()).Get("/", cfg.Ledger.ListBudgets)
				r.With(middleware.RequireWrite()).Post("/", cfg.Ledger.CreateBudget)
			})
			r.Route("/debts", func(r chi.Router) {
				r.With(middleware.RequireRead()).Get("/", cfg.Ledger.ListDebts)
				r.With(middleware.RequireWrite()).Post("/", cfg.Ledger.CreateDebt)
			})

			r.Route("/user", func(r chi.Router) {
				r.With(middleware.RequireRead()).Get("/", cfg.Users.GetProfile)
				r.With(middleware.RequireWrite()).Patch("/", cfg.Users.UpdateProfile)
			})

			// Key management needs write; the service stops a key from
			// granting scopes it does not hold.
			manage := middleware.RequireScope(model.ScopeWrite, model.ScopeAdmin)
			r.Route("/api-keys", func(r chi.Router) {
				r.With(middleware.RequireRead()).Get("/", cfg.APIKeys.List)
				r.With(manage).Post("/", cfg.APIKeys.Create)
				r.With(manage).Delete("/{key_id}", cfg.APIKeys.Revoke)
			})
			// Any valid key may revoke itself.
			r.Post("/logout", cfg.APIKeys.Logout)
		})
	})

	r.NotFound(cfg.Root.NotFound)
	r.MethodNotAllowed(cfg.Root.MethodNotAllowed)

	return r
}
