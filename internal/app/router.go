package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/mizan-erp/mizan/internal/coa"
	"github.com/mizan-erp/mizan/internal/interunit"
	"github.com/mizan-erp/mizan/internal/observability"
	"github.com/mizan-erp/mizan/internal/org"
	"github.com/mizan-erp/mizan/internal/shared"
	"github.com/mizan-erp/mizan/jobs"
)

// RouterDeps carries everything the HTTP surface needs.
type RouterDeps struct {
	Logger  *slog.Logger
	Config  *Config
	DB      *pgxpool.Pool
	Redis   *redis.Client
	Store   *org.Store
	Jobs    *jobs.Handler
	Metrics *observability.Metrics
}

// NewRouter wires repositories, services, and handlers onto one chi mux.
func NewRouter(deps RouterDeps) http.Handler {
	entityRepo := org.NewRepository(deps.DB)
	accountRepo := coa.NewRepository(deps.DB)
	transferRepo := interunit.NewRepository(deps.DB)

	selections := org.NewSelectionStore(deps.Redis, deps.Config.SelectionTTL)
	sequence := interunit.NewSequence(deps.Redis)

	entityService := org.NewService(entityRepo, accountRepo, deps.Store)
	accountService := coa.NewService(accountRepo, deps.Store)
	transferService := interunit.NewService(transferRepo, accountRepo, deps.Store, sequence, deps.Logger, deps.Config.BaseCurrency)

	entityHandler := org.NewHandler(deps.Logger, entityService, deps.Store, selections)
	accountHandler := coa.NewHandler(deps.Logger, accountService)
	transferHandler := interunit.NewHandler(deps.Logger, transferService)

	r := chi.NewRouter()
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}
	for _, mw := range MiddlewareStack(MiddlewareConfig{Logger: deps.Logger, Config: deps.Config}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/entities", entityHandler.MountRoutes)
		r.Route("/accounts", accountHandler.MountRoutes)
		r.Route("/interunit", transferHandler.MountRoutes)
		if deps.Jobs != nil {
			r.Route("/jobs", deps.Jobs.MountRoutes)
		}
	})
	return r
}
