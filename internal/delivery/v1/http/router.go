package http

import (
	"net/http"

	"github.com/DRSN-tech/gym-ledger/internal/usecase"
	"github.com/DRSN-tech/gym-ledger/pkg/e"
	"github.com/DRSN-tech/gym-ledger/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// MetricsExporter считает HTTP-запросы и отдаёт /metrics.
type MetricsExporter interface {
	Middleware(next http.Handler) http.Handler
	Handler() http.Handler
}

type Router struct {
	router  *chi.Mux
	logger  logger.Logger
	metrics MetricsExporter
}

func NewRouter(router *chi.Mux, logger logger.Logger, metrics MetricsExporter) *Router {
	return &Router{router: router, logger: logger, metrics: metrics}
}

// Init регистрирует маршруты. rateLimit в формате ulule/limiter, например "300-M".
func (r *Router) Init(rateLimit string, ledgerUC usecase.LedgerUC, catalogUC usecase.CatalogUC, reportUC usecase.ReportUC) error {
	rate, err := limiter.NewRateFromFormatted(rateLimit)
	if err != nil {
		return e.Wrap("RATE_LIMIT", err)
	}
	limit := stdlib.NewMiddleware(limiter.New(memory.NewStore(), rate))

	r.router.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, r.metrics.Middleware)

	r.router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.router.Handle("/metrics", r.metrics.Handler())

	r.router.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(limit.Handler)

		purchases := NewPurchaseHandler(ledgerUC, r.logger)
		registerPurchaseRoutes(v1, purchases, NewReportHandler(reportUC, r.logger))
		registerReconciliationRoutes(v1, purchases)
		registerCatalogRoutes(v1, NewCatalogHandler(catalogUC, r.logger))
	})

	return nil
}

func registerPurchaseRoutes(router chi.Router, h *PurchaseHandler, reports *ReportHandler) {
	router.Route("/purchases", func(pr chi.Router) {
		pr.Get("/", h.list)
		pr.Post("/", h.record)
		pr.Get("/export", reports.export)
		pr.Post("/archive", reports.archive)
		pr.Put("/{id}", h.amend)
		pr.Post("/{id}/void", h.void)
		pr.Delete("/{id}", h.delete)
	})
}

func registerReconciliationRoutes(router chi.Router, h *PurchaseHandler) {
	router.Route("/reconciliations", func(rr chi.Router) {
		rr.Get("/", h.listReconciliations)
		rr.Post("/{id}/resolve", h.resolveReconciliation)
	})
}

func registerCatalogRoutes(router chi.Router, h *CatalogHandler) {
	router.Route("/products", func(pr chi.Router) {
		pr.Get("/", h.listProducts)
		pr.Post("/", h.createProduct)
		pr.Put("/{id}", h.updateProduct)
	})
	router.Route("/suppliers", func(sr chi.Router) {
		sr.Get("/", h.listSuppliers)
		sr.Post("/", h.createSupplier)
		sr.Put("/{id}", h.updateSupplier)
		sr.Delete("/{id}", h.deleteSupplier)
	})
	router.Route("/clients", func(cr chi.Router) {
		cr.Get("/", h.listClients)
		cr.Post("/", h.createClient)
		cr.Put("/{id}", h.updateClient)
		cr.Delete("/{id}", h.deleteClient)
	})
}
