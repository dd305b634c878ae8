package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "pet-health-tracker/docs"
	mem "pet-health-tracker/internal/adapters/storage/memory"
	"pet-health-tracker/internal/domain/tracker"
	"pet-health-tracker/internal/middleware"
	"pet-health-tracker/internal/platform/logger"
)

type Options struct {
	// Opcional: si no viene, arranca un tracker in-memory vacío (modo dev).
	Service *tracker.Service

	Logger logger.Logger // puede ser nil

	// Opcional: de dónde sale /metrics. nil => registry global.
	Metrics prometheus.Gatherer

	// Opcional: sin limiter no hay rate limiting.
	Limiter *middleware.IPRateLimiter
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLog(log))
	r.Use(middleware.Recover(log))
	if opts.Limiter != nil {
		r.Use(middleware.RateLimit(opts.Limiter))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	gatherer := opts.Metrics
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	svc := opts.Service
	if svc == nil {
		svc = tracker.NewService(mem.NewStateStore(), log)
	}

	tracker.RegisterRoutes(r, svc)

	return r
}
