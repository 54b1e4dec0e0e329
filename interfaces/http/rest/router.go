package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ProfAvery/flowy-servers/application/commands/bus"
	"github.com/ProfAvery/flowy-servers/application/ports"
	querybus "github.com/ProfAvery/flowy-servers/application/queries/bus"
	"github.com/ProfAvery/flowy-servers/interfaces/http/rest/handlers"
	"github.com/ProfAvery/flowy-servers/interfaces/http/rest/middleware"
	pkgerrors "github.com/ProfAvery/flowy-servers/pkg/errors"
	"github.com/ProfAvery/flowy-servers/pkg/observability"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

const readyTimeout = 2 * time.Second

// Options tunes the router
type Options struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	Debug          bool
}

// Router creates and configures the HTTP router
type Router struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	store      ports.KeyValueStore
	metrics    *observability.Collector
	opts       Options
	logger     *zap.Logger
}

// NewRouter creates a new router instance. metrics may be nil, in which case
// /_/metrics is not served.
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	store ports.KeyValueStore,
	metrics *observability.Collector,
	opts Options,
	logger *zap.Logger,
) *Router {
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	return &Router{
		commandBus: commandBus,
		queryBus:   queryBus,
		store:      store,
		metrics:    metrics,
		opts:       opts,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()
	errorHandler := pkgerrors.NewErrorHandler(rt.logger, rt.opts.Debug)

	// Global middleware
	router.Use(middleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.Logger(rt.logger))
	if rt.metrics != nil {
		router.Use(middleware.Metrics(rt.metrics))
	}
	router.Use(errorHandler.Middleware)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: rt.opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-API-Key", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	if rt.opts.RequestTimeout > 0 {
		router.Use(middleware.Timeout(rt.opts.RequestTimeout))
	}

	// Operational endpoints live under /_/ so they never shadow a node id
	router.Route("/_", func(r chi.Router) {
		r.Get("/health", rt.healthCheck)
		r.Get("/ready", rt.readinessCheck)
		if rt.metrics != nil {
			r.Method(http.MethodGet, "/metrics", rt.metrics.Handler())
		}
	})

	nodeHandler := handlers.NewNodeHandler(rt.commandBus, rt.queryBus, errorHandler, rt.opts.MaxBodyBytes, rt.logger)
	router.Post("/set", nodeHandler.SetNode)
	router.Get("/{id}", nodeHandler.GetNode)
	router.Delete("/{id}", nodeHandler.DeleteNode)

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	writeStatus(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// readinessCheck reports ready only while the store answers a ping
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), readyTimeout)
	defer cancel()

	if err := rt.store.Ping(ctx); err != nil {
		rt.logger.Warn("Readiness check failed", zap.Error(err))
		writeStatus(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeStatus(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeStatus(w http.ResponseWriter, status int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
