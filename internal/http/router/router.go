package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pontual-runner/internal/http/handlers"
	appmw "pontual-runner/internal/http/middleware"
	"pontual-runner/internal/http/middleware/ratelimit"
	"pontual-runner/internal/logx"
)

// New constructs a chi-based http.Handler with base middleware and routes.
func New(
	logger logx.Logger,
	h *handlers.Handlers,
	myRoute *handlers.MyRouteHandler,
	dispatch *handlers.DispatchHandler,
	rl *ratelimit.Middleware,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(appmw.Observability(logger))
	r.Use(rl.Handler())
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/ping", h.Ping)
	r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(h.HealthcheckHead))
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/routes/available", myRoute.Available)
	r.Route("/my-route", func(r chi.Router) {
		r.Get("/", myRoute.Get)
		r.Post("/assign", myRoute.Assign)
		r.Get("/progress", myRoute.Progress)
		r.Post("/points/{id}/complete", myRoute.CompletePoint)
		r.Post("/finish", myRoute.Finish)
	})

	r.Post("/routes/assign", dispatch.AssignRoute)
	r.Get("/drivers/{id}/routes", dispatch.DriverRoutes)
	r.Get("/deliveries/progress", dispatch.DeliveryProgress)

	r.NotFound(http.HandlerFunc(h.NotFound))

	return r
}
