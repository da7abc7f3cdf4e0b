package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tru-distribution/orderdesk-backend/api/controllers"
	"github.com/tru-distribution/orderdesk-backend/api/middleware"
	"github.com/tru-distribution/orderdesk-backend/internal/orders"
	"github.com/tru-distribution/orderdesk-backend/pkg/config"
	"github.com/tru-distribution/orderdesk-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbPinger controllers.Pinger,
	redisPinger controllers.Pinger,
	importRunner controllers.ImportRunner,
	progressFetcher controllers.ProgressFetcher,
	ordersSvc orders.Service,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.ActorRole(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"postgres": dbPinger,
			"redis":    redisPinger,
		}))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/admin/imports", func(r chi.Router) {
			r.Post("/", controllers.StartImport(importRunner, logg))
			r.Get("/{importId}/progress", controllers.ImportProgress(progressFetcher, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.CreateOrder(ordersSvc, logg))
			r.Get("/{orderId}", controllers.OrderDetail(ordersSvc, logg))
			r.Put("/{orderId}/items", controllers.EditOrderItems(ordersSvc, logg))
		})
	})

	return r
}
