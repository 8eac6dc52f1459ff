package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wayhaul/wayhaul-backend/api/controllers"
	"github.com/wayhaul/wayhaul-backend/api/middleware"
	"github.com/wayhaul/wayhaul-backend/internal/notifications"
	"github.com/wayhaul/wayhaul-backend/internal/presence"
	"github.com/wayhaul/wayhaul-backend/internal/requests"
	"github.com/wayhaul/wayhaul-backend/internal/tracking"
	"github.com/wayhaul/wayhaul-backend/internal/trips"
	"github.com/wayhaul/wayhaul-backend/pkg/config"
	"github.com/wayhaul/wayhaul-backend/pkg/db"
	"github.com/wayhaul/wayhaul-backend/pkg/logger"
	"github.com/wayhaul/wayhaul-backend/pkg/metrics"
	"github.com/wayhaul/wayhaul-backend/pkg/redis"
)

// RouterParams carries everything the HTTP surface depends on.
type RouterParams struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            db.Pinger
	Redis         *redis.Client
	Trips         trips.Service
	Requests      requests.Service
	Tracking      tracking.Service
	Presence      presence.Service
	Notifications notifications.Service
	HTTPMetrics   *metrics.HTTPMetrics
	Gatherer      prometheus.Gatherer
}

func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(params.HTTPMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, params.DB, params.Redis))
	})

	if params.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(params.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Identity(logg))
		r.Use(middleware.Idempotency(params.Redis, logg))

		r.Route("/trips", func(r chi.Router) {
			r.Post("/", controllers.CreateTrip(params.Trips, logg))
			r.Get("/", controllers.ListTrips(params.Trips, logg))
			r.Get("/{tripId}", controllers.GetTrip(params.Trips, logg))
			r.Put("/{tripId}/status", controllers.UpdateTripStatus(params.Trips, params.Requests, params.Tracking, params.Notifications, logg))
			r.Put("/{tripId}/capacity", controllers.UpdateTripCapacity(params.Trips, logg))
			r.Delete("/{tripId}", controllers.CancelTrip(params.Trips, params.Requests, params.Tracking, params.Notifications, logg))
			r.Get("/{tripId}/requests", controllers.ListTripRequests(params.Requests, logg))
		})

		r.Route("/requests", func(r chi.Router) {
			r.Post("/", controllers.CreateRequest(params.Requests, params.Trips, params.Tracking, params.Notifications, logg))
			r.Get("/{requestId}", controllers.GetRequest(params.Requests, logg))
			r.Put("/{requestId}/accept", controllers.AcceptRequest(params.Requests, params.Trips, params.Tracking, params.Notifications, logg))
			r.Put("/{requestId}/status", controllers.UpdateRequestStatus(params.Requests, params.Trips, params.Tracking, params.Notifications, logg))
			r.Put("/{requestId}/items/{itemId}/price", controllers.RecordItemActualPrice(params.Requests, logg))
		})

		r.Route("/locations", func(r chi.Router) {
			r.Post("/{locationId}/checkin", controllers.CheckIn(params.Presence, logg))
			r.Post("/{locationId}/checkout", controllers.CheckOut(params.Presence, logg))
			r.Get("/{locationId}/presence", controllers.GetPresence(params.Presence, logg))
		})

		r.Route("/status", func(r chi.Router) {
			r.Post("/", controllers.RecordStatus(params.Tracking, params.Trips, params.Requests, params.Notifications, logg))
			r.Post("/photo", controllers.AddPhotoConfirmation(params.Tracking, params.Trips, params.Requests, params.Notifications, logg))
			r.Post("/receipt", controllers.AddReceiptConfirmation(params.Tracking, params.Trips, params.Requests, params.Notifications, logg))
			r.Get("/{entityType}/{entityId}/history", controllers.StatusHistory(params.Tracking, logg))
			r.Get("/{entityType}/{entityId}/latest", controllers.LatestStatus(params.Tracking, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(params.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(params.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(params.Notifications, logg))
		})
	})

	return r
}
