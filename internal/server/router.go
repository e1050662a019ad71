package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/joao-fontenele/bizops-backend/internal/clients"
	"github.com/joao-fontenele/bizops-backend/internal/httpx"
	"github.com/joao-fontenele/bizops-backend/internal/inventory"
	"github.com/joao-fontenele/bizops-backend/internal/invoices"
	"github.com/joao-fontenele/bizops-backend/internal/orders"
	"github.com/joao-fontenele/bizops-backend/internal/telemetry"
	"github.com/joao-fontenele/bizops-backend/internal/users"
)

// HealthChecker is satisfied by database.Manager.
type HealthChecker interface {
	Check(ctx context.Context) error
}

type Deps struct {
	Users     *users.Handler
	Inventory *inventory.Handler
	Orders    *orders.Handler
	Clients   *clients.Handler
	Invoices  *invoices.Handler

	Health  HealthChecker
	Metrics http.Handler

	Responder      *httpx.Responder
	Logger         zerolog.Logger
	AllowedOrigins []string
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(d.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))
	r.Use(telemetry.RouteTagger)

	r.Get("/healthz", healthHandler(d.Health, d.Responder))
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	r.Post("/register", d.Users.HandleRegister)
	r.Post("/login", d.Users.HandleLogin)

	r.Route("/inventory", func(r chi.Router) {
		r.Get("/", d.Inventory.HandleList)
		r.Post("/", d.Inventory.HandleCreate)
		r.Put("/updateStock", d.Inventory.HandleUpdateStock)
		r.Put("/{id}", d.Inventory.HandleUpdate)
		r.Delete("/{id}", d.Inventory.HandleDelete)
	})

	r.Get("/orders", d.Orders.HandleList)
	r.Post("/orders", d.Orders.HandlePlace)

	r.Get("/clients", d.Clients.HandleList)
	r.Post("/clients", d.Clients.HandleCreate)

	r.Get("/invoices", d.Invoices.HandleList)
	r.Get("/reports/sales", d.Invoices.HandleSalesReport)
	r.Get("/reports/invoices", d.Invoices.HandleLatestInvoice)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		d.Responder.JSON(w, http.StatusNotFound, map[string]string{"error": "route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		d.Responder.JSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	})

	return r
}

func healthHandler(checker HealthChecker, resp *httpx.Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.Check(ctx); err != nil {
			resp.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
		resp.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func accessLog(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			event := logger.Info()
			if status >= http.StatusInternalServerError {
				event = logger.Warn()
			}
			event.
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("http request")
		})
	}
}
