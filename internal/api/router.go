package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/mhenders/ibdash/internal/api/handlers"
	"github.com/mhenders/ibdash/internal/api/ws"
	"github.com/mhenders/ibdash/pkg/logger"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	ordersHandler *handlers.OrdersHandler,
	earningsHandler *handlers.EarningsHandler,
	portfolioHandler *handlers.PortfolioHandler,
	hub *ws.Hub,
	log *logger.Logger,
) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// Websocket change feed
	r.Handle("/ws", hub)

	api := r.PathPrefix("/api").Subrouter()

	// Order endpoints
	api.HandleFunc("/orders", ordersHandler.List).Methods("GET")
	api.HandleFunc("/orders/filled", ordersHandler.ListFilled).Methods("GET")
	api.HandleFunc("/orders/refresh", ordersHandler.Refresh).Methods("POST")
	api.HandleFunc("/orders/{id:[0-9]+}/execute", ordersHandler.Execute).Methods("POST")
	api.HandleFunc("/orders/{id:[0-9]+}/cancel", ordersHandler.Cancel).Methods("POST")
	api.HandleFunc("/orders/{id:[0-9]+}/quantity", ordersHandler.UpdateQuantity).Methods("PATCH")

	// Earnings endpoints
	api.HandleFunc("/earnings/weekly", earningsHandler.Weekly).Methods("GET")

	// Portfolio passthrough
	api.HandleFunc("/portfolio", portfolioHandler.Get).Methods("GET")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "ibdash-api",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
