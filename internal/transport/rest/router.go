package rest

import (
	"net/http"
	"os"

	"catalogfinder/internal/service"
	"catalogfinder/internal/transport/rest/handler"
	"catalogfinder/internal/transport/rest/middleware"
	"catalogfinder/internal/transport/ws"

	"github.com/gorilla/mux"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService      *service.AuthService
	CatalogService   *service.CatalogService
	SessionService   *service.SessionService
	AnalyticsService *service.AnalyticsService
	WSHub            *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	catalogHandler := handler.NewCatalogHandler(c.CatalogService)
	sessionHandler := handler.NewSessionHandler(c.SessionService, c.AuthService)
	analyticsHandler := handler.NewAnalyticsHandler(c.AnalyticsService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/catalogs/{catalogId}/sessions", sessionHandler.Start).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{sessionId}/answers", sessionHandler.Answer).Methods("POST", "OPTIONS")

	// WebSocket routes (token in query param)
	v1.HandleFunc("/ws/catalogs/{catalogId}/merchant", wsHandler.MerchantWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Merchant routes (require merchant auth)
	merchantRoutes := v1.NewRoute().Subrouter()
	merchantRoutes.Use(authMW.RequireMerchant)

	merchantRoutes.HandleFunc("/catalogs", catalogHandler.Create).Methods("POST", "OPTIONS")
	merchantRoutes.HandleFunc("/catalogs", catalogHandler.List).Methods("GET", "OPTIONS")
	merchantRoutes.HandleFunc("/catalogs/{catalogId}", catalogHandler.Get).Methods("GET", "OPTIONS")
	merchantRoutes.HandleFunc("/catalogs/{catalogId}/rebuild", catalogHandler.Rebuild).Methods("POST", "OPTIONS")
	merchantRoutes.HandleFunc("/catalogs/{catalogId}/tree", catalogHandler.GetTree).Methods("GET", "OPTIONS")
	merchantRoutes.HandleFunc("/catalogs/{catalogId}/analytics", analyticsHandler.Summary).Methods("GET", "OPTIONS")
	merchantRoutes.HandleFunc("/sessions/{sessionId}/replay", analyticsHandler.VerifySession).Methods("GET", "OPTIONS")

	// Shopper routes (require shopper auth)
	shopperRoutes := v1.NewRoute().Subrouter()
	shopperRoutes.Use(authMW.RequireShopper)

	shopperRoutes.HandleFunc("/sessions/{sessionId}", sessionHandler.Get).Methods("GET", "OPTIONS")
	shopperRoutes.HandleFunc("/sessions/{sessionId}/resume", sessionHandler.Resume).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
