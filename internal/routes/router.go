package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/poofware/intake-service/internal/app"
	"github.com/poofware/intake-service/internal/controllers"
	"github.com/poofware/intake-service/internal/middleware"
)

// CORSLowSecurityAllowedOriginLocalhost is allowed outside production so a
// locally served frontend can reach the JSON API.
const CORSLowSecurityAllowedOriginLocalhost = "http://localhost:*"

// NewRouter wires every controller of application behind the middleware
// chain and CORS.
func NewRouter(application *app.App) http.Handler {
	cfg := application.Config

	healthController := controllers.NewHealthController(application)
	sessionController := controllers.NewSessionController(application.Sessions)
	pageController := controllers.NewPageController(application.Sessions)

	router := mux.NewRouter()
	router.Use(
		middleware.RecoveryMiddleware,
		middleware.RequestIDMiddleware,
		middleware.LoggingMiddleware([]string{Health, Metrics}),
		middleware.RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	// Health
	router.HandleFunc(Health, healthController.HealthCheckHandler).Methods(http.MethodGet)
	router.Handle(Metrics, promhttp.Handler()).Methods(http.MethodGet)

	// HTML form
	router.HandleFunc(Index, pageController.IndexHandler).Methods(http.MethodGet)
	router.HandleFunc(Form, pageController.FormHandler).Methods(http.MethodGet)
	router.HandleFunc(FormKeys, pageController.KeysHandler).Methods(http.MethodPost)
	router.HandleFunc(FormInvitations, pageController.InvitationsHandler).Methods(http.MethodPost)

	// JSON API
	router.HandleFunc(Sessions, sessionController.OpenSessionHandler).Methods(http.MethodPost)
	router.HandleFunc(Session, sessionController.GetSessionHandler).Methods(http.MethodGet)
	router.HandleFunc(SessionKeys, sessionController.SubmitKeysHandler).Methods(http.MethodPost)
	router.HandleFunc(SessionInvitations, sessionController.SubmitInvitationsHandler).Methods(http.MethodPost)

	allowedOrigins := []string{cfg.AppUrl}
	allowedOrigins = append(allowedOrigins, cfg.CORSAllowedOrigins...)
	if cfg.Env != "prod" {
		allowedOrigins = append(allowedOrigins, CORSLowSecurityAllowedOriginLocalhost)
	}

	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
	})
	return co.Handler(router)
}
