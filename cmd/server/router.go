package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/strategiert/lernwelt-api/internal/api"
	apiMiddleware "github.com/strategiert/lernwelt-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)
	r.Use(apiMiddleware.Metrics)

	tokenLifetime := time.Duration(app.config.Auth.TokenLifetimeMinutes) * time.Minute
	authHandler := api.NewAuthHandler(app.userService, app.jwtService, tokenLifetime, app.logger)
	worldHandler := api.NewWorldHandler(app.worldService, app.logger)
	ratingHandler := api.NewRatingHandler(app.ratingService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// World endpoints
			r.Post("/worlds", worldHandler.CreateWorld)
			r.Get("/worlds", worldHandler.ListWorlds)
			r.Get("/worlds/{id}", worldHandler.GetWorldView)
			r.Post("/worlds/{id}/sections/{sectionID}/complete", worldHandler.CompleteSection)
			r.Post("/worlds/{id}/navigate", worldHandler.Navigate)

			// Rating endpoints
			r.Put("/worlds/{id}/rating", ratingHandler.SubmitRating)
			r.Get("/worlds/{id}/rating", ratingHandler.GetUserRating)
			r.Get("/worlds/{id}/ratings/summary", ratingHandler.GetSummary)
			r.Get("/worlds/{id}/ratings/comments", ratingHandler.ListComments)
		})
	})

	// Prometheus metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
