package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/rpupo63/project-hub-backend/metrics"
)

// setupOperationalRoutes mounts the health check and the Prometheus scrape endpoint
func setupOperationalRoutes(r chi.Router, handlers *routeHandlers) {
	r.Get("/health", handlers.healthHandler.health())
	r.Handle("/metrics", metrics.Handler())
}

// setupAPIRoutes mounts the public and authenticated API under /api
func setupAPIRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/auth/register", handlers.authHandler.register())
		r.Post("/auth/login", handlers.authHandler.login())
		r.Get("/projects", handlers.projectHandler.getAllProjects())
		r.Get("/projects/{projectID}", handlers.projectHandler.getProject())

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.authenticate)

			r.Get("/auth/verify", handlers.authHandler.verify())

			r.Post("/projects", handlers.projectHandler.createProject())
			r.Put("/projects/{projectID}", handlers.projectHandler.updateProject())
			r.Delete("/projects/{projectID}", handlers.projectHandler.deleteProject())
			r.Delete("/projects/{projectID}/media/{mediaID}", handlers.projectHandler.deleteMedia())
			r.Post("/projects/{projectID}/collaborators", handlers.projectHandler.addCollaborator())

			r.Get("/users/profile", handlers.userHandler.getProfile())
			r.Put("/users/profile", handlers.userHandler.updateProfile())
			r.Get("/users/projects", handlers.userHandler.getUserProjects())
		})
	})
}
