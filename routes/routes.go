package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/upb/taskboard-api/app"
	"github.com/upb/taskboard-api/handlers"
	"github.com/upb/taskboard-api/middleware"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(middleware.Recoverer(deps.ErrorWriter, deps.Logger))
	r.Use(chimw.Timeout(deps.Config.Server.RequestTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	health := handlers.NewHealthHandler(healthChecker(deps), deps.Config.Environment, deps.Logger)
	r.Get("/", health.HandleRoot)
	r.Get("/health", health.HandleHealth)
	r.Get("/health/ready", health.HandleReadiness)

	if deps.Config.Observability.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	tasksHandler := handlers.NewTaskHandler(deps.TaskService, deps.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(deps.AuthMiddleware.RequireAuth)

		r.Get("/me", handlers.CurrentIdentity(deps.Logger))

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", tasksHandler.HandleList)
			r.Post("/", tasksHandler.HandleCreate)
			r.Get("/{id}", tasksHandler.HandleGet)
			r.Put("/{id}", tasksHandler.HandleUpdate)
			r.Delete("/{id}", tasksHandler.HandleDelete)
			r.Patch("/{id}/complete", tasksHandler.HandleToggleComplete)
		})
	})

	notFound := handlers.NotFound(deps.Logger)
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	return r
}

// healthChecker avoids handing a typed nil pool to the readiness check
func healthChecker(deps *app.Dependencies) handlers.HealthChecker {
	if deps.DB == nil {
		return nil
	}
	return deps.DB
}
