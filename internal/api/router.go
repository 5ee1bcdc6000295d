package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/expense-tracker-be/internal/api/handlers"
	"github.com/isdelr/expense-tracker-be/internal/auth"
	"github.com/isdelr/expense-tracker-be/internal/health"
	"github.com/isdelr/expense-tracker-be/internal/services"
	"github.com/rs/zerolog/log"
)

// Options carries the router's environment-dependent settings.
type Options struct {
	AllowedOrigins []string
	Environment    string
	ExposeStack    bool // include stack traces in 500 responses
}

// NewRouter creates and configures a new Chi router.
func NewRouter(
	opts Options,
	userService services.UserServiceProvider,
	expenseService services.ExpenseServiceProvider,
	tokens auth.TokenVerifier,
	readiness health.ReadinessUseCase,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log.Logger))
	r.Use(recoverer(opts.ExposeStack))
	r.Use(securityHeaders)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(routeNotFound)
	r.MethodNotAllowed(routeNotFound)

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	expenseHandler := handlers.NewExpenseHandler(expenseService)
	healthHandler := handlers.NewHealthHandler(readiness, opts.Environment)

	r.Get("/api/health", healthHandler.Health)
	r.Get("/api/ready", healthHandler.Ready)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", userHandler.Register)
		r.Post("/login", userHandler.Login)
	})

	r.Route("/expenses", func(r chi.Router) {
		r.Use(auth.Middleware(tokens, userService))

		r.Get("/", expenseHandler.GetAll)
		r.Post("/", expenseHandler.Create)
		r.Get("/summary", expenseHandler.Summary)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", expenseHandler.Get)
			r.Put("/", expenseHandler.Update)
			r.Delete("/", expenseHandler.Delete)
		})
	})

	return r
}
