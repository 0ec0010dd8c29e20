package app

import (
	"fmt"
	"net/http"
	"resetkit/internal/app/deps"
	"resetkit/internal/app/services"
	"resetkit/internal/http/handlers/auth/health"
	resetpassword "resetkit/internal/http/handlers/auth/reset_password"
	sendpasswordresettoken "resetkit/internal/http/handlers/auth/send_password_reset_token"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

func InitHttpServer(deps *deps.Deps, s *services.Services) *http.Server {
	checks := make(map[string]health.Check, len(deps.HealthChecks))
	for name, check := range deps.HealthChecks {
		checks[name] = check
	}

	return &http.Server{
		Handler: NewRouter(deps.Config.AllowedOrigins, s, health.New(deps.Logger, checks)),
		Addr:    fmt.Sprintf("0.0.0.0:%d", deps.Config.Port),
	}
}

func NewRouter(allowedOrigins []string, s *services.Services, healthHandler http.Handler) http.Handler {
	authRouter := chi.NewRouter()
	authRouter.Method(
		http.MethodPost,
		"/password_reset/token",
		sendpasswordresettoken.New(s.SendPasswordResetToken),
	)
	authRouter.Method(http.MethodPut, "/password_reset", resetpassword.New(s.ResetPassword))
	authRouter.Method(http.MethodGet, "/health", healthHandler)

	router := chi.NewRouter()
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))
	router.Mount("/auth", authRouter)
	return router
}
