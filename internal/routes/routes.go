package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/pixele/identity/internal/handlers"
	"github.com/pixele/identity/internal/middleware"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	userHandler *handlers.UserHandler,
	authHandler *handlers.AuthHandler,
	resetHandler *handlers.PasswordResetHandler,
) {
	// Rate limiting config for credential endpoints
	rateLimitConfig := middleware.DefaultAuthRateLimit()
	limited := middleware.RateLimitByIP(rateLimitConfig)

	router.Route("/users", func(r chi.Router) {
		// Credential endpoints: per-IP limited at the edge
		r.With(limited).Post("/login", authHandler.Login)
		r.With(limited).Post("/register", userHandler.Register)
		r.With(limited).Post("/verify", userHandler.Verify)
		r.With(limited).Post("/resend-verification-code", userHandler.ResendCode)
		r.With(limited).Post("/reset-password/send-email", resetHandler.SendResetEmail)
		r.With(limited).Post("/reset-password/confirm-new-password", resetHandler.ConfirmNewPassword)

		r.Post("/logout", authHandler.Logout)
		r.Get("/check-auth", authHandler.CheckAuth)
		r.Get("/check-username-availability", userHandler.CheckUsernameAvailability)
	})
}
