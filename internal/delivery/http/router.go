package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"gaoexevents/internal/delivery/http/controllers"
	"gaoexevents/internal/delivery/http/helpers"
	"gaoexevents/internal/delivery/http/middleware"
	"gaoexevents/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(
	authController *controllers.AuthController,
	eventController *controllers.EventController,
	registrationController *controllers.RegistrationController,
	verifier domain.TokenVerifier,
) *http.ServeMux {
	mux := http.NewServeMux()
	requireAuth := middleware.RequireAuth(verifier)

	// Auth
	mux.HandleFunc("POST /auth/signup", authController.SignUp)
	mux.HandleFunc("POST /auth/login", authController.Login)

	// Event catalog. Browsing is public; creating requires an admin token.
	mux.HandleFunc("GET /events", eventController.ListEvents)
	mux.HandleFunc("GET /events/{eventID}", eventController.GetEvent)
	mux.HandleFunc("POST /events", requireAuth(eventController.CreateEvent))

	// Registrations
	mux.HandleFunc("POST /events/{eventID}/registrations", requireAuth(registrationController.Register))
	mux.HandleFunc("GET /me/registrations", requireAuth(registrationController.ListMyRegistrations))
	mux.HandleFunc("GET /me/registrations/stream", requireAuth(registrationController.StreamMyRegistrations))
	mux.HandleFunc("DELETE /me/registrations/{eventID}", requireAuth(registrationController.RemoveRegistration))

	// Operational endpoints
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
