package api

import (
	"net/http"

	"github.com/avelara/keyauth-be/internal/api/handlers"
	"github.com/avelara/keyauth-be/internal/auth"
	"github.com/avelara/keyauth-be/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(users services.UserServiceProvider, resets services.PasswordResetProvider, verifier *auth.Verifier, clientURL string) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Credentialed CORS for the browser frontend
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{clientURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	userHandler := handlers.NewUserHandler(users, resets, verifier)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Welcome to the Authentication API!"))
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Post("/signup", userHandler.Register)
		r.Post("/signin", userHandler.Login)
		r.Get("/logout", userHandler.Logout)
		r.Post("/forgotpassword", userHandler.ForgotPassword)
		r.Put("/resetpassword/{resetToken}", userHandler.ResetPassword)

		// Routes requiring a valid session token
		r.Group(func(r chi.Router) {
			r.Use(verifier.Middleware())
			r.Get("/getuser", userHandler.GetUser)
			r.Patch("/updateuser", userHandler.UpdateUser)
			r.Patch("/changepassword", userHandler.ChangePassword)
		})
	})

	return r
}
