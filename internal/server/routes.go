package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"smartaitools/internal/handlers"
	"smartaitools/internal/middlewares"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	r.Use(middlewares.CorsMiddleware)
	r.Use(middlewares.PrometheusMiddleware)
	r.Use(middlewares.RateLimit)

	ch := handlers.NewCommonHandler(s.db)
	r.HandleFunc("/", ch.HelloWorldHandler)
	r.HandleFunc("/health", ch.HealthHandler)
	r.Handle("/metrics", promhttp.Handler())

	s.registerPromptRoutes(r)
	s.registerToolRoutes(r)
	s.registerCategoryRoutes(r)
	s.registerAuthRoutes(r)

	return r
}

// Listing and single-record reads go through OptionalAuthMiddleware: public
// records are reachable anonymously and an authenticated caller's visibility
// scope is derived from the token. Everything that mutates requires auth.
func (s *Server) registerPromptRoutes(r *mux.Router) {
	ph := handlers.NewPromptHandler(s.promptService, s.enhanceService)

	r.Handle("/api/prompts", middlewares.OptionalAuthMiddleware(http.HandlerFunc(ph.ListPrompts))).Methods("GET", "OPTIONS")
	r.Handle("/api/prompts", middlewares.AuthMiddleware(http.HandlerFunc(ph.CreatePrompt))).Methods("POST", "OPTIONS")
	r.Handle("/api/prompts/{id}", middlewares.OptionalAuthMiddleware(http.HandlerFunc(ph.GetPromptByID))).Methods("GET", "OPTIONS")
	r.Handle("/api/prompts/{id}", middlewares.AuthMiddleware(http.HandlerFunc(ph.UpdatePrompt))).Methods("PUT", "PATCH", "OPTIONS")
	r.Handle("/api/prompts/{id}", middlewares.AuthMiddleware(http.HandlerFunc(ph.DeletePrompt))).Methods("DELETE", "OPTIONS")
	r.Handle("/api/prompts/{id}/rate", middlewares.AuthMiddleware(http.HandlerFunc(ph.RatePrompt))).Methods("POST", "OPTIONS")
	r.Handle("/api/prompts/{id}/enhance", middlewares.AuthMiddleware(http.HandlerFunc(ph.EnhancePrompt))).Methods("POST", "OPTIONS")
}

func (s *Server) registerToolRoutes(r *mux.Router) {
	th := handlers.NewToolHandler(s.toolService)

	r.Handle("/api/tools", middlewares.OptionalAuthMiddleware(http.HandlerFunc(th.ListTools))).Methods("GET", "OPTIONS")
	r.Handle("/api/tools", middlewares.AuthMiddleware(http.HandlerFunc(th.CreateTool))).Methods("POST", "OPTIONS")
	r.Handle("/api/tools/{id}", middlewares.OptionalAuthMiddleware(http.HandlerFunc(th.GetToolByID))).Methods("GET", "OPTIONS")
	r.Handle("/api/tools/{id}", middlewares.AuthMiddleware(http.HandlerFunc(th.UpdateTool))).Methods("PUT", "PATCH", "OPTIONS")
	r.Handle("/api/tools/{id}", middlewares.AuthMiddleware(http.HandlerFunc(th.DeleteTool))).Methods("DELETE", "OPTIONS")
	r.Handle("/api/tools/{id}/rate", middlewares.AuthMiddleware(http.HandlerFunc(th.RateTool))).Methods("POST", "OPTIONS")
}

func (s *Server) registerCategoryRoutes(r *mux.Router) {
	ch := handlers.NewCategoryHandler(s.categoryService)

	r.HandleFunc("/api/categories", ch.GetCategories).Methods("GET", "OPTIONS")
	r.HandleFunc("/api/categories/{slug}", ch.GetCategoryBySlug).Methods("GET", "OPTIONS")
}

func (s *Server) registerAuthRoutes(r *mux.Router) {
	uh := handlers.NewUserHandler(s.userService, s.otpService)
	ah := handlers.NewAuthHandler(s.authService)

	r.HandleFunc("/api/auth/register", uh.Register).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/auth/login", uh.Login).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/auth/forgot-password", uh.ForgotPassword).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/auth/reset-password", uh.ResetPassword).Methods("POST", "OPTIONS")
	r.Handle("/api/me", middlewares.AuthMiddleware(http.HandlerFunc(uh.GetMyProfile))).Methods("GET", "OPTIONS")
	r.Handle("/api/me", middlewares.AuthMiddleware(http.HandlerFunc(uh.UpdateMyProfile))).Methods("PATCH", "PUT", "OPTIONS")
	r.Handle("/api/me", middlewares.AuthMiddleware(http.HandlerFunc(uh.DeleteMyProfile))).Methods("DELETE", "OPTIONS")

	r.HandleFunc("/api/auth/success", ah.AuthSuccess).Methods("GET", "OPTIONS")
	r.HandleFunc("/api/auth/error", ah.AuthError).Methods("GET", "OPTIONS")
	r.HandleFunc("/api/auth/{provider}", ah.ProviderAuth).Methods("GET", "OPTIONS")
	r.HandleFunc("/api/auth/{provider}/callback", ah.ProviderCallback).Methods("GET", "OPTIONS")
}
