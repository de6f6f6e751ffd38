package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	_ "github.com/joho/godotenv/autoload"

	"smartaitools/internal/database"
	"smartaitools/internal/repositories"
	"smartaitools/internal/services"
)

type Server struct {
	port            int
	httpServer      *http.Server
	db              database.Service
	userService     services.UserService
	promptService   services.PromptService
	toolService     services.ToolService
	categoryService services.CategoryService
	enhanceService  services.EnhanceService
	authService     services.AuthService
	otpService      services.OTPService
}

func NewServer() *Server {
	portStr := os.Getenv("PORT")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Warn().Str("port", portStr).Msg("Invalid PORT environment variable. Using default 8080.")
		port = 8080
	}

	db := database.New()

	userRepo := repositories.NewUserRepository(db)
	promptRepo := repositories.NewPromptRepository(db)
	toolRepo := repositories.NewToolRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	otpRepo := repositories.NewOTPRepository(db)

	s := &Server{
		port:            port,
		db:              db,
		userService:     services.NewUserService(userRepo),
		promptService:   services.NewPromptService(promptRepo, userRepo),
		toolService:     services.NewToolService(toolRepo, userRepo),
		categoryService: services.NewCategoryService(categoryRepo, promptRepo, toolRepo),
		enhanceService:  services.NewEnhanceService(),
		authService:     services.NewAuthService(userRepo),
		otpService:      services.NewOTPService(userRepo, otpRepo, services.NewEmailService()),
	}

	services.InitializeGoth()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	log.Info().Int("port", s.port).Msg("Starting server")
	return s.httpServer.ListenAndServe()
}

func (s *Server) GracefulShutdown(done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Info().Msg("Shutting down gracefully, press Ctrl+C again to force")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown with error")
	}

	if err := s.db.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing database connection")
	}

	log.Info().Msg("Server exiting")
	done <- true
}
