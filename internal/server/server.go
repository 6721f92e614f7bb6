package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"civicreport/internal/config"
	"civicreport/internal/handler"
	"civicreport/internal/middleware"
	"civicreport/internal/repository"
	"civicreport/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type Server struct {
	router  *gin.Engine
	db      *sqlx.DB
	cfg     *config.Config
	logger  *zap.Logger
	metrics *middleware.Metrics
}

func NewServer(db *sqlx.DB, cfg *config.Config, logger *zap.Logger) *Server {
	if cfg.App.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	metrics := middleware.NewMetrics("civicreport")

	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(logger),
		metrics.Middleware(),
	)

	// Initialize server with DB and Logger
	s := &Server{
		router:  router,
		db:      db,
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
	}

	// Setup routes
	s.setupRoutes()

	return s
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	// Initialize repositories
	userRepo := repository.NewUserRepository(s.db, s.logger)
	complaintRepo := repository.NewComplaintRepository(s.db, s.logger)
	referenceRepo := repository.NewReferenceRepository(s.db, s.logger)

	// Initialize services
	tokenService := service.NewTokenService(s.cfg.Auth)
	authService := service.NewAuthService(userRepo, tokenService, s.logger)
	complaintService := service.NewComplaintService(complaintRepo, referenceRepo, s.logger)
	referenceService := service.NewReferenceService(referenceRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, s.logger)
	complaintHandler := handler.NewComplaintHandler(complaintService, s.logger)
	referenceHandler := handler.NewReferenceHandler(referenceService, s.logger)
	healthHandler := handler.NewHealthHandler(s.cfg.App.Version)

	auth := middleware.NewAuthenticator(tokenService, userRepo, s.logger)
	requireUser := auth.Require(middleware.Authenticated)
	requireAdmin := auth.Require(middleware.Admin)

	s.router.GET("/", healthHandler.Root)
	s.router.GET("/api/health", healthHandler.Health)
	s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	// Authentication routes
	authGroup := s.router.Group("/api/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.GET("/profile", requireUser, authHandler.Profile)
		authGroup.GET("/user/:id", requireAdmin, authHandler.GetUser)
	}

	complaintGroup := s.router.Group("/api/complaints")
	{
		complaintGroup.POST("/create", requireUser, complaintHandler.CreateComplaint)
		complaintGroup.GET("/get", requireUser, complaintHandler.GetComplaints)
		complaintGroup.GET("/get/:id", requireUser, complaintHandler.GetComplaintByID)
		complaintGroup.GET("/search", requireUser, complaintHandler.SearchComplaints)
		complaintGroup.PUT("/update/:id", requireAdmin, complaintHandler.UpdateComplaintStatus)
	}

	otherGroup := s.router.Group("/api/other")
	{
		otherGroup.GET("/categories", referenceHandler.GetCategories)
		otherGroup.GET("/statuses", referenceHandler.GetStatuses)
		otherGroup.GET("/stats", referenceHandler.GetStats)
	}
}

// Run serves HTTP until ctx is cancelled, then shuts down within the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Server.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server starting", zap.String("addr", s.cfg.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server", zap.Duration("timeout", s.cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
