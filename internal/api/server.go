package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/Techne-Finance/techne-sub000/internal/api/auth"
	"github.com/Techne-Finance/techne-sub000/internal/api/handlers"
	"github.com/Techne-Finance/techne-sub000/internal/api/middleware"
	"github.com/Techne-Finance/techne-sub000/internal/api/websocket"
	"github.com/Techne-Finance/techne-sub000/internal/config"
	"github.com/Techne-Finance/techne-sub000/internal/logger"
	"github.com/Techne-Finance/techne-sub000/internal/repository"
)

// Server представляє HTTP сервер дашборда
type Server struct {
	config     *config.Config
	httpServer *http.Server
	router     *mux.Router
	log        *logger.Logger

	// Repositories
	userRepo  repository.UserRepository
	poolRepo  repository.PoolRepository
	agentRepo repository.AgentRepository

	// Auth & Middleware
	jwtManager  *auth.JWTManager
	rateLimiter *middleware.RateLimiter

	// Handlers
	healthHandler  *handlers.HealthHandler
	authHandler    *handlers.AuthHandler
	verifyHandler  *handlers.VerifyHandler
	poolsHandler   *handlers.PoolsHandler
	historyHandler *handlers.HistoryHandler
	agentsHandler  *handlers.AgentsHandler

	// WebSocket
	wsHub     *websocket.Hub
	wsHandler *websocket.Handler
}

// NewServer створює новий API server
func NewServer(
	cfg *config.Config,
	userRepo repository.UserRepository,
	poolRepo repository.PoolRepository,
	agentRepo repository.AgentRepository,
	resolver handlers.PoolResolver,
	states handlers.StateStore,
	log *logger.Logger,
) *Server {
	s := &Server{
		config:    cfg,
		userRepo:  userRepo,
		poolRepo:  poolRepo,
		agentRepo: agentRepo,
		log:       log,
	}

	tokenTTL := time.Duration(cfg.Auth.TokenTTLHours) * time.Hour

	// Initialize JWT Manager
	s.jwtManager = auth.NewJWTManager(cfg.Auth.JWTSecret, tokenTTL)

	// Initialize Rate Limiter
	s.rateLimiter = middleware.NewRateLimiter(cfg.App.RateLimit)

	// Initialize handlers
	s.healthHandler = handlers.NewHealthHandler()
	s.authHandler = handlers.NewAuthHandler(userRepo, s.jwtManager, int64(tokenTTL.Seconds()), log)
	s.verifyHandler = handlers.NewVerifyHandler(resolver, states, poolRepo, log)
	s.poolsHandler = handlers.NewPoolsHandler(poolRepo, log)
	s.historyHandler = handlers.NewHistoryHandler(states, log)
	s.agentsHandler = handlers.NewAgentsHandler(agentRepo, log)

	// WebSocket hub для live refresh подій
	s.wsHub = websocket.NewHub(log)
	s.wsHandler = websocket.NewHandler(s.wsHub, s.jwtManager)

	// Setup router
	s.setupRouter()

	return s
}

// setupRouter налаштовує всі роути та middleware
func (s *Server) setupRouter() {
	r := mux.NewRouter()

	// Global middleware
	r.Use(middleware.LoggingMiddleware(s.log))
	r.Use(middleware.RecoveryMiddleware(s.log))
	r.Use(middleware.CORSMiddleware(s.config.App.AllowedOrigins))
	r.Use(s.rateLimiter.RateLimitMiddleware)

	// API v1 routes
	api := r.PathPrefix("/api/v1").Subrouter()

	// ========== Public routes (no auth required) ==========

	// Health check
	api.HandleFunc("/health", s.healthHandler.Health).Methods("GET")
	api.HandleFunc("/ping", s.healthHandler.Ping).Methods("GET")

	// Authentication
	api.HandleFunc("/auth/register", s.authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", s.authHandler.Login).Methods("POST")
	api.HandleFunc("/auth/refresh", s.authHandler.RefreshToken).Methods("POST")

	// Explore листинг доступний без авторизації.
	// Фіксовані сегменти (search, stream) реєструються перед {id}.
	api.HandleFunc("/pools", s.poolsHandler.ListPools).Methods("GET")
	api.HandleFunc("/pools/search", s.poolsHandler.SearchPools).Methods("GET")

	// WebSocket stream (токен через query параметр)
	api.HandleFunc("/pools/stream", s.wsHandler.ServeStream).Methods("GET")

	api.HandleFunc("/pools/{id}", s.poolsHandler.GetPool).Methods("GET")

	// ========== Protected routes (require JWT) ==========

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.JWTAuthMiddleware(s.jwtManager))

	// Auth endpoints (require auth)
	protected.HandleFunc("/auth/me", s.authHandler.Me).Methods("GET")

	// Верифікація пулів (головний flow)
	protected.HandleFunc("/verify", s.verifyHandler.Verify).Methods("POST")

	// Історія та кредити
	protected.HandleFunc("/history", s.historyHandler.GetHistory).Methods("GET")
	protected.HandleFunc("/history", s.historyHandler.ClearHistory).Methods("DELETE")
	protected.HandleFunc("/credits", s.historyHandler.GetCredits).Methods("GET")

	// Trading agents (premium)
	agents := protected.PathPrefix("/agents").Subrouter()
	agents.Use(middleware.RequirePremium(s.userRepo))
	agents.HandleFunc("", s.agentsHandler.ListAgents).Methods("GET")
	agents.HandleFunc("", s.agentsHandler.CreateAgent).Methods("POST")
	agents.HandleFunc("/{id}", s.agentsHandler.GetAgent).Methods("GET")
	agents.HandleFunc("/{id}", s.agentsHandler.UpdateAgent).Methods("PUT")
	agents.HandleFunc("/{id}", s.agentsHandler.DeleteAgent).Methods("DELETE")

	s.router = r
}

// Hub повертає websocket hub (для wiring з refresh service)
func (s *Server) Hub() *websocket.Hub {
	return s.wsHub
}

// Start запускає HTTP сервер
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%s", s.config.App.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Запустити websocket hub
	go s.wsHub.Run()

	s.log.Info("🚀 API server starting on %s", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Stop зупиняє HTTP сервер gracefully
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("🛑 Shutting down API server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.log.Info("✅ API server stopped")
	return nil
}

// Router повертає router для тестування
func (s *Server) Router() *mux.Router {
	return s.router
}
