package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/lilikoi/lilikoi-go/internal/bridge"
	"github.com/lilikoi/lilikoi-go/internal/chain"
	"github.com/lilikoi/lilikoi-go/internal/config"
	"github.com/lilikoi/lilikoi-go/internal/orchestrator"
)

// ChatHandler runs one chat request through the orchestration loop
type ChatHandler interface {
	Chat(ctx context.Context, req *orchestrator.ChatRequest) (*orchestrator.ChatResponse, error)
}

// BridgePreparer prepares bridge transactions via the bridge backend
type BridgePreparer interface {
	Prepare(ctx context.Context, action bridge.Action, address, amount string) (*chain.TxData, error)
}

// Server provides the HTTP API of the agent
type Server struct {
	chat       ChatHandler
	bridge     BridgePreparer
	gateway    *Gateway
	config     *config.HTTPConfig
	httpServer *http.Server
	router     *gin.Engine
	logger     *logrus.Logger
}

// NewServer creates the API server
func NewServer(chat ChatHandler, bridgeClient BridgePreparer, gateway *Gateway, cfg *config.HTTPConfig, logger *logrus.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	server := &Server{
		chat:    chat,
		bridge:  bridgeClient,
		gateway: gateway,
		config:  cfg,
		router:  router,
		logger:  logger,
	}
	server.registerRoutes()

	return server
}

// Router exposes the gin engine, used by tests
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the API server
func (s *Server) Start() error {
	if !s.config.Enabled {
		s.logger.Info("HTTP server is disabled")
		return nil
	}

	s.logger.Infof("Starting HTTP server on %s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.config.Host, s.config.Port),
		Handler: s.router,
	}

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Errorf("HTTP server error: %v", err)
		}
	}()

	return nil
}

// Shutdown stops the API server
func (s *Server) Shutdown() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Shutting down HTTP server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP server shutdown error: %w", err)
	}

	s.logger.Info("HTTP server shutdown complete")
	return nil
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", s.getHealth)
	s.router.POST("/api/chat", s.postChat)
	s.router.POST("/api/bridge", s.postBridge)
	if s.gateway != nil {
		s.router.GET("/ws", func(c *gin.Context) {
			s.gateway.HandleUpgrade(c.Writer, c.Request)
		})
	}
}

func (s *Server) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// postChat runs one chat request. Tool failures are already folded into
// the response by the engine; only transport and validation failures
// reach this error path.
func (s *Server) postChat(c *gin.Context) {
	var req orchestrator.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"content": "I could not read that request.",
			"error":   err.Error(),
		})
		return
	}

	response, err := s.chat.Chat(c.Request.Context(), &req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, orchestrator.ErrEmptyMessage) {
			status = http.StatusBadRequest
		} else if errors.Is(err, orchestrator.ErrOracleUnavailable) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{
			"content": "I'm sorry, something went wrong while handling your request.",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response)
}

type bridgeRequest struct {
	Action  string `json:"action"`
	Address string `json:"address"`
	Amount  string `json:"amount"`
}

// postBridge is a direct passthrough to the bridge backend
func (s *Server) postBridge(c *gin.Context) {
	var req bridgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	action := bridge.Action(req.Action)
	if !bridge.ValidAction(req.Action) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid bridge action: %q", req.Action)})
		return
	}

	tx, err := s.bridge.Prepare(c.Request.Context(), action, req.Address, req.Amount)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tx})
}
