package gateway

import (
	"context"
	"embed"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"shipmate/internal/assistant"
	"shipmate/internal/llamastack"
	"shipmate/internal/status"
	"shipmate/pkg/logging"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed static/index.html
var staticFS embed.FS

const DefaultPort = 7860

// ChatService runs one chat turn. *assistant.Assistant satisfies it.
type ChatService interface {
	Chat(ctx context.Context, sessionID, message string) (*assistant.Reply, error)
}

// ToolRuntime is the LLaMA Stack tool surface the test tab talks to.
// *llamastack.Client satisfies it.
type ToolRuntime interface {
	ListToolgroups(ctx context.Context) ([]llamastack.Toolgroup, error)
	ListTools(ctx context.Context, toolgroupID string) ([]llamastack.Tool, error)
	InvokeTool(ctx context.Context, toolName string, args map[string]any) (*llamastack.ToolInvocationResult, error)
}

// StatusEngine produces the system status report. *status.Engine
// satisfies it.
type StatusEngine interface {
	Run(ctx context.Context) *status.Report
}

// Config holds the gateway listen settings.
type Config struct {
	Host string
	Port int

	// AllowedOrigins configures CORS. Defaults to all origins.
	AllowedOrigins []string
}

// Server is the HTTP gateway serving the UI and the JSON API.
type Server struct {
	config  Config
	chat    ChatService
	runtime ToolRuntime
	engine  StatusEngine

	router     *gin.Engine
	httpServer *http.Server
	ready      atomic.Bool
}

// NewServer assembles the gateway router. Any dependency may be nil;
// its endpoints then answer 503 until the component is wired.
func NewServer(config Config, chat ChatService, runtime ToolRuntime, statusEngine StatusEngine) *Server {
	if config.Port == 0 {
		config.Port = DefaultPort
	}
	if len(config.AllowedOrigins) == 0 {
		config.AllowedOrigins = []string{"*"}
	}

	s := &Server{
		config:  config,
		chat:    chat,
		runtime: runtime,
		engine:  statusEngine,
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(), collectMetrics())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Range", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}))

	router.GET("/", s.handleIndex)
	router.GET("/health", s.handleHealth)
	router.GET("/ready", s.handleReady)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		api.POST("/chat", s.handleChat)
		api.GET("/toolgroups", s.handleListToolgroups)
		api.GET("/toolgroups/:name/tools", s.handleListTools)
		api.POST("/tools/call", s.handleToolCall)
		api.GET("/status", s.handleStatus)
	}

	return router
}

// Router exposes the gin engine for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// MarkReady flips the readiness probe to serving.
func (s *Server) MarkReady() {
	s.ready.Store(true)
}

// MarkNotReady flips the readiness probe back to unavailable.
func (s *Server) MarkNotReady() {
	s.ready.Store(false)
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

// Start begins serving. It returns once the listener is started;
// serve errors other than a clean shutdown are logged.
func (s *Server) Start(ctx context.Context) error {
	if s.httpServer != nil {
		return fmt.Errorf("gateway already started")
	}

	s.httpServer = &http.Server{
		Addr:              s.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logging.Info("Gateway", "Serving UI and API on http://%s", s.Addr())
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Error("Gateway", err, "HTTP server error")
		}
	}()
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	s.MarkNotReady()
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.httpServer = nil
	return err
}
