package gateway

import (
	"net/http"
	"strings"

	"shipmate/internal/status"
	"shipmate/pkg/logging"

	"github.com/gin-gonic/gin"
)

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type toolCallRequest struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

func (s *Server) handleIndex(ctx *gin.Context) {
	page, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

func (s *Server) handleHealth(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleReady(ctx *gin.Context) {
	if !s.ready.Load() {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "starting"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (s *Server) handleChat(ctx *gin.Context) {
	if s.chat == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "chat service not available"})
		return
	}

	var req chatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "message must not be empty"})
		return
	}

	reply, err := s.chat.Chat(ctx.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		chatTurnsTotal.WithLabelValues("error").Inc()
		logging.Error("Gateway", err, "Chat turn failed")
		ctx.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	chatTurnsTotal.WithLabelValues("success").Inc()
	ctx.JSON(http.StatusOK, reply)
}

func (s *Server) handleListToolgroups(ctx *gin.Context) {
	if s.runtime == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "tool runtime not available"})
		return
	}

	groups, err := s.runtime.ListToolgroups(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"toolgroups": groups})
}

func (s *Server) handleListTools(ctx *gin.Context) {
	if s.runtime == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "tool runtime not available"})
		return
	}

	name := ctx.Param("name")
	tools, err := s.runtime.ListTools(ctx.Request.Context(), name)
	if err != nil {
		ctx.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"toolgroup": name, "tools": tools})
}

func (s *Server) handleToolCall(ctx *gin.Context) {
	if s.runtime == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "tool runtime not available"})
		return
	}

	var req toolCallRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Name == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "tool name is required"})
		return
	}

	result, err := s.runtime.InvokeTool(ctx.Request.Context(), req.Name, req.Arguments)
	if err != nil {
		toolInvocationsTotal.WithLabelValues("error").Inc()
		ctx.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	// Tool-level failures still return 200 so the test tab can display
	// them next to the invocation.
	if result.ErrorMessage != "" {
		toolInvocationsTotal.WithLabelValues("error").Inc()
	} else {
		toolInvocationsTotal.WithLabelValues("success").Inc()
	}
	ctx.JSON(http.StatusOK, result)
}

func (s *Server) handleStatus(ctx *gin.Context) {
	if s.engine == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "status engine not available"})
		return
	}

	report := s.engine.Run(ctx.Request.Context())
	if ctx.Query("format") == "text" {
		ctx.String(http.StatusOK, "%s", status.RenderText(report))
		return
	}
	ctx.JSON(http.StatusOK, report)
}
