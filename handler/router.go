package handler

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

type RouterOption func(*routerConfig)

type routerConfig struct {
	allowOrigin string
}

// WithAllowOrigin enables CORS for browser clients served from origin ("*" for any).
func WithAllowOrigin(origin string) RouterOption {
	return func(c *routerConfig) {
		c.allowOrigin = strings.TrimSpace(origin)
	}
}

// NewRouter exposes h over HTTP: POST /api/chat and GET /health.
func NewRouter(h *Handler, opts ...RouterOption) *gin.Engine {
	var cfg routerConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery(), h.requestLogger())
	if cfg.allowOrigin != "" {
		r.Use(cors(cfg.allowOrigin))
	}

	r.POST(RelayPath, h.handleRelay)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	})
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorResponse{Error: "not found"})
	})
	return r
}

func (h *Handler) handleRelay(c *gin.Context) {
	corrID := correlationID(map[string]string{correlationHeader: c.GetHeader(correlationHeader)})
	c.Set("correlation_id", corrID)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.Warn("failed to read request body", "err", err, "correlation_id", corrID)
		body = nil
	}

	status, payload := h.serve(c.Request.Context(), corrID, body)
	c.Header(correlationHeader, corrID)
	c.JSON(status, payload)
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"correlation_id", c.GetString("correlation_id"),
		)
	}
}

func cors(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, "+correlationHeader)
		c.Header("Access-Control-Expose-Headers", correlationHeader)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
