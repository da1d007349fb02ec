package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/keyurpatil06/phishlens/internal/core"
)

// Scanner is the service surface the HTTP layer needs
type Scanner interface {
	ScanURL(ctx context.Context, targetURL string) (*core.URLAssessment, error)
	ScanEmail(ctx context.Context, rawEmail string) (*core.EmailAssessment, error)
	CrossCheck(ctx context.Context, urls []string) ([]core.ReputationResult, error)
}

// Server exposes scan operations over HTTP
type Server struct {
	scanner Scanner
	logger  *zap.Logger
	addr    string
	http    *http.Server
}

// New creates a new HTTP server
func New(scanner Scanner, logger *zap.Logger, addr string) *Server {
	return &Server{
		scanner: scanner,
		logger:  logger,
		addr:    addr,
	}
}

type scanRequest struct {
	URL   string `json:"url"`
	Email string `json:"email"`
}

type crossCheckRequest struct {
	URLs []string `json:"urls"`
}

// Router builds the gin handler
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestLogger())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.POST("/scan", s.handleScan)
	api.POST("/cross-check", s.handleCrossCheck)

	return router
}

// Start begins serving until Stop is called
func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("HTTP server starting", zap.String("address", s.addr))

	go func() {
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop shuts the server down gracefully
func (s *Server) Stop(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) handleScan(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	switch {
	case req.URL != "":
		result, err := s.scanner.ScanURL(c.Request.Context(), req.URL)
		if err != nil {
			s.writeScanError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"type": "url", "result": result})
	case req.Email != "":
		result, err := s.scanner.ScanEmail(c.Request.Context(), req.Email)
		if err != nil {
			s.writeScanError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"type":         "email",
			"ruleCheck":    result.RuleCheck,
			"totalUrls":    result.TotalURLs,
			"results":      result.Results,
			"hasMalicious": result.HasMalicious,
		})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": core.ErrMissingTarget.Error()})
	}
}

func (s *Server) handleCrossCheck(c *gin.Context) {
	var req crossCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if len(req.URLs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no URLs provided"})
		return
	}

	results, err := s.scanner.CrossCheck(c.Request.Context(), req.URLs)
	if err != nil {
		s.logger.Error("Cross-check failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cross-check failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (s *Server) writeScanError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrMissingTarget):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, core.ErrMissingAPIKey):
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		s.logger.Error("Scan failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "scan failed"})
	}
}

// requestLogger logs each request with latency and status
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("Handled request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
