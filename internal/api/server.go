// Package api exposes the analysis entry points over HTTP for xorsiftd.
package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/net/netutil"

	"github.com/RowanDark/xorsift/internal/cipher"
	"github.com/RowanDark/xorsift/internal/logging"
	"github.com/RowanDark/xorsift/internal/observability/metrics"
)

// TokenHeader carries the static API token when one is configured.
const TokenHeader = "X-Xorsift-Token"

// Config configures the REST API server.
type Config struct {
	Addr string
	// MaxConns caps concurrent connections on the listener. Zero means no cap.
	MaxConns int
	// Token, when set, is required in TokenHeader on every /v1 request.
	Token string

	Workers       int
	Top           int
	HighMatch     float64
	NumeralPolicy cipher.NumeralPolicy

	Logger *slog.Logger
	Audit  *logging.AuditLogger
}

// Server exposes REST endpoints for decoding input and running analyses.
type Server struct {
	cfg        Config
	router     *gin.Engine
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer constructs a REST API server using the provided configuration.
func NewServer(cfg Config) (*Server, error) {
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	if cfg.Addr == "" {
		return nil, errors.New("api address must be provided")
	}
	if cfg.MaxConns < 0 {
		return nil, errors.New("max connections must not be negative")
	}
	if cfg.NumeralPolicy == "" {
		cfg.NumeralPolicy = cipher.PolicyWrap
	}
	s := &Server{
		cfg:    cfg,
		logger: logging.OrDiscard(cfg.Logger).With("component", "api"),
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware("xorsiftd"), s.observe())

	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := router.Group("/v1", s.requireToken())
	v1.POST("/decode", s.handleDecode)
	v1.POST("/detect", s.handleDetect)
	v1.POST("/matrix-options", s.handleMatrixOptions)
	v1.POST("/analyze", s.handleAnalyze)
	v1.POST("/analyze/auto", s.handleAnalyzeAuto)
	v1.POST("/compare", s.handleCompare)
	return router
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address and blocks until the provided
// context is cancelled or a fatal error occurs.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled. When MaxConns is
// set, at most that many connections are served at once.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.cfg.MaxConns > 0 {
		ln = netutil.LimitListener(ln, s.cfg.MaxConns)
	}
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", "addr", ln.Addr().String(), "max_conns", s.cfg.MaxConns)
		err := s.httpServer.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		_ = s.httpServer.Shutdown(shutdownCtx)
		return <-errCh
	case err := <-errCh:
		return err
	}
}

// observe stamps a request ID and records request metrics.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader("X-Request-ID"))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		metrics.ObserveHTTPRequest(c.Request.Context(), route, c.Request.Method, c.Writer.Status(), elapsed)
		s.logger.Debug("request served",
			"request_id", requestID,
			"route", route,
			"status", c.Writer.Status(),
			"duration", elapsed,
		)
	}
}

func (s *Server) requireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.cfg.Token == "" {
			c.Next()
			return
		}
		got := strings.TrimSpace(c.GetHeader(TokenHeader))
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.cfg.Token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Error: "missing or invalid api token",
				Code:  "UNAUTHORIZED",
			})
			return
		}
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	return c.GetString("request_id")
}
