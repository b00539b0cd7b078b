// Package web provides an HTTP server with routing and middleware.
// It uses Gin framework for high-performance web handling.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/PancyStudios/ArcaneBotGo/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

// DefaultRequestsPerMinute is the per-IP budget
const DefaultRequestsPerMinute = 100

// limiterTTL forgets clients idle for this long
const limiterTTL = 10 * time.Minute

// Options configures a Server
type Options struct {
	Port              string
	RequestsPerMinute int
	// MaxClients bounds the tracked IPs
	MaxClients int
}

// Server represents the web server
type Server struct {
	engine *gin.Engine
	http   *http.Server
	port   string

	limit    rate.Limit
	burst    int
	limitMu  sync.Mutex
	limiters *expirable.LRU[string, *rate.Limiter]
}

var (
	server *Server
)

// Init initializes the global web server
func Init(opts Options) *Server {
	server = NewServer(opts)
	return server
}

// Get returns the global web server
func Get() *Server {
	return server
}

// NewServer creates a new web server
func NewServer(opts Options) *Server {
	gin.SetMode(gin.ReleaseMode)

	if opts.Port == "" {
		opts.Port = "3000"
	}
	if opts.RequestsPerMinute <= 0 {
		opts.RequestsPerMinute = DefaultRequestsPerMinute
	}
	if opts.MaxClients <= 0 {
		opts.MaxClients = 10_000
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		engine:   engine,
		port:     opts.Port,
		limit:    rate.Every(time.Minute / time.Duration(opts.RequestsPerMinute)),
		burst:    opts.RequestsPerMinute,
		limiters: expirable.NewLRU[string, *rate.Limiter](opts.MaxClients, nil, limiterTTL),
	}

	// Apply middlewares
	s.engine.Use(s.logsMiddleware())
	s.engine.Use(s.rateLimitMiddleware())

	// Set up error handlers
	s.setupErrorHandlers()

	s.http = &http.Server{
		Addr:              ":" + opts.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Engine returns the underlying Gin engine
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// logsMiddleware logs every request at debug level
func (s *Server) logsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.WithFields(logger.Fields{
			"ip":      c.ClientIP(),
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Debug(fmt.Sprintf("[LOG] Nueva solicitud: %s %s", c.Request.Method, c.Request.URL.Path), "WebServer")
	}
}

// limiterFor returns the token bucket of an IP, creating it on first use
func (s *Server) limiterFor(ip string) *rate.Limiter {
	s.limitMu.Lock()
	defer s.limitMu.Unlock()

	if lim, ok := s.limiters.Get(ip); ok {
		return lim
	}
	lim := rate.NewLimiter(s.limit, s.burst)
	s.limiters.Add(ip, lim)
	return lim
}

// rateLimitMiddleware applies a per-IP token bucket
func (s *Server) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiterFor(c.ClientIP()).Allow() {
			logger.Warn(fmt.Sprintf("[LOG] Limite de solicitudes excedido: %s %s | %s", c.Request.Method, c.Request.URL.Path, c.ClientIP()), "WebServer")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests, please try again later.",
			})
			return
		}
		c.Next()
	}
}

// setupErrorHandlers sets up error handling routes
func (s *Server) setupErrorHandlers() {
	// 404 handler
	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not Found",
			"message": "The requested route does not exist.",
			"status":  404,
		})
	})

	// 405 handler
	s.engine.HandleMethodNotAllowed = true
	s.engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error":   "Method Not Allowed",
			"message": "The HTTP method is not allowed for this route.",
			"status":  405,
		})
	})
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	logger.Info(fmt.Sprintf("🚀 Servidor escuchando en http://localhost:%s", s.port), "WebServer")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StartAsync starts the web server in a goroutine
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			logger.Error(fmt.Sprintf("Error iniciando el servidor web: %v", err), "WebServer")
		}
	}()
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Group creates a new router group
func (s *Server) Group(path string, handlers ...gin.HandlerFunc) *gin.RouterGroup {
	return s.engine.Group(path, handlers...)
}

// GET registers a GET route
func (s *Server) GET(path string, handlers ...gin.HandlerFunc) {
	s.engine.GET(path, handlers...)
}
