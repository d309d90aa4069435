// Package server exposes the tool over HTTP for the browser UI: load a
// specification, browse its GET operations, execute calls, inspect stored
// results, and generate conversion templates.
package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alvera-ai/interoperability-template-generator/internal/executor"
	"github.com/alvera-ai/interoperability-template-generator/internal/llm"
	"github.com/alvera-ai/interoperability-template-generator/internal/spec"
	"github.com/alvera-ai/interoperability-template-generator/internal/store"
)

// Options configures the server.
type Options struct {
	Addr           string
	RequestTimeout time.Duration
	Store          *store.Store
	// LLM may be nil; template generation then answers 503.
	LLM *llm.Client
}

// Server holds the currently loaded Specification for the session and
// passes it explicitly into every resolver call. The catalog itself is
// immutable; the guard only covers replacing it on reload.
type Server struct {
	opt     Options
	exec    *executor.Executor
	engine  *gin.Engine
	httpsrv *http.Server

	mu       sync.RWMutex
	current  *spec.Specification
	specName string
}

// New builds the server and its routes.
func New(opt Options) *Server {
	if opt.Addr == "" {
		opt.Addr = ":8080"
	}
	gin.SetMode(gin.ReleaseMode)
	e := gin.New()
	e.Use(gin.Recovery(), requestLog())

	s := &Server{
		opt:    opt,
		exec:   executor.New(opt.RequestTimeout),
		engine: e,
		httpsrv: &http.Server{
			Handler: e,
		},
	}

	api := e.Group("/api")
	api.POST("/spec", s.handleLoadSpec)
	api.GET("/spec", s.handleSpecInfo)
	api.GET("/operations", s.handleListOperations)
	api.GET("/operations/parameters", s.handleOperationParameters)
	api.POST("/call", s.handleCall)
	api.GET("/results", s.handleListResults)
	api.GET("/results/:id", s.handleGetResult)
	api.POST("/tables", s.handleCreateTable)
	api.POST("/templates", s.handleGenerateTemplate)
	api.POST("/templates/apply", s.handleApplyTemplate)

	return s
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	l, err := net.Listen("tcp", s.opt.Addr)
	if err != nil {
		return err
	}
	slog.Info("starting HTTP server", "addr", s.opt.Addr)
	go s.httpsrv.Serve(l)
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	slog.Info("shutting down HTTP server", "addr", s.opt.Addr)
	return s.httpsrv.Shutdown(ctx)
}

// Engine returns the underlying gin engine, used by tests.
func (s *Server) Engine() *gin.Engine { return s.engine }

// currentSpec snapshots the session's Specification.
func (s *Server) currentSpec() (*spec.Specification, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.specName, s.current != nil
}

// replaceSpec swaps the session's Specification wholesale.
func (s *Server) replaceSpec(sp *spec.Specification, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = sp
	s.specName = name
}

func requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).Round(time.Millisecond).String(),
		)
	}
}
