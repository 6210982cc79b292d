// Package server exposes the question answering service over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ragqa/internal/domain"
	"ragqa/internal/pipeline"
	"ragqa/internal/service"
)

// RAG is the subset of the service the HTTP API needs.
type RAG interface {
	Ask(ctx context.Context, question string, k int) (domain.Answer, error)
	AddDocuments(ctx context.Context, docs []domain.Document) (*pipeline.BuildReport, error)
	Stats() service.Stats
}

type Server struct {
	rag    RAG
	logger *slog.Logger
	engine *gin.Engine
}

func New(rag RAG, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{rag: rag, logger: logger}
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "ragqa"})
	})
	api := r.Group("/api/v1")
	{
		api.GET("/stats", s.stats)
		api.POST("/query", s.query)
		api.POST("/documents", s.addDocument)
	}
	s.engine = r
	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.engine, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("http server listening", "addr", addr)
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (s *Server) stats(c *gin.Context) {
	c.JSON(http.StatusOK, s.rag.Stats())
}

func (s *Server) query(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	ans, err := s.rag.Ask(c.Request.Context(), req.Question, req.K)
	if err != nil {
		s.fail(c, err)
		return
	}
	resp := queryResponse{Answer: ans.Text, Sources: make([]source, len(ans.Sources))}
	for i, r := range ans.Sources {
		resp.Sources[i] = source{
			Document:   r.DocumentID,
			StartIndex: r.Start,
			EndIndex:   r.End,
			Score:      r.Score,
			Text:       r.Text,
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) addDocument(c *gin.Context) {
	var req documentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	report, err := s.rag.AddDocuments(c.Request.Context(), []domain.Document{{ID: req.ID, Text: req.Text}})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, documentResponse{Document: req.ID, Chunks: report.Chunks})
}

func (s *Server) fail(c *gin.Context, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, errorResponse{Error: err.Error()})
}

// StatusFor maps an error kind to the HTTP status returned to clients.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidConfig), errors.Is(err, domain.ErrDimensionMismatch):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrDuplicateChunk):
		return http.StatusConflict
	case errors.Is(err, domain.ErrContextTooLarge):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrEmbeddingUnavailable), errors.Is(err, domain.ErrGenerationFailed):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
