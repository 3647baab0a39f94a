// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the question processor and answer generator over
// HTTP.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/pdiddy/virtual-ta/internal/answer"
	"github.com/pdiddy/virtual-ta/internal/question"
	"github.com/pdiddy/virtual-ta/pkg/types"
)

const serviceName = "TDS Virtual TA"

// Server routes requests to the processor and generator. Both are shared
// across requests and must be safe for concurrent use.
type Server struct {
	processor *question.Processor
	generator *answer.Generator
	cfg       types.ServerConfig
	version   string
	logger    *zap.Logger
}

// New returns a Server. A nil logger discards output.
func New(processor *question.Processor, generator *answer.Generator, cfg types.ServerConfig, version string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		processor: processor,
		generator: generator,
		cfg:       cfg,
		version:   version,
		logger:    logger,
	}
}

// Handler builds the router with middleware and all routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(s.recoverPanics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins(),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}))
	if s.cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.cfg.RequestTimeout))
	}

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/", s.handleAnswer)
		r.Get("/stats", s.handleStats)
	})

	return r
}

func (s *Server) allowedOrigins() []string {
	if len(s.cfg.AllowedOrigins) == 0 {
		return []string{"*"}
	}
	return s.cfg.AllowedOrigins
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type questionRequest struct {
	Question string `json:"question"`
	Image    string `json:"image,omitempty"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": serviceName + " API",
		"version": s.version,
		"endpoints": map[string]string{
			"POST /api/":     "Submit a question to get an answer",
			"GET /api/stats": "Knowledge base statistics",
			"GET /health":    "Health check endpoint",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": serviceName,
	})
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Question cannot be empty"})
		return
	}

	pq, err := s.processor.Process(req.Question, req.Image)
	if errors.Is(err, question.ErrEmptyQuestion) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Question cannot be empty"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "Internal server error: " + err.Error()})
		return
	}

	result := s.generator.Generate(pq)
	s.logger.Debug("question answered",
		zap.String("category", string(pq.Category)),
		zap.Strings("keywords", pq.Keywords),
		zap.Int("links", len(result.Links)),
	)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.generator.Stats())
}

// recoverPanics turns a handler panic into a 500 with a JSON detail.
func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			s.logger.Error("panic serving request",
				zap.String("path", r.URL.Path),
				zap.Any("panic", rec),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
			writeJSON(w, http.StatusInternalServerError, errorResponse{
				Detail: fmt.Sprintf("Internal server error: %v", rec),
			})
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
