package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-go-golems/asker/pkg/answer"
	"github.com/go-go-golems/asker/pkg/conversation"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
)

const GeneratePath = "/api/generate"

// maxRequestBytes bounds the size of a generate request body.
const maxRequestBytes = 1 << 20

// Server exposes an AnswerService as the JSON endpoint the http provider talks to.
type Server struct {
	service conversation.AnswerService
	router  *mux.Router
	addr    string
	origins []string
}

type Option func(*Server)

func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		s.origins = origins
	}
}

func NewServer(addr string, service conversation.AnswerService, options ...Option) *Server {
	ret := &Server{
		service: service,
		router:  mux.NewRouter(),
		addr:    addr,
		origins: []string{"*"},
	}
	for _, o := range options {
		o(ret)
	}
	ret.setupRoutes()
	return ret
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc(GeneratePath, s.generateHandler).Methods(http.MethodPost)
	s.router.HandleFunc("/health", s.healthHandler).Methods(http.MethodGet)
}

// Handler returns the router wrapped in CORS and request logging.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Accept"},
	})
	return c.Handler(logRequests(s.router))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.addr).Msg("serving answer endpoint")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Info().Msg("shutting down answer endpoint")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) generateHandler(w http.ResponseWriter, r *http.Request) {
	var req answer.GenerateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, answer.GenerateResponse{Error: "invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, answer.GenerateResponse{Error: "text is required"})
		return
	}

	a, err := s.service.Answer(r.Context(), req.Text)
	if err != nil {
		log.Error().Err(err).Msg("answer service failed")
		writeJSON(w, http.StatusBadGateway, answer.GenerateResponse{Error: "could not generate an answer"})
		return
	}

	writeJSON(w, http.StatusOK, answer.GenerateResponse{Answer: &a})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("could not write response")
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
