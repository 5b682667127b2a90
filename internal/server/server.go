package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/minio/minio-go/v7"
)

type Config struct {
	Addr   string // e.g. ":8080"
	DB     *sql.DB
	Minio  *minio.Client
	Bucket string
}

type Server struct {
	httpServer *http.Server
}

func New(cfg Config) *Server {
	mux := http.NewServeMux()

	// Health endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "ok",
		})
	})

	mux.Handle("/ready", cfg.readyHandler(cfg.DB))
	mux.Handle("/signup", cfg.signupHandler(cfg.DB))
	mux.Handle("/login", cfg.loginHandler(cfg.DB))
	mux.Handle("/upload", cfg.uploadHandler(cfg.DB, cfg.Minio, cfg.Bucket))
	mux.Handle("/list_files", cfg.listFilesHandler(cfg.DB))
	mux.Handle("/download/", cfg.downloadHandler(cfg.DB, cfg.Minio, cfg.Bucket))
	mux.Handle("/metrics", metricsHandler())

	// Wrap middleware: requestID -> logging -> security headers -> mux
	var handler http.Handler = mux
	handler = securityHeadersMiddleware(handler)
	handler = loggingMiddleware(handler)
	handler = requestIDMiddleware(handler)

	s := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Server{httpServer: s}
}

// Handler exposes the fully wrapped handler chain for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.httpServer.Serve(ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
