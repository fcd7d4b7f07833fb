// Package web serves the browser surface: a single-page form editor backed
// by the orchestrator.
package web

import (
	"context"
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goliatone/go-labelform/pkg/orchestrator"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// NewServer wires the routes and returns a configured HTTP server.
func NewServer(o *orchestrator.Orchestrator, addr string, logger *slog.Logger) *http.Server {
	if logger == nil {
		logger = slog.Default()
	}

	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		panic("web: template bundle: " + err.Error())
	}
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic("web: static bundle: " + err.Error())
	}

	h := &Handlers{
		orchestrator: o,
		renderer:     NewRenderer(templateSub, logger),
		logger:       logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.HandleIndex)
	mux.HandleFunc("POST /template", h.HandleUpload)
	mux.HandleFunc("POST /template/clear", h.HandleClear)
	mux.HandleFunc("POST /fields/{name}", h.HandleField)
	mux.HandleFunc("GET /preview", h.HandlePreview)
	mux.HandleFunc("POST /print", h.HandlePrint)
	mux.HandleFunc("GET /printers", h.HandlePrinters)
	mux.HandleFunc("GET /status", h.HandleStatus)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticSub)))

	return &http.Server{
		Addr:    addr,
		Handler: securityHeaders(mux),
	}
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; img-src 'self' data:")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// Run starts the server and shuts it down cleanly on SIGINT/SIGTERM.
func Run(srv *http.Server, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("web: listening", "addr", srv.Addr)

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		logger.Info("web: shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
