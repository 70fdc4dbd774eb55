package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"connectrpc.com/validate"

	"go-mingle/config"
	"go-mingle/domain/session"
	"go-mingle/server"
	"go-mingle/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("error loading config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	rng, err := session.NewRandom()
	if err != nil {
		slog.Error("error seeding random source", slog.String("error", err.Error()))
		os.Exit(1)
	}
	limits := cfg.Limits()
	coordinator := session.NewCoordinator(
		limits,
		session.NewRegistry(limits, rng, session.UUIDGenerator{}),
		session.NewPlayerIndex(),
		logger.With(slog.String("component", "coordinator")),
	)
	srv := server.New(coordinator, server.Options{
		ActionRate:   cfg.ActionRate,
		ActionBurst:  cfg.ActionBurst,
		StreamBuffer: cfg.StreamBuffer,
		Logger:       logger.With(slog.String("component", "server")),
	})

	mux := http.NewServeMux()
	validateInterceptor, err := validate.NewInterceptor()
	if err != nil {
		slog.Error("error creating interceptor",
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// Connect handlers
	gameServicePath, gameServiceHandler := server.NewGameServiceHandler(srv)
	healthServicePath, healthServiceHandler := server.NewHealthServiceHandler(
		srv,
		connect.WithInterceptors(validateInterceptor),
	)
	mux.Handle(gameServicePath, gameServiceHandler)
	mux.Handle(healthServicePath, healthServiceHandler)

	// Static file and index.html fallback handler
	distDir := cfg.StaticDir
	fs := http.FileServer(http.Dir(distDir))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(distDir, filepath.Clean("/"+r.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			fs.ServeHTTP(w, r)
			return
		}

		// Fallback to index.html for client-side routing
		http.ServeFile(w, r, filepath.Join(distDir, "index.html"))
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go srv.Sweep(ctx, time.Minute)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           utils.WithCORS(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown", slog.String("error", err.Error()))
		}
	}()

	slog.Info("✅ Server running", slog.String("addr", cfg.Addr))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("serve", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func newLogger(cfg config.Config) *slog.Logger {
	level, _ := cfg.Level()
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.LogFormat, "text") {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
