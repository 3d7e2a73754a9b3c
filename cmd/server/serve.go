package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"hls-restream-panel/internal/panel"
	"hls-restream-panel/internal/platform/config"
	"hls-restream-panel/internal/platform/logger"
	"hls-restream-panel/internal/platform/metrics"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(a *app) *cobra.Command {
	var server config.Server

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the control panel",
		RunE: func(cmd *cobra.Command, args []string) error {
			server.Set()
			return a.serve(server)
		},
	}

	if err := server.Init(cmd); err != nil {
		panic(err)
	}
	return cmd
}

func (a *app) serve(cfg config.Server) error {
	log := a.logger

	met := metrics.New()
	reg, err := a.registry(met)
	if err != nil {
		return err
	}
	h := panel.NewHandler(reg, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(logger.RequestLogger(log))
	r.Use(metrics.RequestMiddleware(met, "/metrics"))
	r.Use(middleware.Recoverer)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		met.Handler(func() {
			if records, err := reg.List(); err == nil {
				met.SetConfiguredStreams(len(records))
			}
		}).ServeHTTP(w, r)
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	h.Routes(r)

	srv := &http.Server{
		Addr:              cfg.Bind,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	log.Info("server starting",
		"bind", cfg.Bind,
		"store", a.panel.StorePath,
		"playlist", a.panel.PlaylistPath,
		"log_level", a.log.Level,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Error("server error", "error", err)
		return err
	case <-sigCh:
	}

	log.Info("shutdown signal received, draining connections")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped")
	return nil
}
