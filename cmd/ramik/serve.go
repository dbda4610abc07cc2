package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/muhammadarsalan100/ramik/guard"
	"github.com/muhammadarsalan100/ramik/internal/web"
)

const shutdownTimeout = 10 * time.Second

func serve(ctx context.Context, a *app, args []string) error {
	fs := newFlags("serve")
	addr := fs.String("addr", a.cfg.Server.Addr, "listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var geo *guard.GeoIP
	if a.cfg.Server.GeoIPPath != "" {
		db, err := guard.OpenGeoIP(a.cfg.Server.GeoIPPath)
		if err != nil {
			return err
		}
		defer db.Close()
		geo = db
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	registry.MustRegister(a.client.Collectors()...)
	registry.MustRegister(a.dash.Cache().Collectors()...)

	g := guard.New(a.client.Sessions(), a.cfg.Server.PublicPath,
		guard.WithLogger(a.log),
		guard.WithGeoIP(geo),
	)

	gin.SetMode(gin.ReleaseMode)
	srv, err := web.New(web.Options{
		Dashboard:  a.dash,
		Guard:      g,
		PublicPath: a.cfg.Server.PublicPath,
		GeoIP:      geo,
		Registry:   registry,
		Logger:     a.log,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         *addr,
		Handler:      srv.Handler(),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("dashboard listening", "addr", *addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}

	a.log.Info("shutting down dashboard")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}
