package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/frudas24/gazewaldo/internal/app"
	"github.com/frudas24/gazewaldo/internal/config"
	"github.com/frudas24/gazewaldo/internal/display"
	"github.com/frudas24/gazewaldo/internal/logging"
	"github.com/frudas24/gazewaldo/internal/rtc"
	"github.com/frudas24/gazewaldo/internal/session"
	"github.com/frudas24/gazewaldo/internal/wininput"
	"go.uber.org/zap"
)

// run wires the application and blocks until shutdown.
func run(debug bool, configPath string) error {
	loader := config.NewLoader("./data")
	if configPath != "" {
		loader.SetConfigFile(configPath)
	}
	cfg, err := loader.Load()
	if err != nil {
		return err
	}

	log, err := logging.New(logging.Options{Dir: cfg.Log.Dir, Debug: debug || cfg.Log.Debug})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	d, cfg := app.ResolveDisplay(cfg, display.List, log)
	logStartup(log, cfg, d)

	publisher, err := rtc.NewPublisher(debug, log.Named("rtc"))
	if err != nil {
		return err
	}

	injector, err := wininput.NewInjector()
	if err != nil {
		if !errors.Is(err, wininput.ErrUnsupported) {
			return err
		}
		log.Info("os cursor follow unavailable", zap.Error(err))
	}

	appInstance, err := app.New(cfg, d, session.New(), publisher, injector, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := appInstance.Stop(); err != nil {
			log.Warn("shutdown tracker", zap.Error(err))
		}
	}()
	loader.Watch(log, appInstance.Apply)

	mux := http.NewServeMux()
	appInstance.RegisterRoutes(mux, "")
	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 2)
	go func() {
		if err := server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()
	go func() {
		errCh <- appInstance.Run(ctx)
	}()

	select {
	case <-ctx.Done():
		log.Info("interrupt received, shutting down")
	case <-appInstance.Done():
		log.Info("quit selected, shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// logStartup reports the resolved display and connection info.
func logStartup(log *zap.Logger, cfg config.Config, d display.Display) {
	log.Info("gazewaldo starting",
		zap.Int("display", d.Index),
		zap.Int("width", cfg.Display.Width),
		zap.Int("height", cfg.Display.Height),
		zap.Float64("dpi_x", cfg.Display.DPIX),
		zap.Float64("dpi_y", cfg.Display.DPIY),
		zap.Int("fps", cfg.Frame.FPS),
	)
	log.Info("listen addr", zap.String("addr", cfg.ListenAddr))
	host, port, err := net.SplitHostPort(cfg.ListenAddr)
	if err != nil {
		return
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	log.Info("local url", zap.String("url", "http://"+net.JoinHostPort(host, port)))
}
