package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Wang-tianhao/cafe-auth-go/internal/api"
	"github.com/Wang-tianhao/cafe-auth-go/internal/config"
	"github.com/Wang-tianhao/cafe-auth-go/internal/store"
	"github.com/Wang-tianhao/cafe-auth-go/internal/store/memory"
	"github.com/Wang-tianhao/cafe-auth-go/internal/store/mongo"
	"github.com/Wang-tianhao/cafe-auth-go/jwtauth"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting cafe-api", "env", cfg.Env)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	st, err := openStore(rootCtx, cfg.Storage)
	if err != nil {
		log.Error("store_init_failed", slog.String("kind", cfg.Storage.Kind), slog.String("err", err.Error()))
		rootCancel()
		os.Exit(1)
	}
	log.Info("store_ready", slog.String("kind", cfg.Storage.Kind))

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := jwtauth.NewMetrics(reg)
	if err != nil {
		log.Error("metrics_init_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	authCfg, err := jwtauth.NewConfig(
		jwtauth.WithSigning(cfg.Signing()),
		jwtauth.WithLogger(log),
		jwtauth.WithMetrics(metrics),
	)
	if err != nil {
		log.Error("auth_config_invalid", slog.String("err", err.Error()))
		os.Exit(1)
	}

	router := api.NewRouter(api.Options{
		Store:      st,
		Auth:       authCfg,
		Logger:     log,
		BasePath:   cfg.HTTP.Prefix,
		BcryptCost: cfg.Security.BcryptCost,
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.Handle("/", router)

	httpAddr := cfg.HTTP.Addr()
	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", httpAddr)
	if err != nil {
		log.Error("http_listen_failed", slog.String("addr", httpAddr), slog.String("err", err.Error()))
		os.Exit(1)
	}
	log.Info("http_listen_start", slog.String("addr", httpAddr), slog.String("prefix", cfg.HTTP.Prefix))

	serveErrCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_incomplete", slog.String("err", err.Error()))
	} else {
		log.Info("http_stopped")
	}

	if err := st.Close(shutdownCtx); err != nil {
		log.Warn("store_close_failed", slog.String("err", err.Error()))
	}

	log.Info("service_stopped")
}

func openStore(ctx context.Context, sc config.StorageConfig) (store.Store, error) {
	switch sc.Kind {
	case config.StorageMemory:
		return memory.New(), nil
	case config.StorageMongo:
		dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return mongo.New(dbCtx, sc.MongoURI)
	default:
		return nil, fmt.Errorf("unknown storage kind %q", sc.Kind)
	}
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
