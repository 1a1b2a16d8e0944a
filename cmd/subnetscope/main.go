package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/subnetscope/subnetscope/internal/analyze"
	"github.com/subnetscope/subnetscope/internal/cache"
	"github.com/subnetscope/subnetscope/internal/config"
	"github.com/subnetscope/subnetscope/internal/event"
	"github.com/subnetscope/subnetscope/internal/geo"
	"github.com/subnetscope/subnetscope/internal/history"
	"github.com/subnetscope/subnetscope/internal/plugin"
	"github.com/subnetscope/subnetscope/internal/server"
	"github.com/subnetscope/subnetscope/internal/snapshot"
	"github.com/subnetscope/subnetscope/internal/store"
	"github.com/subnetscope/subnetscope/internal/taostats"
	"github.com/subnetscope/subnetscope/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		return
	}

	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("SubnetScope server starting", zap.String("version", version.Short()))

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	// Shared infrastructure
	bus := event.NewBus(logger.Named("bus"))
	caches := cache.NewStore(cfg.GetDuration("cache.ttl"))

	client := taostats.NewClient(taostats.Config{
		BaseURL:     cfg.GetString("taostats.base_url"),
		APIKey:      cfg.GetString("taostats.api_key"),
		MinInterval: cfg.GetDuration("taostats.min_interval"),
	}, logger.Named("taostats"))

	resolver := geo.NewResolver(
		cfg.GetString("geo.base_url"),
		cfg.GetDuration("geo.timeout"),
		logger.Named("geo"),
	)

	builder := snapshot.NewBuilder(client, resolver, snapshot.BuilderConfig{
		PageLimit:  cfg.GetInt("taostats.page_limit"),
		BatchSize:  cfg.GetInt("geo.batch_size"),
		BatchDelay: cfg.GetDuration("geo.batch_delay"),
	}, logger.Named("builder"))

	db, err := store.New(cfg.GetString("history.path"))
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	// Create module registry
	registry := plugin.NewRegistry(logger)

	// Register all modules (compile-time composition)
	defaultNetuid := cfg.GetInt("taostats.default_netuid")
	modules := []plugin.Plugin{
		snapshot.New(builder, client, caches, bus, defaultNetuid),
		analyze.New(caches, bus),
		history.New(db, bus),
	}
	for _, m := range modules {
		if err := registry.Register(m); err != nil {
			logger.Fatal("failed to register module", zap.Error(err))
		}
	}

	// Initialize all modules
	if err := registry.InitAll(cfg); err != nil {
		logger.Fatal("failed to initialize modules", zap.Error(err))
	}

	// Start modules
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := registry.StartAll(ctx); err != nil {
		logger.Fatal("failed to start modules", zap.Error(err))
	}

	// Create and start HTTP server
	addr := cfg.GetString("server.host") + ":" + cfg.GetString("server.port")
	if addr == ":" {
		addr = "0.0.0.0:8080"
	}
	srv := server.New(addr, registry, caches, server.HealthInfo{
		APIBase:          cfg.GetString("taostats.base_url"),
		DefaultSubnet:    defaultNetuid,
		APIKeyConfigured: cfg.GetString("taostats.api_key") != "",
	}, logger)

	// Start server in background
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	logger.Info("SubnetScope server ready", zap.String("addr", addr))

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	registry.StopAll()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}

	logger.Info("SubnetScope server stopped")
}
