package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/componentregistry"
	ssconfig "github.com/c360studio/semstreams/config"
	"github.com/c360studio/semstreams/metric"
	"github.com/c360studio/semstreams/service"
	"github.com/c360studio/semstreams/types"
	"github.com/spf13/cobra"

	"github.com/c360studio/semgraph/config"
	graphwriter "github.com/c360studio/semgraph/processor/graph-writer"
)

func serveCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the streaming graph-writer platform",
		Long: `Serve runs the NATS-based component platform with the graph-writer
attached to the GRAPH stream. Upstream producers publish entity payloads to
graph.ingest.entity; the writer commits them to the SPARQL store with audit
trail and stale-data cleanup.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	printBanner()
	logger := slog.Default()

	natsURL := cfg.NATS.URL
	if envURL := os.Getenv("NATS_URL"); envURL != "" {
		natsURL = envURL
	}
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}

	natsClient, err := connectNATS(ctx, natsURL, logger)
	if err != nil {
		return wrapNATSError(err, natsURL)
	}
	defer natsClient.Close(ctx)

	platformCfg := buildPlatformConfig(cfg, natsURL)

	// Ensure JetStream streams exist
	streamsManager := ssconfig.NewStreamsManager(natsClient, logger)
	if err := streamsManager.EnsureStreams(ctx, platformCfg); err != nil {
		return fmt.Errorf("ensure streams: %w", err)
	}

	slog.Info("Semgraph ready",
		"version", Version,
		"store", cfg.Store.Endpoint,
		"scope", cfg.Scope.Tenant+"/"+cfg.Scope.Workspace)

	metricsRegistry := metric.NewMetricsRegistry()
	platform := types.PlatformMeta{
		Org:      platformCfg.Platform.Org,
		Platform: platformCfg.Platform.ID,
	}

	configManager, err := ssconfig.NewConfigManager(platformCfg, natsClient, logger)
	if err != nil {
		return fmt.Errorf("create config manager: %w", err)
	}
	if err := configManager.Start(ctx); err != nil {
		return fmt.Errorf("start config manager: %w", err)
	}
	defer configManager.Stop(5 * time.Second)

	// Create and populate component registry
	componentRegistry := component.NewRegistry()

	slog.Debug("Registering semstreams component factories")
	if err := componentregistry.Register(componentRegistry); err != nil {
		return fmt.Errorf("register semstreams components: %w", err)
	}

	slog.Debug("Registering semgraph component factories")
	if err := graphwriter.Register(componentRegistry); err != nil {
		return fmt.Errorf("register graph-writer: %w", err)
	}

	factories := componentRegistry.ListFactories()
	slog.Info("Component factories registered", "count", len(factories))

	// Create service registry and manager (semstreams pattern)
	serviceRegistry := service.NewServiceRegistry()
	if err := service.RegisterAll(serviceRegistry); err != nil {
		return fmt.Errorf("register services: %w", err)
	}

	manager := service.NewServiceManager(serviceRegistry)
	ensureServiceManagerConfig(platformCfg)

	svcDeps := &service.Dependencies{
		NATSClient:        natsClient,
		MetricsRegistry:   metricsRegistry,
		Logger:            logger,
		Platform:          platform,
		Manager:           configManager,
		ComponentRegistry: componentRegistry,
	}

	if err := configureAndCreateServices(platformCfg, manager, svcDeps); err != nil {
		return err
	}
	slog.Info("All services configured")

	signalCtx, signalCancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	slog.Info("Starting all services")
	if err := manager.StartAll(signalCtx); err != nil {
		return fmt.Errorf("start services: %w", err)
	}
	slog.Info("All services started successfully")

	<-signalCtx.Done()
	slog.Info("Received shutdown signal")

	shutdownTimeout := 30 * time.Second
	if err := manager.StopAll(shutdownTimeout); err != nil {
		slog.Error("Error stopping services", "error", err)
	}

	slog.Info("Semgraph shutdown complete")
	return nil
}

// buildPlatformConfig maps the semgraph configuration onto the platform
// config the semstreams services consume.
func buildPlatformConfig(cfg *config.Config, natsURL string) *ssconfig.Config {
	writerConfig := map[string]any{
		"store_endpoint":    cfg.Store.Endpoint,
		"tenant":            cfg.Scope.Tenant,
		"workspace":         cfg.Scope.Workspace,
		"query_batch_size":  cfg.Store.QueryBatchSize,
		"delete_batch_size": cfg.Store.DeleteBatchSize,
		"insert_batch_size": cfg.Store.InsertBatchSize,
		"lock_ttl":          cfg.NATS.LockTTL,
	}
	writerJSON, _ := json.Marshal(writerConfig)

	return &ssconfig.Config{
		Version: "1.0.0",
		Platform: ssconfig.PlatformConfig{
			Org:         "semgraph",
			ID:          "semgraph-local",
			Environment: "dev",
		},
		NATS: ssconfig.NATSConfig{
			URLs:          []string{natsURL},
			MaxReconnects: -1,
			ReconnectWait: 2 * time.Second,
			JetStream: ssconfig.JetStreamConfig{
				Enabled: true,
			},
		},
		Services: types.ServiceConfigs{},
		Components: ssconfig.ComponentConfigs{
			"graph-writer": types.ComponentConfig{
				Name:    "graph-writer",
				Type:    types.ComponentTypeOutput,
				Enabled: true,
				Config:  writerJSON,
			},
		},
		Streams: ssconfig.StreamConfigs{
			"GRAPH": ssconfig.StreamConfig{
				Subjects: []string{
					"graph.ingest.entity",
				},
				MaxAge:   "24h",
				Storage:  "file",
				Replicas: 1,
			},
		},
	}
}

// wrapNATSError provides helpful guidance when NATS connection fails.
func wrapNATSError(err error, url string) error {
	errStr := err.Error()

	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no servers available") ||
		strings.Contains(errStr, "timeout") {
		return fmt.Errorf(`NATS connection failed: %w

NATS is not running at %s.

To start NATS:
  docker compose up -d nats

Or set NATS_URL environment variable to point to your NATS server.`, err, url)
	}

	return fmt.Errorf("NATS connection failed: %w", err)
}

// ensureServiceManagerConfig ensures service-manager config exists with defaults
func ensureServiceManagerConfig(cfg *ssconfig.Config) {
	if cfg.Services == nil {
		cfg.Services = make(types.ServiceConfigs)
	}

	if _, exists := cfg.Services["service-manager"]; !exists {
		slog.Debug("Adding default service-manager config")
		defaultConfig := map[string]any{
			"http_port":  8080,
			"swagger_ui": false,
			"server_info": map[string]string{
				"title":       "Semgraph API",
				"description": "audited knowledge-graph ingestion",
				"version":     Version,
			},
		}
		defaultConfigJSON, _ := json.Marshal(defaultConfig)
		cfg.Services["service-manager"] = types.ServiceConfig{
			Name:    "service-manager",
			Enabled: true,
			Config:  defaultConfigJSON,
		}
	}
}

// configureAndCreateServices configures the manager and creates all services
func configureAndCreateServices(
	cfg *ssconfig.Config,
	manager *service.Manager,
	svcDeps *service.Dependencies,
) error {
	slog.Debug("Configuring Manager")
	if err := manager.ConfigureFromServices(cfg.Services, svcDeps); err != nil {
		return fmt.Errorf("configure service manager: %w", err)
	}

	slog.Debug("Creating services from config", "count", len(cfg.Services))
	for name, svcConfig := range cfg.Services {
		if name == "service-manager" {
			continue
		}

		if !svcConfig.Enabled {
			slog.Info("Service disabled in config", "name", name)
			continue
		}
		if !manager.HasConstructor(name) {
			slog.Warn("Service configured but not registered", "key", name)
			continue
		}
		if _, err := manager.CreateService(name, svcConfig.Config, svcDeps); err != nil {
			return fmt.Errorf("create service %s: %w", name, err)
		}
		slog.Info("Created service", "name", name)
	}

	return nil
}
