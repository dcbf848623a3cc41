package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/c360studio/semstreams/natsclient"
	"github.com/spf13/cobra"

	"github.com/c360studio/semgraph/commit"
	"github.com/c360studio/semgraph/config"
	"github.com/c360studio/semgraph/ingest"
	"github.com/c360studio/semgraph/lock"
	"github.com/c360studio/semgraph/store"
)

func ingestCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "ingest [patterns...]",
		Short: "Ingest fact files into the store",
		Long: `Ingest parses triple fact files and commits them to the SPARQL store.

Each file is treated as one source document: changed properties are recorded
in the audit dataset and entities that disappeared from the document are
removed from the store. Patterns default to the configured ingest patterns.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			ctx := cmd.Context()
			runner, cleanup, err := buildRunner(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			patterns := args
			if len(patterns) == 0 {
				patterns = cfg.Ingest.Patterns
			}

			summary, err := runner.IngestPatterns(ctx, patterns)
			if err != nil {
				return err
			}

			fmt.Printf("Ingested %d files (%d triples, %d malformed lines skipped)\n",
				summary.Files, summary.Triples, summary.Skipped)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	return cmd
}

func auditCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "audit [patterns...]",
		Short: "Preview what an ingest would change, without writing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			ctx := cmd.Context()
			runner, cleanup, err := buildRunner(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			patterns := args
			if len(patterns) == 0 {
				patterns = cfg.Ingest.Patterns
			}

			previews, err := runner.Preview(ctx, patterns)
			if err != nil {
				return err
			}

			paths := make([]string, 0, len(previews))
			for path := range previews {
				paths = append(paths, path)
			}
			sort.Strings(paths)

			for _, path := range paths {
				p := previews[path]
				fmt.Printf("%s: %d changes, %d stale entities\n",
					path, p.ChangeCount, len(p.EntityURIsToDelete))
				for _, uri := range p.EntityURIsToDelete {
					fmt.Printf("  would delete %s\n", uri)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	return cmd
}

func watchCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the facts directory and re-ingest changed files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			runner, cleanup, err := buildRunner(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			watcher, err := ingest.NewWatcher(ingest.WatchConfig{
				DebounceDelay:  cfg.Ingest.DebounceDelay,
				FileExtensions: cfg.Ingest.FileExtensions,
				ExcludeDirs:    cfg.Ingest.ExcludeDirs,
			}, cfg.Ingest.FactsDir, slog.Default())
			if err != nil {
				return fmt.Errorf("create watcher: %w", err)
			}
			defer watcher.Stop()

			if err := watcher.Start(ctx); err != nil {
				return fmt.Errorf("start watcher: %w", err)
			}

			slog.Info("Watching for fact file changes",
				"facts_dir", cfg.Ingest.FactsDir,
				"scope", cfg.Scope.Tenant+"/"+cfg.Scope.Workspace)

			for {
				select {
				case <-ctx.Done():
					slog.Info("Watch stopped")
					return nil
				case event, ok := <-watcher.Events():
					if !ok {
						return nil
					}
					if event.Operation == ingest.WatchOpDelete {
						// Deletion of a fact file does not retract its
						// facts; re-ingesting an emptied file does.
						slog.Info("Fact file removed, store unchanged",
							"path", event.Path)
						continue
					}
					if _, err := runner.IngestFile(ctx, event.AbsPath); err != nil {
						slog.Error("Re-ingest failed",
							"path", event.Path,
							"error", err)
					}
				}
			}
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	return cmd
}

// buildRunner assembles the ingest runner from configuration: HTTP store
// client, committer, and (when NATS is configured) the advisory lock
// manager. The returned cleanup releases the NATS connection.
func buildRunner(ctx context.Context, cfg *config.Config) (*ingest.Runner, func(), error) {
	logger := slog.Default()

	httpClient := &http.Client{Timeout: cfg.Store.Timeout}
	storeClient := store.NewHTTPClient(cfg.Store.Endpoint,
		store.WithHTTPClient(httpClient),
		store.WithLogger(logger))

	committer := commit.NewCommitter(storeClient,
		commit.WithLogger(logger),
		commit.WithBatchSizes(cfg.Store.QueryBatchSize, cfg.Store.DeleteBatchSize, cfg.Store.InsertBatchSize))

	scope := commit.Scope{Tenant: cfg.Scope.Tenant, Workspace: cfg.Scope.Workspace}
	opts := []ingest.RunnerOption{
		ingest.WithLogger(logger),
		ingest.WithBaseDir(cfg.Ingest.FactsDir),
	}

	cleanup := func() {}
	if cfg.NATS.URL != "" {
		natsClient, err := connectNATS(ctx, cfg.NATS.URL, logger)
		if err != nil {
			return nil, nil, err
		}
		cleanup = func() { natsClient.Close(ctx) }

		js, err := natsClient.JetStream()
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("jetstream: %w", err)
		}
		locks, err := lock.NewManager(ctx, js, cfg.NATS.LockTTL)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("lock manager: %w", err)
		}
		opts = append(opts, ingest.WithLockManager(locks, appName))
	}

	return ingest.NewRunner(committer, scope, opts...), cleanup, nil
}

func connectNATS(ctx context.Context, url string, logger *slog.Logger) (*natsclient.Client, error) {
	logger.Info("Connecting to NATS", "url", url)

	client, err := natsclient.NewClient(url,
		natsclient.WithName(appName),
		natsclient.WithMaxReconnects(-1),
		natsclient.WithReconnectWait(time.Second),
		natsclient.WithHealthInterval(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create NATS client: %w", err)
	}

	if err := client.Connect(ctx); err != nil {
		return nil, fmt.Errorf("NATS connection failed: %w", err)
	}

	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.WaitForConnection(connCtx); err != nil {
		return nil, fmt.Errorf("NATS connection failed: %w", err)
	}

	logger.Info("Connected to NATS", "url", url)
	return client, nil
}
