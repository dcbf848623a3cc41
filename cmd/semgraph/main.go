// Package main provides the semgraph binary entry point.
// Semgraph ingests triple fact files into a SPARQL store with deterministic
// entity identity, change auditing, and stale-data cleanup.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/c360studio/semgraph/config"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "semgraph"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "semgraph",
		Short: "Audited knowledge-graph ingestion",
		Long: `Semgraph ingests triple fact files into a SPARQL store.

It provides:
- Deterministic entity identity resolution
- Per-property change auditing with a separate audit dataset
- Source-document scoped stale-data cleanup
- A streaming graph-writer component for NATS-based pipelines`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configureLogging(logLevel)
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(ingestCmd())
	cmd.AddCommand(auditCmd())
	cmd.AddCommand(watchCmd())
	cmd.AddCommand(serveCmd())

	// Version command
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

func configureLogging(logLevel string) {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadConfig loads the layered configuration, with an optional explicit
// config file taking precedence over the discovered project config.
func loadConfig(configPath string) (*config.Config, error) {
	if configPath != "" {
		cfg, err := config.LoadFromFile(configPath)
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return config.NewLoader(slog.Default()).Load()
}

func printBanner() {
	fmt.Println("╔═══════════════════════════════════════════════╗")
	fmt.Println("║             Semgraph v" + Version + "                    ║")
	fmt.Println("║      Audited Knowledge-Graph Ingestion        ║")
	fmt.Println("╚═══════════════════════════════════════════════╝")
}
