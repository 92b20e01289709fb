// Package main is the entry point for pairreview.
// pairreview is a local-host orchestrator that drives AI code-review CLIs
// against a diff and persists their suggestions for a client to consume.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pairreview/pairreview/consts"
	"github.com/pairreview/pairreview/internal/check"
	"github.com/pairreview/pairreview/internal/config"
	"github.com/pairreview/pairreview/internal/database"
	"github.com/pairreview/pairreview/internal/localreview"
	"github.com/pairreview/pairreview/internal/orchestrator"
	"github.com/pairreview/pairreview/internal/progress"
	"github.com/pairreview/pairreview/internal/prompt"
	"github.com/pairreview/pairreview/internal/server"
	"github.com/pairreview/pairreview/internal/store"
	"github.com/pairreview/pairreview/pkg/logger"
	"github.com/pairreview/pairreview/pkg/telemetry"

	// Import the built-in provider adapters to register them.
	_ "github.com/pairreview/pairreview/internal/provider/builtin/claude"
	_ "github.com/pairreview/pairreview/internal/provider/builtin/codex"
	_ "github.com/pairreview/pairreview/internal/provider/builtin/cursor"
	_ "github.com/pairreview/pairreview/internal/provider/builtin/gemini"
)

// Build information - set via ldflags during build.
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func init() {
	consts.Version = Version
	consts.BuildTime = BuildTime
	consts.GitCommit = GitCommit
}

var configPath string

var rootCmd = &cobra.Command{
	Use:   "pairreview",
	Short: "pairreview - local-host AI code review orchestrator",
	Long: `pairreview drives AI code-review CLIs against a pull request or a local
git working tree and persists their structured suggestions for a client
to stream and act on.`,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the pairreview server",
	Long: `Start the HTTP server that accepts review sessions and drives
analysis runs against configured AI providers.

On first run, use --check to interactively set up your config file:
  pairreview serve --check

After initial setup, simply run:
  pairreview serve`,
	Run: runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pairreview %s\n", Version)
		fmt.Printf("  Build Time: %s\n", BuildTime)
		fmt.Printf("  Git Commit: %s\n", GitCommit)
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: $XDG_CONFIG_HOME/pairreview/config.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)

	serveCmd.Flags().Int("port", 0, "server port (overrides config)")
	serveCmd.Flags().Bool("debug", false, "enable debug mode")
	serveCmd.Flags().Bool("check", false, "run interactive environment check before starting the server")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) {
	resolvedConfigPath, err := resolveConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to resolve config path: %v\n", err)
		os.Exit(1)
	}

	interactiveCheck, _ := cmd.Flags().GetBool("check")
	if interactiveCheck {
		checker := check.NewChecker(resolvedConfigPath)
		if err := checker.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Environment check failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("\nEnvironment check completed successfully")
	} else {
		checker := check.NewChecker(resolvedConfigPath)
		result := checker.RunNonInteractive()
		if !result.Success {
			check.PrintCheckResult(result)
			os.Exit(1)
		}
		if len(result.Warnings) > 0 {
			for _, warn := range result.Warnings {
				fmt.Fprintf(os.Stderr, "[WARNING] %s\n", warn)
			}
			fmt.Fprintln(os.Stderr)
		}
	}

	consts.SetStartedAt(time.Now())

	cfg, err := config.Load(resolvedConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Port = port
	}
	debug, _ := cmd.Flags().GetBool("debug")
	if debug {
		cfg.Logging.Level = "debug"
		cfg.Logging.Format = "text"
	}

	if err := logger.Init(cfg.Logging.ToLogger()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting pairreview", zap.String("version", Version))

	tel, err := telemetry.New(cfg.Telemetry.ToTelemetry())
	if err != nil {
		logger.Fatal("failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tel.Shutdown(ctx); err != nil {
			logger.Error("failed to shut down telemetry", zap.Error(err))
		}
	}()

	dbPath, err := cfg.StorePath()
	if err != nil {
		logger.Fatal("failed to resolve store path", zap.Error(err))
	}
	if err := database.InitWithPath(dbPath); err != nil {
		logger.Fatal("failed to initialize store", zap.Error(err))
	}
	defer database.Close()

	dataStore := store.NewStore(database.Get())

	logger.SetTaskLogHook(dataStore.RunLog())
	defer logger.CloseTaskLogHook()

	runLogCleanup := store.NewRunLogCleanupService(dataStore.RunLog(), store.DefaultRunLogRetentionDays)
	if err := runLogCleanup.Start(); err != nil {
		logger.Warn("failed to start run log cleanup service", zap.Error(err))
	} else {
		defer runLogCleanup.Stop()
	}

	manager := localreview.NewManager(dataStore)
	bus := progress.NewBus()
	prompts := prompt.NewBuilder()

	orchestratorCfg := orchestrator.Config{
		MaxConcurrentRuns: cfg.Orchestrator.MaxConcurrentRuns,
		Yolo:              cfg.Yolo,
	}
	orch := orchestrator.New(context.Background(), dataStore, manager, prompts, bus, orchestratorCfg, nil)
	orch.Start()
	defer orch.Stop()

	srv := server.New(cfg, dataStore, orch, manager, bus, prompts, debug)
	srv.SetupRoutes()

	if err := srv.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	logger.Info("pairreview server is running", zap.String("address", cfg.Address()))
	logger.Info(fmt.Sprintf("  Local: http://localhost:%d", cfg.Port))

	srv.WaitForShutdown()

	logger.Info("pairreview stopped")
}

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.DefaultConfigPath()
}
