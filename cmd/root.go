// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/zenload/zenload/internal/config"
	"github.com/zenload/zenload/internal/download"
	"github.com/zenload/zenload/internal/engine"
	"github.com/zenload/zenload/internal/jobs"
	"github.com/zenload/zenload/internal/platform"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagDownloadDir string
	flagParallel    int
	flagPolicy      string
	flagNoUpdate    bool
	flagJSON        bool
)

// cfg holds the loaded configuration (merged: defaults < config file < flags).
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "zenload",
	Short: "Fetch media stream options and download them with yt-dlp",
	Long: `ZenLoad resolves a media URL into a deduplicated list of video and
audio options, then downloads the chosen option with bounded retries,
resumable job tracking and a local HTTP API.`,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagDownloadDir, "download-dir", "d", "", "Download directory (default: platform downloads folder)")
	rootCmd.PersistentFlags().IntVarP(&flagParallel, "parallel", "p", 0, "Max parallel downloads")
	rootCmd.PersistentFlags().StringVar(&flagPolicy, "policy", "", "Resubmission policy: replace | keep")
	rootCmd.PersistentFlags().BoolVar(&flagNoUpdate, "no-update", false, "Skip the yt-dlp install/update check")
	rootCmd.PersistentFlags().BoolVarP(&flagJSON, "json", "j", false, "Output as JSON")

	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration: defaults < config file < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI flags override config file values
	if flagDownloadDir != "" {
		cfg.DownloadDir = flagDownloadDir
	}
	if flagParallel > 0 {
		cfg.MaxParallel = flagParallel
	}
	if flagPolicy != "" {
		cfg.SubmitPolicy = flagPolicy
	}
	if flagNoUpdate {
		cfg.AutoUpdateEngine = false
	}

	return nil
}

// app bundles the wired service graph for a single command invocation.
type app struct {
	service *download.Service
	gate    engine.Gate
	store   *jobs.Store
}

func (a *app) close() {
	if a.store != nil {
		_ = a.store.Close()
	}
}

// buildApp wires the engine, job substrate and download service from the
// loaded configuration.
func buildApp() (*app, error) {
	downloadDir := cfg.DownloadDir
	if downloadDir == "" {
		var err error
		downloadDir, err = platform.DownloadsDir()
		if err != nil {
			return nil, fmt.Errorf("resolving downloads directory: %w", err)
		}
	}
	if err := platform.CreateDirectoryIfNotExists(downloadDir); err != nil {
		return nil, fmt.Errorf("creating downloads directory: %w", err)
	}

	dbPath, err := cfg.StateDBPath()
	if err != nil {
		return nil, fmt.Errorf("resolving state db path: %w", err)
	}
	if err := platform.CreateDirectoryIfNotExists(filepath.Dir(dbPath)); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	store, err := jobs.OpenStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening job store: %w", err)
	}

	ytdlp := engine.NewYTDLP()
	gate := engine.NewReadiness(cfg.AutoUpdateEngine)

	substrate := jobs.NewSubstrate(download.NewRunner(ytdlp, gate), cfg.MaxParallel, store)

	policy := jobs.PolicyReplace
	if cfg.SubmitPolicy == config.PolicyNameKeep {
		policy = jobs.PolicyKeep
	}
	retry := jobs.RetryPolicy{
		MaxAttempts: cfg.MaxAttempts,
		Step:        cfg.BackoffStep(),
	}

	service := download.NewService(ytdlp, gate, substrate, downloadDir, policy, retry)

	return &app{service: service, gate: gate, store: store}, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("zenload %s\n", Version)
	},
}
