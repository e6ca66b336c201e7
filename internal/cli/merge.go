package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Dubrzr/folder-merger/pkg/checkpoint"
	"github.com/Dubrzr/folder-merger/pkg/config"
	"github.com/Dubrzr/folder-merger/pkg/logging"
	"github.com/Dubrzr/folder-merger/pkg/merge"
	"github.com/Dubrzr/folder-merger/pkg/output"
)

// MergeFlags holds merge command flags
type MergeFlags struct {
	Checkpoint string
	Reset      bool
	Yes        bool
	FailFast   bool
	ChunkSize  int
	NoProgress bool
	// Logging flags
	LogFile   string
	LogFormat string
	LogLevel  string
}

var mergeFlags MergeFlags

// NewMergeCommand creates the merge command
func NewMergeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge FOLDER1 FOLDER2 OUTPUT",
		Short: "Merge two folders into a third destination folder",
		Long: `Merge two folders into a third destination folder.

All files from both folders are kept. Files present under the same
relative path in both folders are compared by content hash: identical
files are copied once, differing files are resolved interactively.

Progress is checkpointed; an interrupted merge resumed with the same
checkpoint re-scans nothing, re-copies nothing and re-asks nothing it
already completed.`,
		Args: cobra.ExactArgs(3),
		RunE: runMerge,
	}

	cmd.Flags().StringVarP(&mergeFlags.Checkpoint, "checkpoint", "c", "",
		"checkpoint database path (default: merge_checkpoint.db)")
	cmd.Flags().BoolVar(&mergeFlags.Reset, "reset", false,
		"discard any existing checkpoint and start fresh")
	cmd.Flags().BoolVarP(&mergeFlags.Yes, "yes", "y", false,
		"proceed into a non-empty output folder without asking")
	cmd.Flags().BoolVar(&mergeFlags.FailFast, "fail-fast", false,
		"abort scanning on the first unreadable file")
	cmd.Flags().IntVar(&mergeFlags.ChunkSize, "chunk-size", 0,
		"hashing read size in bytes (default: 65536)")
	cmd.Flags().BoolVar(&mergeFlags.NoProgress, "no-progress", false,
		"disable progress bars")

	cmd.Flags().StringVar(&mergeFlags.LogFile, "log-file", "",
		"write logs to file (enables logging)")
	cmd.Flags().StringVar(&mergeFlags.LogFormat, "log-format", "",
		"log format: text, json")
	cmd.Flags().StringVar(&mergeFlags.LogLevel, "log-level", "",
		"log level: debug, info, warn, error")

	return cmd
}

func runMerge(cmd *cobra.Command, args []string) error {
	baseCtx := cmd.Context()
	if baseCtx == nil {
		baseCtx = context.Background()
	}

	// An interrupt is not an error: it leaves the checkpoint in its
	// last-committed state and a later run resumes from there.
	ctx, stop := signal.NotifyContext(baseCtx, os.Interrupt)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyMergeFlags(cfg)

	folder1, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve folder 1: %w", err)
	}
	folder2, err := filepath.Abs(args[1])
	if err != nil {
		return fmt.Errorf("failed to resolve folder 2: %w", err)
	}
	outputDir, err := filepath.Abs(args[2])
	if err != nil {
		return fmt.Errorf("failed to resolve output folder: %w", err)
	}

	if err := validateMergeArgs(folder1, folder2, outputDir); err != nil {
		return err
	}

	proceed, err := confirmOutputOverwrite(outputDir, mergeFlags.Yes, os.Stdin, os.Stdout)
	if err != nil {
		return err
	}
	if !proceed {
		fmt.Println("Aborted.")
		return nil
	}

	checkpointPath := cfg.Merge.CheckpointPath
	if mergeFlags.Reset {
		fmt.Println("Resetting checkpoint...")
		if err := checkpoint.Remove(checkpointPath); err != nil {
			return err
		}
	}

	store, err := checkpoint.Open(checkpointPath)
	if errors.Is(err, checkpoint.ErrLocked) {
		return fmt.Errorf("another merge is already using checkpoint %s", checkpointPath)
	}
	if err != nil {
		return fmt.Errorf("failed to open checkpoint (use --reset to discard it): %w", err)
	}
	defer store.Close()

	runID, err := store.EnsureRunID()
	if err != nil {
		return err
	}

	logger, err := createLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()
	logger = logger.WithFields(logging.Fields{"run_id": runID})

	var reporter output.Reporter
	switch {
	case globalFlags.Quiet:
		reporter = output.NewNullReporter()
	case cfg.Output.Progress:
		reporter = output.NewProgressReporter()
	default:
		reporter = output.NewPlainReporter(os.Stdout)
	}

	if !globalFlags.Quiet {
		fmt.Printf("Folder 1:   %s\n", folder1)
		fmt.Printf("Folder 2:   %s\n", folder2)
		fmt.Printf("Output:     %s\n", outputDir)
		fmt.Printf("Checkpoint: %s\n\n", checkpointPath)
	}

	merger := merge.New(merge.Config{
		Root1:     folder1,
		Root2:     folder2,
		Output:    outputDir,
		Store:     store,
		Channel:   NewTerminalChannel(os.Stdin, os.Stdout),
		Viewer:    NewExternalViewer(os.Stdout),
		Reporter:  reporter,
		Logger:    logger,
		ChunkSize: cfg.Scanner.ChunkSize,
		FailFast:  cfg.Scanner.FailFast,
	})

	if _, err := merger.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "\nInterrupted! Progress has been saved.")
			fmt.Fprintln(os.Stderr, "To resume, run the same command again.")
			fmt.Fprintln(os.Stderr, "To start fresh, use the --reset flag.")
		}
		return err
	}

	return nil
}

// loadConfig loads the configuration file, honoring --config
func loadConfig() (*config.Config, error) {
	if globalFlags.ConfigFile != "" {
		return config.LoadFromFile(globalFlags.ConfigFile)
	}
	return config.LoadDefault()
}

// applyMergeFlags overrides configuration with command-line flags
func applyMergeFlags(cfg *config.Config) {
	if mergeFlags.Checkpoint != "" {
		cfg.Merge.CheckpointPath = mergeFlags.Checkpoint
	}
	if mergeFlags.FailFast {
		cfg.Scanner.FailFast = true
	}
	if mergeFlags.ChunkSize > 0 {
		cfg.Scanner.ChunkSize = mergeFlags.ChunkSize
	}
	if mergeFlags.NoProgress {
		cfg.Output.Progress = false
	}
	if mergeFlags.LogFile != "" {
		cfg.Logging.File = mergeFlags.LogFile
	}
	if mergeFlags.LogFormat != "" {
		cfg.Logging.Format = config.Format(mergeFlags.LogFormat)
	}
	if mergeFlags.LogLevel != "" {
		cfg.Logging.Level = mergeFlags.LogLevel
	}
}

// createLogger creates a logger from the logging configuration.
// Without a log file, logging is disabled.
func createLogger(cfg config.LoggingConfig) (logging.Logger, error) {
	if cfg.File == "" {
		return logging.NewNullLogger(), nil
	}

	format := logging.FormatText
	if cfg.Format == "json" {
		format = logging.FormatJSON
	}

	return logging.NewFileLogger(logging.FileLoggerConfig{
		Path:   cfg.File,
		Format: format,
		Level:  logging.ParseLevel(cfg.Level),
	})
}
