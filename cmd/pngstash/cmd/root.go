package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/javi11/pngstash/internal/config"
	"github.com/javi11/pngstash/internal/png"
	"github.com/javi11/pngstash/internal/slogutil"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// newRootCmd builds the command tree. Each call returns fresh flag state.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "pngstash",
		Short:         "Inspect PNG chunks and hide text messages inside them",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "config file (default is ./pngstash.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(
		newDumpCmd(),
		newInjectCmd(),
		newExtractCmd(),
		newConfigCmd(),
	)

	return rootCmd
}

func Execute() {
	rootCmd := newRootCmd()
	if cmd, err := rootCmd.ExecuteContextC(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error %s: %v\n", cmd.Name(), err)
		os.Exit(1)
	}
}

// runtime bundles what every subcommand needs once flags are parsed.
type runtime struct {
	cfg    *config.Config
	logger *slog.Logger
	ctx    context.Context
	fs     afero.Fs
}

func loadRuntime(cmd *cobra.Command) (*runtime, error) {
	configFile, _ := cmd.Flags().GetString("config")

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Flag overrides go on a copy so the loaded config stays as read from disk.
	if cmd.Flags().Changed("log-level") {
		level, _ := cmd.Flags().GetString("log-level")
		cfg = cfg.DeepCopy()
		cfg.Log.Level = level
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	logger := slogutil.SetupLogRotation(cfg.Log)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = slogutil.With(ctx, "run_id", uuid.NewString(), "command", cmd.Name())

	return &runtime{
		cfg:    cfg,
		logger: logger,
		ctx:    ctx,
		fs:     afero.NewOsFs(),
	}, nil
}

// open parses path with the configured limits and hidden chunk type.
func (rt *runtime) open(path string) (*png.File, error) {
	opts, err := rt.cfg.PNGOptions()
	if err != nil {
		return nil, err
	}

	opts = append(opts, png.WithFs(rt.fs), png.WithLogger(rt.logger))

	f, err := png.Open(path, opts...)
	if err != nil {
		rt.logger.DebugContext(rt.ctx, "Failed to open PNG file", "path", path, "error", err)
		return nil, err
	}

	return f, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
