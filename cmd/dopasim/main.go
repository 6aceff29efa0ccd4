package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dervalinor/Projecto-de-electroquimica/internal/config"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/logging"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/simulation"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/store"
)

var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dopasim",
		Short: "Dopamine electrochemistry simulator",
		Long: `dopasim simulates dopamine at a carbon-fibre electrode.

It computes fast-scan cyclic voltammetry current traces from a
Butler-Volmer model with diffusion and adsorption, and the stochastic
auto-oxidation of dopamine under fluctuating pH, oxygen and H2O2 stress.
Runs can be saved to a local database and exported as Arrow or CSV.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("root", "", "Data directory for the run database (default ~/.dopasim)")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.dopasim/config.yaml)")
	rootCmd.PersistentFlags().Uint64("seed", 0, "Seed for every random draw (overrides the config)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newFSCVCmd(),
		newOxidationCmd(),
		newSweepCmd(),
		newCottrellCmd(),
		newRunsCmd(),
		newExportCmd(),
		newBackupCmd(),
		newConfigCmd(),
		newMCPServerCmd(),
	)

	return rootCmd
}

// loadSettings loads the configuration named by --config, applies --seed,
// and validates the result.
func loadSettings(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed, _ = cmd.Flags().GetUint64("seed")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// dataDir returns --root when set and the configured store directory otherwise.
func dataDir(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if root, _ := cmd.Flags().GetString("root"); root != "" {
		return root, nil
	}
	return cfg.StoreDir()
}

// openStore opens the run database in the data directory.
func openStore(cmd *cobra.Command, cfg *config.Config) (*store.SQLiteRunStore, error) {
	dir, err := dataDir(cmd, cfg)
	if err != nil {
		return nil, err
	}
	st, err := store.NewSQLiteRunStore(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open run store: %w", err)
	}
	return st, nil
}

// newLogger logs to stderr so stdout stays clean for results.
func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	return logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())
}

// newRunner builds a runner whose trace, enabled at debug and trace levels,
// lives in the data directory. The returned func closes the trace.
func newRunner(cmd *cobra.Command, cfg *config.Config) (*simulation.Runner, func(), error) {
	logger := newLogger(cmd, cfg)
	dir, err := dataDir(cmd, cfg)
	if err != nil {
		return nil, nil, err
	}
	trace := logging.NewRunTrace(dir, cfg.Logging.Level)
	return simulation.NewRunner(logger, trace), trace.Close, nil
}
