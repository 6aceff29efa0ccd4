package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dervalinor/Projecto-de-electroquimica/internal/mcp"
)

func newMCPServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp-server",
		Short: "Run the MCP server on stdio",
		Long: `Serve the simulations to MCP clients over stdin/stdout.

Tools: dopasim_fscv, dopasim_oxidation, dopasim_sweep, dopasim_cottrell,
dopasim_runs, dopasim_run and dopasim_export. Exports are written under exports/ in the
data directory. Tool calls are rate limited per tool and appended to
audit.jsonl in the data directory. Logs go to stderr.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			dir, err := dataDir(cmd, cfg)
			if err != nil {
				return err
			}

			server, err := mcp.NewServer(&mcp.Config{
				Name:     "dopasim",
				Version:  version,
				Dir:      dir,
				Settings: cfg,
				Logger:   newLogger(cmd, cfg),
			})
			if err != nil {
				return fmt.Errorf("failed to start mcp server: %w", err)
			}
			return server.Run(cmd.Context())
		},
	}
}
