package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dervalinor/Projecto-de-electroquimica/internal/export"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/store"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a saved run's series to Arrow or CSV",
		Long: `Write every series of a saved run to a file. Arrow files also carry the
run's kind, name and seed as schema metadata.

Examples:
  dopasim export <id> --out run.arrow
  dopasim export <id> --out run.csv
  dopasim export <id> --out run.dat --format csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			out, _ := cmd.Flags().GetString("out")
			formatFlag, _ := cmd.Flags().GetString("format")

			if out == "" {
				return fmt.Errorf("--out is required")
			}

			cfg, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			format, err := export.ResolveFormat(out, formatFlag, cfg.Export.Format)
			if err != nil {
				return err
			}

			st, err := openStore(cmd, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			run, err := st.GetRun(cmd.Context(), args[0])
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("run not found: %s", args[0])
				}
				return fmt.Errorf("failed to get run: %w", err)
			}

			meta := export.RunMetadata(string(run.Kind), run.Name, run.Seed)
			meta["run_id"] = run.ID
			if err := export.WriteFile(out, format, run.Series, meta); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"id":      run.ID,
					"output":  out,
					"format":  format,
					"samples": run.Series.Rows(),
					"columns": run.Series.Names(),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d samples of %d series to %s (%s)\n",
				run.Series.Rows(), len(run.Series), out, format)
			return nil
		},
	}

	cmd.Flags().String("out", "", "Output file")
	cmd.Flags().String("format", "", "Output format: arrow or csv (default from extension)")

	return cmd
}
