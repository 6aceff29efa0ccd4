package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dervalinor/Projecto-de-electroquimica/internal/constants"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/export"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/store"
)

func newCottrellCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cottrell",
		Short: "Simulate a slow scan with Butler-Volmer kinetics and Cottrell diffusion",
		Long: `Simulate one triangular potential scan sampled at evenly spaced
instants, with the current split into a Butler-Volmer kinetic term around
the equilibrium potential and a k/sqrt(t) diffusion term. t = 0 is
evaluated at 1 us.

The scan defaults to -0.5 V -> 0.5 V -> -0.5 V over 2 s in 1000 samples,
k = 1e-7, reported in microamps.

Examples:
  dopasim cottrell
  dopasim cottrell --k 5e-8 --points 2000
  dopasim cottrell --save --out cottrell.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			save, _ := cmd.Flags().GetBool("save")
			out, _ := cmd.Flags().GetString("out")
			formatFlag, _ := cmd.Flags().GetString("format")

			cfg, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			scenario := cfg.Cottrell
			floatFlag(cmd, "start", &scenario.Scan.Start)
			floatFlag(cmd, "vertex", &scenario.Scan.Vertex)
			floatFlag(cmd, "duration", &scenario.Scan.Total)
			floatFlag(cmd, "i0", &scenario.Current.I0)
			floatFlag(cmd, "k", &scenario.Current.K)
			floatFlag(cmd, "e-eq", &scenario.Current.EEq)
			if cmd.Flags().Changed("points") {
				scenario.Points, _ = cmd.Flags().GetInt("points")
			}

			var format string
			if out != "" {
				if format, err = export.ResolveFormat(out, formatFlag, cfg.Export.Format); err != nil {
					return err
				}
			}

			runner, closeTrace, err := newRunner(cmd, cfg)
			if err != nil {
				return err
			}
			defer closeTrace()

			res, err := runner.RunCottrell(scenario)
			if err != nil {
				return err
			}

			var runID string
			if save {
				st, err := openStore(cmd, cfg)
				if err != nil {
					return err
				}
				defer st.Close()

				run, err := res.Record(scenario)
				if err != nil {
					return err
				}
				if runID, err = st.SaveRun(cmd.Context(), run); err != nil {
					return fmt.Errorf("failed to save run: %w", err)
				}
			}

			if out != "" {
				meta := export.RunMetadata(string(constants.RunKindCottrell), res.Name, 0)
				if err := export.WriteFile(out, format, res.Columns(), meta); err != nil {
					return fmt.Errorf("failed to write %s: %w", out, err)
				}
			}

			if jsonOut {
				result := map[string]interface{}{
					"samples":    len(res.Times),
					"non_finite": res.NonFinite,
					"summary":    store.FiniteSummary(res.Summary),
				}
				if runID != "" {
					result["run_id"] = runID
				}
				if out != "" {
					result["output"] = out
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(result)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Cottrell run (%d samples)\n", len(res.Times))
			fmt.Fprintf(w, "  Oxidation peak: %g at %.4f V\n", res.Peaks.Oxidation.Current, res.Peaks.Oxidation.Potential)
			fmt.Fprintf(w, "  Reduction peak: %g at %.4f V\n", res.Peaks.Reduction.Current, res.Peaks.Reduction.Potential)
			if res.NonFinite > 0 {
				fmt.Fprintf(w, "  Warning: %d samples overflowed to Inf/NaN\n", res.NonFinite)
			}
			if runID != "" {
				fmt.Fprintf(w, "Saved run %s\n", runID)
			}
			if out != "" {
				fmt.Fprintf(w, "Wrote %s (%s)\n", out, format)
			}
			return nil
		},
	}

	cmd.Flags().Float64("start", 0, "Start potential in volts")
	cmd.Flags().Float64("vertex", 0, "Switching potential in volts")
	cmd.Flags().Float64("duration", 0, "Scan duration in seconds")
	cmd.Flags().Int("points", 0, "Number of samples, endpoints included")
	cmd.Flags().Float64("i0", 0, "Exchange current in amperes")
	cmd.Flags().Float64("k", 0, "Diffusion coefficient of the k/sqrt(t) term")
	cmd.Flags().Float64("e-eq", 0, "Equilibrium potential in volts")
	cmd.Flags().Bool("save", false, "Save the run to the run database")
	cmd.Flags().String("out", "", "Write the series to this file")
	cmd.Flags().String("format", "", "Output format: arrow or csv (default from extension)")

	return cmd
}
