package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dervalinor/Projecto-de-electroquimica/internal/constants"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/current"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/export"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/store"
)

func newFSCVCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fscv",
		Short: "Simulate a fast-scan cyclic voltammetry sweep",
		Long: `Simulate one triangular potential scan over a dopamine solution and
compute the electrode current from charge transfer, diffusion and adsorption.

The scan defaults to -0.4 V -> 1.3 V -> -0.4 V over 10 ms sampled every
10 us. A duration of 0 derives the scan time from the scan rate. Flags
override the configured scenario; --scenario loads one from YAML. --terms
adds the charge-transfer, diffusion and adsorption contributions as extra
series.

Examples:
  dopasim fscv
  dopasim fscv --variant ideal --no-noise
  dopasim fscv --seed 7 --save --out scan.arrow
  dopasim fscv --duration 0 --terms --out terms.csv
  dopasim fscv --scenario slow-scan.yaml --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			save, _ := cmd.Flags().GetBool("save")
			out, _ := cmd.Flags().GetString("out")
			formatFlag, _ := cmd.Flags().GetString("format")

			cfg, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			scenario := cfg.FSCVScenario()
			if path, _ := cmd.Flags().GetString("scenario"); path != "" {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read scenario: %w", err)
				}
				if err := yaml.Unmarshal(data, &scenario); err != nil {
					return fmt.Errorf("failed to parse scenario: %w", err)
				}
			}
			if cmd.Flags().Changed("variant") {
				v, _ := cmd.Flags().GetString("variant")
				scenario.Variant = current.Variant(v)
			}
			if noNoise, _ := cmd.Flags().GetBool("no-noise"); noNoise {
				scenario.Noise = false
			}
			if terms, _ := cmd.Flags().GetBool("terms"); terms {
				scenario.Terms = true
			}
			floatFlag(cmd, "start", &scenario.Scan.Start)
			floatFlag(cmd, "vertex", &scenario.Scan.Vertex)
			floatFlag(cmd, "duration", &scenario.Scan.Total)
			floatFlag(cmd, "dt", &scenario.Dt)
			floatFlag(cmd, "concentration", &scenario.Current.CBulk)

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

			res, err := runner.RunFSCV(scenario)
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
				meta := export.RunMetadata(string(constants.RunKindFSCV), res.Name, res.Seed)
				meta["variant"] = string(res.Variant)
				if err := export.WriteFile(out, format, res.Columns(), meta); err != nil {
					return fmt.Errorf("failed to write %s: %w", out, err)
				}
			}

			if jsonOut {
				result := map[string]interface{}{
					"seed":       res.Seed,
					"variant":    res.Variant,
					"samples":    len(res.Times),
					"duration":   res.Duration,
					"columns":    res.Columns().Names(),
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
			fmt.Fprintf(w, "FSCV run (%s model, seed %d, %d samples)\n", res.Variant, res.Seed, len(res.Times))
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

	cmd.Flags().String("variant", "", "Current model: full or ideal")
	cmd.Flags().Bool("no-noise", false, "Disable measurement noise")
	cmd.Flags().Bool("terms", false, "Also output the per-term current contributions")
	cmd.Flags().Float64("start", 0, "Start potential in volts")
	cmd.Flags().Float64("vertex", 0, "Switching potential in volts")
	cmd.Flags().Float64("duration", 0, "Scan duration in seconds (0 derives it from the scan rate)")
	cmd.Flags().Float64("dt", 0, "Sample spacing in seconds")
	cmd.Flags().Float64("concentration", 0, "Bulk dopamine concentration in mol/cm^3")
	cmd.Flags().String("scenario", "", "Load the scenario from a YAML file")
	cmd.Flags().Bool("save", false, "Save the run to the run database")
	cmd.Flags().String("out", "", "Write the series to this file")
	cmd.Flags().String("format", "", "Output format: arrow or csv (default from extension)")

	return cmd
}

// floatFlag copies a float flag into dst when the user set it.
func floatFlag(cmd *cobra.Command, name string, dst *float64) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetFloat64(name)
	}
}
