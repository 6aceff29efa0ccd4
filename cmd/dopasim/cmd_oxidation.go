package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dervalinor/Projecto-de-electroquimica/internal/constants"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/events"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/export"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/store"
)

func newOxidationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "oxidation",
		Short: "Simulate stochastic dopamine auto-oxidation",
		Long: `Integrate dopamine oxidation to quinone while pH and dissolved oxygen
follow mean-reverting random walks and exogenous H2O2 pulses arrive at
random times.

The default run covers one hour in 0.1 s steps with five pulses.

Examples:
  dopasim oxidation
  dopasim oxidation --seed 42 --pulses 10 --policy first
  dopasim oxidation --duration 600 --save --out run.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			save, _ := cmd.Flags().GetBool("save")
			out, _ := cmd.Flags().GetString("out")
			formatFlag, _ := cmd.Flags().GetString("format")

			cfg, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			scenario := cfg.OxidationScenario()
			if path, _ := cmd.Flags().GetString("scenario"); path != "" {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read scenario: %w", err)
				}
				if err := yaml.Unmarshal(data, &scenario); err != nil {
					return fmt.Errorf("failed to parse scenario: %w", err)
				}
			}
			floatFlag(cmd, "duration", &scenario.Total)
			floatFlag(cmd, "dt", &scenario.Dt)
			floatFlag(cmd, "dopamine", &scenario.Initial.Dopamine)
			floatFlag(cmd, "peroxide", &scenario.Initial.Peroxide)
			floatFlag(cmd, "k-base", &scenario.Kinetics.KBase)
			floatFlag(cmd, "k-decomp", &scenario.Kinetics.KDecomp)
			if cmd.Flags().Changed("pulses") {
				scenario.Pulses.Count, _ = cmd.Flags().GetInt("pulses")
			}
			if cmd.Flags().Changed("policy") {
				p, _ := cmd.Flags().GetString("policy")
				scenario.Pulses.Policy = events.Policy(p)
			}
			if clamp, _ := cmd.Flags().GetBool("clamp"); clamp {
				scenario.Kinetics.ClampNonNegative = true
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

			res, err := runner.RunOxidation(scenario)
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
				meta := export.RunMetadata(string(constants.RunKindOxidation), res.Name, res.Seed)
				if err := export.WriteFile(out, format, res.Columns(), meta); err != nil {
					return fmt.Errorf("failed to write %s: %w", out, err)
				}
			}

			if jsonOut {
				evs := res.Events
				if evs == nil {
					evs = []events.Event{}
				}
				result := map[string]interface{}{
					"seed":       res.Seed,
					"samples":    len(res.Times),
					"events":     evs,
					"applied":    res.Applied,
					"collisions": res.Collisions,
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
			fmt.Fprintf(w, "Oxidation run (seed %d, %d samples)\n", res.Seed, len(res.Times))
			if len(res.Events) > 0 {
				fmt.Fprintf(w, "Stress pulses (%d applied, %d collisions):\n", res.Applied, res.Collisions)
				for _, ev := range res.Events {
					fmt.Fprintf(w, "  t=%8.1f s  step %6d  +%.4f H2O2\n", ev.Time, ev.Index, ev.Magnitude)
				}
			}
			fmt.Fprintln(w, "Summary:")
			printSummary(w, res.Summary)
			if runID != "" {
				fmt.Fprintf(w, "Saved run %s\n", runID)
			}
			if out != "" {
				fmt.Fprintf(w, "Wrote %s (%s)\n", out, format)
			}
			return nil
		},
	}

	cmd.Flags().Float64("duration", 0, "Simulated time in seconds")
	cmd.Flags().Float64("dt", 0, "Integration step in seconds")
	cmd.Flags().Float64("dopamine", 0, "Initial dopamine concentration")
	cmd.Flags().Float64("peroxide", 0, "Initial H2O2 concentration")
	cmd.Flags().Float64("k-base", 0, "Base oxidation rate constant")
	cmd.Flags().Float64("k-decomp", 0, "Enzymatic H2O2 degradation rate")
	cmd.Flags().Int("pulses", 0, "Number of exogenous H2O2 pulses")
	cmd.Flags().String("policy", "", "Combine pulses on the same step: sum or first")
	cmd.Flags().Bool("clamp", false, "Floor concentrations at zero after each step")
	cmd.Flags().String("scenario", "", "Load the scenario from a YAML file")
	cmd.Flags().Bool("save", false, "Save the run to the run database")
	cmd.Flags().String("out", "", "Write the series to this file")
	cmd.Flags().String("format", "", "Output format: arrow or csv (default from extension)")

	return cmd
}
