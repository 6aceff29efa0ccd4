package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dervalinor/Projecto-de-electroquimica/internal/current"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/export"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/series"
)

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Evaluate the Butler-Volmer current over an overpotential range",
		Long: `Evaluate the steady-state Butler-Volmer relation
i = i0 * (exp((1-alpha)*nF*eta/RT) - exp(-alpha*nF*eta/RT))
on an evenly spaced overpotential axis.

Examples:
  dopasim sweep
  dopasim sweep --eta-min -0.2 --eta-max 0.2 --points 41
  dopasim sweep --out sweep.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			out, _ := cmd.Flags().GetString("out")
			formatFlag, _ := cmd.Flags().GetString("format")

			cfg, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			p := cfg.Sweep
			floatFlag(cmd, "i0", &p.I0)
			floatFlag(cmd, "alpha", &p.Alpha)
			floatFlag(cmd, "eta-min", &p.EtaMin)
			floatFlag(cmd, "eta-max", &p.EtaMax)
			if cmd.Flags().Changed("points") {
				p.Points, _ = cmd.Flags().GetInt("points")
			}

			eta, i, err := current.Sweep(p)
			if err != nil {
				return err
			}
			if n := current.CountNonFinite(i); n > 0 {
				newLogger(cmd, cfg).Warn("sweep current overflowed", "count", n)
			}

			if out != "" {
				format, err := export.ResolveFormat(out, formatFlag, cfg.Export.Format)
				if err != nil {
					return err
				}
				tab := series.Table{
					{Name: "overpotential", Values: eta},
					{Name: "current", Values: i},
				}
				if err := export.WriteFile(out, format, tab, map[string]string{"kind": "sweep"}); err != nil {
					return fmt.Errorf("failed to write %s: %w", out, err)
				}
				if !jsonOut {
					fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d points to %s (%s)\n", len(eta), out, format)
					return nil
				}
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"overpotential": eta,
					"current":       i,
				})
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%12s  %14s\n", "eta (V)", "i (A)")
			for k := range eta {
				fmt.Fprintf(w, "%12.6f  %14.6e\n", eta[k], i[k])
			}
			return nil
		},
	}

	cmd.Flags().Float64("i0", 0, "Exchange current in amperes")
	cmd.Flags().Float64("alpha", 0, "Charge-transfer coefficient")
	cmd.Flags().Float64("eta-min", 0, "Lowest overpotential in volts")
	cmd.Flags().Float64("eta-max", 0, "Highest overpotential in volts")
	cmd.Flags().Int("points", 0, "Number of points")
	cmd.Flags().String("out", "", "Write the sweep to this file")
	cmd.Flags().String("format", "", "Output format: arrow or csv (default from extension)")

	return cmd
}
