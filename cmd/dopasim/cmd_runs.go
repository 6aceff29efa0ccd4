package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dervalinor/Projecto-de-electroquimica/internal/constants"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/store"
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Manage saved runs",
		Long: `List, inspect and delete runs saved with --save.

Examples:
  dopasim runs list
  dopasim runs list --kind oxidation --limit 5
  dopasim runs show <id>
  dopasim runs delete <id>`,
	}

	cmd.AddCommand(
		newRunsListCmd(),
		newRunsShowCmd(),
		newRunsDeleteCmd(),
	)

	return cmd
}

func newRunsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			kind, _ := cmd.Flags().GetString("kind")
			limit, _ := cmd.Flags().GetInt("limit")

			opts := store.ListOptions{Limit: limit}
			if kind != "" {
				k := constants.RunKind(kind)
				if !k.Valid() {
					return fmt.Errorf("invalid kind: %s (valid: fscv, oxidation)", kind)
				}
				opts.Kind = k
			}

			cfg, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			st, err := openStore(cmd, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			runs, err := st.ListRuns(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}

			if jsonOut {
				if runs == nil {
					runs = []store.RunInfo{}
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"runs":  runs,
					"count": len(runs),
				})
			}

			w := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(w, "No saved runs.")
				return nil
			}
			fmt.Fprintf(w, "%-36s  %-9s  %20s  %8s  %s\n", "ID", "KIND", "SEED", "SAMPLES", "CREATED")
			for _, r := range runs {
				fmt.Fprintf(w, "%-36s  %-9s  %20d  %8d  %s\n",
					r.ID, r.Kind, r.Seed, r.Samples, r.CreatedAt.Local().Format(time.DateTime))
			}
			return nil
		},
	}

	cmd.Flags().String("kind", "", "Only list runs of this kind: fscv, oxidation or cottrell")
	cmd.Flags().Int("limit", 0, "Maximum number of runs (0 = all)")

	return cmd
}

func newRunsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a saved run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadSettings(cmd)
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

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"run":    run.Info(),
					"params": run.Params,
				})
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Run %s\n", run.ID)
			fmt.Fprintf(w, "  Kind:    %s\n", run.Kind)
			if run.Name != "" {
				fmt.Fprintf(w, "  Name:    %s\n", run.Name)
			}
			fmt.Fprintf(w, "  Seed:    %d\n", run.Seed)
			fmt.Fprintf(w, "  Created: %s\n", run.CreatedAt.Local().Format(time.RFC3339))
			fmt.Fprintf(w, "  Samples: %d\n", run.Series.Rows())
			fmt.Fprintf(w, "  Series:  %v\n", run.Series.Names())
			if len(run.Summary) > 0 {
				fmt.Fprintln(w, "Summary:")
				printSummary(w, run.Summary)
			}
			return nil
		},
	}
}

func newRunsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved run and its series",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			st, err := openStore(cmd, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.DeleteRun(cmd.Context(), args[0]); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("run not found: %s", args[0])
				}
				return fmt.Errorf("failed to delete run: %w", err)
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{
					"status": "deleted",
					"id":     args[0],
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", args[0])
			return nil
		},
	}
}
