package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dervalinor/Projecto-de-electroquimica/internal/backup"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/config"
)

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Archive the run database to a backup file",
		Long: `Write every saved run, series included, to one compressed archive.

Default location: <data dir>/backups/dopasim-backup-YYYYMMDD-HHMMSS.bak
After each backup the archives in that directory are pruned according to
backup.retention (default: keep the last 10).

Examples:
  dopasim backup                       # Archive to the default location
  dopasim backup --output runs.bak     # Archive to a specific file
  dopasim backup list                  # List archives
  dopasim backup verify <file>         # Check an archive's checksum
  dopasim backup restore <file>        # Load runs from an archive
  dopasim backup prune --keep 3        # Delete all but the 3 newest archives`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			outputPath, _ := cmd.Flags().GetString("output")

			cfg, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			dir, err := dataDir(cmd, cfg)
			if err != nil {
				return err
			}

			generated := outputPath == ""
			if generated {
				outputPath = backup.GeneratePath(backup.DefaultDir(dir), time.Now())
			}

			st, err := openStore(cmd, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			archive, err := backup.Backup(cmd.Context(), st, outputPath, map[string]string{"version": version})
			if err != nil {
				return fmt.Errorf("backup failed: %w", err)
			}

			// Retention only manages the generated archive directory.
			var pruned []string
			if generated {
				pruned, err = backup.ApplyRetention(filepath.Dir(outputPath), cfg.RetentionPolicy())
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: failed to apply retention: %v\n", err)
				}
			}

			var size int64
			if info, err := os.Stat(outputPath); err == nil {
				size = info.Size()
			}

			if jsonOut {
				if pruned == nil {
					pruned = []string{}
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"path":       outputPath,
					"run_count":  len(archive.Runs),
					"size_bytes": size,
					"pruned":     pruned,
				})
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Backup created: %d runs (%s)\n", len(archive.Runs), humanize.IBytes(uint64(size)))
			fmt.Fprintf(w, "  Path: %s\n", outputPath)
			if len(pruned) > 0 {
				fmt.Fprintf(w, "  Pruned %d old archive(s)\n", len(pruned))
			}
			return nil
		},
	}

	cmd.Flags().String("output", "", "Archive path (default: generated in <data dir>/backups/)")

	cmd.AddCommand(
		newBackupListCmd(),
		newBackupVerifyCmd(),
		newBackupRestoreCmd(),
		newBackupPruneCmd(),
	)

	return cmd
}

// backupDir returns the default archive directory for the current settings.
func backupDir(cmd *cobra.Command) (string, *config.Config, error) {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return "", nil, err
	}
	dir, err := dataDir(cmd, cfg)
	if err != nil {
		return "", nil, err
	}
	return backup.DefaultDir(dir), cfg, nil
}

func newBackupListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List archives, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			dir, _, err := backupDir(cmd)
			if err != nil {
				return err
			}
			backups, err := backup.ListBackups(dir)
			if err != nil {
				return err
			}

			if jsonOut {
				if backups == nil {
					backups = []backup.Info{}
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"backups": backups,
					"count":   len(backups),
				})
			}

			w := cmd.OutOrStdout()
			if len(backups) == 0 {
				fmt.Fprintln(w, "No backups.")
				return nil
			}
			for _, b := range backups {
				status := fmt.Sprintf("%d runs", b.RunCount)
				if !b.Valid {
					status = "unreadable"
				}
				fmt.Fprintf(w, "%s  %s  %8s  %s\n",
					b.CreatedAt.Local().Format("2006-01-02 15:04:05"), filepath.Base(b.Path), humanize.IBytes(uint64(b.Size)), status)
			}
			return nil
		},
	}
}

func newBackupVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <file>",
		Short: "Verify an archive's checksum",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			path := args[0]

			verr := backup.VerifyChecksum(path)
			if jsonOut {
				out := map[string]interface{}{"path": path, "valid": verr == nil}
				if verr != nil {
					out["error"] = verr.Error()
				}
				if err := json.NewEncoder(cmd.OutOrStdout()).Encode(out); err != nil {
					return err
				}
			}
			if verr != nil {
				return fmt.Errorf("verification failed: %w", verr)
			}
			if !jsonOut {
				header, err := backup.ReadHeader(path)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "OK: %d runs, %d samples, created %s\n",
					header.RunCount, header.Samples, header.CreatedAt.Local().Format(time.RFC3339))
			}
			return nil
		},
	}
}

func newBackupRestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <file>",
		Short: "Load runs from an archive",
		Long: `Restore runs from an archive into the run database.

Modes:
  merge   - Keep existing runs and skip archived runs with the same ID (default)
  replace - Overwrite existing runs with the archived copy`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			mode, _ := cmd.Flags().GetString("mode")

			restoreMode := backup.RestoreMode(mode)
			if !restoreMode.Valid() {
				return fmt.Errorf("invalid mode: %s (valid: merge, replace)", mode)
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

			result, err := backup.Restore(cmd.Context(), st, args[0], restoreMode)
			if err != nil {
				return fmt.Errorf("restore failed: %w", err)
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(result)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %d runs (%d skipped, %d replaced)\n",
				result.Restored, result.Skipped, result.Replaced)
			return nil
		},
	}

	cmd.Flags().String("mode", string(backup.RestoreMerge), "Restore mode: merge or replace")

	return cmd
}

func newBackupPruneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old archives",
		Long: `Delete archives in the default backup directory.

Without flags the configured backup.retention policy applies. Any of
--keep, --max-age or --max-size replaces it; an archive survives if any
given limit keeps it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			dir, cfg, err := backupDir(cmd)
			if err != nil {
				return err
			}
			policy, err := pruneOverrides(cmd)
			if err != nil {
				return err
			}
			if policy == nil {
				policy = cfg.RetentionPolicy()
			}

			deleted, err := backup.ApplyRetention(dir, policy)
			if err != nil {
				return fmt.Errorf("prune failed: %w", err)
			}

			if jsonOut {
				if deleted == nil {
					deleted = []string{}
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"deleted": deleted,
					"count":   len(deleted),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d archive(s)\n", len(deleted))
			return nil
		},
	}

	cmd.Flags().Int("keep", 0, "Keep the N newest archives")
	cmd.Flags().String("max-age", "", "Keep archives younger than this (e.g. 30d, 2w, 720h)")
	cmd.Flags().String("max-size", "", "Keep the newest archives within this total size (e.g. 500MB)")

	return cmd
}

// pruneOverrides builds a policy from the prune flags, or nil when none is set.
func pruneOverrides(cmd *cobra.Command) (backup.RetentionPolicy, error) {
	var policies []backup.RetentionPolicy

	if cmd.Flags().Changed("keep") {
		keep, _ := cmd.Flags().GetInt("keep")
		if keep < 0 {
			return nil, fmt.Errorf("--keep must be >= 0, got %d", keep)
		}
		policies = append(policies, &backup.CountPolicy{MaxCount: keep})
	}
	if s, _ := cmd.Flags().GetString("max-age"); s != "" {
		d, err := backup.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("--max-age: %w", err)
		}
		policies = append(policies, &backup.AgePolicy{MaxAge: d})
	}
	if s, _ := cmd.Flags().GetString("max-size"); s != "" {
		n, err := backup.ParseSize(s)
		if err != nil {
			return nil, fmt.Errorf("--max-size: %w", err)
		}
		policies = append(policies, &backup.SizePolicy{MaxTotalBytes: n})
	}

	switch len(policies) {
	case 0:
		return nil, nil
	case 1:
		return policies[0], nil
	default:
		return &backup.CompositePolicy{Policies: policies}, nil
	}
}
