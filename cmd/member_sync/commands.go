package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kapu/hololive-member-sync/internal/app"
	"github.com/kapu/hololive-member-sync/internal/config"
	"github.com/kapu/hololive-member-sync/internal/reconcile"
)

func newSyncCommand(root *rootOptions) *cobra.Command {
	var (
		passes      string
		ambiguity   string
		source      string
		dryRun      bool
		noOverrides bool
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run the member reconciliation passes",
		Long: `Runs the reconciliation passes over the member records:
  a  native_names  copy Japanese names from the official roster
  b  aliases       add schedule names as Japanese aliases
  c  korean_names  resolve the Korean display name
  p  profiles      normalize hashtag labels in profile documents`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := setup(cmd.Context(), root, func(cfg *config.Config) {
				if cmd.Flags().Changed("passes") {
					cfg.Reconcile.Passes = passes
				}
				if cmd.Flags().Changed("ambiguity") {
					cfg.Reconcile.Ambiguity = ambiguity
				}
				if cmd.Flags().Changed("source") {
					cfg.Reconcile.Source = source
				}
				if dryRun {
					cfg.Reconcile.DryRun = true
				}
				if noOverrides {
					cfg.Reconcile.ApplyOverrides = false
				}
			})
			if err != nil {
				return err
			}
			defer env.Close()

			selected, err := reconcile.ParsePasses(env.cfg.Reconcile.Passes)
			if err != nil {
				return err
			}
			policy, err := reconcile.ParseAmbiguityPolicy(env.cfg.Reconcile.Ambiguity)
			if err != nil {
				return err
			}

			result, err := env.service.Sync(cmd.Context(), app.SyncOptions{
				Passes:    selected,
				Ambiguity: policy,
				DryRun:    env.cfg.Reconcile.DryRun,
			})
			if err != nil {
				env.logger.Error("Sync failed", zap.Error(err))
				return err
			}
			printResult(cmd, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&passes, "passes", "a,b,c", "comma-separated passes to run (a,b,c,p or full names)")
	cmd.Flags().StringVar(&ambiguity, "ambiguity", "skip", "what to do when a schedule name matches several members (skip|first)")
	cmd.Flags().StringVar(&source, "source", config.SourceFile, "member record source (file|postgres)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report changes without writing")
	cmd.Flags().BoolVar(&noOverrides, "no-overrides", false, "ignore the authoritative Korean name table")
	return cmd
}

func newLabelsCommand(root *rootOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "labels",
		Short: "Normalize Japanese hashtag labels in the profile documents",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := setup(cmd.Context(), root, func(cfg *config.Config) {
				// profiles live on disk regardless of where members come from
				cfg.Reconcile.Source = config.SourceFile
			})
			if err != nil {
				return err
			}
			defer env.Close()

			result, err := env.service.Sync(cmd.Context(), app.SyncOptions{
				Passes: []string{reconcile.PassProfiles},
				DryRun: dryRun,
			})
			if err != nil {
				env.logger.Error("Label normalization failed", zap.Error(err))
				return err
			}
			printResult(cmd, result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report changes without writing")
	return cmd
}

func newFetchCommand(root *rootOptions) *cobra.Command {
	var talents, schedule bool

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Scrape the official roster and schedule into the source files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := setup(cmd.Context(), root, func(cfg *config.Config) {
				cfg.Reconcile.Source = config.SourceFile
			})
			if err != nil {
				return err
			}
			defer env.Close()

			if err := env.service.Fetch(cmd.Context(), talents, schedule); err != nil {
				env.logger.Error("Fetch failed", zap.Error(err))
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&talents, "talents", false, "fetch the official talent roster")
	cmd.Flags().BoolVar(&schedule, "schedule", false, "fetch member names from the schedule page")
	return cmd
}

func newRestoreCommand(root *rootOptions) *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "restore <run-id>",
		Short: "Write the backups of a run back to their original location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(cmd.Context(), root, func(cfg *config.Config) {
				if cmd.Flags().Changed("source") {
					cfg.Reconcile.Source = source
				}
			})
			if err != nil {
				return err
			}
			defer env.Close()

			restored, err := env.service.Restore(cmd.Context(), args[0])
			if err != nil {
				env.logger.Error("Restore failed", zap.String("run_id", args[0]), zap.Error(err))
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "restored %d document(s) from run %s\n", restored, args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", config.SourceFile, "member record source (file|postgres)")
	return cmd
}

func printResult(cmd *cobra.Command, result *app.SyncResult) {
	out := cmd.OutOrStdout()
	report := result.Report

	fmt.Fprintf(out, "run %s\n", report.RunID)
	for _, p := range report.Passes {
		fmt.Fprintf(out, "  %-13s updated=%d added=%d unchanged=%d skipped=%d unmatched=%d filtered=%d ambiguous=%d missing=%d\n",
			p.Pass, p.Updated, p.Added, p.Unchanged, p.Skipped, p.Unmatched, p.Filtered, p.Ambiguous, p.MissingMapping)
	}
	for _, note := range report.Notes() {
		fmt.Fprintf(out, "  note %-16s %s: %s\n", note.Kind, note.Subject, note.Detail)
	}

	switch {
	case report.Changes() == 0:
		fmt.Fprintln(out, "no changes")
	case !result.Persisted:
		fmt.Fprintf(out, "%d change(s), not written (dry run)\n", report.Changes())
	default:
		fmt.Fprintf(out, "%d change(s) written", report.Changes())
		if len(result.BackedUp) > 0 {
			fmt.Fprintf(out, ", backups: %v", result.BackedUp)
		}
		fmt.Fprintln(out)
	}
}
