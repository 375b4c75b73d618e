package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	apporder "github.com/Zhima-Mochi/minishop-marketplace/internal/application/order"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/config"
)

func reconcileCmd() *cobra.Command {
	var (
		dryRun bool
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Repair payments whose order was never marked paid and report other mismatches",
		Long: `Run one reconciliation pass over the configured store and print the
report as JSON.

Examples:
  minishop reconcile
  minishop reconcile --dry-run
  minishop reconcile --strict   # exit non-zero when anything was found`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			rt, err := newRuntime(ctx, cfg)
			if err != nil {
				return err
			}
			defer rt.close(context.Background())

			report, err := rt.svc.Reconcile.Execute(ctx, apporder.ReconcileCommand{DryRun: dryRun})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
			if strict && !report.Clean() {
				return fmt.Errorf("reconcile: discrepancies found")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report repairs without writing them")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit with an error when the report is not clean")
	return cmd
}
