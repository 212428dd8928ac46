package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/freightsim/app"
	"github.com/kilianp07/freightsim/core/report"
	"github.com/kilianp07/freightsim/core/scenario"
	"github.com/kilianp07/freightsim/pkg/export"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simulate a scenario with one dispatch strategy",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *app.Service, sc *scenario.Scenario) error {
			rec, err := svc.Run(ctx, sc, strategyName)
			if err != nil {
				return err
			}
			return output(cmd, []*report.RunRecord{rec})
		})
	},
}

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Simulate a scenario, then improve the assignment with local search and the LP solver",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *app.Service, sc *scenario.Scenario) error {
			rec, err := svc.Optimize(ctx, sc, strategyName)
			if err != nil {
				return err
			}
			return output(cmd, []*report.RunRecord{rec})
		})
	},
}

var compareStrategies []string

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Simulate a scenario with several strategies side by side",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *app.Service, sc *scenario.Scenario) error {
			recs, err := svc.Compare(ctx, sc, compareStrategies)
			if err != nil {
				return err
			}
			return output(cmd, recs)
		})
	},
}

func init() {
	runCmd.Flags().StringVar(&strategyName, "strategy", "", "dispatch strategy, overrides simulation.strategy")
	optimizeCmd.Flags().StringVar(&strategyName, "strategy", "", "dispatch strategy of the initial run")
	compareCmd.Flags().StringSliceVar(&compareStrategies, "strategies", nil, "strategies to compare, overrides simulation.strategies")
	rootCmd.AddCommand(runCmd, optimizeCmd, compareCmd)
}

func output(cmd *cobra.Command, recs []*report.RunRecord) error {
	if exportPath != "" {
		if err := export.WriteFile(exportPath, recs); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}
	return printRecords(cmd.OutOrStdout(), recs, jsonOutput)
}
