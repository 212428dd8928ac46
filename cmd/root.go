package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/freightsim/app"
	"github.com/kilianp07/freightsim/config"
	coremon "github.com/kilianp07/freightsim/core/monitoring"
	"github.com/kilianp07/freightsim/core/scenario"
	"github.com/kilianp07/freightsim/infra/logger"
	"github.com/kilianp07/freightsim/infra/monitoring"
)

var (
	cfgPath      string
	scenarioPath string
	strategyName string
	jsonOutput   bool
	exportPath   string
)

var rootCmd = &cobra.Command{
	Use:          "freightsim",
	Short:        "Freight dispatch simulator",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
	rootCmd.PersistentFlags().StringVarP(&scenarioPath, "scenario", "s", "", "scenario file, overrides input.scenario")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print run records as JSON")
	rootCmd.PersistentFlags().StringVar(&exportPath, "export", "", "write freight results to a .csv or .json file, or a comparison chart to .html")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// withService loads the configuration and scenario, then calls fn with a
// Service bound to a signal aware context. Errors returned by fn are
// reported to the configured error tracker.
func withService(cmd *cobra.Command, fn func(ctx context.Context, svc *app.Service, sc *scenario.Scenario) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	reporter, err := monitoring.NewSentryReporter(cfg.Monitoring)
	if err != nil {
		return err
	}
	coremon.SetReporter(reporter)
	defer coremon.Flush(2 * time.Second)
	defer reporter.RecoverPanic()

	svc, err := app.New(cfg)
	if err != nil {
		coremon.CaptureError(err, map[string]string{"command": cmd.Name()})
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	sc, err := svc.LoadScenario(scenarioPath)
	if err != nil {
		return fmt.Errorf("load scenario: %w", err)
	}
	if err := fn(ctx, svc, sc); err != nil {
		coremon.CaptureError(err, map[string]string{"command": cmd.Name(), "scenario": sc.Name})
		return err
	}
	return nil
}
