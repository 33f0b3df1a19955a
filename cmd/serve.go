package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matveld/bms/app"
	"github.com/matveld/bms/config"
	"github.com/matveld/bms/infra/logger"
	"github.com/matveld/bms/simulator"
)

var (
	serveSeed     bool
	serveSimulate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the monitoring service",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveSeed, "seed", false, "register the demo cells at startup")
	serveCmd.Flags().BoolVar(&serveSimulate, "simulate", false, "run the telemetry simulator")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()

	if serveSeed {
		for _, c := range simulator.SampleCells() {
			if err := svc.Engine.RegisterCell(c); err != nil {
				return fmt.Errorf("seed %s: %w", c.ID, err)
			}
		}
	}
	if serveSimulate {
		svc.EnableSimulator()
	}
	return svc.Run(ctx)
}
