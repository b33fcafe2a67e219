package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/anttiluode/NeuralFieldPatternExplorer/internal/config"
	"github.com/anttiluode/NeuralFieldPatternExplorer/internal/field"
)

func newRunCmd() *cobra.Command {
	var (
		flagSteps  int
		flagBatch  int
		flagEnergy bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation and report batch statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flagConfig)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("steps") {
				cfg.Run.Steps = flagSteps
			}
			if cmd.Flags().Changed("batch") {
				cfg.Run.BatchSize = flagBatch
			}
			if cmd.Flags().Changed("energy") {
				cfg.Run.Energy = flagEnergy
			}
			if flagLogLevel != "" {
				cfg.Logging.Level = flagLogLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log := newLogger(cfg.Logging.Level)

			ctrl := field.NewController(log)
			if err := ctrl.Configure(cfg.Simulation); err != nil {
				return err
			}
			if err := ctrl.Start(); err != nil {
				return err
			}

			// Ctrl-C pauses at the next sub-batch boundary.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			done := 0
			for done < cfg.Run.Steps {
				batch := cfg.Run.BatchSize
				if rest := cfg.Run.Steps - done; rest < batch {
					batch = rest
				}

				snap, err := ctrl.Run(ctx, batch)
				if errors.Is(err, context.Canceled) {
					log.Info("interrupted; stopping at batch boundary", "time", snap.Time)
					return nil
				}
				var div *field.DivergenceError
				if errors.As(err, &div) {
					return fmt.Errorf("simulation diverged (last stable t=%.4f): %w", div.Time, err)
				}
				if err != nil {
					return err
				}
				done += batch
				report(log, ctrl, snap, cfg.Run.Energy)
			}

			log.Info("run complete", "steps", done, "history_frames", len(ctrl.History()))
			return nil
		},
	}

	cmd.Flags().IntVarP(&flagSteps, "steps", "n", 0, "total steps to simulate")
	cmd.Flags().IntVarP(&flagBatch, "batch", "b", 0, "steps per reported batch")
	cmd.Flags().BoolVar(&flagEnergy, "energy", false, "include power diagnostic statistics")
	return cmd
}

// report logs summary statistics for a batch snapshot.
func report(log *slog.Logger, ctrl *field.Controller, snap *field.Snapshot, energy bool) {
	args := []any{
		"time", fmt.Sprintf("%.3f", snap.Time),
		"mean", fmt.Sprintf("%.5f", stat.Mean(snap.Activity, nil)),
		"std", fmt.Sprintf("%.5f", stat.StdDev(snap.Activity, nil)),
		"max", fmt.Sprintf("%.5f", floats.Max(snap.Activity)),
		"min", fmt.Sprintf("%.5f", floats.Min(snap.Activity)),
	}
	if energy {
		if es, err := ctrl.Snapshot(true); err == nil {
			args = append(args,
				"power_total", fmt.Sprintf("%.5f", floats.Sum(es.EnergyFlow)),
				"power_max", fmt.Sprintf("%.5f", floats.Max(es.EnergyFlow)))
		}
	}
	log.Info("batch", args...)
}
