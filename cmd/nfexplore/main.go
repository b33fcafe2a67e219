// nfexplore is a headless driver for the neural field simulation engine.
// It stands in for the interactive control surface: it loads a YAML
// configuration, drives the controller through a run and reports batch
// statistics on stderr.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagConfig   string
	flagLogLevel string
)

func main() {
	root := &cobra.Command{
		Use:          "nfexplore",
		Short:        "Neural field pattern explorer simulation engine",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to YAML configuration")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: info or debug (overrides config)")

	root.AddCommand(newRunCmd())
	root.AddCommand(newVersionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newLogger builds the process logger for the chosen level.
func newLogger(level string) *slog.Logger {
	lvl := slog.LevelInfo
	if level == "debug" {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
