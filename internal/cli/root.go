// Package cli implements the flatkd command line: benchmark and integrity
// drivers for the k-d tree plus loading and querying SQLite point sets.
package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/viant/flatkd/config"
	"github.com/viant/flatkd/internal/logging"
)

// app carries state resolved before any subcommand runs.
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg    config.Config
	logger *logging.Logger
}

// Execute runs the flatkd root command.
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand assembles the command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "flatkd",
		Short:         "flatkd - flat k-d tree tools",
		Long:          `flatkd builds implicit k-d trees in place and runs exact k-nearest-neighbour searches over them.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to a YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "Log format (text, json)")

	root.AddCommand(
		newBenchCommand(a),
		newIntegrityCommand(a),
		newLoadCommand(a),
		newQueryCommand(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

// positional parses args[i] as a non-negative int into dst when present.
func positional(args []string, i int, name string, dst *int) error {
	if i >= len(args) {
		return nil
	}
	v, err := strconv.Atoi(args[i])
	if err != nil || v < 0 {
		return fmt.Errorf("invalid %s %q: want a non-negative integer", name, args[i])
	}
	*dst = v
	return nil
}
