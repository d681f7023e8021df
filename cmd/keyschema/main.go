// Command keyschema compiles schema rule files and validates input documents against them.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ezachrisen/keyschema/config"
)

// errInvalidInput is returned by validate when at least one document fails.
var errInvalidInput = errors.New("invalid input")

// app carries the flag values and shared state of one command invocation.
type app struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "keyschema",
		Short: "Compile key schemas and validate documents against them",
		Long: `keyschema reads a YAML configuration holding predicate definitions and schema
rule lists. Every schema is compiled before any document is read, so contradictory
rules such as maybe(nil?) are reported without input.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			if a.verbose {
				cfg.LogLevel = zapcore.DebugLevel.String()
			}
			logger, err := cfg.Logger()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.cfg = cfg
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "keyschema.yaml", "configuration file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newCheckCmd(a), newValidateCmd(a))
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errInvalidInput) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
