package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/LucasRodriguesEstorckPinto/cylindrical-tank-cost-optimization/internal/logging"
)

var (
	logLevel  string
	logger    *logging.Logger
	zapLogger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tankopt",
	Short: "Cylindrical tank cost optimization",
	Long: `tankopt sizes a cylindrical storage tank (diameter D, length L) for
minimum material plus welding cost, subject to a volume band and bound
constraints, using steepest descent, Newton, or DFP.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		var err error
		logger, err = logging.NewLogger(&logging.Config{Level: logLevel, Output: "stderr"})
		if err != nil {
			logger = logging.New(logging.InfoLevel, os.Stderr)
		}
		zapLogger = logging.NewZapLogger(logger)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
}
