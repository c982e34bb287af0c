// Package cmd is the sales-admin command line.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"sales_admin/internal/config"
	"sales_admin/internal/console"
	"sales_admin/internal/gateway"
)

var (
	// cfgFile is the --config flag; empty looks for ./config.yaml.
	cfgFile string
	verbose bool

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sales-admin",
	Short: "Administración de ventas desde la terminal",
	Long: `sales-admin lists, inspects, edits and deletes sales against the sales API.

Example Usage:
  sales-admin list --search ana --from 2024-01-01
  sales-admin show 42
  sales-admin edit 42 --item 10:2 --pay 1:9
  sales-admin stub --seed fixtures.yaml`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(cfgFile); err != nil {
			return err
		}
		logger, err = newLogger(cfg.Log.Level, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to the configuration file (default ./config.yaml if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// newLogger builds a production logger writing to stderr at level.
func newLogger(level string, verbose bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zc.Build()
}

func newGateway() *gateway.Client {
	return gateway.New(gateway.Config{BaseURL: cfg.API.BaseURL, Timeout: cfg.API.Timeout}, logger)
}

func newConsole(cmd *cobra.Command) *console.Console {
	return console.New(cmd.InOrStdin(), cmd.OutOrStdout())
}
