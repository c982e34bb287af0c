package cmd

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sales_admin/api"
)

var stubFlags struct {
	addr      string
	seed      string
	failStats bool
}

var stubCmd = &cobra.Command{
	Use:   "stub",
	Short: "Serve an in-memory sales backend for local use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, seed, failStats := cfg.Stub.Addr, cfg.Stub.Seed, cfg.Stub.FailStats
		if cmd.Flags().Changed("addr") {
			addr = stubFlags.addr
		}
		if cmd.Flags().Changed("seed") {
			seed = stubFlags.seed
		}
		if cmd.Flags().Changed("fail-stats") {
			failStats = stubFlags.failStats
		}

		fx, err := api.LoadFixture(seed)
		if err != nil {
			return err
		}
		if !verbose {
			gin.SetMode(gin.ReleaseMode)
		}
		r := gin.New()
		r.Use(gin.Recovery())
		if _, err := api.InitRoutes(r, fx, logger, api.Options{FailStats: failStats}); err != nil {
			return err
		}

		logger.Info("backend stub listening", zap.String("addr", addr), zap.String("seed", seed))
		if err := r.Run(addr); err != nil {
			return fmt.Errorf("error trying to start server: %w", err)
		}
		return nil
	},
}

func init() {
	f := stubCmd.Flags()
	f.StringVar(&stubFlags.addr, "addr", "", "Listen address (default from stub.addr)")
	f.StringVar(&stubFlags.seed, "seed", "", "YAML fixture file (default from stub.seed)")
	f.BoolVar(&stubFlags.failStats, "fail-stats", false, "Answer 503 on the statistics endpoint")
	rootCmd.AddCommand(stubCmd)
}
