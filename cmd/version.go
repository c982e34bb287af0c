package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version and BuildDate are set at build time with
//
//	go build -ldflags "-X 'sales_admin/cmd.Version=1.2.0' -X 'sales_admin/cmd.BuildDate=2024-01-01'"
var (
	Version   = "dev"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the application version",
	Args:  cobra.NoArgs,
	// Sin configuración ni logger.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {},
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "sales-admin")
		fmt.Fprintf(out, "Version:    %s\n", Version)
		fmt.Fprintf(out, "Build Date: %s\n", BuildDate)
		fmt.Fprintf(out, "Go Version: %s\n", runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
