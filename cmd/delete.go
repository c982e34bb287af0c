package cmd

import (
	"github.com/spf13/cobra"

	"sales_admin/internal/listing"
)

var deleteYes bool

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a sale after confirmation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := saleIDArg(args[0])
		if err != nil {
			return err
		}
		con := newConsole(cmd)
		con.AssumeYes = deleteYes
		return listing.New(newGateway(), con, con, logger).DeleteRecord(cmd.Context(), id)
	},
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Do not ask for confirmation")
	rootCmd.AddCommand(deleteCmd)
}
