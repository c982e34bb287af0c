package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"sales_admin/internal/detail"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a sale with its items and payments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := saleIDArg(args[0])
		if err != nil {
			return err
		}
		v, err := detail.New(newGateway(), newConsole(cmd), logger).Load(cmd.Context(), id)
		if err != nil {
			return err
		}
		printDetail(cmd.OutOrStdout(), v)
		return nil
	},
}

func saleIDArg(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("número de venta inválido %q", s)
	}
	return id, nil
}

func init() {
	rootCmd.AddCommand(showCmd)
}
