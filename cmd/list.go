package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sales_admin/internal/export"
	"sales_admin/internal/listing"
	"sales_admin/internal/refdata"
)

var listFlags struct {
	search string
	client string
	from   string
	to     string
	page   int
	xlsx   string
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List sales matching the filters, with totals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		gw := newGateway()
		con := newConsole(cmd)

		search := listFlags.search
		if listFlags.client != "" {
			refs := refdata.New(gw, logger)
			refs.Load(ctx)
			opt, ok := refs.Match(refdata.Clients, listFlags.client)
			if !ok {
				return fmt.Errorf("no se encontró un cliente parecido a %q", listFlags.client)
			}
			logger.Debug("client matched", zap.String("input", listFlags.client), zap.String("client", opt.Label))
			search = opt.Label
		}
		start, err := parseDate(listFlags.from)
		if err != nil {
			return err
		}
		end, err := parseDate(listFlags.to)
		if err != nil {
			return err
		}

		c := listing.New(gw, con, con, logger, listing.WithPageSize(cfg.List.PageSize))
		c.SetSearch(search)
		c.SetDateRange(start, end)
		if err := c.ApplyFilters(ctx); err != nil {
			return err
		}
		if listFlags.page > 1 {
			if err := c.SetPage(ctx, listFlags.page); err != nil {
				return err
			}
		}

		v := c.View()
		printListing(cmd.OutOrStdout(), v)

		if listFlags.xlsx != "" {
			return writeExport(listFlags.xlsx, v)
		}
		return nil
	},
}

func writeExport(path string, v listing.View) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export: %w", err)
	}
	if err := export.WriteXLSX(f, export.Sheet{Sales: v.Sales, Stats: v.Stats, Derived: v.StatsDerived}); err != nil {
		f.Close()
		return err
	}
	logger.Info("listing exported", zap.String("path", path), zap.Int("rows", len(v.Sales)))
	return f.Close()
}

func init() {
	f := listCmd.Flags()
	f.StringVarP(&listFlags.search, "search", "s", "", "Search text (client, notes, status or sale number)")
	f.StringVar(&listFlags.client, "client", "", "Client name, matched approximately against the client list")
	f.StringVar(&listFlags.from, "from", "", "Start date (inclusive)")
	f.StringVar(&listFlags.to, "to", "", "End date (inclusive)")
	f.IntVarP(&listFlags.page, "page", "p", 1, "Page number")
	f.StringVar(&listFlags.xlsx, "xlsx", "", "Also write the page and totals to this .xlsx file")
	listCmd.MarkFlagsMutuallyExclusive("search", "client")
	rootCmd.AddCommand(listCmd)
}
