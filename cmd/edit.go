package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sales_admin/internal/editor"
	"sales_admin/internal/listing"
	"sales_admin/internal/refdata"
)

var editFlags struct {
	client   string
	date     string
	notes    string
	setNotes bool
	items    []string
	payments []string
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Replace a sale's items and payments",
	Long: `Edit loads the sale, applies the header flags and rebuilds the item and
payment lists from --item and --pay. The sale's current items and payments
are not kept: list every line again.

  --item ARTICLE:QTY[:PRICE[:EMPLOYEE]]   article/employee by id or name;
                                          price defaults to the list price
  --pay  TYPE:AMOUNT                      payment type by id or name

Items and payments must balance (within one cent) for the save to go through.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := saleIDArg(args[0])
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		gw := newGateway()
		con := newConsole(cmd)

		// Al guardar se vuelve a sincronizar el listado, acotado a esta venta.
		list := listing.New(gw, con, con, logger, listing.WithPageSize(cfg.List.PageSize))
		ed := editor.New(gw, con, logger, func(saved int64) {
			list.SetSearch(strconv.FormatInt(saved, 10))
			if err := list.ApplyFilters(ctx); err != nil {
				return
			}
			printListing(cmd.OutOrStdout(), list.View())
		})

		if err := ed.Load(ctx, id); err != nil {
			return err
		}
		if err := applyEdits(ed); err != nil {
			ed.Close()
			return err
		}

		s := ed.Session()
		logger.Debug("submitting edit",
			zap.Int64("sale_id", id),
			zap.String("items_total", s.ItemsTotal.StringFixed(2)),
			zap.String("payments_total", s.PaymentsTotal.StringFixed(2)),
		)
		return ed.Save(ctx)
	},
}

func applyEdits(ed *editor.Controller) error {
	refs := ed.Refs()

	if editFlags.client != "" {
		cid, err := resolve(refs, refdata.Clients, editFlags.client)
		if err != nil {
			return err
		}
		if err := ed.SetClient(cid); err != nil {
			return err
		}
	}
	if editFlags.date != "" {
		d, err := parseDate(editFlags.date)
		if err != nil {
			return err
		}
		if err := ed.SetDate(*d); err != nil {
			return err
		}
	}
	if editFlags.setNotes {
		if err := ed.SetNotes(editFlags.notes); err != nil {
			return err
		}
	}

	for _, raw := range editFlags.items {
		parts := strings.Split(raw, ":")
		if len(parts) < 2 || len(parts) > 4 {
			return fmt.Errorf("--item %q: se espera ARTICULO:CANTIDAD[:PRECIO[:EMPLEADO]]", raw)
		}
		article, err := resolve(refs, refdata.Articles, parts[0])
		if err != nil {
			return err
		}
		i, err := ed.AddLineItem()
		if err != nil {
			return err
		}
		if err := ed.UpdateLineItem(i, editor.FieldArticle, strconv.FormatInt(article, 10)); err != nil {
			return err
		}
		if err := ed.UpdateLineItem(i, editor.FieldQuantity, parts[1]); err != nil {
			return err
		}
		if len(parts) > 2 && parts[2] != "" {
			if err := ed.UpdateLineItem(i, editor.FieldUnitPrice, parts[2]); err != nil {
				return err
			}
		}
		if len(parts) > 3 && parts[3] != "" {
			emp, err := resolve(refs, refdata.Employees, parts[3])
			if err != nil {
				return err
			}
			if err := ed.UpdateLineItem(i, editor.FieldEmployee, strconv.FormatInt(emp, 10)); err != nil {
				return err
			}
		}
	}

	for _, raw := range editFlags.payments {
		kind, amount, ok := strings.Cut(raw, ":")
		if !ok {
			return fmt.Errorf("--pay %q: se espera TIPO:MONTO", raw)
		}
		pt, err := resolve(refs, refdata.PaymentTypes, kind)
		if err != nil {
			return err
		}
		i, err := ed.AddPayment()
		if err != nil {
			return err
		}
		if err := ed.UpdatePayment(i, editor.FieldPaymentType, strconv.FormatInt(pt, 10)); err != nil {
			return err
		}
		if err := ed.UpdatePayment(i, editor.FieldAmount, amount); err != nil {
			return err
		}
	}
	return nil
}

// resolve takes an id or a name approximately matching an entry of kind.
func resolve(refs *refdata.Cache, kind refdata.Kind, text string) (int64, error) {
	if id, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64); err == nil {
		return id, nil
	}
	opt, ok := refs.Match(kind, text)
	if !ok {
		return 0, fmt.Errorf("%s: no se encontró %q", kind, text)
	}
	return opt.ID, nil
}

func init() {
	f := editCmd.Flags()
	f.StringVar(&editFlags.client, "client", "", "Client id or name")
	f.StringVar(&editFlags.date, "date", "", "Sale date")
	f.StringVar(&editFlags.notes, "notes", "", "Replace the notes")
	f.StringArrayVar(&editFlags.items, "item", nil, "Line item ARTICLE:QTY[:PRICE[:EMPLOYEE]] (repeatable)")
	f.StringArrayVar(&editFlags.payments, "pay", nil, "Payment TYPE:AMOUNT (repeatable)")
	editCmd.PreRun = func(cmd *cobra.Command, args []string) {
		editFlags.setNotes = cmd.Flags().Changed("notes")
	}
	rootCmd.AddCommand(editCmd)
}
