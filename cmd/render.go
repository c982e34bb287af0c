package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"sales_admin/internal/detail"
	"sales_admin/internal/format"
	"sales_admin/internal/listing"
	"sales_admin/internal/sales"
)

var dateInputLayouts = []string{"2006-01-02", "02/01/2006"}

// parseDate accepts ISO dates and the dd/mm/yyyy form the listing shows.
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range dateInputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("fecha inválida %q (use AAAA-MM-DD o DD/MM/AAAA)", s)
}

func statusMark(s sales.SaleRecord) string {
	switch s.Bucket() {
	case sales.BucketPaid:
		return "●"
	case sales.BucketVoided:
		return "✗"
	default:
		return "○"
	}
}

func printListing(w io.Writer, v listing.View) {
	fmt.Fprintf(w, "Total: %s  Pagadas: %d  Anuladas: %d", format.Currency(v.Stats.Total), v.Stats.Paid, v.Stats.Voided)
	if v.StatsDerived {
		fmt.Fprint(w, "  (calculado)")
	}
	fmt.Fprintln(w)

	if len(v.Sales) == 0 {
		fmt.Fprintln(w, "No hay ventas para los filtros seleccionados.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tCLIENTE\tFECHA\tTOTAL\tESTADO\tOBSERVACIONES")
	for _, s := range v.Sales {
		client := s.ClientName
		if client == "" {
			client = fmt.Sprintf("#%d", s.ClientID)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s %s\t%s\n",
			s.ID, client, format.Date(s.Date), format.Currency(s.Total), statusMark(s), s.Status, s.Notes)
	}
	tw.Flush()
	fmt.Fprintf(w, "Página %d de %d\n", v.Query.Page, v.TotalPages)
}

func printDetail(w io.Writer, v detail.View) {
	if !v.Found {
		fmt.Fprintln(w, "Venta no encontrada.")
		return
	}
	s := v.Sale
	fmt.Fprintf(w, "Venta #%d  %s\n", s.ID, format.DateTime(s.Date))
	fmt.Fprintf(w, "Cliente: %s\nEstado:  %s %s\n", v.Client, statusMark(s), s.Status)
	if s.Notes != "" {
		fmt.Fprintf(w, "Notas:   %s\n", s.Notes)
	}

	fmt.Fprintln(w, "\nArtículos")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ARTÍCULO\tCANT.\tPRECIO\tSUBTOTAL\tEMPLEADO")
	for _, l := range v.Lines {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			l.Article, format.Quantity(l.Quantity), format.Currency(l.UnitPrice), format.Currency(l.Subtotal), l.Employee)
	}
	tw.Flush()

	fmt.Fprintln(w, "\nPagos")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, c := range v.Charges {
		fmt.Fprintf(tw, "%s\t%s\n", c.Type, format.Currency(c.Amount))
	}
	tw.Flush()
	fmt.Fprintf(w, "%s\nTotal venta:  %s\nTotal pagado: %s\n",
		strings.Repeat("─", 28), format.Currency(s.Total), format.Currency(v.TotalPaid))
}
