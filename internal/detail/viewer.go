// Package detail is the read-only view of one sale.
package detail

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"sales_admin/internal/gateway"
	"sales_admin/internal/refdata"
	"sales_admin/internal/sales"
)

// Gateway is the part of the remote API the viewer uses.
type Gateway interface {
	refdata.Source
	GetSale(ctx context.Context, id int64) (sales.Detail, error)
}

// Line is a line item with its labels resolved.
type Line struct {
	sales.LineItem
	Article  string
	Employee string
}

// Charge is a payment with its type label resolved.
type Charge struct {
	sales.Payment
	Type string
}

// View is what the detail screen renders. Found is false when the record
// does not exist; everything else is then zero.
type View struct {
	Found     bool
	Sale      sales.SaleRecord
	Client    string
	Lines     []Line
	Charges   []Charge
	TotalPaid decimal.Decimal
}

// Viewer loads single records.
type Viewer struct {
	gw     Gateway
	refs   *refdata.Cache
	notify sales.Notifier
	logger *zap.Logger
}

// New creates a Viewer. Labels are resolved through a reference cache loaded
// on first use.
func New(gw Gateway, notify sales.Notifier, logger *zap.Logger) *Viewer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Viewer{gw: gw, refs: refdata.New(gw, logger), notify: notify, logger: logger}
}

// Load fetches the record with its line items and payments. An absent record
// yields an empty View and no error.
func (v *Viewer) Load(ctx context.Context, id int64) (View, error) {
	d, err := v.gw.GetSale(ctx, id)
	if gateway.IsNotFound(err) {
		v.logger.Info("sale not found", zap.Int64("sale_id", id))
		return View{TotalPaid: decimal.Zero}, nil
	}
	if err != nil {
		v.logger.Error("failed to load sale detail", zap.Int64("sale_id", id), zap.Error(err))
		v.notify.Alert(fmt.Sprintf("No se pudo cargar el detalle: %v", err))
		return View{}, err
	}

	v.refs.Load(ctx)
	view := View{
		Found:     true,
		Sale:      d.Sale,
		Client:    d.Sale.ClientName,
		TotalPaid: TotalPaid(d.Payments),
	}
	if view.Client == "" {
		view.Client = v.label(refdata.Clients, d.Sale.ClientID)
	}
	for _, it := range d.Items {
		// El subtotal del backend no se usa.
		it.Subtotal = it.LineSubtotal()
		l := Line{LineItem: it, Article: v.label(refdata.Articles, it.ArticleID)}
		if it.EmployeeID != nil {
			l.Employee = v.label(refdata.Employees, *it.EmployeeID)
		}
		view.Lines = append(view.Lines, l)
	}
	for _, p := range d.Payments {
		view.Charges = append(view.Charges, Charge{Payment: p, Type: v.label(refdata.PaymentTypes, p.PaymentTypeID)})
	}
	return view, nil
}

// label falls back to "#id" when the reference list lacks the entry.
func (v *Viewer) label(kind refdata.Kind, id int64) string {
	if l, ok := v.refs.Label(kind, id); ok {
		return l
	}
	return fmt.Sprintf("#%d", id)
}

// TotalPaid sums the payment amounts.
func TotalPaid(payments []sales.Payment) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range payments {
		sum = sum.Add(p.Amount)
	}
	return sum
}
