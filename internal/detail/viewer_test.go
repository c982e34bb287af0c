package detail

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"sales_admin/internal/gateway"
	"sales_admin/internal/sales"
)

type fakeGateway struct {
	detail sales.Detail
	err    error
}

func (f fakeGateway) Clients(ctx context.Context) ([]sales.Client, error) {
	return []sales.Client{{ID: 1, Name: "Ana"}}, nil
}

func (f fakeGateway) Articles(ctx context.Context) ([]sales.Article, error) {
	return []sales.Article{{ID: 3, Name: "Yerba"}}, nil
}

func (f fakeGateway) Employees(ctx context.Context) ([]sales.Employee, error) {
	return nil, errors.New("unavailable")
}

func (f fakeGateway) PaymentTypes(ctx context.Context) ([]sales.PaymentType, error) {
	return []sales.PaymentType{{ID: 1, Name: "Efectivo"}, {ID: 2, Name: "Tarjeta"}}, nil
}

func (f fakeGateway) GetSale(ctx context.Context, id int64) (sales.Detail, error) {
	return f.detail, f.err
}

type recorder struct{ alerts []string }

func (r *recorder) Alert(msg string)   { r.alerts = append(r.alerts, msg) }
func (r *recorder) Success(msg string) {}

func TestLoad_ResolvesLabelsAndSumsPayments(t *testing.T) {
	emp := int64(8)
	gw := fakeGateway{detail: sales.Detail{
		Sale: sales.SaleRecord{ID: 5, ClientID: 1, Total: decimal.NewFromInt(999)},
		Items: []sales.LineItem{
			{ArticleID: 3, Quantity: 2, UnitPrice: decimal.RequireFromString("4.50"), Subtotal: decimal.NewFromInt(1), EmployeeID: &emp},
		},
		Payments: []sales.Payment{
			{PaymentTypeID: 1, Amount: decimal.RequireFromString("5.25")},
			{PaymentTypeID: 2, Amount: decimal.RequireFromString("3.75")},
		},
	}}
	v := New(gw, &recorder{}, zaptest.NewLogger(t))

	view, err := v.Load(context.Background(), 5)
	require.NoError(t, err)
	assert.True(t, view.Found)
	assert.Equal(t, "Ana", view.Client)
	assert.Equal(t, "9.00", view.TotalPaid.StringFixed(2), "total paid is recomputed, not taken from the record")

	require.Len(t, view.Lines, 1)
	assert.Equal(t, "Yerba", view.Lines[0].Article)
	assert.Equal(t, "#8", view.Lines[0].Employee)
	assert.Equal(t, "9.00", view.Lines[0].Subtotal.StringFixed(2))

	require.Len(t, view.Charges, 2)
	assert.Equal(t, "Tarjeta", view.Charges[1].Type)
}

func TestLoad_AbsentRecordIsEmptyState(t *testing.T) {
	rec := &recorder{}
	v := New(fakeGateway{err: &gateway.Error{Op: "get sale", Kind: gateway.KindNotFound}}, rec, zaptest.NewLogger(t))

	view, err := v.Load(context.Background(), 5)
	require.NoError(t, err)
	assert.False(t, view.Found)
	assert.Empty(t, view.Lines)
	assert.Empty(t, view.Charges)
	assert.True(t, view.TotalPaid.IsZero())
	assert.Empty(t, rec.alerts)
}

func TestLoad_TransportFailureAlerts(t *testing.T) {
	rec := &recorder{}
	v := New(fakeGateway{err: &gateway.Error{Op: "get sale", Kind: gateway.KindTransport, Err: errors.New("refused")}}, rec, zaptest.NewLogger(t))

	_, err := v.Load(context.Background(), 5)
	assert.Equal(t, gateway.KindTransport, gateway.KindOf(err))
	assert.Len(t, rec.alerts, 1)
}

func TestTotalPaid(t *testing.T) {
	assert.True(t, TotalPaid(nil).IsZero())
	assert.Equal(t, "0.30", TotalPaid([]sales.Payment{
		{Amount: decimal.RequireFromString("0.1")},
		{Amount: decimal.RequireFromString("0.2")},
	}).StringFixed(2))
}
