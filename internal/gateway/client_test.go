package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"sales_admin/internal/sales"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL}, zaptest.NewLogger(t))
}

func TestListSales_SendsFilterAndDecodes(t *testing.T) {
	var got *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ventas":[{"IdVenta":7,"IdCliente":2,"Fecha":"2024-01-05T10:00:00Z","Total":12.5,"Estado":"Pagada","Observaciones":""}],"totalPaginas":3}`))
	})

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	page, err := c.ListSales(context.Background(), sales.Filter{Search: "ana", Start: &start}, 2, 10)
	require.NoError(t, err)

	assert.Equal(t, "/venta", got.URL.Path)
	assert.Equal(t, "ana", got.URL.Query().Get("search"))
	assert.Equal(t, "2024-01-01", got.URL.Query().Get("fechaInicio"))
	assert.Empty(t, got.URL.Query().Get("fechaFin"))
	assert.Equal(t, "2", got.URL.Query().Get("page"))
	assert.Equal(t, "10", got.URL.Query().Get("limit"))
	assert.NotEmpty(t, got.Header.Get(RequestIDHeader))

	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Sales, 1)
	assert.Equal(t, int64(7), page.Sales[0].ID)
	assert.Equal(t, "12.50", page.Sales[0].Total.StringFixed(2))
}

func TestListSales_ShapeMismatchIsDecodeError(t *testing.T) {
	bodies := []string{
		`{"ventas":[]}`,
		`{"totalPaginas":1}`,
		`{"ventas":[{"IdVenta":0}],"totalPaginas":1}`,
		`not json`,
	}
	for _, body := range bodies {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		})
		_, err := c.ListSales(context.Background(), sales.Filter{}, 1, 10)
		assert.Equal(t, KindDecode, KindOf(err), "body %s", body)

		var gerr *Error
		require.ErrorAs(t, err, &gerr)
		require.Error(t, gerr.Err)
		assert.Contains(t, err.Error(), "(status 200)")
		assert.Contains(t, err.Error(), gerr.Err.Error(), "the cause is part of the message")
	}
}

func TestErrorMessage(t *testing.T) {
	cause := errors.New("unexpected EOF")
	cases := []struct {
		err  *Error
		want string
	}{
		{&Error{Op: "get sale", Kind: KindNotFound, Status: 404}, "get sale: not found (status 404)"},
		{&Error{Op: "sales stats", Kind: KindStatus, Status: 500, Msg: "boom"}, "sales stats: status (status 500): boom"},
		{&Error{Op: "list sales", Kind: KindDecode, Status: 200, Err: cause}, "list sales: decode (status 200): unexpected EOF"},
		{&Error{Op: "delete sale", Kind: KindTransport, Err: cause}, "delete sale: transport: unexpected EOF"},
		{&Error{Op: "delete sale", Kind: KindTransport}, "delete sale: transport"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.err.Error())
	}
}

func TestSalesStats_ServerErrorIsStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"boom"}`))
	})

	_, err := c.SalesStats(context.Background(), sales.Filter{})
	require.Error(t, err)

	var gerr *Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, KindStatus, gerr.Kind)
	assert.Equal(t, http.StatusInternalServerError, gerr.Status)
	assert.Equal(t, "boom", gerr.Msg)
}

func TestSalesStats_Decodes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/estadisticas/ventas", r.URL.Path)
		w.Write([]byte(`{"totalVentas":"150.75","ventasPagadas":4,"ventasAnuladas":0}`))
	})

	st, err := c.SalesStats(context.Background(), sales.Filter{})
	require.NoError(t, err)
	assert.Equal(t, "150.75", st.Total.String())
	assert.Equal(t, 4, st.Paid)
	assert.Equal(t, 0, st.Voided)
}

func TestGetSale_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	_, err := c.GetSale(context.Background(), 5)
	assert.True(t, IsNotFound(err))

	c = newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"venta":null,"detalles":[],"pagos":[]}`))
	})
	_, err = c.GetSale(context.Background(), 5)
	assert.True(t, IsNotFound(err), "null record is treated as absent")
}

func TestGetSale_Decodes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/venta/5", r.URL.Path)
		w.Write([]byte(`{"venta":{"IdVenta":5,"IdCliente":1,"Fecha":"2024-01-05T00:00:00Z","Total":20,"Estado":"Pagada"},
			"detalles":[{"IdArticulo":3,"Cantidad":2,"PrecioUnitario":10,"IdEmpleado":4,"Subtotal":20}],
			"pagos":[{"IdTipoPago":1,"Monto":20}]}`))
	})

	d, err := c.GetSale(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), d.Sale.ID)
	require.Len(t, d.Items, 1)
	require.NotNil(t, d.Items[0].EmployeeID)
	assert.Equal(t, int64(4), *d.Items[0].EmployeeID)
	require.Len(t, d.Payments, 1)
	assert.True(t, d.Payments[0].Amount.Equal(decimal.NewFromInt(20)))
}

func TestUpdateSale_SendsDocument(t *testing.T) {
	var body map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/venta/9", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"message":"ok"}`))
	})

	err := c.UpdateSale(context.Background(), 9, sales.Update{
		ClientID: 2,
		Total:    decimal.NewFromInt(20),
		Items:    []sales.LineItem{{ArticleID: 1, Quantity: 2, UnitPrice: decimal.NewFromInt(10)}},
		Payments: []sales.Payment{{PaymentTypeID: 1, Amount: decimal.NewFromInt(20)}},
	})
	require.NoError(t, err)
	assert.Equal(t, float64(20), body["Total"], "amounts travel as JSON numbers")
	assert.Len(t, body["Detalles"], 1)
	assert.Len(t, body["Pagos"], 1)
}

func TestDeleteSale_Rejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte("sale is locked"))
	})
	err := c.DeleteSale(context.Background(), 1)
	var gerr *Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, KindStatus, gerr.Kind)
	assert.Equal(t, "sale is locked", gerr.Msg)
	assert.Contains(t, err.Error(), "409")
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := New(Config{BaseURL: url}, zaptest.NewLogger(t))
	_, err := c.Clients(context.Background())
	assert.Equal(t, KindTransport, KindOf(err))
}

func TestLookups(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/clientes":
			w.Write([]byte(`[{"IdCliente":1,"Nombre":"Ana"}]`))
		case "/articulos":
			w.Write([]byte(`[{"IdArticulo":3,"Nombre":"Yerba","Precio":4.5}]`))
		case "/tipo_pago":
			w.Write([]byte(`[{"IdTipoPago":0,"Nombre":"Efectivo"}]`))
		case "/listaempleado":
			w.Write([]byte(`[]`))
		}
	})
	ctx := context.Background()

	clients, err := c.Clients(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ana", clients[0].Name)

	articles, err := c.Articles(ctx)
	require.NoError(t, err)
	assert.Equal(t, "4.5", articles[0].Price.String())

	_, err = c.PaymentTypes(ctx)
	assert.Equal(t, KindDecode, KindOf(err), "ids must be positive")

	employees, err := c.Employees(ctx)
	require.NoError(t, err)
	assert.Empty(t, employees)
}
