// Package gateway is the typed HTTP client for the remote sales API.
//
// Importing it sets decimal.MarshalJSONWithoutQuotes for the whole process:
// every decimal.Decimal then encodes as a JSON number, which is what the
// backend expects for amounts.
package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"sales_admin/internal/sales"
)

// DateLayout is the format of the fechaInicio/fechaFin query parameters.
const DateLayout = "2006-01-02"

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-ID"

func init() {
	// El backend espera montos numéricos, no strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Config tells the client where the API lives.
type Config struct {
	BaseURL string
	// Timeout of zero leaves requests unbounded.
	Timeout time.Duration
}

// Client talks to the sales API.
type Client struct {
	http     *resty.Client
	validate *validator.Validate
	logger   *zap.Logger
}

// New builds a Client.
func New(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	hc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetLogger(logger.Sugar())
	if cfg.Timeout > 0 {
		hc.SetTimeout(cfg.Timeout)
	}
	return &Client{
		http:     hc,
		validate: validator.New(),
		logger:   logger,
	}
}

// ListSales fetches one page of records matching f.
func (c *Client) ListSales(ctx context.Context, f sales.Filter, page, limit int) (sales.Page, error) {
	q := filterQuery(f)
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	var out listResponse
	if err := c.do(ctx, "list sales", http.MethodGet, "/venta", q, nil, &out); err != nil {
		return sales.Page{}, err
	}
	return sales.Page{Sales: *out.Sales, TotalPages: *out.TotalPages}, nil
}

// AllSales fetches every record matching f, unpaged.
func (c *Client) AllSales(ctx context.Context, f sales.Filter) ([]sales.SaleRecord, error) {
	var out allResponse
	if err := c.do(ctx, "list all sales", http.MethodGet, "/venta/todas", filterQuery(f), nil, &out); err != nil {
		return nil, err
	}
	return *out.Sales, nil
}

// SalesStats fetches the aggregate figures for f.
func (c *Client) SalesStats(ctx context.Context, f sales.Filter) (sales.Stats, error) {
	var out statsResponse
	if err := c.do(ctx, "sales stats", http.MethodGet, "/estadisticas/ventas", filterQuery(f), nil, &out); err != nil {
		return sales.Stats{}, err
	}
	return sales.Stats{Total: *out.Total, Paid: *out.Paid, Voided: *out.Voided}, nil
}

// GetSale fetches a record with its line items and payments. An absent
// record yields a KindNotFound error.
func (c *Client) GetSale(ctx context.Context, id int64) (sales.Detail, error) {
	const op = "get sale"
	var out detailResponse
	if err := c.do(ctx, op, http.MethodGet, salePath(id), nil, nil, &out); err != nil {
		return sales.Detail{}, err
	}
	if out.Sale == nil {
		return sales.Detail{}, &Error{Op: op, Kind: KindNotFound, Status: http.StatusOK}
	}
	if err := c.validate.Struct(out.Sale); err != nil {
		return sales.Detail{}, &Error{Op: op, Kind: KindDecode, Err: err}
	}
	return sales.Detail{Sale: *out.Sale, Items: out.Items, Payments: out.Payments}, nil
}

// UpdateSale submits the full edited document.
func (c *Client) UpdateSale(ctx context.Context, id int64, doc sales.Update) error {
	return c.do(ctx, "update sale", http.MethodPut, salePath(id), nil, doc, nil)
}

// DeleteSale removes a record.
func (c *Client) DeleteSale(ctx context.Context, id int64) error {
	return c.do(ctx, "delete sale", http.MethodDelete, salePath(id), nil, nil, nil)
}

// Clients fetches the client lookup collection.
func (c *Client) Clients(ctx context.Context) ([]sales.Client, error) {
	var out []sales.Client
	err := c.do(ctx, "list clients", http.MethodGet, "/clientes", nil, nil, &out)
	return out, err
}

// Articles fetches the article lookup collection.
func (c *Client) Articles(ctx context.Context) ([]sales.Article, error) {
	var out []sales.Article
	err := c.do(ctx, "list articles", http.MethodGet, "/articulos", nil, nil, &out)
	return out, err
}

// PaymentTypes fetches the payment type lookup collection.
func (c *Client) PaymentTypes(ctx context.Context) ([]sales.PaymentType, error) {
	var out []sales.PaymentType
	err := c.do(ctx, "list payment types", http.MethodGet, "/tipo_pago", nil, nil, &out)
	return out, err
}

// Employees fetches the employee lookup collection.
func (c *Client) Employees(ctx context.Context) ([]sales.Employee, error) {
	var out []sales.Employee
	err := c.do(ctx, "list employees", http.MethodGet, "/listaempleado", nil, nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, op, method, path string, q url.Values, body, out any) error {
	reqID := uuid.NewString()
	req := c.http.R().
		SetContext(ctx).
		SetHeader(RequestIDHeader, reqID)
	if q != nil {
		req.SetQueryParamsFromValues(q)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		c.logger.Warn("request failed", zap.String("op", op), zap.String("request_id", reqID), zap.Error(err))
		return &Error{Op: op, Kind: KindTransport, Err: err}
	}

	status := resp.StatusCode()
	c.logger.Debug("request completed",
		zap.String("op", op),
		zap.String("request_id", reqID),
		zap.Int("status", status),
		zap.Duration("elapsed", resp.Time()),
	)

	if status == http.StatusNotFound {
		return &Error{Op: op, Kind: KindNotFound, Status: status, Msg: errorMessage(resp.Body())}
	}
	if resp.IsError() || status >= http.StatusMultipleChoices {
		return &Error{Op: op, Kind: KindStatus, Status: status, Msg: errorMessage(resp.Body())}
	}
	if out == nil {
		return nil
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return &Error{Op: op, Kind: KindDecode, Status: status, Err: err}
	}
	if err := c.validateOut(out); err != nil {
		return &Error{Op: op, Kind: KindDecode, Status: status, Err: err}
	}
	return nil
}

// validateOut checks struct responses and every element of slice responses.
func (c *Client) validateOut(out any) error {
	switch v := out.(type) {
	case *[]sales.Client:
		return c.validate.Var(*v, "dive")
	case *[]sales.Article:
		return c.validate.Var(*v, "dive")
	case *[]sales.PaymentType:
		return c.validate.Var(*v, "dive")
	case *[]sales.Employee:
		return c.validate.Var(*v, "dive")
	default:
		return c.validate.Struct(out)
	}
}

func filterQuery(f sales.Filter) url.Values {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Start != nil {
		q.Set("fechaInicio", f.Start.Format(DateLayout))
	}
	if f.End != nil {
		q.Set("fechaFin", f.End.Format(DateLayout))
	}
	return q
}

func salePath(id int64) string {
	return "/venta/" + strconv.FormatInt(id, 10)
}

func errorMessage(body []byte) string {
	var e errorResponse
	if err := json.Unmarshal(body, &e); err == nil {
		if e.Error != "" {
			return e.Error
		}
		if e.Message != "" {
			return e.Message
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
