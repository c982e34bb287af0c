// Package editor implements the edit session of a single sale: header
// fields plus the two line collections, their totals and the balance check
// that gates saving.
package editor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sales_admin/internal/format"
	"sales_admin/internal/gateway"
	"sales_admin/internal/refdata"
	"sales_admin/internal/sales"
)

// Validation failures. All of them are reported through the Notifier and
// leave the session untouched.
var (
	ErrClientRequired  = errors.New("debe seleccionar un cliente")
	ErrNoLineItems     = errors.New("debe agregar al menos un artículo")
	ErrNoPayments      = errors.New("debe agregar al menos un pago")
	ErrUnbalanced      = errors.New("el total de pagos no coincide con el total de artículos")
	ErrLastLineItem    = errors.New("la venta debe tener al menos un artículo")
	ErrLastPayment     = errors.New("la venta debe tener al menos un pago")
	ErrIndexOutOfRange = errors.New("posición fuera de rango")
	ErrInvalidValue    = errors.New("valor inválido")
	ErrUnknownField    = errors.New("campo desconocido")
	ErrNotReady        = errors.New("la edición no está disponible")
)

// tolerance is the largest difference between items and payments totals
// that still counts as balanced: one cent.
var tolerance = decimal.New(1, -2)

// Gateway is the part of the remote API an edit session uses.
type Gateway interface {
	refdata.Source
	GetSale(ctx context.Context, id int64) (sales.Detail, error)
	UpdateSale(ctx context.Context, id int64, doc sales.Update) error
}

// State is the session lifecycle.
type State int

const (
	StateLoading State = iota
	StateReady
	StateSubmitting
	StateClosed
	// StateFailed: the record could not be loaded; the session shows an
	// empty state and accepts no edits.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateSubmitting:
		return "submitting"
	case StateClosed:
		return "closed"
	case StateFailed:
		return "failed"
	default:
		return "loading"
	}
}

// LineField names an editable column of a line item.
type LineField string

const (
	FieldArticle   LineField = "articulo"
	FieldQuantity  LineField = "cantidad"
	FieldUnitPrice LineField = "precio"
	FieldEmployee  LineField = "empleado"
)

// PaymentField names an editable column of a payment.
type PaymentField string

const (
	FieldPaymentType PaymentField = "tipo_pago"
	FieldAmount      PaymentField = "monto"
)

// Header holds the editable header fields of the sale.
type Header struct {
	ClientID int64
	Date     time.Time
	Notes    string
}

// Session is a snapshot of the edit state.
type Session struct {
	SaleID        int64
	Header        Header
	Items         []sales.LineItem
	Payments      []sales.Payment
	ItemsTotal    decimal.Decimal
	PaymentsTotal decimal.Decimal
	Loading       bool
	Submitting    bool
	State         State
	LoadError     error
}

// Balanced reports whether the totals match within one cent.
func (s Session) Balanced() bool {
	return balanced(s.ItemsTotal, s.PaymentsTotal)
}

// Controller drives one edit session.
type Controller struct {
	gw      Gateway
	refs    *refdata.Cache
	notify  sales.Notifier
	logger  *zap.Logger
	onSaved func(id int64)

	mu       sync.Mutex
	saleID   int64
	header   Header
	items    []sales.LineItem
	payments []sales.Payment
	original sales.Detail
	state    State
	loadErr  error

	loadSeq sales.RequestSeq
}

// New creates a session. onSaved, if not nil, runs after a successful save;
// callers use it to close the editor and resynchronise the listing.
func New(gw Gateway, notify sales.Notifier, logger *zap.Logger, onSaved func(id int64)) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		gw:      gw,
		refs:    refdata.New(gw, logger),
		notify:  notify,
		logger:  logger,
		onSaved: onSaved,
		state:   StateLoading,
	}
}

// Refs exposes the session's reference data for pick-lists.
func (c *Controller) Refs() *refdata.Cache {
	return c.refs
}

// Load fetches the reference data and the record concurrently. A failed
// reference collection only empties its pick-list; a failed record fetch
// moves the session to StateFailed.
//
// Line items and payments start empty: the record's existing dependents are
// not carried into the session and must be entered again.
func (c *Controller) Load(ctx context.Context, id int64) error {
	tok := c.loadSeq.Next()
	c.mu.Lock()
	c.saleID = id
	c.loadErr = nil
	c.setState(StateLoading)
	c.mu.Unlock()

	var (
		g      errgroup.Group
		detail sales.Detail
		recErr error
	)
	g.Go(func() error {
		c.refs.Load(ctx)
		return nil
	})
	g.Go(func() error {
		detail, recErr = c.gw.GetSale(ctx, id)
		return nil
	})
	_ = g.Wait()

	c.mu.Lock()
	if !c.loadSeq.Current(tok) {
		c.mu.Unlock()
		c.logger.Debug("discarding superseded sale load", zap.Int64("sale_id", id), zap.Uint64("token", tok))
		return nil
	}
	if recErr != nil {
		c.loadErr = recErr
		c.setState(StateFailed)
		c.mu.Unlock()
		if gateway.IsNotFound(recErr) {
			c.logger.Info("sale not found", zap.Int64("sale_id", id))
			c.notify.Alert(fmt.Sprintf("No se encontró la venta #%d", id))
		} else {
			c.logger.Error("failed to load sale", zap.Int64("sale_id", id), zap.Error(recErr))
			c.notify.Alert(fmt.Sprintf("No se pudo cargar la venta: %v", recErr))
		}
		return recErr
	}

	c.original = detail
	c.header = Header{
		ClientID: detail.Sale.ClientID,
		Date:     detail.Sale.Date,
		Notes:    detail.Sale.Notes,
	}
	c.items = []sales.LineItem{}
	c.payments = []sales.Payment{}
	c.setState(StateReady)
	c.mu.Unlock()

	c.logger.Debug("edit session ready",
		zap.Int64("sale_id", id),
		zap.Int("discarded_items", len(detail.Items)),
		zap.Int("discarded_payments", len(detail.Payments)),
	)
	return nil
}

// Original returns the record as loaded, including the dependents that were
// not seeded into the session.
func (c *Controller) Original() sales.Detail {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.original
}

// Session returns a snapshot with freshly computed totals.
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := append([]sales.LineItem(nil), c.items...)
	for i := range items {
		items[i].Subtotal = items[i].LineSubtotal()
	}
	return Session{
		SaleID:        c.saleID,
		Header:        c.header,
		Items:         items,
		Payments:      append([]sales.Payment(nil), c.payments...),
		ItemsTotal:    itemsTotal(c.items),
		PaymentsTotal: paymentsTotal(c.payments),
		Loading:       c.state == StateLoading,
		Submitting:    c.state == StateSubmitting,
		State:         c.state,
		LoadError:     c.loadErr,
	}
}

// ItemsTotal is the sum of every line subtotal.
func (c *Controller) ItemsTotal() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return itemsTotal(c.items)
}

// PaymentsTotal is the sum of every payment amount.
func (c *Controller) PaymentsTotal() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return paymentsTotal(c.payments)
}

// SetClient selects the client. Zero clears the selection.
func (c *Controller) SetClient(id int64) error {
	return c.mutate(func() error {
		if id < 0 {
			return fmt.Errorf("%w: cliente %d", ErrInvalidValue, id)
		}
		c.header.ClientID = id
		return nil
	})
}

// SetDate changes the sale timestamp.
func (c *Controller) SetDate(t time.Time) error {
	return c.mutate(func() error {
		c.header.Date = t
		return nil
	})
}

// SetNotes replaces the free-text notes.
func (c *Controller) SetNotes(notes string) error {
	return c.mutate(func() error {
		c.header.Notes = notes
		return nil
	})
}

// AddLineItem appends a blank line (quantity 1, price 0) and returns its index.
func (c *Controller) AddLineItem() (int, error) {
	idx := -1
	err := c.mutate(func() error {
		c.items = append(c.items, sales.LineItem{Quantity: 1, UnitPrice: decimal.Zero})
		idx = len(c.items) - 1
		return nil
	})
	return idx, err
}

// RemoveLineItem deletes the line at index. The last remaining line cannot
// be removed.
func (c *Controller) RemoveLineItem(index int) error {
	return c.mutate(func() error {
		if index < 0 || index >= len(c.items) {
			return fmt.Errorf("%w: artículo %d", ErrIndexOutOfRange, index)
		}
		if len(c.items) == 1 {
			return ErrLastLineItem
		}
		c.items = append(c.items[:index], c.items[index+1:]...)
		return nil
	})
}

// UpdateLineItem sets one field of the line at index from user input.
// Choosing an article fills in its reference price, which the user may then
// override.
func (c *Controller) UpdateLineItem(index int, field LineField, value string) error {
	return c.mutate(func() error {
		if index < 0 || index >= len(c.items) {
			return fmt.Errorf("%w: artículo %d", ErrIndexOutOfRange, index)
		}
		it := c.items[index]
		value = strings.TrimSpace(value)

		switch field {
		case FieldArticle:
			id, err := parseID(value)
			if err != nil {
				return err
			}
			it.ArticleID = id
			if price, ok := c.refs.ArticlePrice(id); ok {
				it.UnitPrice = price
			}
		case FieldQuantity:
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				return fmt.Errorf("%w: la cantidad debe ser un entero positivo", ErrInvalidValue)
			}
			it.Quantity = n
		case FieldUnitPrice:
			p, err := parseAmount(value)
			if err != nil {
				return err
			}
			it.UnitPrice = p
		case FieldEmployee:
			if value == "" {
				it.EmployeeID = nil
				break
			}
			id, err := parseID(value)
			if err != nil {
				return err
			}
			it.EmployeeID = &id
		default:
			return fmt.Errorf("%w: %q", ErrUnknownField, field)
		}

		it.Subtotal = it.LineSubtotal()
		c.items[index] = it
		return nil
	})
}

// AddPayment appends a blank payment and returns its index.
func (c *Controller) AddPayment() (int, error) {
	idx := -1
	err := c.mutate(func() error {
		c.payments = append(c.payments, sales.Payment{Amount: decimal.Zero})
		idx = len(c.payments) - 1
		return nil
	})
	return idx, err
}

// RemovePayment deletes the payment at index. The last remaining payment
// cannot be removed.
func (c *Controller) RemovePayment(index int) error {
	return c.mutate(func() error {
		if index < 0 || index >= len(c.payments) {
			return fmt.Errorf("%w: pago %d", ErrIndexOutOfRange, index)
		}
		if len(c.payments) == 1 {
			return ErrLastPayment
		}
		c.payments = append(c.payments[:index], c.payments[index+1:]...)
		return nil
	})
}

// UpdatePayment sets one field of the payment at index from user input.
func (c *Controller) UpdatePayment(index int, field PaymentField, value string) error {
	return c.mutate(func() error {
		if index < 0 || index >= len(c.payments) {
			return fmt.Errorf("%w: pago %d", ErrIndexOutOfRange, index)
		}
		p := c.payments[index]
		value = strings.TrimSpace(value)

		switch field {
		case FieldPaymentType:
			id, err := parseID(value)
			if err != nil {
				return err
			}
			p.PaymentTypeID = id
		case FieldAmount:
			amt, err := parseAmount(value)
			if err != nil {
				return err
			}
			p.Amount = amt
		default:
			return fmt.Errorf("%w: %q", ErrUnknownField, field)
		}

		c.payments[index] = p
		return nil
	})
}

// Save validates the session (client, at least one line, at least one
// payment, balanced totals, in that order) and submits the whole document.
// A rejected submission leaves the session editable; a successful one
// closes it and fires onSaved.
func (c *Controller) Save(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateReady {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("%w (%s)", ErrNotReady, state)
	}
	id := c.saleID
	if err := c.validate(); err != nil {
		c.mu.Unlock()
		c.logger.Info("save rejected", zap.Int64("sale_id", id), zap.Error(err))
		c.notify.Alert(err.Error())
		return err
	}

	doc := c.document()
	c.setState(StateSubmitting)
	c.mu.Unlock()

	if err := c.gw.UpdateSale(ctx, id, doc); err != nil {
		c.mu.Lock()
		c.setState(StateReady)
		c.mu.Unlock()
		c.logger.Error("failed to update sale", zap.Int64("sale_id", id), zap.Error(err))
		c.notify.Alert(fmt.Sprintf("No se pudo guardar la venta: %v", err))
		return err
	}

	c.mu.Lock()
	c.setState(StateClosed)
	c.mu.Unlock()
	c.logger.Info("sale updated", zap.Int64("sale_id", id), zap.String("total", doc.Total.StringFixed(2)))
	c.notify.Success("Venta actualizada correctamente")
	if c.onSaved != nil {
		c.onSaved(id)
	}
	return nil
}

// Close abandons the session without saving.
func (c *Controller) Close() {
	c.loadSeq.Invalidate()
	c.mu.Lock()
	c.setState(StateClosed)
	c.mu.Unlock()
}

// validate runs the pre-submit checks. Caller holds c.mu.
func (c *Controller) validate() error {
	if c.header.ClientID <= 0 {
		return ErrClientRequired
	}
	if len(c.items) == 0 {
		return ErrNoLineItems
	}
	if len(c.payments) == 0 {
		return ErrNoPayments
	}
	it, pt := itemsTotal(c.items), paymentsTotal(c.payments)
	if !balanced(it, pt) {
		return fmt.Errorf("%w (artículos %s, pagos %s)", ErrUnbalanced, format.Currency(it), format.Currency(pt))
	}
	return nil
}

// document builds the update payload. The total goes out rounded to cents;
// subtotals are recomputed by the server. Caller holds c.mu.
func (c *Controller) document() sales.Update {
	items := make([]sales.LineItem, len(c.items))
	for i, it := range c.items {
		it.Subtotal = it.LineSubtotal()
		items[i] = it
	}
	return sales.Update{
		ClientID: c.header.ClientID,
		Date:     c.header.Date,
		Notes:    c.header.Notes,
		Total:    itemsTotal(c.items).Round(2),
		Items:    items,
		Payments: append([]sales.Payment(nil), c.payments...),
	}
}

// mutate runs fn while the session is Ready and reports its error through
// the Notifier.
func (c *Controller) mutate(fn func() error) error {
	c.mu.Lock()
	var err error
	if c.state != StateReady {
		err = fmt.Errorf("%w (%s)", ErrNotReady, c.state)
	} else {
		err = fn()
	}
	c.mu.Unlock()

	if err != nil {
		c.notify.Alert(err.Error())
	}
	return err
}

func (c *Controller) setState(s State) {
	if c.state == s {
		return
	}
	c.logger.Debug("editor state", zap.Stringer("from", c.state), zap.Stringer("to", s))
	c.state = s
}

func itemsTotal(items []sales.LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.LineSubtotal())
	}
	return sum
}

func paymentsTotal(payments []sales.Payment) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range payments {
		sum = sum.Add(p.Amount)
	}
	return sum
}

func balanced(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tolerance)
}

func parseID(value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: identificador %q", ErrInvalidValue, value)
	}
	return id, nil
}

func parseAmount(value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(value, ",", "."))
	if err != nil || d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: el monto debe ser un número no negativo", ErrInvalidValue)
	}
	return d, nil
}
