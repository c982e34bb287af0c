// Package listing keeps the sales list in sync with the user's search, date
// range and page, deciding on every interaction whether anything has to be
// fetched.
package listing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sales_admin/internal/sales"
)

// Gateway is the part of the remote API the listing needs.
type Gateway interface {
	ListSales(ctx context.Context, f sales.Filter, page, limit int) (sales.Page, error)
	SalesStats(ctx context.Context, f sales.Filter) (sales.Stats, error)
	AllSales(ctx context.Context, f sales.Filter) ([]sales.SaleRecord, error)
	DeleteSale(ctx context.Context, id int64) error
}

// Status is the controller's lifecycle state.
type Status int

const (
	StatusUnloaded Status = iota
	StatusLoadedIdle
	StatusLoading
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoadedIdle:
		return "loaded"
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	default:
		return "unloaded"
	}
}

// View is a snapshot of everything the list screen renders.
type View struct {
	Query      Query
	Sales      []sales.SaleRecord
	TotalPages int
	Stats      sales.Stats
	// StatsDerived is set when the statistics endpoint failed and the
	// figures were aggregated from the full record set.
	StatsDerived bool
	LoadingSales bool
	LoadingStats bool
	Status       Status
	LastError    error
	PageSize     int
}

// Controller owns the listing state. It is safe for concurrent use; a
// response is applied only if no newer request for the same resource was
// issued after it.
type Controller struct {
	gw       Gateway
	confirm  sales.Confirmer
	notify   sales.Notifier
	logger   *zap.Logger
	pageSize int

	mu    sync.Mutex
	query Query
	// applied is the filter of the last ApplyFilters or Refresh. Page
	// changes and post-delete reloads reuse it so draft edits stay local.
	applied      sales.Filter
	rows         []sales.SaleRecord
	totalPages   int
	stats        sales.Stats
	statsDerived bool
	loadingSales bool
	loadingStats bool
	status       Status
	lastErr      error

	salesSeq sales.RequestSeq
	statsSeq sales.RequestSeq
}

// Option customises a Controller.
type Option func(*Controller)

// WithPageSize overrides DefaultPageSize. It is fixed for the controller's life.
func WithPageSize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// New creates a controller in the Unloaded state.
func New(gw Gateway, confirm sales.Confirmer, notify sales.Notifier, logger *zap.Logger, opts ...Option) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller{
		gw:       gw,
		confirm:  confirm,
		notify:   notify,
		logger:   logger,
		pageSize: DefaultPageSize,
		query:    InitialQuery(),
		status:   StatusUnloaded,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// View returns a copy of the current state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return View{
		Query:        c.query,
		Sales:        append([]sales.SaleRecord(nil), c.rows...),
		TotalPages:   c.totalPages,
		Stats:        c.stats,
		StatsDerived: c.statsDerived,
		LoadingSales: c.loadingSales,
		LoadingStats: c.loadingStats,
		Status:       c.status,
		LastError:    c.lastErr,
		PageSize:     c.pageSize,
	}
}

// SetSearch updates the search text. No request is issued.
func (c *Controller) SetSearch(text string) {
	c.dispatch(SetSearch{Text: text})
}

// SetDateRange updates the date bounds. No request is issued; the range is
// validated by ApplyFilters.
func (c *Controller) SetDateRange(start, end *time.Time) {
	c.dispatch(SetDateRange{Start: start, End: end})
}

// SetPage moves to page n. Once data has been loaded it refetches the record
// page with the last applied filters (statistics are page-independent and are
// left alone).
func (c *Controller) SetPage(ctx context.Context, n int) error {
	c.mu.Lock()
	if c.totalPages > 0 && n > c.totalPages {
		n = c.totalPages
	}
	c.query = Reduce(c.query, SetPage{N: n})
	q, f := c.query, c.applied
	c.mu.Unlock()

	if q.Gate != GateOpen {
		c.logger.Debug("page change while unloaded, not fetching", zap.Int("page", q.Page))
		return nil
	}
	return c.fetchSales(ctx, f, q.Page)
}

// ApplyFilters validates the date range, returns to page 1, opens the load
// gate and fetches both the record page and the statistics.
func (c *Controller) ApplyFilters(ctx context.Context) error {
	c.mu.Lock()
	if err := c.query.Validate(); err != nil {
		c.mu.Unlock()
		c.logger.Info("filters rejected", zap.Error(err))
		c.notify.Alert(err.Error())
		return err
	}
	c.query = Reduce(c.query, Apply{})
	c.applied = c.query.Filter()
	q := c.query
	c.mu.Unlock()

	return c.fetchAll(ctx, q.Filter(), q.Page)
}

// ClearFilters resets every filter, returns to page 1, re-arms the load gate
// and zeroes the statistics. No request is issued and any in-flight response
// is dropped.
func (c *Controller) ClearFilters() {
	c.salesSeq.Invalidate()
	c.statsSeq.Invalidate()

	c.mu.Lock()
	c.query = Reduce(c.query, Clear{})
	c.applied = sales.Filter{}
	c.rows = nil
	c.totalPages = 0
	c.stats = sales.Stats{}
	c.statsDerived = false
	c.loadingSales = false
	c.loadingStats = false
	c.lastErr = nil
	c.setStatus(StatusUnloaded)
	c.mu.Unlock()
}

// Refresh refetches records and statistics with the current filters, keeping
// the page. It does nothing while the gate is armed and no filter is set, so
// that mounting the screen never scans the whole table. A filtered refresh of
// an unloaded listing opens the gate just like ApplyFilters.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	q := c.query
	if q.Gate == GateArmed && !q.Filter().Active() {
		c.mu.Unlock()
		c.logger.Debug("refresh skipped: nothing loaded and no filters")
		return nil
	}
	if err := q.Validate(); err != nil {
		c.mu.Unlock()
		c.notify.Alert(err.Error())
		return err
	}
	if q.Gate == GateArmed {
		c.query = Reduce(c.query, Open{})
		c.logger.Debug("filtered refresh opened the load gate")
	}
	c.applied = q.Filter()
	c.mu.Unlock()

	return c.fetchAll(ctx, q.Filter(), q.Page)
}

// DeleteRecord asks for confirmation, deletes the record and, if data was
// already loaded, reloads the listing with the last applied filters.
// Declining is not an error.
func (c *Controller) DeleteRecord(ctx context.Context, id int64) error {
	ok, err := c.confirm.Confirm(ctx, fmt.Sprintf("¿Seguro que desea eliminar la venta #%d?", id))
	if err != nil {
		return fmt.Errorf("confirm delete: %w", err)
	}
	if !ok {
		c.logger.Debug("delete cancelled by user", zap.Int64("sale_id", id))
		return nil
	}

	if err := c.gw.DeleteSale(ctx, id); err != nil {
		c.logger.Error("failed to delete sale", zap.Int64("sale_id", id), zap.Error(err))
		c.notify.Alert(fmt.Sprintf("No se pudo eliminar la venta: %v", err))
		return err
	}
	c.logger.Info("sale deleted", zap.Int64("sale_id", id))
	c.notify.Success("Venta eliminada correctamente")

	c.mu.Lock()
	gate, f, page := c.query.Gate, c.applied, c.query.Page
	c.mu.Unlock()
	if gate != GateOpen {
		return nil
	}
	return c.fetchAll(ctx, f, page)
}

func (c *Controller) dispatch(a Action) {
	c.mu.Lock()
	c.query = Reduce(c.query, a)
	c.mu.Unlock()
}

// fetchAll issues the record-page and statistics requests concurrently and
// joins them.
func (c *Controller) fetchAll(ctx context.Context, f sales.Filter, page int) error {
	c.mu.Lock()
	c.lastErr = nil
	c.mu.Unlock()

	var (
		g                  errgroup.Group
		salesErr, statsErr error
	)
	g.Go(func() error {
		salesErr = c.fetchSales(ctx, f, page)
		return nil
	})
	g.Go(func() error {
		statsErr = c.fetchStats(ctx, f)
		return nil
	})
	_ = g.Wait()
	return multierr.Combine(salesErr, statsErr)
}

func (c *Controller) fetchSales(ctx context.Context, f sales.Filter, page int) error {
	tok := c.salesSeq.Next()
	c.mu.Lock()
	c.loadingSales = true
	c.setStatus(StatusLoading)
	c.mu.Unlock()

	res, err := c.gw.ListSales(ctx, f, page, c.pageSize)

	c.mu.Lock()
	if !c.salesSeq.Current(tok) {
		c.mu.Unlock()
		c.logger.Debug("discarding stale sales page", zap.Uint64("token", tok), zap.Int("page", page))
		return nil
	}
	c.loadingSales = false
	if err != nil {
		c.fail(err)
		c.mu.Unlock()
		c.logger.Error("failed to load sales", zap.Int("page", page), zap.Error(err))
		c.notify.Alert(fmt.Sprintf("No se pudieron cargar las ventas: %v", err))
		return err
	}
	c.rows = res.Sales
	c.totalPages = res.TotalPages
	c.settle()
	c.mu.Unlock()
	return nil
}

func (c *Controller) fetchStats(ctx context.Context, f sales.Filter) error {
	tok := c.statsSeq.Next()
	c.mu.Lock()
	c.loadingStats = true
	c.setStatus(StatusLoading)
	c.mu.Unlock()

	st, err := c.gw.SalesStats(ctx, f)
	derived := false
	if err != nil {
		c.logger.Warn("statistics endpoint unavailable, aggregating full record set", zap.Error(err))
		all, ferr := c.gw.AllSales(ctx, f)
		if ferr != nil {
			err = multierr.Append(err, ferr)
		} else {
			st, err, derived = sales.Aggregate(all), nil, true
		}
	}

	c.mu.Lock()
	if !c.statsSeq.Current(tok) {
		c.mu.Unlock()
		c.logger.Debug("discarding stale statistics", zap.Uint64("token", tok))
		return nil
	}
	c.loadingStats = false
	if err != nil {
		c.fail(err)
		c.mu.Unlock()
		c.logger.Error("failed to load statistics", zap.Error(err))
		c.notify.Alert(fmt.Sprintf("No se pudieron cargar las estadísticas: %v", err))
		return err
	}
	c.stats = st
	c.statsDerived = derived
	c.settle()
	c.mu.Unlock()
	return nil
}

// fail records err, passes through Error and lands back on LoadedIdle with
// the previous data untouched. Caller holds c.mu.
func (c *Controller) fail(err error) {
	c.lastErr = err
	c.setStatus(StatusError)
	c.settle()
}

// settle leaves Loading once both requests are done. Caller holds c.mu.
func (c *Controller) settle() {
	if c.loadingSales || c.loadingStats {
		c.setStatus(StatusLoading)
		return
	}
	c.setStatus(StatusLoadedIdle)
}

func (c *Controller) setStatus(s Status) {
	if c.status == s {
		return
	}
	c.logger.Debug("list state", zap.Stringer("from", c.status), zap.Stringer("to", s))
	c.status = s
}
