// Package refdata holds the lookup collections an edit session picks from.
package refdata

import (
	"context"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sales_admin/internal/sales"
)

// Kind names one lookup collection.
type Kind string

const (
	Clients      Kind = "clientes"
	Articles     Kind = "articulos"
	Employees    Kind = "empleados"
	PaymentTypes Kind = "tipos de pago"
)

// Source is the part of the gateway the cache reads from.
type Source interface {
	Clients(ctx context.Context) ([]sales.Client, error)
	Articles(ctx context.Context) ([]sales.Article, error)
	Employees(ctx context.Context) ([]sales.Employee, error)
	PaymentTypes(ctx context.Context) ([]sales.PaymentType, error)
}

// Option is one entry of a pick-list.
type Option struct {
	ID    int64
	Label string
}

// Cache is loaded once per edit session. A collection that fails to load is
// left empty; the others are still usable.
type Cache struct {
	src    Source
	logger *zap.Logger

	once   sync.Once
	mu     sync.RWMutex
	sets   map[Kind][]Option
	prices map[int64]decimal.Decimal
	failed map[Kind]error
}

// New creates an empty cache bound to src.
func New(src Source, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		src:    src,
		logger: logger,
		sets:   map[Kind][]Option{},
		prices: map[int64]decimal.Decimal{},
		failed: map[Kind]error{},
	}
}

// Load fetches the four collections concurrently. Only the first call hits
// the network; later calls return immediately.
func (c *Cache) Load(ctx context.Context) {
	c.once.Do(func() { c.load(ctx) })
}

func (c *Cache) load(ctx context.Context) {
	var g errgroup.Group

	g.Go(func() error {
		rows, err := c.src.Clients(ctx)
		opts := make([]Option, 0, len(rows))
		for _, r := range rows {
			opts = append(opts, Option{ID: r.ID, Label: r.Name})
		}
		c.store(Clients, opts, err)
		return nil
	})
	g.Go(func() error {
		rows, err := c.src.Articles(ctx)
		opts := make([]Option, 0, len(rows))
		prices := make(map[int64]decimal.Decimal, len(rows))
		for _, r := range rows {
			opts = append(opts, Option{ID: r.ID, Label: r.Name})
			prices[r.ID] = r.Price
		}
		if err == nil {
			c.mu.Lock()
			c.prices = prices
			c.mu.Unlock()
		}
		c.store(Articles, opts, err)
		return nil
	})
	g.Go(func() error {
		rows, err := c.src.Employees(ctx)
		opts := make([]Option, 0, len(rows))
		for _, r := range rows {
			opts = append(opts, Option{ID: r.ID, Label: r.Name})
		}
		c.store(Employees, opts, err)
		return nil
	})
	g.Go(func() error {
		rows, err := c.src.PaymentTypes(ctx)
		opts := make([]Option, 0, len(rows))
		for _, r := range rows {
			opts = append(opts, Option{ID: r.ID, Label: r.Name})
		}
		c.store(PaymentTypes, opts, err)
		return nil
	})

	// Ningún fetch devuelve error: las fallas quedan registradas en c.failed.
	_ = g.Wait()
}

func (c *Cache) store(kind Kind, opts []Option, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.logger.Warn("reference data unavailable, using empty list", zap.String("kind", string(kind)), zap.Error(err))
		c.sets[kind] = nil
		c.failed[kind] = err
		return
	}
	c.sets[kind] = opts
	delete(c.failed, kind)
}

// Options returns the pick-list for kind, in API order.
func (c *Cache) Options(kind Kind) []Option {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Option(nil), c.sets[kind]...)
}

// Label returns the display label of id within kind.
func (c *Cache) Label(kind Kind, id int64) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, o := range c.sets[kind] {
		if o.ID == id {
			return o.Label, true
		}
	}
	return "", false
}

// ArticlePrice returns the reference price of an article.
func (c *Cache) ArticlePrice(id int64) (decimal.Decimal, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.prices[id]
	return p, ok
}

// Failures lists the collections that could not be loaded.
func (c *Cache) Failures() map[Kind]error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[Kind]error, len(c.failed))
	for k, v := range c.failed {
		out[k] = v
	}
	return out
}

// Match resolves free text typed by the user to an option of kind: an exact
// case-insensitive label match wins, then a label containing the text, then
// the closest label by edit distance as long as it is within half the text's
// length.
func (c *Cache) Match(kind Kind, text string) (Option, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return Option{}, false
	}

	var (
		contains *Option
		best     Option
		bestDist = -1
	)
	for i, o := range c.sets[kind] {
		label := strings.ToLower(o.Label)
		if label == needle {
			return o, true
		}
		if contains == nil && strings.Contains(label, needle) {
			contains = &c.sets[kind][i]
		}
		d := levenshtein.ComputeDistance(needle, label)
		if bestDist < 0 || d < bestDist {
			best, bestDist = o, d
		}
	}
	if contains != nil {
		return *contains, true
	}
	if bestDist >= 0 && bestDist <= len([]rune(needle))/2 {
		return best, true
	}
	return Option{}, false
}
