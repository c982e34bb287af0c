package sales

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Catalog holds the lookup collections served next to the sales.
type Catalog struct {
	Clients      []Client      `yaml:"clients"`
	Articles     []Article     `yaml:"articles"`
	Employees    []Employee    `yaml:"employees"`
	PaymentTypes []PaymentType `yaml:"payment_types"`
}

// Service provides the sales operations the backend stub exposes, on top of a
// Storage backend.
type Service struct {
	storage Storage
	catalog Catalog
	logger  *zap.Logger
}

// NewService creates a new Service.
func NewService(storage Storage, catalog Catalog, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		storage: storage,
		catalog: catalog,
		logger:  logger,
	}
}

// Catalog returns the lookup collections.
func (s *Service) Catalog() Catalog {
	return s.catalog
}

// SearchSales returns one page of the records matching f, newest first.
// page is 1-based; limit <= 0 disables paging.
func (s *Service) SearchSales(f Filter, page, limit int) (Page, error) {
	matched, err := s.AllSales(f)
	if err != nil {
		return Page{}, err
	}

	if limit <= 0 {
		return Page{Sales: matched, TotalPages: 1}, nil
	}
	if page < 1 {
		page = 1
	}

	totalPages := (len(matched) + limit - 1) / limit
	from := (page - 1) * limit
	if from > len(matched) {
		from = len(matched)
	}
	to := from + limit
	if to > len(matched) {
		to = len(matched)
	}

	s.logger.Info("sales search completed",
		zap.String("search", f.Search),
		zap.Int("page", page),
		zap.Int("results_count", to-from),
		zap.Int("total_pages", totalPages),
	)

	return Page{Sales: matched[from:to], TotalPages: totalPages}, nil
}

// AllSales returns every record matching f, newest first.
func (s *Service) AllSales(f Filter) ([]SaleRecord, error) {
	all, err := s.storage.GetAll()
	if err != nil {
		s.logger.Error("failed to get all sales from storage", zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve sales: %w", err)
	}

	matched := make([]SaleRecord, 0, len(all))
	for _, d := range all {
		if matches(d.Sale, f) {
			matched = append(matched, d.Sale)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Date.Equal(matched[j].Date) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].Date.After(matched[j].Date)
	})
	return matched, nil
}

// SalesStats aggregates the records matching f.
func (s *Service) SalesStats(f Filter) (Stats, error) {
	matched, err := s.AllSales(f)
	if err != nil {
		return Stats{}, err
	}
	return Aggregate(matched), nil
}

// GetSale returns a record with its line items and payments.
func (s *Service) GetSale(id int64) (*Detail, error) {
	d, err := s.storage.Read(id)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// UpdateSale replaces a record's header and both dependent collections.
// Subtotals are recomputed; the submitted Total is kept as sent.
func (s *Service) UpdateSale(id int64, u Update) (*Detail, error) {
	current, err := s.storage.Read(id)
	if err != nil {
		return nil, ErrNotFound
	}

	items := make([]LineItem, len(u.Items))
	for i, it := range u.Items {
		it.Subtotal = it.LineSubtotal()
		items[i] = it
	}

	updated := &Detail{
		Sale: SaleRecord{
			ID:         id,
			ClientID:   u.ClientID,
			ClientName: s.clientName(u.ClientID),
			Date:       u.Date,
			Total:      u.Total,
			Status:     current.Sale.Status,
			Notes:      u.Notes,
		},
		Items:    items,
		Payments: append([]Payment(nil), u.Payments...),
	}

	if err := s.storage.Set(updated); err != nil {
		s.logger.Error("failed to update sale", zap.Int64("sale_id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("sale updated", zap.Int64("sale_id", id), zap.String("total", u.Total.StringFixed(2)))
	return updated, nil
}

// DeleteSale removes a record.
func (s *Service) DeleteSale(id int64) error {
	if err := s.storage.Delete(id); err != nil {
		return err
	}
	s.logger.Info("sale deleted", zap.Int64("sale_id", id))
	return nil
}

// Seed loads records into storage, filling client names from the catalog and
// totals from the line items when missing.
func (s *Service) Seed(details []Detail) error {
	for i := range details {
		d := details[i]
		if d.Sale.ClientName == "" {
			d.Sale.ClientName = s.clientName(d.Sale.ClientID)
		}
		sum := decimal.Zero
		for j := range d.Items {
			d.Items[j].Subtotal = d.Items[j].LineSubtotal()
			sum = sum.Add(d.Items[j].Subtotal)
		}
		if d.Sale.Total.IsZero() {
			d.Sale.Total = sum
		}
		if err := s.storage.Set(&d); err != nil {
			return fmt.Errorf("seed sale %d: %w", d.Sale.ID, err)
		}
	}
	return nil
}

func (s *Service) clientName(id int64) string {
	for _, c := range s.catalog.Clients {
		if c.ID == id {
			return c.Name
		}
	}
	return ""
}

func matches(r SaleRecord, f Filter) bool {
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(r.ClientName), q) &&
			!strings.Contains(strings.ToLower(r.Notes), q) &&
			!strings.Contains(strings.ToLower(r.Status), q) &&
			strconv.FormatInt(r.ID, 10) != f.Search {
			return false
		}
	}
	// Ambos extremos del rango son inclusivos por día.
	if f.Start != nil && r.Date.Before(*f.Start) {
		return false
	}
	if f.End != nil && !r.Date.Before(f.End.AddDate(0, 0, 1)) {
		return false
	}
	return true
}
