package sales

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados conocidos del backend. Cualquier otro valor cae en el bucket "otro".
const (
	StatusPaid    = "Pagada"
	StatusVoided  = "Anulada"
	StatusPending = "Pendiente"
)

// Bucket groups the backend's free-form status labels into the three
// styling classes the views care about.
type Bucket int

const (
	BucketOther Bucket = iota
	BucketPaid
	BucketVoided
)

func (b Bucket) String() string {
	switch b {
	case BucketPaid:
		return "paid"
	case BucketVoided:
		return "voided"
	default:
		return "other"
	}
}

// BucketOf classifies a status label.
func BucketOf(status string) Bucket {
	switch status {
	case StatusPaid:
		return BucketPaid
	case StatusVoided:
		return BucketVoided
	default:
		return BucketOther
	}
}

// SaleRecord represents one sales transaction header as served by the API.
type SaleRecord struct {
	ID         int64           `json:"IdVenta" yaml:"id" validate:"gt=0"`
	ClientID   int64           `json:"IdCliente" yaml:"client_id"`
	ClientName string          `json:"NombreCliente,omitempty" yaml:"client_name"`
	Date       time.Time       `json:"Fecha" yaml:"date"`
	Total      decimal.Decimal `json:"Total" yaml:"total"`
	Status     string          `json:"Estado" yaml:"status"`
	Notes      string          `json:"Observaciones" yaml:"notes"`
}

// Bucket returns the styling class of the record's status.
func (s SaleRecord) Bucket() Bucket {
	return BucketOf(s.Status)
}

// LineItem is one article sold within a sale.
type LineItem struct {
	ArticleID  int64           `json:"IdArticulo" yaml:"article_id" binding:"gt=0"`
	Quantity   int             `json:"Cantidad" yaml:"quantity" validate:"gte=0" binding:"gt=0"`
	UnitPrice  decimal.Decimal `json:"PrecioUnitario" yaml:"unit_price"`
	EmployeeID *int64          `json:"IdEmpleado,omitempty" yaml:"employee_id"`
	Subtotal   decimal.Decimal `json:"Subtotal" yaml:"subtotal"`
}

// LineSubtotal is quantity × unit price. The stored Subtotal field is only
// informational; totals are always recomputed from this.
func (l LineItem) LineSubtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Payment is one payment instrument applied to a sale.
type Payment struct {
	PaymentTypeID int64           `json:"IdTipoPago" yaml:"payment_type_id" binding:"gt=0"`
	Amount        decimal.Decimal `json:"Monto" yaml:"amount"`
}

// Detail bundles a record with its dependents.
type Detail struct {
	Sale     SaleRecord `json:"venta" yaml:"sale"`
	Items    []LineItem `json:"detalles" yaml:"items"`
	Payments []Payment  `json:"pagos" yaml:"payments"`
}

// Page is one page of the sales listing.
type Page struct {
	Sales      []SaleRecord `json:"ventas"`
	TotalPages int          `json:"totalPaginas"`
}

// Stats are the aggregate figures shown above the listing.
type Stats struct {
	Total  decimal.Decimal `json:"totalVentas"`
	Paid   int             `json:"ventasPagadas"`
	Voided int             `json:"ventasAnuladas"`
}

// Aggregate reduces a full record set into Stats.
func Aggregate(records []SaleRecord) Stats {
	st := Stats{Total: decimal.Zero}
	for _, r := range records {
		st.Total = st.Total.Add(r.Total)
		switch r.Bucket() {
		case BucketPaid:
			st.Paid++
		case BucketVoided:
			st.Voided++
		}
	}
	return st
}

// Filter is the search/date subset of a listing query sent to the API.
type Filter struct {
	Search string
	Start  *time.Time
	End    *time.Time
}

// Active reports whether any filter field is set.
func (f Filter) Active() bool {
	return f.Search != "" || f.Start != nil || f.End != nil
}

// Update is the document submitted when saving an edited sale.
type Update struct {
	ClientID int64           `json:"IdCliente" binding:"gt=0"`
	Date     time.Time       `json:"Fecha"`
	Notes    string          `json:"Observaciones"`
	Total    decimal.Decimal `json:"Total"`
	Items    []LineItem      `json:"Detalles" binding:"required,min=1,dive"`
	Payments []Payment       `json:"Pagos" binding:"required,min=1,dive"`
}

// Lookup rows returned by the reference-data endpoints.

type Client struct {
	ID   int64  `json:"IdCliente" yaml:"id" validate:"gt=0"`
	Name string `json:"Nombre" yaml:"name"`
}

type Article struct {
	ID    int64           `json:"IdArticulo" yaml:"id" validate:"gt=0"`
	Name  string          `json:"Nombre" yaml:"name"`
	Price decimal.Decimal `json:"Precio" yaml:"price"`
}

type Employee struct {
	ID   int64  `json:"IdEmpleado" yaml:"id" validate:"gt=0"`
	Name string `json:"Nombre" yaml:"name"`
}

type PaymentType struct {
	ID   int64  `json:"IdTipoPago" yaml:"id" validate:"gt=0"`
	Name string `json:"Nombre" yaml:"name"`
}
