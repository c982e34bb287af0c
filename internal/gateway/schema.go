package gateway

import (
	"github.com/shopspring/decimal"

	"sales_admin/internal/sales"
)

// Wire shapes of every response. Pointer fields distinguish "missing" from
// "zero" so a shape mismatch fails validation instead of decoding silently.

type listResponse struct {
	Sales      *[]sales.SaleRecord `json:"ventas" validate:"required,dive"`
	TotalPages *int                `json:"totalPaginas" validate:"required,gte=0"`
}

type allResponse struct {
	Sales *[]sales.SaleRecord `json:"ventas" validate:"required,dive"`
}

type detailResponse struct {
	Sale     *sales.SaleRecord `json:"venta"`
	Items    []sales.LineItem  `json:"detalles" validate:"dive"`
	Payments []sales.Payment   `json:"pagos" validate:"dive"`
}

type statsResponse struct {
	Total  *decimal.Decimal `json:"totalVentas" validate:"required"`
	Paid   *int             `json:"ventasPagadas" validate:"required,gte=0"`
	Voided *int             `json:"ventasAnuladas" validate:"required,gte=0"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
