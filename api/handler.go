package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sales_admin/internal/sales"
)

const queryDateLayout = "2006-01-02"

// salesHandler holds the sales service and implements HTTP handlers for sales operations.
type salesHandler struct {
	salesService *sales.Service
	logger       *zap.Logger
	failStats    bool
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(salesService *sales.Service, logger *zap.Logger, failStats bool) *salesHandler {
	return &salesHandler{
		salesService: salesService,
		logger:       logger,
		failStats:    failStats,
	}
}

// handleListSales handles GET /venta.
func (h *salesHandler) handleListSales(ctx *gin.Context) {
	f, err := filterFromQuery(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	page, err := intQuery(ctx, "page", 1)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	limit, err := intQuery(ctx, "limit", 10)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.salesService.SearchSales(f, page, limit)
	if err != nil {
		h.logger.Error("Error searching sales", zap.String("search", f.Search), zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search sales"})
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// handleAllSales handles GET /venta/todas, the unpaged listing.
func (h *salesHandler) handleAllSales(ctx *gin.Context) {
	f, err := filterFromQuery(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	all, err := h.salesService.AllSales(f)
	if err != nil {
		h.logger.Error("Error listing all sales", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list sales"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"ventas": all})
}

// handleSalesStats handles GET /estadisticas/ventas.
func (h *salesHandler) handleSalesStats(ctx *gin.Context) {
	if h.failStats {
		// Modo de prueba para ejercitar el cálculo local de estadísticas.
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "estadísticas no disponibles"})
		return
	}
	f, err := filterFromQuery(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, err := h.salesService.SalesStats(f)
	if err != nil {
		h.logger.Error("Error computing stats", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute stats"})
		return
	}
	ctx.JSON(http.StatusOK, st)
}

// handleGetSale handles GET /venta/:id.
func (h *salesHandler) handleGetSale(ctx *gin.Context) {
	id, ok := h.saleID(ctx)
	if !ok {
		return
	}
	d, err := h.salesService.GetSale(id)
	if err != nil {
		h.writeError(ctx, id, err)
		return
	}
	ctx.JSON(http.StatusOK, d)
}

// handleUpdateSale handles PUT /venta/:id.
func (h *salesHandler) handleUpdateSale(ctx *gin.Context) {
	id, ok := h.saleID(ctx)
	if !ok {
		return
	}
	var req sales.Update
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("failed to bind JSON request", zap.Int64("sale_id", id), zap.Error(err))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	if _, err := h.salesService.UpdateSale(id, req); err != nil {
		h.writeError(ctx, id, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Venta actualizada"})
}

// handleDeleteSale handles DELETE /venta/:id.
func (h *salesHandler) handleDeleteSale(ctx *gin.Context) {
	id, ok := h.saleID(ctx)
	if !ok {
		return
	}
	if err := h.salesService.DeleteSale(id); err != nil {
		h.writeError(ctx, id, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Venta eliminada"})
}

func (h *salesHandler) handleClients(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, nonNil(h.salesService.Catalog().Clients))
}

func (h *salesHandler) handleArticles(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, nonNil(h.salesService.Catalog().Articles))
}

func (h *salesHandler) handlePaymentTypes(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, nonNil(h.salesService.Catalog().PaymentTypes))
}

func (h *salesHandler) handleEmployees(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, nonNil(h.salesService.Catalog().Employees))
}

func (h *salesHandler) saleID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid sale id"})
		return 0, false
	}
	return id, true
}

func (h *salesHandler) writeError(ctx *gin.Context, id int64, err error) {
	switch {
	case errors.Is(err, sales.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "sale not found"})
	case errors.Is(err, sales.ErrEmptyID):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("sale operation failed", zap.Int64("sale_id", id), zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func filterFromQuery(ctx *gin.Context) (sales.Filter, error) {
	f := sales.Filter{Search: ctx.Query("search")}
	for key, dst := range map[string]**time.Time{"fechaInicio": &f.Start, "fechaFin": &f.End} {
		raw := ctx.Query(key)
		if raw == "" {
			continue
		}
		t, err := time.Parse(queryDateLayout, raw)
		if err != nil {
			return sales.Filter{}, errors.New("invalid " + key)
		}
		*dst = &t
	}
	return f, nil
}

func intQuery(ctx *gin.Context, key string, def int) (int, error) {
	raw := ctx.Query(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("invalid " + key)
	}
	return n, nil
}

// nonNil keeps empty collections encoded as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
