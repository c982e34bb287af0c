// Package api is a local stand-in for the sales backend: the same routes
// and payloads, served by gin over in-memory storage.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"sales_admin/internal/sales"
)

// Options tweak the stub's behaviour.
type Options struct {
	// FailStats makes GET /estadisticas/ventas answer 503.
	FailStats bool
}

// InitRoutes registers every backend endpoint on the given Gin engine.
// It initializes the storage, service, and handler from the fixture, then
// binds each HTTP method and path to the appropriate handler function.
func InitRoutes(e *gin.Engine, fx Fixture, logger *zap.Logger, opts Options) (*sales.Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Inicialización de la lógica de ventas
	salesStorage := sales.NewLocalStorage()
	salesService := sales.NewService(salesStorage, fx.Catalog, logger)
	if err := salesService.Seed(fx.Sales); err != nil {
		return nil, err
	}
	salesHandler := NewSalesHandler(salesService, logger, opts.FailStats)

	e.Use(requestID(logger))

	e.GET("/venta", salesHandler.handleListSales)
	e.GET("/venta/todas", salesHandler.handleAllSales)
	e.GET("/venta/:id", salesHandler.handleGetSale)
	e.PUT("/venta/:id", salesHandler.handleUpdateSale)
	e.DELETE("/venta/:id", salesHandler.handleDeleteSale)
	e.GET("/estadisticas/ventas", salesHandler.handleSalesStats)

	e.GET("/clientes", salesHandler.handleClients)
	e.GET("/articulos", salesHandler.handleArticles)
	e.GET("/tipo_pago", salesHandler.handlePaymentTypes)
	e.GET("/listaempleado", salesHandler.handleEmployees)

	e.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	logger.Info("backend stub routes ready", zap.Int("sales", len(fx.Sales)), zap.Bool("fail_stats", opts.FailStats))
	return salesService, nil
}

// requestID echoes the caller's X-Request-ID, minting one when absent.
func requestID(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-ID", id)
		c.Next()
		logger.Debug("request served",
			zap.String("request_id", id),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
		)
	}
}
