package cmd

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"sales_admin/api"
	"sales_admin/internal/gateway"
)

// startStub serves the fixture backend and points the CLI at it.
func startStub(t *testing.T) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	fx, err := api.LoadFixture("../api/testdata/seed.yaml")
	require.NoError(t, err)
	_, err = api.InitRoutes(r, fx, zaptest.NewLogger(t), api.Options{})
	require.NoError(t, err)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	chdir(t, t.TempDir())
	t.Setenv("SALES_ADMIN_API_BASE_URL", srv.URL)
	t.Setenv("SALES_ADMIN_LOG_LEVEL", "error")
	return srv.URL
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestListCommand(t *testing.T) {
	startStub(t)
	xlsx := filepath.Join(t.TempDir(), "ventas.xlsx")

	out, err := run(t, "list", "--search", "ana", "--xlsx", xlsx)
	require.NoError(t, err)
	assert.Contains(t, out, "Total: $36.25  Pagadas: 3  Anuladas: 0")
	assert.Contains(t, out, "Ana Gómez")
	assert.Contains(t, out, "11/01/2024")
	assert.Contains(t, out, "Página 1 de 1")
	assert.NotContains(t, out, "Bruno")

	st, err := os.Stat(xlsx)
	require.NoError(t, err)
	assert.NotZero(t, st.Size())
}

func TestShowCommand(t *testing.T) {
	startStub(t)

	out, err := run(t, "show", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Venta #2  03/01/2024 10:00")
	assert.Contains(t, out, "Cliente: Bruno Díaz")
	assert.Contains(t, out, "Café 500g")
	assert.Contains(t, out, "Marta")
	assert.Contains(t, out, "Tarjeta")
	assert.Contains(t, out, "Total pagado: $10.00")

	_, err = run(t, "show", "cero")
	assert.Error(t, err)
}

func TestEditCommand(t *testing.T) {
	url := startStub(t)

	out, err := run(t, "edit", "1", "--item", "yerba:3", "--item", "12:1:8,50", "--pay", "efectivo:22")
	require.NoError(t, err)
	assert.Contains(t, out, "Venta actualizada correctamente")
	assert.Contains(t, out, "$22.00", "listing shown after the save")

	d, err := gateway.New(gateway.Config{BaseURL: url, Timeout: time.Second}, zaptest.NewLogger(t)).GetSale(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "22.00", d.Sale.Total.StringFixed(2))
	require.Len(t, d.Items, 2)
	assert.Equal(t, int64(10), d.Items[0].ArticleID)
	assert.Equal(t, "8.50", d.Items[1].UnitPrice.StringFixed(2))
}

func TestDeleteCommand(t *testing.T) {
	startStub(t)

	out, err := run(t, "delete", "3", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Venta eliminada correctamente")

	out, err = run(t, "show", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Venta no encontrada.")
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", d.Format("2006-01-02"))

	d, err = parseDate("01/03/2024")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", d.Format("2006-01-02"))

	d, err = parseDate("")
	require.NoError(t, err)
	assert.Nil(t, d)

	_, err = parseDate("marzo")
	assert.Error(t, err)
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
