package sales

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBucketOf(t *testing.T) {
	assert.Equal(t, BucketPaid, BucketOf("Pagada"))
	assert.Equal(t, BucketVoided, BucketOf("Anulada"))
	assert.Equal(t, BucketOther, BucketOf("Pendiente"))
	assert.Equal(t, BucketOther, BucketOf(""))
	assert.Equal(t, "voided", BucketVoided.String())
}

func TestAggregate(t *testing.T) {
	records := []SaleRecord{
		{ID: 1, Total: decimal.RequireFromString("10.10"), Status: StatusPaid},
		{ID: 2, Total: decimal.RequireFromString("5.05"), Status: StatusVoided},
		{ID: 3, Total: decimal.RequireFromString("1.00"), Status: "En revisión"},
		{ID: 4, Total: decimal.RequireFromString("0.85"), Status: StatusPaid},
	}

	st := Aggregate(records)
	assert.Equal(t, "17.00", st.Total.StringFixed(2))
	assert.Equal(t, 2, st.Paid)
	assert.Equal(t, 1, st.Voided)

	empty := Aggregate(nil)
	assert.True(t, empty.Total.IsZero())
}

func TestLineSubtotal(t *testing.T) {
	li := LineItem{Quantity: 3, UnitPrice: decimal.RequireFromString("19.99")}
	assert.Equal(t, "59.97", li.LineSubtotal().StringFixed(2))
}

func TestRequestSeq(t *testing.T) {
	var seq RequestSeq

	first := seq.Next()
	assert.True(t, seq.Current(first))

	second := seq.Next()
	assert.False(t, seq.Current(first), "older token is superseded")
	assert.True(t, seq.Current(second))

	seq.Invalidate()
	assert.False(t, seq.Current(second))
}

func TestFilterActive(t *testing.T) {
	assert.False(t, Filter{}.Active())
	assert.True(t, Filter{Search: "x"}.Active())
	d := day("2024-01-01")
	assert.True(t, Filter{End: &d}.Active())
}
