package records

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSVReadsBack(t *testing.T) {
	recs, err := ReadCSV(strings.NewReader(partsCSV))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, recs))
	assert.True(t, strings.HasPrefix(buf.String(), "Order_Year,Order_Month,Order_Day,quarter,season,SKU,"))
	assert.Contains(t, buf.String(), "2022,April,Saturday,Q2,Spring,SET389-KR-NP-S,Set,S,SET389,MAHARASHTRA,0,647.62\n")

	again, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Len(t, again, len(recs))
	for i := range recs {
		want, got := recs[i], again[i]
		assert.Equal(t, want.Amount.Valid, got.Amount.Valid)
		assert.True(t, want.Amount.Decimal.Equal(got.Amount.Decimal))
		want.Amount, got.Amount = decimal.NullDecimal{}, decimal.NullDecimal{}
		assert.Equal(t, want, got)
	}
}
