package records

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/verte-zerg/salesdash/internal/model"
)

var exportColumns = []column{
	colYear, colMonth, colDay, colQuarter, colSeason,
	colSKU, colCategory, colSize, colStyle, colState, colQty, colAmount,
}

// WriteCSV writes recs in the export layout ReadCSV accepts. Missing amounts are
// written as empty cells.
func WriteCSV(w io.Writer, recs []model.Record) error {
	writer := csv.NewWriter(w)
	header := make([]string, len(exportColumns))
	for i, col := range exportColumns {
		header[i] = columnNames[col]
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, r := range recs {
		amount := ""
		if r.Amount.Valid {
			amount = r.Amount.Decimal.StringFixed(2)
		}
		row := []string{
			strconv.Itoa(r.Year),
			r.Month.String(),
			r.Day.String(),
			fmt.Sprintf("Q%d", r.Quarter),
			r.Season,
			r.SKU,
			r.Category,
			r.Size,
			r.Style,
			r.State,
			strconv.FormatInt(r.Quantity, 10),
			amount,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i+1, err)
		}
	}
	writer.Flush()
	return writer.Error()
}
