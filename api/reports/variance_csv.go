package reports

import (
	"encoding/csv"
	"fmt"
	"io"
)

// writeVarianceCSV streams the session's reconciliation lines as CSV.
func writeVarianceCSV(w io.Writer, data SheetData) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{"session_code", "sku", "item", "system_qty", "movement_qty", "effective_qty", "counted_qty", "variance_qty", "variance_value", "status"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, line := range data.Lines {
		record := []string{
			data.Code,
			line.SKU,
			line.Name,
			fmt.Sprintf("%.3f", line.SystemQty),
			fmt.Sprintf("%.3f", line.MovementQty),
			fmt.Sprintf("%.3f", line.EffectiveQty),
			fmt.Sprintf("%.3f", line.CountedQty),
			fmt.Sprintf("%.3f", line.VarianceQty),
			fmt.Sprintf("%.2f", line.VarianceValue),
			line.Status,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	return writer.Error()
}
