package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"value_copilot/pkg/core/valuation"
)

// utf8BOM lets spreadsheet tools detect the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVOptions tweaks the delimited export.
type CSVOptions struct {
	BOM   bool
	Comma rune // defaults to ','
}

// WriteCSV writes the header and the three rows in table order.
func WriteCSV(w io.Writer, rows [3]valuation.ScenarioResult, opts CSVOptions) error {
	if opts.BOM {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("write bom: %w", err)
		}
	}

	cw := csv.NewWriter(w)
	if opts.Comma != 0 {
		cw.Comma = opts.Comma
	}
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(Record(r)); err != nil {
			return fmt.Errorf("write row %s: %w", r.Scenario, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
