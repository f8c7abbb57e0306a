package report

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

var pdfHeaders = []string{"Scenario", "Discount rate", "Growth rate", "FCF (yr 1)", "EV (PV)", "Price/Share"}

var pdfColWidths = []float64{30, 28, 28, 34, 36, 34}

// WritePDF renders a one-page A4 snapshot of the table.
func WritePDF(w io.Writer, t Table) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 10)
	pdf.SetTitle("DCF scenario snapshot", true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "DCF scenario snapshot", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 10)
	inputs := [][2]string{
		{"Revenue", FormatMoney(t.Profile.Revenue)},
		{"Operating margin", FormatPercent(t.Profile.OperatingMargin)},
		{"Tax rate", FormatPercent(t.Profile.TaxRate)},
		{"Reinvestment rate", FormatPercent(t.Profile.ReinvestmentRate)},
		{"Shares outstanding", FormatDecimal(t.Profile.SharesOutstanding, -1)},
		{"Horizon", fmt.Sprintf("%d years", t.HorizonYears)},
	}
	for _, kv := range inputs {
		pdf.CellFormat(45, 6, kv[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, kv[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range pdfHeaders {
		pdf.CellFormat(pdfColWidths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, r := range t.Rows {
		cells := []string{
			string(r.Scenario),
			FormatPercent(r.DiscountRate),
			FormatPercent(r.GrowthRate),
			FormatMoney(r.FreeCashFlowYear1),
			FormatMoney(r.EnterpriseValue),
			FormatMoney(r.PricePerShare),
		}
		for i, c := range cells {
			align := "R"
			if i == 0 {
				align = "L"
			}
			pdf.CellFormat(pdfColWidths[i], 7, c, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.MultiCell(0, 4, "General information only, not investment advice. NaN marks scenarios whose discount rate does not exceed the growth rate.", "", "L", false)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}
