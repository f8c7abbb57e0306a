// Package valuation exposes the scenario DCF calculator over HTTP.
package valuation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"value_copilot/pkg/api/respond"
	"value_copilot/pkg/core/report"
	"value_copilot/pkg/core/valuation"

	"go.uber.org/zap"
)

// Handler serves the DCF endpoints.
type Handler struct {
	logger *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{logger: logger.Named("valuation")}
}

// HandleDCF computes the three-scenario table.
// Fields omitted from the body keep the calculator defaults. Profile rates are
// clamped to [0, 1] and revenue and shares to >= 0 before computing; an
// out-of-range horizon, discount rate or growth rate is a 400.
// ?format=csv|md|pdf returns a download instead of JSON.
func (h *Handler) HandleDCF(w http.ResponseWriter, r *http.Request) {
	set := valuation.DefaultScenarioSet()
	if err := json.NewDecoder(r.Body).Decode(&set); err != nil && !errors.Is(err, io.EOF) {
		respond.Error(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	set = set.Sanitize()
	if !set.HorizonValid() {
		respond.Error(w, http.StatusBadRequest, fmt.Sprintf("horizon_years must be between %d and %d",
			valuation.MinHorizonYears, valuation.MaxHorizonYears))
		return
	}
	if err := set.ValidateRates(); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	table := report.NewTable(set)
	h.logger.Debug("dcf computed",
		zap.Int("horizon", set.HorizonYears),
		zap.Bool("bear_defined", table.Rows[0].Defined()),
		zap.Bool("base_defined", table.Rows[1].Defined()),
		zap.Bool("bull_defined", table.Rows[2].Defined()))

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		respond.JSON(w, http.StatusOK, table)
	case "csv":
		var buf bytes.Buffer
		if err := report.WriteCSV(&buf, table.Rows, report.CSVOptions{BOM: true}); err != nil {
			respond.Fail(w, h.logger, err)
			return
		}
		respond.Download(w, "text/csv; charset=utf-8", "dcf_snapshot.csv", buf.Bytes())
	case "md":
		respond.Download(w, "text/markdown; charset=utf-8", "dcf_snapshot.md", []byte(report.MarkdownReport(table)))
	case "pdf":
		var buf bytes.Buffer
		if err := report.WritePDF(&buf, table); err != nil {
			respond.Fail(w, h.logger, err)
			return
		}
		respond.Download(w, "application/pdf", "dcf_snapshot.pdf", buf.Bytes())
	default:
		respond.Error(w, http.StatusBadRequest, "unknown format "+format+" (want json, csv, md or pdf)")
	}
}

// HandleDefaults returns the starting inputs of the calculator form.
func (h *Handler) HandleDefaults(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, valuation.DefaultScenarioSet())
}

type waccRequest struct {
	valuation.CapitalCostInput
	Spread float64 `json:"spread"`
}

type waccResponse struct {
	valuation.CapitalCost
	ScenarioRates map[valuation.ScenarioName]float64 `json:"scenario_discount_rates"`
}

// HandleWACC prices the discount rate from CAPM and target leverage and
// spreads it into the three scenario rates (default spread 1%).
func (h *Handler) HandleWACC(w http.ResponseWriter, r *http.Request) {
	req := waccRequest{CapitalCostInput: valuation.DefaultCapitalCostInput(), Spread: 0.01}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respond.Error(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	cost := valuation.CalculateCapitalCost(req.CapitalCostInput)
	bear, base, bull := valuation.ScenarioDiscountRates(cost.WACC, req.Spread)
	respond.JSON(w, http.StatusOK, waccResponse{
		CapitalCost:   cost,
		ScenarioRates: map[valuation.ScenarioName]float64{
			valuation.ScenarioConservative: bear,
			valuation.ScenarioBase:         base,
			valuation.ScenarioAggressive:   bull,
		},
	})
}
