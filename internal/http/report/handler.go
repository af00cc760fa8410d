package report

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/contratos/internal/contract"
	"github.com/MrJamesThe3rd/contratos/internal/sla"
)

type Handler struct {
	contracts *contract.Service
	sla       *sla.Aggregator
}

func NewHandler(contracts *contract.Service, agg *sla.Aggregator) *Handler {
	return &Handler{contracts: contracts, sla: agg}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/summary", h.summary)
	r.Get("/sla", h.average)
}

type stageCountResponse struct {
	Stage contract.Stage `json:"stage"`
	Label string         `json:"label"`
	Count int            `json:"count"`
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	counts, err := h.contracts.CountByStage(r.Context())
	if err != nil {
		slog.Error("failed to count contracts", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	resp := make([]stageCountResponse, 0, len(counts))
	for _, st := range contract.Stages() {
		resp = append(resp, stageCountResponse{Stage: st, Label: st.Label(), Count: counts[st]})
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type stageAverageResponse struct {
	Stage        contract.Stage `json:"stage"`
	Label        string         `json:"label"`
	BusinessDays float64        `json:"business_days"`
}

type skipResponse struct {
	ContractID string `json:"contract_id"`
	Reason     string `json:"reason"`
}

type averageResponse struct {
	Available         bool                   `json:"available"`
	Population        *int                   `json:"population,omitempty"`
	TotalBusinessDays *float64               `json:"total_business_days,omitempty"`
	Stages            []stageAverageResponse `json:"stages,omitempty"`
	Skipped           []skipResponse         `json:"skipped,omitempty"`
}

func (h *Handler) average(w http.ResponseWriter, r *http.Request) {
	report, err := h.sla.AverageFinalized(r.Context())

	var resp averageResponse

	switch {
	case errors.Is(err, sla.ErrNoData):
		resp.Available = false
	case err != nil:
		slog.Error("failed to compute SLA", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	default:
		resp = toAverageResponse(report)
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func toAverageResponse(report *sla.Report) averageResponse {
	resp := averageResponse{
		Available:         true,
		Population:        &report.Population,
		TotalBusinessDays: &report.TotalBusinessDays,
	}

	for _, st := range contract.Stages() {
		days, ok := report.StageBusinessDays[st]
		if !ok {
			continue
		}

		resp.Stages = append(resp.Stages, stageAverageResponse{Stage: st, Label: st.Label(), BusinessDays: days})
	}

	for _, s := range report.Skipped {
		resp.Skipped = append(resp.Skipped, skipResponse{ContractID: s.ContractID, Reason: s.Reason})
	}

	return resp
}
