package contract

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/contratos/internal/contract"
)

type contractResponse struct {
	ID           uuid.UUID         `json:"id"`
	Number       string            `json:"number"`
	Template     contract.Template `json:"template"`
	SupplierCNPJ string            `json:"supplier_cnpj"`
	SupplierName string            `json:"supplier_name"`
	Version      int               `json:"version"`
	Stage        contract.Stage    `json:"stage"`
	StageLabel   string            `json:"stage_label"`
	HasDocument  bool              `json:"has_document"`
	CreatedAt    time.Time         `json:"created_at"`
	FinalizedAt  *time.Time        `json:"finalized_at,omitempty"`
}

func toResponse(c *contract.Contract) contractResponse {
	return contractResponse{
		ID:           c.ID,
		Number:       c.Number,
		Template:     c.Template,
		SupplierCNPJ: c.SupplierCNPJ,
		SupplierName: c.SupplierName,
		Version:      c.Version,
		Stage:        c.Stage,
		StageLabel:   c.Stage.Label(),
		HasDocument:  c.FilePath != "",
		CreatedAt:    c.CreatedAt,
		FinalizedAt:  c.FinalizedAt,
	}
}

func toResponseList(cs []*contract.Contract) []contractResponse {
	resp := make([]contractResponse, 0, len(cs))
	for _, c := range cs {
		resp = append(resp, toResponse(c))
	}

	return resp
}

type eventResponse struct {
	From      *contract.Stage `json:"from"`
	To        contract.Stage  `json:"to"`
	ChangedAt time.Time       `json:"changed_at"`
	ChangedBy *string         `json:"changed_by"`
}

func toEventResponses(events []contract.StatusEvent) []eventResponse {
	resp := make([]eventResponse, 0, len(events))
	for _, ev := range events {
		resp = append(resp, eventResponse{
			From:      ev.From,
			To:        ev.To,
			ChangedAt: ev.ChangedAt,
			ChangedBy: ev.ChangedBy,
		})
	}

	return resp
}

type stageTimeResponse struct {
	Stage        contract.Stage `json:"stage"`
	Label        string         `json:"label"`
	Seconds      int64          `json:"seconds"`
	Hours        float64        `json:"hours"`
	BusinessDays float64        `json:"business_days"`
}
